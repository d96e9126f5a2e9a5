package progression

// Rank 段位名称，由累计积分按固定阈值推导
type Rank string

const (
	Bronze   Rank = "Bronze"
	Silver   Rank = "Silver"
	Gold     Rank = "Gold"
	Platinum Rank = "Platinum"
)

// RankThreshold 段位与对应的积分门槛
type RankThreshold struct {
	Rank      Rank
	Threshold int
}

// Thresholds 固定段位表，按门槛升序排列
var Thresholds = []RankThreshold{
	{Bronze, 0},
	{Silver, 1000},
	{Gold, 5000},
	{Platinum, 10000},
}

// RankFor 返回积分所能达到的最高段位（threshold <= points）
func RankFor(points int) Rank {
	rank := Bronze
	for _, t := range Thresholds {
		if points >= t.Threshold {
			rank = t.Rank
		}
	}
	return rank
}

// NextThreshold 返回下一段位及其门槛，已达最高段位时 ok 为 false
func NextThreshold(points int) (RankThreshold, bool) {
	for _, t := range Thresholds {
		if points < t.Threshold {
			return t, true
		}
	}
	return RankThreshold{}, false
}

// Outcome 一次通过提交对用户进度产生的变化
type Outcome struct {
	EarnedPoints int    `json:"earnedPoints"`
	NewPoints    int    `json:"newPoints"`
	NewRank      string `json:"newRank"`
	RankUp       bool   `json:"rankUp"`
}

// EarnedPoints 计算得分对应的任务积分：floor(taskPoints * score / 100)
func EarnedPoints(taskPoints, score int) int {
	return taskPoints * score / 100
}

// Apply 将一次通过的评测结果折算为积分与段位变化。
// 纯函数，不做任何持久化；并发串行化由存储层负责。
func Apply(currentPoints int, currentRank Rank, score, taskPoints int) Outcome {
	earned := EarnedPoints(taskPoints, score)
	newPoints := currentPoints + earned
	newRank := RankFor(newPoints)

	return Outcome{
		EarnedPoints: earned,
		NewPoints:    newPoints,
		NewRank:      string(newRank),
		RankUp:       newRank != currentRank,
	}
}
