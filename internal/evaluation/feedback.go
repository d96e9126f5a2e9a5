package evaluation

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	passEmblem = "✅"
	failEmblem = "❌"
)

// FormatFeedback 把评测结果渲染成稳定的行结构文本，前端按此格式反解析，
// 改动任何标题或前缀都会破坏兼容性。
// 空列表对应的小节整体省略；维度百分比为归一化得分 × 100 向零截断。
func FormatFeedback(res *Result) string {
	var b strings.Builder

	emblem := failEmblem
	if res.Passed {
		emblem = passEmblem
	}
	fmt.Fprintf(&b, "**Total Score: %d/100** %s\n", res.TotalScore, emblem)

	writeSection(&b, "Strengths", res.Feedback.Strengths)
	writeSection(&b, "Weaknesses", res.Feedback.Weaknesses)

	b.WriteString("\n**Dimension Scores:**\n")
	fmt.Fprintf(&b, "- Correctness: %d%%\n", percentOf(res.Dimensions.Correctness.Score))
	fmt.Fprintf(&b, "- Efficiency: %d%%\n", percentOf(res.Dimensions.Efficiency.Score))
	fmt.Fprintf(&b, "- Quality: %d%%\n", percentOf(res.Dimensions.Quality.Score))
	fmt.Fprintf(&b, "- Compliance: %d%%", percentOf(res.Dimensions.Compliance.Score))

	return b.String()
}

func writeSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n**%s:**\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

// percentOf 向零截断，1e-9 吸收浮点误差（0.29*100 落在 28.999... 上的情况）
func percentOf(score float64) int {
	return int(score*100 + 1e-9)
}

// DimensionPercent 反解析出的单个维度百分比
type DimensionPercent struct {
	Label   string `json:"label"`
	Percent int    `json:"percent"`
}

// ParsedFeedback 从反馈文本还原出的结构
type ParsedFeedback struct {
	Strengths  []string           `json:"strengths"`
	Weaknesses []string           `json:"weaknesses"`
	Dimensions []DimensionPercent `json:"dimensions"`
}

// ParseFeedback 按展示层的宽松规则反解析反馈文本：
// 小节标题大小写不敏感，缺失小节视为空列表，小节内非 "-" 开头的行忽略。
// 与 FormatFeedback 构成往返契约。
func ParseFeedback(text string) *ParsedFeedback {
	parsed := &ParsedFeedback{
		Strengths:  []string{},
		Weaknesses: []string{},
		Dimensions: []DimensionPercent{},
	}

	mode := ""
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(strings.TrimSpace(line))
		switch {
		case strings.Contains(lower, "strengths:"):
			mode = "strengths"
			continue
		case strings.Contains(lower, "weaknesses:"):
			mode = "weaknesses"
			continue
		case strings.Contains(lower, "dimension scores:"):
			mode = "dimensions"
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || !strings.HasPrefix(trimmed, "-") {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))

		switch mode {
		case "strengths":
			parsed.Strengths = append(parsed.Strengths, item)
		case "weaknesses":
			parsed.Weaknesses = append(parsed.Weaknesses, item)
		case "dimensions":
			label, value, ok := strings.Cut(item, ":")
			if !ok {
				continue
			}
			percent, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "%")))
			if err != nil {
				continue
			}
			parsed.Dimensions = append(parsed.Dimensions, DimensionPercent{
				Label:   strings.TrimSpace(label),
				Percent: percent,
			})
		}
	}

	return parsed
}
