package service

import (
	"coding_arena_backend/internal/evaluation"
	"coding_arena_backend/internal/model"
	"coding_arena_backend/internal/progression"
	"coding_arena_backend/internal/util"
	"coding_arena_backend/pkg/logger"
	"coding_arena_backend/pkg/monitoring"
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 存储边界：gorm 仓库是生产实现，测试注入内存实现。
// 实现的选择在启动装配时完成，运行期不做类型探测。

type TaskStore interface {
	FindByID(id uint) (*model.Task, error)
}

type SubmissionStore interface {
	Create(submission *model.Submission) error
	FindByUser(userID uint) ([]model.Submission, error)
}

// ProgressionStore 进度聚合的持久化边界。
// ApplyPoints 必须按用户串行化（事务行锁或乐观重试），这是管线里
// 唯一要求严格串行的共享可变状态。
type ProgressionStore interface {
	FindByID(id uint) (*model.User, error)
	ApplyPoints(userID uint, earned int) (*model.User, error)
}

type EvaluationEngine interface {
	Evaluate(ctx context.Context, task evaluation.TaskContext, proofContent string) (*evaluation.Result, error)
}

// ScoreCache 排行榜缓存写端，尽力而为，失败不影响主流程
type ScoreCache interface {
	UpdateScore(ctx context.Context, userID uint, points int)
}

type SubmissionService struct {
	Tasks       TaskStore
	Submissions SubmissionStore
	Users       ProgressionStore
	Engine      EvaluationEngine
	Cache       ScoreCache
}

func NewSubmissionService(
	tasks TaskStore,
	submissions SubmissionStore,
	users ProgressionStore,
	engine EvaluationEngine,
	cache ScoreCache,
) *SubmissionService {
	return &SubmissionService{
		Tasks:       tasks,
		Submissions: submissions,
		Users:       users,
		Engine:      engine,
		Cache:       cache,
	}
}

// SubmissionOutcome 提交管线对调用方暴露的结果形状
type SubmissionOutcome struct {
	SubmissionID string                 `json:"submissionId"`
	Status       model.SubmissionStatus `json:"status"`
	Score        int                    `json:"score"`
	Feedback     string                 `json:"feedback"`
	EarnedPoints int                    `json:"earnedPoints"`
	RankUp       bool                   `json:"rankUp"`
	NewRank      string                 `json:"newRank"`
	// ProgressionPending 提交已落库但积分写入失败（部分成功，见 §错误语义）
	ProgressionPending bool `json:"progressionPending,omitempty"`
}

// Submit 完整的提交评测管线：
// 任务查找 -> AI 评分（有界重试）-> 落库提交记录 -> 通过时记账积分/段位。
//
// 持久化次序是契约：提交记录先于进度更新写入。进度写入失败只记日志并
// 标记 ProgressionPending，绝不回滚已写入的提交历史。
func (s *SubmissionService) Submit(ctx context.Context, userID, taskID uint, proofContent string) (*SubmissionOutcome, error) {
	task, err := s.Tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrTaskNotFound
		}
		return nil, err
	}
	if !task.IsActive {
		return nil, util.ErrTaskNotFound
	}

	user, err := s.Users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	res, err := s.Engine.Evaluate(ctx, evaluation.TaskContext{
		Title:       task.Title,
		Description: task.Description,
		Difficulty:  string(task.Difficulty),
		Category:    task.Category,
	}, proofContent)
	if err != nil {
		// 评分不可用是整个操作的硬失败：不允许伪造分数落库
		return nil, err
	}

	status := model.SubmissionRejected
	if res.Passed {
		status = model.SubmissionApproved
	}
	feedback := evaluation.FormatFeedback(res)

	submission := &model.Submission{
		UserID:       userID,
		TaskID:       taskID,
		ProofContent: proofContent,
		Status:       status,
		Score:        res.TotalScore,
		Feedback:     feedback,
		ModelVersion: res.ModelVersion,
	}
	if err := s.Submissions.Create(submission); err != nil {
		return nil, err
	}
	monitoring.SubmissionCounter.WithLabelValues(string(status)).Inc()

	outcome := &SubmissionOutcome{
		SubmissionID: submission.ID,
		Status:       status,
		Score:        res.TotalScore,
		Feedback:     feedback,
		NewRank:      user.Rank,
	}

	if !res.Passed {
		return outcome, nil
	}

	earned := progression.EarnedPoints(task.Points, res.TotalScore)
	updated, err := s.Users.ApplyPoints(userID, earned)
	if err != nil {
		logger.Log.Error("progression update failed after submission was recorded",
			zap.Uint("userId", userID),
			zap.String("submissionId", submission.ID),
			zap.Int("earnedPoints", earned),
			zap.Error(err),
		)
		outcome.ProgressionPending = true
		return outcome, nil
	}

	prevRank := progression.RankFor(updated.Points - earned)
	outcome.EarnedPoints = earned
	outcome.NewRank = updated.Rank
	outcome.RankUp = string(prevRank) != updated.Rank
	if outcome.RankUp {
		monitoring.RankUpCounter.Inc()
	}

	if s.Cache != nil {
		s.Cache.UpdateScore(ctx, userID, updated.Points)
	}

	return outcome, nil
}

func (s *SubmissionService) ListByUser(userID uint) ([]model.Submission, error) {
	return s.Submissions.FindByUser(userID)
}
