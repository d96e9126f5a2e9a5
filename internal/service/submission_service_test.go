package service

import (
	"coding_arena_backend/internal/evaluation"
	"coding_arena_backend/internal/model"
	"coding_arena_backend/internal/progression"
	"coding_arena_backend/internal/util"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 内存存储实现，与 gorm 仓库遵守相同的接口契约

type memTaskStore struct {
	tasks map[uint]*model.Task
}

func (m *memTaskStore) FindByID(id uint) (*model.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return task, nil
}

type memSubmissionStore struct {
	mu          sync.Mutex
	submissions []*model.Submission
	failCreate  bool
}

func (m *memSubmissionStore) Create(sub *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return errors.New("insert failed")
	}
	sub.ID = fmt.Sprintf("sub-%d", len(m.submissions)+1)
	m.submissions = append(m.submissions, sub)
	return nil
}

func (m *memSubmissionStore) FindByUser(userID uint) ([]model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Submission
	for _, s := range m.submissions {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

type memUserStore struct {
	mu        sync.Mutex
	users     map[uint]*model.User
	failApply bool
}

func (m *memUserStore) FindByID(id uint) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

// ApplyPoints 在互斥锁下读改写，语义上等同生产实现的事务行锁
func (m *memUserStore) ApplyPoints(userID uint, earned int) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failApply {
		return nil, errors.New("update failed")
	}
	user, ok := m.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	user.Points += earned
	user.Rank = string(progression.RankFor(user.Points))
	copied := *user
	return &copied, nil
}

type stubEngine struct {
	res   *evaluation.Result
	err   error
	calls int
}

func (e *stubEngine) Evaluate(ctx context.Context, task evaluation.TaskContext, proofContent string) (*evaluation.Result, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	copied := *e.res
	return &copied, nil
}

func passingResult(score int) *evaluation.Result {
	return &evaluation.Result{
		Timestamp:    "2025-01-15T10:00:00Z",
		ModelVersion: "arena-scorer-v1",
		TotalScore:   score,
		Passed:       score >= evaluation.PassThreshold,
		Dimensions: evaluation.Dimensions{
			Correctness: evaluation.Dimension{Score: float64(score) / 100, Weight: 0.4},
			Efficiency:  evaluation.Dimension{Score: float64(score) / 100, Weight: 0.2},
			Quality:     evaluation.Dimension{Score: float64(score) / 100, Weight: 0.2},
			Compliance:  evaluation.Dimension{Score: float64(score) / 100, Weight: 0.2},
		},
		Feedback: evaluation.Feedback{
			Strengths:     []string{"works"},
			Weaknesses:    []string{"slow"},
			SecurityAudit: evaluation.SecurityAudit{Safe: true},
		},
	}
}

func newPipeline(score int, userPoints int) (*SubmissionService, *memSubmissionStore, *memUserStore, *stubEngine) {
	tasks := &memTaskStore{tasks: map[uint]*model.Task{
		1: {BaseModel: model.BaseModel{ID: 1}, Title: "Build a classifier", Points: 400, Difficulty: model.Medium, IsActive: true},
	}}
	subs := &memSubmissionStore{}
	users := &memUserStore{users: map[uint]*model.User{
		7: {BaseModel: model.BaseModel{ID: 7}, Name: "dev", Points: userPoints, Rank: string(progression.RankFor(userPoints))},
	}}
	engine := &stubEngine{res: passingResult(score)}

	return NewSubmissionService(tasks, subs, users, engine, nil), subs, users, engine
}

func TestSubmitPassingSubmission(t *testing.T) {
	svc, subs, users, _ := newPipeline(85, 900)

	out, err := svc.Submit(context.Background(), 7, 1, "https://github.com/dev/proof")
	require.NoError(t, err)

	assert.Equal(t, model.SubmissionApproved, out.Status)
	assert.Equal(t, 85, out.Score)
	// floor(400 * 85/100) = 340
	assert.Equal(t, 340, out.EarnedPoints)
	assert.Equal(t, "Silver", out.NewRank)
	assert.True(t, out.RankUp)
	assert.False(t, out.ProgressionPending)
	assert.Contains(t, out.Feedback, "**Total Score: 85/100**")

	require.Len(t, subs.submissions, 1)
	saved := subs.submissions[0]
	assert.Equal(t, model.SubmissionApproved, saved.Status)
	assert.Equal(t, 85, saved.Score)
	assert.Equal(t, "arena-scorer-v1", saved.ModelVersion)

	user, _ := users.FindByID(7)
	assert.Equal(t, 1240, user.Points)
	assert.Equal(t, "Silver", user.Rank)
}

func TestSubmitFailingSubmissionLeavesProgressionUntouched(t *testing.T) {
	svc, subs, users, _ := newPipeline(40, 900)

	out, err := svc.Submit(context.Background(), 7, 1, "half finished")
	require.NoError(t, err)

	assert.Equal(t, model.SubmissionRejected, out.Status)
	assert.Equal(t, 0, out.EarnedPoints)
	assert.False(t, out.RankUp)
	assert.Equal(t, "Bronze", out.NewRank)

	require.Len(t, subs.submissions, 1)
	assert.Equal(t, model.SubmissionRejected, subs.submissions[0].Status)

	user, _ := users.FindByID(7)
	assert.Equal(t, 900, user.Points, "failing result must not change points")
}

func TestSubmitUnknownTask(t *testing.T) {
	svc, subs, _, engine := newPipeline(85, 0)

	_, err := svc.Submit(context.Background(), 7, 99, "proof")
	require.ErrorIs(t, err, util.ErrTaskNotFound)
	assert.Zero(t, engine.calls, "no evaluation for an unresolvable task")
	assert.Empty(t, subs.submissions)
}

func TestSubmitInactiveTask(t *testing.T) {
	svc, _, _, engine := newPipeline(85, 0)
	svc.Tasks.(*memTaskStore).tasks[1].IsActive = false

	_, err := svc.Submit(context.Background(), 7, 1, "proof")
	require.ErrorIs(t, err, util.ErrTaskNotFound)
	assert.Zero(t, engine.calls)
}

func TestSubmitEvaluationUnavailable(t *testing.T) {
	svc, subs, users, engine := newPipeline(85, 900)
	engine.err = &evaluation.EvaluationUnavailableError{Attempts: 3, LastErr: errors.New("bad json")}

	_, err := svc.Submit(context.Background(), 7, 1, "proof")

	var unavailable *evaluation.EvaluationUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Empty(t, subs.submissions, "no submission may be created with a fabricated score")

	user, _ := users.FindByID(7)
	assert.Equal(t, 900, user.Points)
}

func TestSubmitProgressionFailureIsPartialSuccess(t *testing.T) {
	svc, subs, users, _ := newPipeline(85, 900)
	users.failApply = true

	out, err := svc.Submit(context.Background(), 7, 1, "proof")
	require.NoError(t, err, "progression failure never rolls back the submission")

	assert.True(t, out.ProgressionPending)
	assert.Equal(t, model.SubmissionApproved, out.Status)
	require.Len(t, subs.submissions, 1, "submission history survives the failed points write")
}

func TestSubmitConcurrentNoLostUpdate(t *testing.T) {
	// 两笔并发通过的提交各得 100 分：900 起步必须落在 1100，段位 Silver
	tasks := &memTaskStore{tasks: map[uint]*model.Task{
		1: {BaseModel: model.BaseModel{ID: 1}, Title: "t", Points: 100, IsActive: true},
	}}
	subs := &memSubmissionStore{}
	users := &memUserStore{users: map[uint]*model.User{
		7: {BaseModel: model.BaseModel{ID: 7}, Points: 900, Rank: "Bronze"},
	}}
	svc := NewSubmissionService(tasks, subs, users, &stubEngine{res: passingResult(100)}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(context.Background(), 7, 1, "proof")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	user, _ := users.FindByID(7)
	assert.Equal(t, 1100, user.Points, "both earned contributions must be reflected")
	assert.Equal(t, "Silver", user.Rank)
	assert.Len(t, subs.submissions, 2)
}
