package evaluation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend 按预置响应序列应答，记录调用次数
type fakeBackend struct {
	responses []string
	errs      []error
	calls     int
}

func (f *fakeBackend) Complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("fake backend exhausted")
}

func (f *fakeBackend) ModelVersion() string { return "fake-model" }

func TestScorerRetryExhaustion(t *testing.T) {
	// 始终返回坏 JSON：恰好 3 次尝试后 EvaluationUnavailable，绝不合成分数
	backend := &fakeBackend{responses: []string{"{bad", "{bad", "{bad", "{bad"}}
	scorer := NewScorer(backend, DefaultMaxAttempts)

	res, err := scorer.Evaluate(context.Background(), TaskContext{Title: "t"}, "proof")
	require.Nil(t, res)

	var unavailable *EvaluationUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, 3, unavailable.Attempts)
	assert.Equal(t, 3, backend.calls)
	assert.NotNil(t, unavailable.LastErr)
}

func TestScorerRecoversOnRetry(t *testing.T) {
	valid := string(validRawResult(t, nil))
	backend := &fakeBackend{responses: []string{"not json at all", valid}}
	scorer := NewScorer(backend, DefaultMaxAttempts)

	res, err := scorer.Evaluate(context.Background(), TaskContext{Title: "t"}, "proof")
	require.NoError(t, err)
	assert.Equal(t, 82, res.TotalScore)
	assert.Equal(t, 2, backend.calls)
}

func TestScorerRetriesOnSchemaViolation(t *testing.T) {
	inconsistent := string(validRawResult(t, func(m map[string]interface{}) {
		m["totalScore"] = 95 // 与维度得分矛盾
	}))
	valid := string(validRawResult(t, nil))

	backend := &fakeBackend{responses: []string{inconsistent, valid}}
	scorer := NewScorer(backend, DefaultMaxAttempts)

	res, err := scorer.Evaluate(context.Background(), TaskContext{Title: "t"}, "proof")
	require.NoError(t, err)
	assert.Equal(t, 82, res.TotalScore)
	assert.Equal(t, 2, backend.calls)
}

func TestScorerStopsWhenContextCancelled(t *testing.T) {
	backend := &fakeBackend{responses: []string{"{bad", "{bad", "{bad"}}
	scorer := NewScorer(backend, DefaultMaxAttempts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := scorer.Evaluate(ctx, TaskContext{Title: "t"}, "proof")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, backend.calls)
}

func TestScorerBackendErrorsConsumeAttempts(t *testing.T) {
	backend := &fakeBackend{errs: []error{
		errors.New("connection refused"),
		errors.New("connection refused"),
		errors.New("connection refused"),
	}}
	scorer := NewScorer(backend, DefaultMaxAttempts)

	_, err := scorer.Evaluate(context.Background(), TaskContext{Title: "t"}, "proof")

	var unavailable *EvaluationUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Contains(t, unavailable.LastErr.Error(), "connection refused")
	assert.Equal(t, 3, backend.calls)
}
