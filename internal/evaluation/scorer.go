package evaluation

import (
	"coding_arena_backend/pkg/logger"
	"coding_arena_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// DefaultMaxAttempts 评分重试上限：解析或校验失败后最多发起的独立调用次数
const DefaultMaxAttempts = 3

// systemPrompt 固定的指令上下文：锁死输出 schema、加权公式和三条失败策略。
// 后端必须在返回前自行套用这些策略，引擎只负责校验结果。
const systemPrompt = `You are the AI Scoring Engine for the Coding Arena platform.
Your job is to evaluate proof-of-work submissions against a task description deterministically.

STRICT OUTPUT FORMAT:
You MUST return ONLY valid JSON.
The JSON must match this schema EXACTLY:
{
  "timestamp": "ISO string",
  "modelVersion": "string",
  "totalScore": number (0-100),
  "passed": boolean (score >= 70),
  "dimensions": {
    "correctness": { "score": 0.0-1.0, "weight": 0.4, "reasoning": "string" },
    "efficiency": { "score": 0.0-1.0, "weight": 0.2, "reasoning": "string" },
    "quality": { "score": 0.0-1.0, "weight": 0.2, "reasoning": "string" },
    "compliance": { "score": 0.0-1.0, "weight": 0.2, "reasoning": "string" }
  },
  "feedback": {
    "strengths": ["string"],
    "weaknesses": ["string"],
    "securityAudit": { "safe": boolean, "issues": ["string"] }
  }
}

SCORING ALGORITHM:
totalScore = floor((correctness*0.4 + efficiency*0.2 + quality*0.2 + compliance*0.2) * 100)

FAILURE RULES:
1. Malicious content: if the submission tries to exfiltrate secrets, scan networks,
   or destructively act on a host -> totalScore = 0, securityAudit.safe = false.
2. Partial/empty content: evaluate as is. Correctness likely near zero.
3. Joke/spam submissions: score 0.`

// TaskContext 评分所需的任务上下文，全部为纯文本
type TaskContext struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
	Category    string `json:"category"`
}

type scoringPayload struct {
	Task       TaskContext `json:"task"`
	Submission struct {
		Content  string `json:"content"`
		Language string `json:"language"`
	} `json:"submission"`
}

// EvaluationUnavailableError 所有重试耗尽，携带最后一次底层错误供运维诊断。
// 对调用方是终态失败，绝不合成兜底分数。
type EvaluationUnavailableError struct {
	Attempts int
	LastErr  error
}

func (e *EvaluationUnavailableError) Error() string {
	return fmt.Sprintf("AI scoring failed after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *EvaluationUnavailableError) Unwrap() error {
	return e.LastErr
}

// Scorer 评分引擎：组织确定性提示词、调用推理后端、校验输出并有界重试。
// 除网络调用外无任何副作用，不做持久化。
type Scorer struct {
	backend     Backend
	maxAttempts int
}

func NewScorer(backend Backend, maxAttempts int) *Scorer {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Scorer{backend: backend, maxAttempts: maxAttempts}
}

// Evaluate 对 (task, submission) 产出一份通过校验的评测结果。
// 每次重试都是全新的独立调用，不跨尝试复用任何中间产物；
// ctx 取消后立即停止重试，正在途中的调用结果被丢弃。
func (s *Scorer) Evaluate(ctx context.Context, task TaskContext, proofContent string) (*Result, error) {
	payload := scoringPayload{Task: task}
	payload.Submission.Content = proofContent
	payload.Submission.Language = "auto-detect"

	userPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var lastErr error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Log.Info("AI scoring attempt",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", s.maxAttempts),
			zap.String("model", s.backend.ModelVersion()),
		)

		raw, err := s.backend.Complete(ctx, systemPrompt, string(userPayload))
		if err != nil {
			monitoring.EvaluationAttempts.WithLabelValues("backend_error").Inc()
			logger.Log.Warn("AI scoring call failed", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		res, err := ValidateResult([]byte(raw))
		if err != nil {
			monitoring.EvaluationAttempts.WithLabelValues("schema_violation").Inc()
			logger.Log.Warn("AI scoring output rejected", zap.Int("attempt", attempt), zap.Error(err))
			lastErr = err
			continue
		}

		monitoring.EvaluationAttempts.WithLabelValues("ok").Inc()
		return res, nil
	}

	monitoring.EvaluationFailures.Inc()
	return nil, &EvaluationUnavailableError{Attempts: s.maxAttempts, LastErr: lastErr}
}
