package evaluation

import (
	"bytes"
	"coding_arena_backend/internal/config"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Backend 推理后端：接收系统指令和任务+提交载荷，返回期望为 JSON 的原始文本。
// 除了"最终返回或报错"之外不对延迟做任何假设，超时由调用方通过 ctx 控制。
type Backend interface {
	Complete(ctx context.Context, systemPrompt, userPayload string) (string, error)
	ModelVersion() string
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIBackend 调用 OpenAI 兼容的 chat/completions 接口。
// temperature 固定为 0（后端最确定性的设置），并请求 JSON 格式响应。
type OpenAIBackend struct {
	cfg    config.AIConfig
	client *http.Client
}

func NewOpenAIBackend(cfg config.AIConfig) *OpenAIBackend {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &OpenAIBackend{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (b *OpenAIBackend) ModelVersion() string {
	return b.cfg.Model
}

func (b *OpenAIBackend) Complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	reqBody := chatCompletionRequest{
		Model: b.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPayload},
		},
		Temperature: 0,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}
	if result.Error != nil {
		return "", fmt.Errorf("AI API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}

	return result.Choices[0].Message.Content, nil
}
