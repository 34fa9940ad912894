// Package llm adapts a remote chat-completion service into the semantic
// evaluator used for handwritten answer sheets. One submission costs one
// remote call: the whole answer key rides along as context rather than one
// call per question.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gradeworks/evaluation-service/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

var (
	// ErrServiceUnavailable covers transport and auth failures reaching the
	// evaluation service, including an expired deadline.
	ErrServiceUnavailable = errors.New("evaluation service unavailable")

	// ErrRejected means the service answered but flagged the request as an
	// error (no choices, refusal payload).
	ErrRejected = errors.New("evaluation rejected by service")
)

// QuestionVerdict is one per-question judgement parsed from the response.
type QuestionVerdict struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
}

// Judgement is the evaluator's output. Verdicts is nil when the service
// succeeded but returned no machine-readable per-question scores; callers
// must then fall back to their own policy using Summary as the recorded text.
type Judgement struct {
	Verdicts []QuestionVerdict
	Summary  string
	Raw      string
}

// Evaluator judges extracted answer text against an answer key.
type Evaluator interface {
	EvaluateText(ctx context.Context, extractedText string, answerKey []models.AnswerKeyEntry) (*Judgement, error)
}

// Config holds the chat-completion connection settings, all supplied at
// startup and never hard-coded.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a new semantic evaluator client.
func New(cfg Config, logger *slog.Logger) *Client {
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = cfg.BaseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(apiConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

type verdictPayload struct {
	Results []QuestionVerdict `json:"results"`
	Summary string            `json:"summary"`
}

// EvaluateText sends the extracted text together with the full answer key in
// a single round trip and parses the per-question verdicts out of the reply.
func (c *Client) EvaluateText(ctx context.Context, extractedText string, answerKey []models.AnswerKeyEntry) (*Judgement, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildSystemPrompt(answerKey)},
			{Role: openai.ChatMessageRoleUser, Content: extractedText},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		c.logger.Error("semantic evaluation call failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrRejected)
	}

	raw := resp.Choices[0].Message.Content
	c.logger.Debug("semantic evaluation response", "raw", raw)

	var payload verdictPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil || len(payload.Results) == 0 {
		// The call succeeded but produced no structured scores. Hand the
		// free-text judgement back and let the caller apply its fallback.
		return &Judgement{Summary: raw, Raw: raw}, nil
	}

	return &Judgement{
		Verdicts: payload.Results,
		Summary:  payload.Summary,
		Raw:      raw,
	}, nil
}

func buildSystemPrompt(answerKey []models.AnswerKeyEntry) string {
	var sb strings.Builder
	sb.WriteString("You are an exam grader. A student's handwritten answer sheet has been ")
	sb.WriteString("transcribed by OCR; the transcription may be noisy. Judge each question ")
	sb.WriteString("against the answer key below.\n\nANSWER KEY:\n")
	for _, entry := range answerKey {
		sb.WriteString("Question " + entry.QuestionID + ": " + entry.CorrectAnswer + "\n")
	}
	sb.WriteString("\nRespond ONLY with a JSON object:\n")
	sb.WriteString(`{"results": [{"question_id": "<id>", "correct": <true/false>}], "summary": "<brief overall judgement>"}`)
	sb.WriteString("\nInclude one entry per question in the answer key.\n")
	return sb.String()
}
