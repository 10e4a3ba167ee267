package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github/itish2003/medassist/logger"

	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

// ErrQuotaExceeded marks a completion refused for rate or quota limits.
var ErrQuotaExceeded = errors.New("completion quota exceeded")

// QuotaExceededMessage is shown instead of an answer when the provider
// reports ErrQuotaExceeded.
const QuotaExceededMessage = "⚠️ API quota exceeded. Please wait or use another key."

// Completer sends one user message and returns the model's reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OpenAICompleter uses the chat completions API. The client should be built
// with retries disabled: every request gets exactly one attempt.
type OpenAICompleter struct {
	client openai.Client
	model  string
}

func NewOpenAICompleter(client openai.Client, model string) *OpenAICompleter {
	return &OpenAICompleter{client: client, model: model}
}

func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusTooManyRequests {
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// GeminiCompleter uses generateContent on the Gemini API.
type GeminiCompleter struct {
	client *genai.Client
	model  string
}

func NewGeminiCompleter(client *genai.Client, model string) *GeminiCompleter {
	return &GeminiCompleter{client: client, model: model}
}

func (c *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		if geminiQuotaError(err) {
			return "", fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return "", err
	}
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var responseText strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		if p.Text != "" {
			responseText.WriteString(p.Text)
		}
	}
	return responseText.String(), nil
}

func geminiQuotaError(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == http.StatusTooManyRequests
	}
	return false
}

// AnswerService turns retrieved context and a question into the text shown
// to the user. Failures become warning strings, never errors.
type AnswerService struct {
	completer Completer
}

func NewAnswerService(completer Completer) *AnswerService {
	return &AnswerService{completer: completer}
}

// Answer makes one completion attempt and returns the reply unmodified.
func (s *AnswerService) Answer(ctx context.Context, labelContext, question string) string {
	answer, err := s.completer.Complete(ctx, BuildPrompt(labelContext, question))
	switch {
	case errors.Is(err, ErrQuotaExceeded):
		logger.Warnw("completion quota exceeded", "error", err)
		return QuotaExceededMessage
	case err != nil:
		logger.Error("completion failed", err)
		return "⚠️ Error: " + err.Error()
	}
	return answer
}
