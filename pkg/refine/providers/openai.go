// Package providers registers prompt-refinement provider adapters.
// Import this package with a blank identifier to activate all providers:
//
//	import _ "github.com/mixtape-hq/mixtape/pkg/refine/providers"
package providers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mixtape-hq/mixtape/pkg/refine"
)

func init() {
	refine.RegisterProvider("openai", func() (refine.Refiner, error) {
		return newOpenAIRefiner()
	})
}

type openaiRefiner struct {
	sdk *openai.Client
}

func newOpenAIRefiner() (*openaiRefiner, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, fmt.Errorf("openai: OPENAI_API_KEY environment variable not set")
	}
	return &openaiRefiner{sdk: openai.NewClient(key)}, nil
}

// Refine asks gpt-4o-mini for a polished description, retrying
// transient failures.
func (r *openaiRefiner) Refine(ctx context.Context, prompt string) (string, error) {
	p := strings.TrimSpace(prompt)
	if p == "" {
		p = refine.DefaultPrompt
	}

	var out string
	err := refine.WithRetry(ctx, 3, func() error {
		resp, err := r.sdk.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     openai.GPT4oMini,
			MaxTokens: refine.MaxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: refine.SystemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: p},
			},
		})
		if err != nil {
			return mapOpenAIError(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("openai: no response")
		}
		out = strings.TrimSpace(resp.Choices[0].Message.Content)
		if out == "" {
			return errors.New("openai: empty response")
		}
		return nil
	})
	return out, err
}

func mapOpenAIError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		base := refine.RefineError{
			Code:    apiErr.HTTPStatusCode,
			Message: apiErr.Message,
			Cause:   err,
		}
		switch apiErr.HTTPStatusCode {
		case 429:
			return &refine.RateLimitError{RefineError: base}
		case 401, 403:
			return &refine.AuthError{RefineError: base}
		case 500, 502, 503:
			return &refine.ServerError{RefineError: base}
		default:
			return &base
		}
	}
	return fmt.Errorf("openai: %w", err)
}
