package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mixtape-hq/mixtape/pkg/refine"
)

const anthropicModel = "claude-3-5-haiku-latest"

func init() {
	refine.RegisterProvider("anthropic", func() (refine.Refiner, error) {
		return newAnthropicRefiner()
	})
}

type anthropicRefiner struct {
	sdk anthropicsdk.Client
}

func newAnthropicRefiner() (*anthropicRefiner, error) {
	sdk := anthropicsdk.NewClient(option.WithAPIKey("")) // reads ANTHROPIC_API_KEY automatically
	return &anthropicRefiner{sdk: sdk}, nil
}

// Refine asks a small Claude model for a polished description, retrying
// transient failures.
func (r *anthropicRefiner) Refine(ctx context.Context, prompt string) (string, error) {
	p := strings.TrimSpace(prompt)
	if p == "" {
		p = refine.DefaultPrompt
	}

	var out string
	err := refine.WithRetry(ctx, 3, func() error {
		msg, err := r.sdk.Messages.New(ctx, anthropicsdk.MessageNewParams{
			Model:     anthropicsdk.Model(anthropicModel),
			MaxTokens: refine.MaxTokens,
			System:    []anthropicsdk.TextBlockParam{{Text: refine.SystemPrompt}},
			Messages: []anthropicsdk.MessageParam{
				anthropicsdk.NewUserMessage(anthropicsdk.NewTextBlock(p)),
			},
		})
		if err != nil {
			return mapAnthropicError(err)
		}
		var sb strings.Builder
		for _, b := range msg.Content {
			if b.Type == "text" {
				sb.WriteString(b.Text)
			}
		}
		out = strings.TrimSpace(sb.String())
		if out == "" {
			return errors.New("anthropic: empty response")
		}
		return nil
	})
	return out, err
}

func mapAnthropicError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *anthropicsdk.Error
	if errors.As(err, &apiErr) {
		base := refine.RefineError{Code: apiErr.StatusCode, Message: apiErr.Error(), Cause: err}
		switch apiErr.StatusCode {
		case 429:
			return &refine.RateLimitError{RefineError: base}
		case 401, 403:
			return &refine.AuthError{RefineError: base}
		case 500, 502, 503, 529:
			return &refine.ServerError{RefineError: base}
		}
	}
	return fmt.Errorf("anthropic: %w", err)
}
