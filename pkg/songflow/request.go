// Package songflow is the job orchestration layer: it derives generation
// requests from the session graph, drives the submit/poll lifecycle of
// song nodes, and runs the stem-separation sub-workflow.
package songflow

import (
	"strings"

	"github.com/mixtape-hq/mixtape/pkg/graph"
	"github.com/mixtape-hq/mixtape/pkg/suno"
)

// ValidationError means the request could not be built from the graph.
// It never reaches the network and is surfaced inline at the triggering
// node without touching its persisted state.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// BuildRequest derives a generation request from the upstream parameters
// of a song node. Values are trimmed; blank values contribute nothing.
// When several nodes write the same field the last one in iteration
// order wins; topic and aiPrompt both write the topic field.
func BuildRequest(params []graph.Param) (suno.GenerateRequest, error) {
	var req suno.GenerateRequest
	for _, p := range params {
		switch p.Kind {
		case graph.KindTopic, graph.KindAIPrompt:
			if v := strings.TrimSpace(p.Text); v != "" {
				req.Topic = v
			}
		case graph.KindTags:
			if v := strings.TrimSpace(p.Text); v != "" {
				req.Tags = v
			}
		case graph.KindPrompt:
			if v := strings.TrimSpace(p.Text); v != "" {
				req.Prompt = v
			}
		case graph.KindInstrumental:
			if p.On {
				req.MakeInstrumental = true
			}
		}
	}
	if req.Topic == "" && req.Prompt == "" {
		return suno.GenerateRequest{}, &ValidationError{
			Reason: "connect a topic or custom lyrics node and enter a value",
		}
	}
	return req, nil
}
