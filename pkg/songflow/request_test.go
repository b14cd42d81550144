package songflow_test

import (
	"errors"
	"testing"

	"github.com/mixtape-hq/mixtape/pkg/graph"
	"github.com/mixtape-hq/mixtape/pkg/songflow"
)

func text(kind graph.Kind, v string) graph.Param {
	return graph.Param{Kind: kind, Text: v}
}

func TestBuildRequest_TopicOnly(t *testing.T) {
	req, err := songflow.BuildRequest([]graph.Param{text(graph.KindTopic, "a song about rain")})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.Topic != "a song about rain" {
		t.Errorf("topic = %q", req.Topic)
	}
	if req.MakeInstrumental {
		t.Error("make_instrumental should default to false")
	}
}

func TestBuildRequest_TrimsValues(t *testing.T) {
	req, err := songflow.BuildRequest([]graph.Param{
		text(graph.KindTopic, "  rain  "),
		text(graph.KindTags, "\tlofi\n"),
	})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.Topic != "rain" || req.Tags != "lofi" {
		t.Errorf("req = %+v, want trimmed values", req)
	}
}

func TestBuildRequest_NoTopicOrPromptFails(t *testing.T) {
	tests := []struct {
		name   string
		params []graph.Param
	}{
		{"empty", nil},
		{"tags_only", []graph.Param{text(graph.KindTags, "lofi")}},
		{"whitespace_topic", []graph.Param{text(graph.KindTopic, "   ")}},
		{"instrumental_only", []graph.Param{{Kind: graph.KindInstrumental, On: true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := songflow.BuildRequest(tt.params)
			var vErr *songflow.ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("err = %v, want *ValidationError", err)
			}
		})
	}
}

func TestBuildRequest_PromptAloneIsValid(t *testing.T) {
	req, err := songflow.BuildRequest([]graph.Param{text(graph.KindPrompt, "[Verse]\nhello")})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.Prompt != "[Verse]\nhello" {
		t.Errorf("prompt = %q", req.Prompt)
	}
}

func TestBuildRequest_LastMatchWins(t *testing.T) {
	req, err := songflow.BuildRequest([]graph.Param{
		text(graph.KindTopic, "first"),
		text(graph.KindAIPrompt, "refined"),
		text(graph.KindTags, "rock"),
		text(graph.KindTags, "jazz"),
	})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	// topic and aiPrompt write the same field; the scan does not
	// short-circuit, so the later node wins.
	if req.Topic != "refined" {
		t.Errorf("topic = %q, want %q", req.Topic, "refined")
	}
	if req.Tags != "jazz" {
		t.Errorf("tags = %q, want %q", req.Tags, "jazz")
	}
}

func TestBuildRequest_BlankLaterValueDoesNotErase(t *testing.T) {
	req, err := songflow.BuildRequest([]graph.Param{
		text(graph.KindTopic, "rain"),
		text(graph.KindTopic, "   "),
	})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if req.Topic != "rain" {
		t.Errorf("topic = %q, want %q", req.Topic, "rain")
	}
}

func TestBuildRequest_InstrumentalAnyTrue(t *testing.T) {
	req, err := songflow.BuildRequest([]graph.Param{
		text(graph.KindTopic, "rain"),
		{Kind: graph.KindInstrumental, On: true},
		{Kind: graph.KindInstrumental, On: false},
	})
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if !req.MakeInstrumental {
		t.Error("make_instrumental = false, want true when any toggle is on")
	}
}
