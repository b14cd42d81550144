package graph_test

import (
	"testing"

	"github.com/mixtape-hq/mixtape/pkg/graph"
)

func TestParseDOT_Minimal(t *testing.T) {
	src := `digraph mixtape {
		t   [type=topic, value="a song about rain"]
		out [type=song]
		t -> out
	}`
	g, err := graph.ParseDOT(src)
	if err != nil {
		t.Fatalf("ParseDOT: %v", err)
	}
	if len(g.Nodes()) != 2 {
		t.Errorf("nodes = %d, want 2", len(g.Nodes()))
	}
	if len(g.Edges()) != 1 {
		t.Errorf("edges = %d, want 1", len(g.Edges()))
	}
	n, ok := g.Node("t")
	if !ok {
		t.Fatal("node t not found")
	}
	if d, ok := n.Data.(graph.TextParam); !ok || d.Value != "a song about rain" {
		t.Errorf("t data = %#v, want value %q", n.Data, "a song about rain")
	}
}

func TestParseDOT_InstrumentalAndPos(t *testing.T) {
	src := `digraph {
		inst [type=instrumental, value=true, pos="10,20"]
		out  [type=song]
		inst -> out
	}`
	g, err := graph.ParseDOT(src)
	if err != nil {
		t.Fatalf("ParseDOT: %v", err)
	}
	n, _ := g.Node("inst")
	if d, ok := n.Data.(graph.ToggleParam); !ok || !d.Value {
		t.Errorf("inst data = %#v, want true ToggleParam", n.Data)
	}
	if n.Pos.X != 10 || n.Pos.Y != 20 {
		t.Errorf("pos = %+v, want {10 20}", n.Pos)
	}
}

func TestParseDOT_MissingType(t *testing.T) {
	src := `digraph {
		a
		out [type=song]
		a -> out
	}`
	if _, err := graph.ParseDOT(src); err == nil {
		t.Error("expected error for missing type attribute")
	}
}

func TestParseDOT_UnknownType(t *testing.T) {
	src := `digraph {
		a [type=banjo]
	}`
	if _, err := graph.ParseDOT(src); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestParseDOT_EdgeOrderPreserved(t *testing.T) {
	src := `digraph {
		a   [type=tags, value="lofi"]
		b   [type=topic, value="rain"]
		out [type=song]
		b -> out
		a -> out
	}`
	g, err := graph.ParseDOT(src)
	if err != nil {
		t.Fatalf("ParseDOT: %v", err)
	}
	params := g.UpstreamParams("out")
	if len(params) != 2 {
		t.Fatalf("got %d params, want 2", len(params))
	}
	if params[0].Kind != graph.KindTopic || params[1].Kind != graph.KindTags {
		t.Errorf("param order = %q,%q; want topic,tags", params[0].Kind, params[1].Kind)
	}
}
