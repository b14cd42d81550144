package graph_test

import (
	"strings"
	"testing"

	"github.com/mixtape-hq/mixtape/pkg/graph"
	"github.com/mixtape-hq/mixtape/pkg/suno"
)

func TestAddParam_StacksBelowLastOfKind(t *testing.T) {
	g := graph.New()
	first, err := g.AddParam(graph.KindTopic)
	if err != nil {
		t.Fatalf("AddParam: %v", err)
	}
	second, err := g.AddParam(graph.KindTopic)
	if err != nil {
		t.Fatalf("AddParam: %v", err)
	}

	n1, _ := g.Node(first)
	n2, _ := g.Node(second)
	if n2.Pos.Y != n1.Pos.Y+80 {
		t.Errorf("second topic y = %v, want %v", n2.Pos.Y, n1.Pos.Y+80)
	}
}

func TestAddParam_RejectsSongKind(t *testing.T) {
	g := graph.New()
	if _, err := g.AddParam(graph.KindSong); err == nil {
		t.Error("expected error for song kind")
	}
}

func TestAddParam_Defaults(t *testing.T) {
	g := graph.New()
	textID, _ := g.AddParam(graph.KindPrompt)
	togID, _ := g.AddParam(graph.KindInstrumental)

	n, _ := g.Node(textID)
	if d, ok := n.Data.(graph.TextParam); !ok || d.Value != "" {
		t.Errorf("prompt data = %#v, want empty TextParam", n.Data)
	}
	n, _ = g.Node(togID)
	if d, ok := n.Data.(graph.ToggleParam); !ok || d.Value {
		t.Errorf("instrumental data = %#v, want false ToggleParam", n.Data)
	}
}

func TestAddSong_PlacesRightOfExisting(t *testing.T) {
	g := graph.New()
	first := g.AddSong()
	second := g.AddSong()

	n1, _ := g.Node(first)
	n2, _ := g.Node(second)
	if n2.Pos.X != n1.Pos.X+320 {
		t.Errorf("second song x = %v, want %v", n2.Pos.X, n1.Pos.X+320)
	}
	if n2.Pos.Y != n1.Pos.Y {
		t.Errorf("second song y = %v, want %v", n2.Pos.Y, n1.Pos.Y)
	}
}

func TestConnect_DerivedIDAndIdempotence(t *testing.T) {
	g := graph.New()
	p, _ := g.AddParam(graph.KindTopic)
	s := g.AddSong()

	id1, err := g.Connect(p, s)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if id1 != p+"-"+s {
		t.Errorf("edge id = %q, want %q", id1, p+"-"+s)
	}
	id2, err := g.Connect(p, s)
	if err != nil {
		t.Fatalf("Connect twice: %v", err)
	}
	if id2 != id1 {
		t.Errorf("second connect id = %q, want %q", id2, id1)
	}
	if len(g.Edges()) != 1 {
		t.Errorf("edges = %d, want 1", len(g.Edges()))
	}
}

func TestConnect_UnknownEndpoint(t *testing.T) {
	g := graph.New()
	s := g.AddSong()
	if _, err := g.Connect("missing", s); err == nil {
		t.Error("expected error for unknown source")
	}
	if _, err := g.Connect(s, "missing"); err == nil {
		t.Error("expected error for unknown target")
	}
}

func TestSetSong_GuardsRemovedAndWrongKind(t *testing.T) {
	g := graph.New()
	p, _ := g.AddParam(graph.KindTopic)

	if err := g.SetSong("gone", graph.SongState{}); err == nil {
		t.Error("expected error for unknown node")
	}
	if err := g.SetSong(p, graph.SongState{}); err == nil {
		t.Error("expected error for non-song node")
	}
}

func TestSetSong_WholeValueReplace(t *testing.T) {
	g := graph.New()
	s := g.AddSong()
	if err := g.SetSong(s, graph.SongState{Status: suno.StatusSubmitted, Error: "old"}); err != nil {
		t.Fatalf("SetSong: %v", err)
	}
	if err := g.SetSong(s, graph.SongState{ClipID: "c1", Status: suno.StatusComplete}); err != nil {
		t.Fatalf("SetSong: %v", err)
	}
	state, _ := g.Song(s)
	if state.Error != "" {
		t.Errorf("error = %q, want cleared by replacement", state.Error)
	}
	if state.ClipID != "c1" || state.Status != suno.StatusComplete {
		t.Errorf("state = %+v", state)
	}
}

func TestUpstreamParams_OrderAndDedup(t *testing.T) {
	g := graph.New()
	topic, _ := g.AddParam(graph.KindTopic)
	tags, _ := g.AddParam(graph.KindTags)
	inst, _ := g.AddParam(graph.KindInstrumental)
	song := g.AddSong()
	other := g.AddSong()

	g.SetText(topic, "rain")
	g.SetText(tags, "lofi")
	g.SetToggle(inst, true)

	// Edge insertion order: tags, topic, inst. A duplicate connect of
	// tags and an unrelated edge elsewhere must not show up.
	g.Connect(tags, song)
	g.Connect(topic, song)
	g.Connect(inst, song)
	g.Connect(tags, song)
	g.Connect(topic, other)

	params := g.UpstreamParams(song)
	if len(params) != 3 {
		t.Fatalf("got %d params, want 3", len(params))
	}
	wantKinds := []graph.Kind{graph.KindTags, graph.KindTopic, graph.KindInstrumental}
	for i, k := range wantKinds {
		if params[i].Kind != k {
			t.Errorf("params[%d].Kind = %q, want %q", i, params[i].Kind, k)
		}
	}
	if params[0].Text != "lofi" || params[1].Text != "rain" || !params[2].On {
		t.Errorf("params values = %+v", params)
	}
}

func TestUpstreamParams_IgnoresSongSources(t *testing.T) {
	g := graph.New()
	s1 := g.AddSong()
	s2 := g.AddSong()
	g.Connect(s1, s2)

	if params := g.UpstreamParams(s2); len(params) != 0 {
		t.Errorf("params = %+v, want none from a song source", params)
	}
}

func TestNewSession_Seed(t *testing.T) {
	g := graph.NewSession()
	var topics, tags, songs int
	for _, n := range g.Nodes() {
		switch n.Kind {
		case graph.KindTopic:
			topics++
		case graph.KindTags:
			tags++
		case graph.KindSong:
			songs++
		}
	}
	if topics != 1 || tags != 1 || songs != 1 {
		t.Errorf("seed graph = %d topics, %d tags, %d songs; want 1 each", topics, tags, songs)
	}
}

func TestLint(t *testing.T) {
	g := graph.New()
	if err := graph.LintErr(g); err == nil || !strings.Contains(err.Error(), "no song node") {
		t.Errorf("LintErr = %v, want no-song-node finding", err)
	}

	topic, _ := g.AddParam(graph.KindTopic)
	song := g.AddSong()
	if err := graph.LintErr(g); err == nil {
		t.Error("expected finding for song without incoming edges")
	}

	g.Connect(topic, song)
	if err := graph.LintErr(g); err != nil {
		t.Errorf("LintErr = %v, want nil", err)
	}
}
