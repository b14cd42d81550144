package graph

import (
	"fmt"
	"strconv"
	"strings"

	gographviz "github.com/awalterschulze/gographviz"
)

// ParseDOT parses a Graphviz DOT description of a session graph.
//
// Nodes declare their kind and initial value through attributes:
//
//	digraph mixtape {
//		t    [type=topic, value="a song about rain"]
//		inst [type=instrumental, value=true]
//		out  [type=song]
//		t -> out
//		inst -> out
//	}
//
// An optional pos="x,y" attribute places the node; otherwise nodes sit
// at the origin (layout is a front-end concern).
func ParseDOT(src string) (*Graph, error) {
	ast, err := gographviz.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("dot parse error: %w", err)
	}

	// Permissive collector: accepts any attribute name without the
	// strict validation gographviz.Graph performs.
	collector := newDOTCollector()
	if err := gographviz.Analyse(ast, collector); err != nil {
		return nil, fmt.Errorf("dot analyse error: %w", err)
	}

	g := New()
	for _, id := range collector.order {
		attrs := collector.nodes[id]
		kind := Kind(attrs["type"])
		if kind == "" {
			return nil, fmt.Errorf("node %q: missing required attribute \"type\"", id)
		}
		if kind != KindSong && !kind.IsParam() {
			return nil, fmt.Errorf("node %q: unknown type %q", id, kind)
		}

		n := Node{ID: id, Kind: kind, Pos: parsePos(attrs["pos"])}
		switch {
		case kind == KindSong:
			n.Data = SongState{}
		case kind == KindInstrumental:
			on, _ := strconv.ParseBool(attrs["value"])
			n.Data = ToggleParam{Value: on}
		default:
			n.Data = TextParam{Value: attrs["value"]}
		}
		if _, err := g.AddNode(n); err != nil {
			return nil, err
		}
	}

	for _, e := range collector.edges {
		if _, err := g.Connect(e.from, e.to); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func parsePos(s string) Position {
	parts := strings.SplitN(s, ",", 2)
	if len(parts) != 2 {
		return Position{}
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return Position{}
	}
	return Position{X: x, Y: y}
}

// ─── permissive DOT collector ─────────────────────────────────────────────────

type rawEdge struct {
	from, to string
}

// dotCollector implements gographviz.Interface without attribute
// validation, keeping node declaration order.
type dotCollector struct {
	name  string
	order []string
	nodes map[string]map[string]string
	edges []rawEdge
	// defaults holds graph-level node [...] attributes.
	defaults map[string]string
}

func newDOTCollector() *dotCollector {
	return &dotCollector{
		nodes:    make(map[string]map[string]string),
		defaults: make(map[string]string),
	}
}

func (c *dotCollector) SetStrict(_ bool) error { return nil }
func (c *dotCollector) SetDir(_ bool) error    { return nil }
func (c *dotCollector) SetName(n string) error { c.name = unquote(n); return nil }
func (c *dotCollector) String() string         { return c.name }

func (c *dotCollector) AddNode(_ string, name string, attrs map[string]string) error {
	id := unquote(name)
	if _, ok := c.nodes[id]; !ok {
		c.order = append(c.order, id)
		c.nodes[id] = make(map[string]string, len(c.defaults))
		for k, v := range c.defaults {
			c.nodes[id][k] = v
		}
	}
	for k, v := range attrs {
		c.nodes[id][k] = unquote(v)
	}
	return nil
}

func (c *dotCollector) AddEdge(src, dst string, _ bool, _ map[string]string) error {
	// Endpoints mentioned only in an edge statement still need a node
	// entry so lint can report the missing type attribute by name.
	_ = c.AddNode("", src, nil)
	_ = c.AddNode("", dst, nil)
	c.edges = append(c.edges, rawEdge{from: unquote(src), to: unquote(dst)})
	return nil
}

func (c *dotCollector) AddPortEdge(src, _, dst, _ string, directed bool, attrs map[string]string) error {
	return c.AddEdge(src, dst, directed, attrs)
}

func (c *dotCollector) AddAttr(_ string, field, value string) error {
	c.defaults[field] = unquote(value)
	return nil
}

func (c *dotCollector) AddSubGraph(_, _ string, _ map[string]string) error { return nil }

// unquote strips surrounding double-quotes from a DOT attribute value.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
