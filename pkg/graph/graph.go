package graph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Stacking offsets applied when nodes are added without an explicit
// position: parameter nodes stack downward, song nodes march rightward.
const (
	paramStackOffset = 80
	songColumnOffset = 320
	defaultSongY     = 280
)

// Graph is the mutable session graph. All methods are safe for
// concurrent use; mutations replace node payloads wholesale, so readers
// never observe a half-written update.
type Graph struct {
	mu    sync.RWMutex
	nodes []*Node // insertion order
	byID  map[string]*Node
	edges []*Edge // insertion order
	eIDs  map[string]bool
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		byID: make(map[string]*Node),
		eIDs: make(map[string]bool),
	}
}

// NewSession returns a graph pre-seeded the way a fresh session starts:
// one topic node, one tags node and one song node.
func NewSession() *Graph {
	g := New()
	g.AddParam(KindTopic)
	g.AddParam(KindTags)
	g.AddSong()
	return g
}

func newID(kind Kind) string {
	return fmt.Sprintf("%s-%s", kind, uuid.NewString()[:8])
}

// AddParam creates a parameter node of the given kind with its zero
// value, stacked below the last node of the same kind. Returns the new
// node id.
func (g *Graph) AddParam(kind Kind) (string, error) {
	if !kind.IsParam() {
		return "", fmt.Errorf("graph: %q is not a parameter kind", kind)
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	pos := Position{}
	for _, n := range g.nodes {
		if n.Kind == kind {
			pos = Position{X: n.Pos.X, Y: n.Pos.Y + paramStackOffset}
		}
	}

	var data NodeData
	if kind == KindInstrumental {
		data = ToggleParam{}
	} else {
		data = TextParam{}
	}
	n := &Node{ID: newID(kind), Kind: kind, Pos: pos, Data: data}
	g.insert(n)
	return n.ID, nil
}

// AddSong creates an empty song node to the right of existing song
// nodes and returns its id.
func (g *Graph) AddSong() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	maxX := float64(0)
	y := float64(defaultSongY)
	first := true
	for _, n := range g.nodes {
		if n.Kind != KindSong {
			continue
		}
		if first {
			y = n.Pos.Y
			first = false
		}
		if n.Pos.X > maxX {
			maxX = n.Pos.X
		}
	}
	pos := Position{X: 0, Y: y}
	if !first {
		pos.X = maxX + songColumnOffset
	}
	return g.addSongLocked(pos)
}

// AddSongBeside creates an empty song node one column to the right of
// the given node. The recreate workflow uses this so a new result lands
// next to the node it was re-run from.
func (g *Graph) AddSongBeside(id string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.byID[id]
	if !ok {
		return "", fmt.Errorf("graph: node %q not found", id)
	}
	return g.addSongLocked(Position{X: n.Pos.X + songColumnOffset, Y: n.Pos.Y}), nil
}

func (g *Graph) addSongLocked(pos Position) string {
	n := &Node{ID: newID(KindSong), Kind: KindSong, Pos: pos, Data: SongState{}}
	g.insert(n)
	return n.ID
}

// AddNode inserts a caller-built node, keeping its id if set. Used by
// the DOT loader; panics are avoided in favour of explicit errors.
func (g *Graph) AddNode(n Node) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n.ID == "" {
		n.ID = newID(n.Kind)
	}
	if _, exists := g.byID[n.ID]; exists {
		return "", fmt.Errorf("graph: duplicate node id %q", n.ID)
	}
	if n.Data == nil {
		switch {
		case n.Kind == KindSong:
			n.Data = SongState{}
		case n.Kind == KindInstrumental:
			n.Data = ToggleParam{}
		default:
			n.Data = TextParam{}
		}
	}
	node := n
	g.insert(&node)
	return node.ID, nil
}

func (g *Graph) insert(n *Node) {
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
}

// Connect adds a directed edge. Kind compatibility is deliberately not
// checked (any node may connect to any other) but both endpoints must
// exist. Edge ids are derived from the endpoints, so reconnecting the
// same pair is a no-op returning the existing id.
func (g *Graph) Connect(source, target string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.byID[source]; !ok {
		return "", fmt.Errorf("graph: source node %q not found", source)
	}
	if _, ok := g.byID[target]; !ok {
		return "", fmt.Errorf("graph: target node %q not found", target)
	}
	id := source + "-" + target
	if g.eIDs[id] {
		return id, nil
	}
	g.edges = append(g.edges, &Edge{ID: id, Source: source, Target: target})
	g.eIDs[id] = true
	return id, nil
}

// SetText replaces the value of a text parameter node.
func (g *Graph) SetText(id, value string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.byID[id]
	if !ok {
		return fmt.Errorf("graph: node %q not found", id)
	}
	if !n.Kind.IsText() {
		return fmt.Errorf("graph: node %q (%s) does not hold text", id, n.Kind)
	}
	n.Data = TextParam{Value: value}
	return nil
}

// SetToggle replaces the value of an instrumental node.
func (g *Graph) SetToggle(id string, value bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.byID[id]
	if !ok {
		return fmt.Errorf("graph: node %q not found", id)
	}
	if n.Kind != KindInstrumental {
		return fmt.Errorf("graph: node %q (%s) is not a toggle", id, n.Kind)
	}
	n.Data = ToggleParam{Value: value}
	return nil
}

// SetSong replaces a song node's state wholesale. Errors if the node is
// gone, which guards late poll results against removed nodes.
func (g *Graph) SetSong(id string, state SongState) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.byID[id]
	if !ok {
		return fmt.Errorf("graph: node %q not found", id)
	}
	if n.Kind != KindSong {
		return fmt.Errorf("graph: node %q (%s) is not a song node", id, n.Kind)
	}
	n.Data = state
	return nil
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Song returns the state of a song node.
func (g *Graph) Song(id string) (SongState, bool) {
	n, ok := g.Node(id)
	if !ok || n.Kind != KindSong {
		return SongState{}, false
	}
	state, _ := n.Data.(SongState)
	return state, true
}

// Nodes returns a snapshot of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	return out
}

// Edges returns a snapshot of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, *e)
	}
	return out
}

// IncomingEdges returns all edges arriving at nodeID, in insertion order.
func (g *Graph) IncomingEdges(nodeID string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Edge
	for _, e := range g.edges {
		if e.Target == nodeID {
			out = append(out, *e)
		}
	}
	return out
}

// SongNodes returns the ids of all song nodes in insertion order.
func (g *Graph) SongNodes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []string
	for _, n := range g.nodes {
		if n.Kind == KindSong {
			out = append(out, n.ID)
		}
	}
	return out
}

// UpstreamParams collects the current values of every parameter node
// with a direct edge into songID. Iteration follows edge insertion
// order; duplicate sources keep their first occurrence. Sources that
// are not parameter nodes contribute nothing.
func (g *Graph) UpstreamParams(songID string) []Param {
	g.mu.RLock()
	defer g.mu.RUnlock()
	seen := make(map[string]bool)
	var out []Param
	for _, e := range g.edges {
		if e.Target != songID || seen[e.Source] {
			continue
		}
		seen[e.Source] = true
		n, ok := g.byID[e.Source]
		if !ok || !n.Kind.IsParam() {
			continue
		}
		p := Param{NodeID: n.ID, Kind: n.Kind}
		switch d := n.Data.(type) {
		case TextParam:
			p.Text = d.Value
		case ToggleParam:
			p.On = d.Value
		}
		out = append(out, p)
	}
	return out
}
