// Package graph holds the in-memory node/edge model a session works on:
// parameter nodes feeding song nodes. The graph lives only for the
// session; there is no load/save of the graph itself.
package graph

import "github.com/mixtape-hq/mixtape/pkg/suno"

// Kind identifies what a node contributes to a generation request.
type Kind string

const (
	KindTopic        Kind = "topic"
	KindTags         Kind = "tags"
	KindPrompt       Kind = "prompt"       // custom lyrics
	KindInstrumental Kind = "instrumental" // boolean toggle
	KindAIPrompt     Kind = "aiPrompt"     // refined description, feeds topic
	KindSong         Kind = "song"
)

// ParamKinds lists the kinds that supply request fields, i.e. every kind
// except song.
var ParamKinds = []Kind{KindTopic, KindTags, KindPrompt, KindInstrumental, KindAIPrompt}

// IsParam reports whether k is a parameter kind.
func (k Kind) IsParam() bool {
	for _, p := range ParamKinds {
		if k == p {
			return true
		}
	}
	return false
}

// IsText reports whether the kind carries a free-text value.
func (k Kind) IsText() bool {
	switch k {
	case KindTopic, KindTags, KindPrompt, KindAIPrompt:
		return true
	}
	return false
}

// Position is a node's canvas coordinate. Layout itself is a front-end
// concern; the model only applies the stacking offsets.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeData is the kind-specific payload of a node. Exactly one variant
// applies per node; the interface is sealed to this package.
type NodeData interface {
	isNodeData()
}

// TextParam is the payload of topic, tags, prompt and aiPrompt nodes.
type TextParam struct {
	Value string `json:"value"`
}

// ToggleParam is the payload of instrumental nodes.
type ToggleParam struct {
	Value bool `json:"value"`
}

// SongState is the payload of a song node: the node's view of its most
// recent generation job. Status is "" until a job has been submitted.
type SongState struct {
	ClipID   string      `json:"clipId,omitempty"`
	Status   suno.Status `json:"status,omitempty"`
	AudioURL string      `json:"audioUrl,omitempty"`
	Title    string      `json:"title,omitempty"`
	ImageURL string      `json:"imageUrl,omitempty"`
	Error    string      `json:"error,omitempty"`
}

func (TextParam) isNodeData()   {}
func (ToggleParam) isNodeData() {}
func (SongState) isNodeData()   {}

// Node is one vertex of the session graph.
type Node struct {
	ID   string   `json:"id"`
	Kind Kind     `json:"kind"`
	Pos  Position `json:"position"`
	Data NodeData `json:"data"`
}

// Edge is a directed connection, parameter node → song node by
// convention, though the model does not enforce kind compatibility.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// Param is one upstream parameter value collected for a song node.
type Param struct {
	NodeID string
	Kind   Kind
	Text   string // text kinds
	On     bool   // instrumental
}
