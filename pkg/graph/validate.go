package graph

import (
	"fmt"
	"strings"
)

// LintError describes a structural problem in a session graph.
type LintError struct {
	NodeID  string
	Message string
}

func (e LintError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("node %q: %s", e.NodeID, e.Message)
	}
	return e.Message
}

// Lint checks a graph for problems that would make every generation
// attempt fail. It reports all findings, not just the first. Edge kind
// compatibility is deliberately not checked: any node may connect to
// any other.
func Lint(g *Graph) []LintError {
	var errs []LintError

	songs := g.SongNodes()
	if len(songs) == 0 {
		errs = append(errs, LintError{Message: "graph has no song node"})
	}

	for _, e := range g.Edges() {
		if e.Source == e.Target {
			errs = append(errs, LintError{NodeID: e.Source, Message: "self-loop edge"})
		}
	}

	for _, id := range songs {
		if len(g.IncomingEdges(id)) == 0 {
			errs = append(errs, LintError{NodeID: id, Message: "song node has no incoming parameter edges"})
		}
	}

	return errs
}

// LintErr returns nil if Lint finds nothing, or a combined error
// listing every finding.
func LintErr(g *Graph) error {
	errs := Lint(g)
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("graph validation failed:\n  %s", strings.Join(msgs, "\n  "))
}
