package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mixtape-hq/mixtape/pkg/graph"
)

func graphCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "graph <graph.dot>",
		Short: "Print a human-readable summary of a graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}

			switch strings.ToLower(format) {
			case "dot":
				fmt.Print(renderDOT(g))
			case "text", "":
				fmt.Print(renderText(g))
			default:
				return fmt.Errorf("unknown format %q: use text or dot", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or dot")
	return cmd
}

// truncate shortens s to maxLen chars, appending "…" if needed.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "…"
}

// nodeSummary renders a node's payload as a single line.
func nodeSummary(n graph.Node) string {
	switch d := n.Data.(type) {
	case graph.TextParam:
		return truncate(d.Value, 60)
	case graph.ToggleParam:
		return strconv.FormatBool(d.Value)
	case graph.SongState:
		if d.Error != "" {
			return "error: " + truncate(d.Error, 50)
		}
		if d.ClipID != "" {
			return fmt.Sprintf("%s %q (clip %s)", d.Status, d.Title, d.ClipID)
		}
		if d.Status != "" {
			return string(d.Status)
		}
		return ""
	default:
		return ""
	}
}

// renderText produces the human-readable text summary.
func renderText(g *graph.Graph) string {
	var sb strings.Builder

	nodes := g.Nodes()
	edges := g.Edges()
	fmt.Fprintf(&sb, "Graph: %d nodes, %d edges\n", len(nodes), len(edges))

	maxIDLen := 4
	for _, n := range nodes {
		if len(n.ID) > maxIDLen {
			maxIDLen = len(n.ID)
		}
	}

	fmt.Fprintf(&sb, "\nNodes:\n")
	for _, n := range nodes {
		fmt.Fprintf(&sb, "  %-*s  %-12s  %s\n", maxIDLen, n.ID, string(n.Kind), nodeSummary(n))
	}

	fmt.Fprintf(&sb, "\nEdges:\n")
	maxSrcLen := 4
	for _, e := range edges {
		if len(e.Source) > maxSrcLen {
			maxSrcLen = len(e.Source)
		}
	}
	for _, e := range edges {
		fmt.Fprintf(&sb, "  %-*s  →  %s\n", maxSrcLen, e.Source, e.Target)
	}

	return sb.String()
}

// dotQuote returns the value as a DOT-safe string. Anything that is not
// a bare identifier (letters, digits, underscores, not starting with a
// digit) gets quoted; generated node ids contain hyphens and always do.
func dotQuote(s string) string {
	bare := s != ""
	for i, r := range s {
		if r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9' && i > 0) {
			continue
		}
		bare = false
		break
	}
	if bare {
		return s
	}
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}

// renderDOT produces a canonical DOT digraph string that ParseDOT can
// read back.
func renderDOT(g *graph.Graph) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "digraph mixtape {\n")
	for _, n := range g.Nodes() {
		parts := []string{"type=" + dotQuote(string(n.Kind))}
		switch d := n.Data.(type) {
		case graph.TextParam:
			if d.Value != "" {
				parts = append(parts, "value="+dotQuote(d.Value))
			}
		case graph.ToggleParam:
			parts = append(parts, "value="+strconv.FormatBool(d.Value))
		}
		if n.Pos != (graph.Position{}) {
			parts = append(parts, fmt.Sprintf("pos=%q", fmt.Sprintf("%g,%g", n.Pos.X, n.Pos.Y)))
		}
		fmt.Fprintf(&sb, "    %s [%s]\n", dotQuote(n.ID), strings.Join(parts, " "))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&sb, "    %s -> %s\n", dotQuote(e.Source), dotQuote(e.Target))
	}
	fmt.Fprintf(&sb, "}\n")
	return sb.String()
}
