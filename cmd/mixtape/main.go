package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mixtape-hq/mixtape/pkg/graph"
	"github.com/mixtape-hq/mixtape/pkg/refine"
	"github.com/mixtape-hq/mixtape/pkg/songflow"
	"github.com/mixtape-hq/mixtape/pkg/suno"

	// Register all refinement providers via their init() functions.
	_ "github.com/mixtape-hq/mixtape/pkg/refine/providers"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		logLevel  string
		logFormat string
	)

	root := &cobra.Command{
		Use:   "mixtape",
		Short: "mixtape — graph-driven music generation workbench",
		Long: `Mixtape composes music-generation jobs from a node graph.

Parameter nodes (topic, tags, custom lyrics, instrumental, refined
prompt) feed song nodes; each song node is one generation job against
the remote service.`,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initLogger(logLevel, logFormat)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(runCmd())
	root.AddCommand(lintCmd())
	root.AddCommand(graphCmd())
	root.AddCommand(stemsCmd())
	root.AddCommand(refineCmd())
	root.AddCommand(serveCmd())
	return root
}

// ─── run ──────────────────────────────────────────────────────────────────────

func runCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "run <graph.dot>",
		Short: "Generate every song node in a graph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			if lintErr := graph.LintErr(g); lintErr != nil {
				return lintErr
			}

			client, err := suno.NewClient(os.Getenv("SUNO_API_KEY"))
			if err != nil {
				return err
			}
			o := songflow.New(client, g, songflow.WithPollInterval(interval))

			ctx := signalContext(cmd.Context())
			songs := g.SongNodes()

			// Song jobs are independent; run them concurrently.
			results := make([]string, len(songs))
			errs := make([]error, len(songs))
			var wg sync.WaitGroup
			for i, id := range songs {
				wg.Add(1)
				go func() {
					defer wg.Done()
					results[i], errs[i] = o.Create(ctx, id)
				}()
			}
			wg.Wait()

			for i, id := range songs {
				if errs[i] != nil {
					fmt.Printf("✗ %s: %v\n", id, errs[i])
					continue
				}
				state, _ := g.Song(results[i])
				fmt.Printf("✓ %s → %q (clip %s)\n  audio: %s\n", id, state.Title, state.ClipID, state.AudioURL)
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().DurationVar(&interval, "poll-interval", songflow.DefaultPollInterval, "status poll cadence")
	return cmd
}

// ─── lint ─────────────────────────────────────────────────────────────────────

func lintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint <graph.dot>",
		Short: "Validate a graph file without generating anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			g, err := loadGraph(args[0])
			if err != nil {
				return err
			}
			if lintErr := graph.LintErr(g); lintErr != nil {
				return lintErr
			}
			fmt.Printf("OK: graph is valid (%d nodes, %d edges)\n", len(g.Nodes()), len(g.Edges()))
			return nil
		},
	}
}

// ─── stems ────────────────────────────────────────────────────────────────────

func stemsCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "stems <clip-id>",
		Short: "Split a finished clip into stems",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := suno.NewClient(os.Getenv("SUNO_API_KEY"))
			if err != nil {
				return err
			}
			o := songflow.New(client, graph.New(), songflow.WithPollInterval(interval))

			ctx := signalContext(cmd.Context())
			clips, err := o.SeparateStems(ctx, args[0], func(complete, total int) {
				fmt.Printf("\rseparating stems... (%d/%d ready)", complete, total)
			})
			fmt.Println()
			if err != nil {
				return err
			}
			for _, c := range clips {
				fmt.Printf("  %s\n    %s\n", stemLabel(c), c.AudioURL)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "poll-interval", songflow.DefaultPollInterval, "status poll cadence")
	return cmd
}

// stemLabel shows the stem's own name, which the service appends to the
// parent title after " - ".
func stemLabel(c suno.Clip) string {
	if c.Title == "" {
		if len(c.ID) >= 8 {
			return c.ID[:8]
		}
		return c.ID
	}
	parts := strings.Split(c.Title, " - ")
	return parts[len(parts)-1]
}

// ─── refine ───────────────────────────────────────────────────────────────────

func refineCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "refine <rough idea>",
		Short: "Polish a rough idea into a music description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := refine.New(provider)
			if err != nil {
				return err
			}
			refined, err := r.Refine(signalContext(cmd.Context()), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(refined)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", os.Getenv("MIXTAPE_REFINER"), "refinement provider: openai or anthropic")
	return cmd
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func loadGraph(path string) (*graph.Graph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}
	g, err := graph.ParseDOT(string(src))
	if err != nil {
		return nil, fmt.Errorf("parse graph: %w", err)
	}
	return g, nil
}

// initLogger installs the default slog handler.
func initLogger(level, format string) error {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			fmt.Fprintln(os.Stderr, "\n[mixtape] interrupted")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}
