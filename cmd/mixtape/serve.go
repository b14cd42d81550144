package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spf13/cobra"

	"github.com/mixtape-hq/mixtape/pkg/comments"
	"github.com/mixtape-hq/mixtape/pkg/graph"
	"github.com/mixtape-hq/mixtape/pkg/refine"
	"github.com/mixtape-hq/mixtape/pkg/songflow"
	"github.com/mixtape-hq/mixtape/pkg/suno"
)

func serveCmd() *cobra.Command {
	var (
		addr     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a session graph over HTTP",
		Long: `Serve starts a JSON API around an in-memory session graph.

The graph starts with one topic node, one tags node and one song node.
Comments require DATABASE_URL; generation requires SUNO_API_KEY. Either
may be left unset, in which case only the endpoints that need them fail.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := comments.Open(cmd.Context(), os.Getenv("DATABASE_URL"))
			if err != nil {
				return fmt.Errorf("open comment store: %w", err)
			}
			defer store.Close()
			if store.Configured() {
				if err := store.EnsureSchema(cmd.Context()); err != nil {
					return fmt.Errorf("ensure comment schema: %w", err)
				}
			} else {
				slog.Warn("DATABASE_URL not set, comments disabled")
			}

			s := &server{
				g:        graph.NewSession(),
				store:    store,
				interval: interval,
			}
			app := newApp(s)
			slog.Info("listening", "addr", addr)
			return app.Listen(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&interval, "poll-interval", songflow.DefaultPollInterval, "status poll cadence")
	return cmd
}

// server holds the shared state behind the HTTP handlers. The
// orchestrator is built lazily so the API can run without a service key
// until someone actually generates.
type server struct {
	g        *graph.Graph
	store    *comments.Store
	interval time.Duration

	mu   sync.Mutex
	orch *songflow.Orchestrator
}

func (s *server) orchestrator() (*songflow.Orchestrator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.orch == nil {
		client, err := suno.NewClient(os.Getenv("SUNO_API_KEY"))
		if err != nil {
			return nil, err
		}
		s.orch = songflow.New(client, s.g, songflow.WithPollInterval(s.interval))
	}
	return s.orch, nil
}

func (s *server) generating(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orch != nil && s.orch.Generating(id)
}

type nodeView struct {
	ID         string         `json:"id"`
	Kind       graph.Kind     `json:"kind"`
	Position   graph.Position `json:"position"`
	Data       graph.NodeData `json:"data"`
	Generating bool           `json:"generating,omitempty"`
}

func (s *server) graphView() fiber.Map {
	nodes := s.g.Nodes()
	views := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		views = append(views, nodeView{
			ID:         n.ID,
			Kind:       n.Kind,
			Position:   n.Pos,
			Data:       n.Data,
			Generating: n.Kind == graph.KindSong && s.generating(n.ID),
		})
	}
	return fiber.Map{"nodes": views, "edges": s.g.Edges()}
}

func newApp(s *server) *fiber.App {
	app := fiber.New()

	// ── Graph ─────────────────────────────────────────────────────────
	app.Get("/graph", func(c fiber.Ctx) error {
		return c.JSON(s.graphView())
	})

	app.Post("/graph/params", func(c fiber.Ctx) error {
		var body struct {
			Kind  string `json:"kind"`
			Value string `json:"value"`
			On    bool   `json:"on"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		id, err := s.g.AddParam(graph.Kind(body.Kind))
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if body.Value != "" {
			if err := s.g.SetText(id, body.Value); err != nil {
				return c.Status(400).JSON(fiber.Map{"error": err.Error()})
			}
		}
		if body.On {
			if err := s.g.SetToggle(id, true); err != nil {
				return c.Status(400).JSON(fiber.Map{"error": err.Error()})
			}
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Put("/graph/params/:id", func(c fiber.Ctx) error {
		var body struct {
			Value string `json:"value"`
			On    bool   `json:"on"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		n, ok := s.g.Node(c.Params("id"))
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		var err error
		if n.Kind == graph.KindInstrumental {
			err = s.g.SetToggle(n.ID, body.On)
		} else {
			err = s.g.SetText(n.ID, body.Value)
		}
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.SendStatus(204)
	})

	app.Post("/graph/songs", func(c fiber.Ctx) error {
		return c.Status(201).JSON(fiber.Map{"id": s.g.AddSong()})
	})

	app.Post("/graph/edges", func(c fiber.Ctx) error {
		var body struct {
			Source string `json:"source"`
			Target string `json:"target"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		id, err := s.g.Connect(body.Source, body.Target)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	// ── Generation ────────────────────────────────────────────────────
	app.Post("/graph/songs/:id/generate", func(c fiber.Ctx) error {
		id := c.Params("id")
		if _, ok := s.g.Song(id); !ok {
			return c.Status(404).JSON(fiber.Map{"error": "song node not found"})
		}
		o, err := s.orchestrator()
		if err != nil {
			return c.Status(503).JSON(fiber.Map{"error": err.Error()})
		}
		// Validate the wired-up parameters up front so the caller gets
		// a synchronous error instead of digging it out of node state.
		if _, err := songflow.BuildRequest(s.g.UpstreamParams(id)); err != nil {
			return c.Status(422).JSON(fiber.Map{"error": err.Error()})
		}
		if o.Generating(id) {
			return c.Status(409).JSON(fiber.Map{"error": "generation already in progress"})
		}
		go func() {
			// Detached from the request; outcome lands in node state.
			if _, err := o.Create(context.Background(), id); err != nil {
				slog.Warn("generation failed", "node", id, "error", err)
			}
		}()
		return c.Status(202).JSON(fiber.Map{"status": "submitted"})
	})

	app.Post("/clips/:id/stems", func(c fiber.Ctx) error {
		o, err := s.orchestrator()
		if err != nil {
			return c.Status(503).JSON(fiber.Map{"error": err.Error()})
		}
		stems, err := o.SeparateStems(c.Context(), c.Params("id"), nil)
		if err != nil {
			return c.Status(502).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"stems": stems})
	})

	// ── Comments ──────────────────────────────────────────────────────
	app.Get("/clips/:id/comments", func(c fiber.Ctx) error {
		list, err := s.store.List(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(list)
	})

	app.Post("/clips/:id/comments", func(c fiber.Ctx) error {
		var body struct {
			Content    string `json:"content"`
			AuthorName string `json:"author_name"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		cm, err := s.store.Add(c.Context(), c.Params("id"), body.Content, body.AuthorName)
		if errors.Is(err, comments.ErrNotConfigured) {
			return c.Status(503).JSON(fiber.Map{"error": "comments are not configured"})
		}
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(201).JSON(cm)
	})

	// ── Refine ────────────────────────────────────────────────────────
	app.Post("/refine", func(c fiber.Ctx) error {
		var body struct {
			Prompt string `json:"prompt"`
		}
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		r, err := refine.New(os.Getenv("MIXTAPE_REFINER"))
		if err != nil {
			return c.Status(503).JSON(fiber.Map{"error": err.Error()})
		}
		refined, err := r.Refine(c.Context(), body.Prompt)
		if err != nil {
			return c.Status(502).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"refined": refined})
	})

	return app
}
