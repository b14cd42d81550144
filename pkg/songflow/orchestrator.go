package songflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mixtape-hq/mixtape/pkg/graph"
	"github.com/mixtape-hq/mixtape/pkg/suno"
)

// DefaultPollInterval matches the cadence the generation service expects
// for status polling.
const DefaultPollInterval = 5 * time.Second

// Service is the slice of the generation API the orchestrator needs.
// *suno.Client satisfies it; tests substitute a fake.
type Service interface {
	Generate(ctx context.Context, req suno.GenerateRequest) (suno.Clip, error)
	Clips(ctx context.Context, ids []string) ([]suno.Clip, error)
	SeparateStems(ctx context.Context, clipID string) ([]suno.Clip, error)
}

// ErrInFlight is returned when a song node already has a job outstanding.
var ErrInFlight = errors.New("songflow: generation already in progress")

// Orchestrator drives generation jobs against an explicit graph handle.
// Jobs for distinct song nodes are independent and may run concurrently;
// at most one job per song node is allowed at a time.
type Orchestrator struct {
	svc      Service
	g        *graph.Graph
	interval time.Duration

	mu       sync.Mutex
	inflight map[string]bool
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPollInterval overrides the poll cadence (tests use a short one).
func WithPollInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.interval = d }
}

// New builds an Orchestrator over the given service and graph.
func New(svc Service, g *graph.Graph, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		svc:      svc,
		g:        g,
		interval: DefaultPollInterval,
		inflight: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generating reports whether a job is outstanding for the song node.
func (o *Orchestrator) Generating(songID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight[songID]
}

func (o *Orchestrator) begin(songID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[songID] {
		return false
	}
	o.inflight[songID] = true
	return true
}

func (o *Orchestrator) end(songID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, songID)
}

// Create runs one generation attempt for a song node and returns the id
// of the node holding the result. First-time jobs resolve in place; a
// node that already holds audio is recreated as a new sibling node and
// the original is left untouched.
//
// The submit/poll sequence blocks until the job reaches a terminal state;
// polling has no attempt cap, so a caller that wants a wall-clock bound
// must put a deadline on ctx.
func (o *Orchestrator) Create(ctx context.Context, songID string) (string, error) {
	state, ok := o.g.Song(songID)
	if !ok {
		return "", fmt.Errorf("songflow: song node %q not found", songID)
	}
	if !o.begin(songID) {
		return "", ErrInFlight
	}
	defer o.end(songID)

	req, err := BuildRequest(o.g.UpstreamParams(songID))
	if err != nil {
		// Validation failures never touch the node or the network.
		return "", err
	}

	recreate := state.AudioURL != ""
	if !recreate {
		state.Status = suno.StatusSubmitted
		state.Error = ""
		if err := o.g.SetSong(songID, state); err != nil {
			return "", err
		}
	}

	resultID, err := o.attempt(ctx, songID, recreate, req)
	if err != nil {
		o.fail(songID, err)
		return "", err
	}
	return resultID, nil
}

// attempt performs submit → poll → resolve for one job.
func (o *Orchestrator) attempt(ctx context.Context, songID string, recreate bool, req suno.GenerateRequest) (string, error) {
	clip, err := o.svc.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	slog.Info("generation submitted", "song", songID, "clip", clip.ID, "recreate", recreate)

	result, err := o.pollClip(ctx, clip.ID)
	if err != nil {
		return "", err
	}
	slog.Info("generation finished", "song", songID, "clip", result.ID, "status", result.Status)

	title := result.Title
	if title == "" {
		title = "Untitled"
	}
	resolved := graph.SongState{
		ClipID:   result.ID,
		Status:   result.Status,
		AudioURL: result.AudioURL,
		Title:    title,
		ImageURL: result.ImageURL,
	}

	if !recreate {
		if err := o.g.SetSong(songID, resolved); err != nil {
			return "", err
		}
		return songID, nil
	}

	// Recreate: the original node keeps its result; the new one lands
	// beside it and inherits every incoming edge. Connect derives edge
	// ids from the endpoints, so already-present edges are skipped.
	newID, err := o.g.AddSongBeside(songID)
	if err != nil {
		return "", err
	}
	if err := o.g.SetSong(newID, resolved); err != nil {
		return "", err
	}
	for _, e := range o.g.IncomingEdges(songID) {
		if _, err := o.g.Connect(e.Source, newID); err != nil {
			return "", err
		}
	}
	return newID, nil
}

// pollClip fetches the clip at a fixed interval until it reaches a
// terminal state. An explicit loop, not recursion; no backoff and no
// attempt cap. The job either terminates remotely or ctx expires.
func (o *Orchestrator) pollClip(ctx context.Context, clipID string) (suno.Clip, error) {
	for {
		clips, err := o.svc.Clips(ctx, []string{clipID})
		if err != nil {
			return suno.Clip{}, err
		}
		if len(clips) == 0 {
			return suno.Clip{}, fmt.Errorf("clip %q not found", clipID)
		}
		c := clips[0]
		if c.Status.Succeeded() {
			return c, nil
		}
		if c.Status == suno.StatusError {
			msg := c.ErrorMessage()
			if msg == "" {
				msg = "generation failed"
			}
			return suno.Clip{}, errors.New(msg)
		}

		slog.Debug("clip in flight", "clip", clipID, "status", c.Status)
		select {
		case <-ctx.Done():
			return suno.Clip{}, ctx.Err()
		case <-time.After(o.interval):
		}
	}
}

// fail records a terminal failure on the song node: the display message
// lands in the persistent error field and any in-flight status is
// cleared. A completed node being recreated keeps its result.
func (o *Orchestrator) fail(songID string, cause error) {
	state, ok := o.g.Song(songID)
	if !ok {
		// Node vanished while the job was outstanding; drop the result.
		slog.Warn("song node removed mid-job", "song", songID)
		return
	}
	state.Error = displayMessage(cause)
	if state.Status == suno.StatusSubmitted || state.Status == suno.StatusQueued {
		state.Status = ""
	}
	if err := o.g.SetSong(songID, state); err != nil {
		slog.Warn("failed to record job error", "song", songID, "err", err)
	}
}

// displayMessage normalizes any failure into one display string.
func displayMessage(err error) string {
	var apiErr *suno.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Msg
	}
	if err != nil {
		return err.Error()
	}
	return "generation failed"
}
