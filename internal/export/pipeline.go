package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"crate/internal/archive"
	"crate/internal/diff"
	"crate/internal/gitrepo"
	"crate/internal/logging"
	"crate/internal/model"
	"crate/internal/spotify"
)

// RunnerOptions wires a runner's collaborators.
type RunnerOptions struct {
	Service spotify.Service
	Store   *archive.Store
	Repo    *gitrepo.Manager
	Fetch   FetchOptions
}

// Runner drives one full export: ensure the repository, capture the remote
// library, persist it, narrate the differences against the last commit, then
// commit and push. Runs are idempotent; a second run with no upstream changes
// ends at "No changes to commit".
type Runner struct {
	service spotify.Service
	store   *archive.Store
	repo    *gitrepo.Manager
	fetch   FetchOptions
	logger  *slog.Logger

	// now is swappable for deterministic commit subjects in tests.
	now func() time.Time
}

// Result summarizes a completed run for history and display.
type Result struct {
	Playlists  int
	Committed  bool
	HeadCommit string
}

// NewRunner creates a runner from its collaborators.
func NewRunner(opts RunnerOptions, logger *slog.Logger) *Runner {
	return &Runner{
		service: opts.Service,
		store:   opts.Store,
		repo:    opts.Repo,
		fetch:   opts.Fetch,
		logger:  logging.NewComponentLogger(logger, "export"),
		now:     time.Now,
	}
}

// Run executes the export pipeline, emitting ordered progress messages
// through the sink. Any failure is announced once as "Error: <message>" and
// returned; partial writes stay in the working tree for the next run to
// reconcile.
func (r *Runner) Run(ctx context.Context, emit Sink) (Result, error) {
	if emit == nil {
		emit = func(string) {}
	}

	result, err := r.run(ctx, emit)
	if err != nil {
		emit(fmt.Sprintf("Error: %s", err))
		r.logger.Error("export run failed", logging.Error(err))
		return result, err
	}
	r.logger.Info("export run complete",
		logging.Int("playlists", result.Playlists),
		logging.Bool("committed", result.Committed))
	return result, nil
}

func (r *Runner) run(ctx context.Context, emit Sink) (Result, error) {
	if err := r.repo.Ensure(ctx); err != nil {
		return Result{}, err
	}

	cached := r.store.SnapshotIndex()
	library, err := FetchLibrary(ctx, r.service, cached, func(playlistID string) ([]model.Track, error) {
		return r.store.ReadTracks(cached, playlistID)
	}, r.fetch, emit)
	if err != nil {
		return Result{}, err
	}

	emit("Saving playlist metadata file")
	if err := r.store.WriteIndex(library); err != nil {
		return Result{}, err
	}
	emit("Saving playlist files")
	if err := r.store.WriteTracks(library); err != nil {
		return Result{}, err
	}

	committed, err := r.repo.SyncAndCommit(ctx, r.buildMessage, emit)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Playlists:  len(library),
		Committed:  committed,
		HeadCommit: r.repo.HeadHash(),
	}, nil
}

// buildMessage diffs the working tree against the last commit and narrates
// the result. Both sides read from files, never the in-memory capture, so the
// message describes exactly what the commit will contain.
func (r *Runner) buildMessage() (string, error) {
	previousIndex := model.Library{}
	if data, ok, err := r.repo.FileAtHead(archive.MetadataFilename); err != nil {
		return "", err
	} else if ok {
		parsed, err := archive.ParseIndex(data)
		if err != nil {
			return "", err
		}
		previousIndex = parsed
	}

	previous := diff.Source{
		Index: previousIndex,
		Tracks: func(playlistID string) ([]model.Track, error) {
			path, ok := archive.TrackFilePath(previousIndex, playlistID)
			if !ok {
				return nil, fmt.Errorf("playlist %s not in committed index", playlistID)
			}
			data, ok, err := r.repo.FileAtHead(path)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("playlist file %s missing at HEAD", path)
			}
			return archive.ParseTracks(data)
		},
	}

	currentIndex, err := r.store.ReadIndex()
	if err != nil {
		return "", err
	}
	current := diff.Source{
		Index: currentIndex,
		Tracks: func(playlistID string) ([]model.Track, error) {
			return r.store.ReadTracks(currentIndex, playlistID)
		},
	}

	return diff.CommitMessage(diff.Compute(previous, current), r.now()), nil
}
