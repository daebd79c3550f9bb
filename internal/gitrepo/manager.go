package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"crate/internal/archive"
	"crate/internal/logging"
	"crate/internal/model"
)

// InitialCommitMessage is used when the archive gets its very first commit.
const InitialCommitMessage = "Initial commit"

// Options configures a repository manager.
type Options struct {
	Path        string
	RemoteName  string
	RemoteURL   string
	Branch      string
	AuthorName  string
	AuthorEmail string
}

// Manager owns the archive's versioned repository: it brings the local clone
// into a ready state, stages captures, commits with narrated messages, and
// pushes when a remote is configured. No other component mutates repository
// history.
type Manager struct {
	opts   Options
	logger *slog.Logger
	repo   *git.Repository

	// now is swappable for deterministic commit timestamps in tests.
	now func() time.Time
}

// NewManager creates a manager for the archive at opts.Path. Call Ensure
// before any other operation.
func NewManager(opts Options, logger *slog.Logger) (*Manager, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("repository path required")
	}
	if strings.TrimSpace(opts.Branch) == "" {
		opts.Branch = "main"
	}
	if strings.TrimSpace(opts.RemoteName) == "" {
		opts.RemoteName = "origin"
	}
	return &Manager{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "gitrepo"),
		now:    time.Now,
	}, nil
}

// HasRemote reports whether a push target is configured.
func (m *Manager) HasRemote() bool {
	return strings.TrimSpace(m.opts.RemoteURL) != ""
}

// Ensure brings the repository into a ready state: clone the remote when
// configured (falling back to local init when the clone fails), configure the
// fixed commit identity, synchronize tolerantly with the remote, seed a brand
// new archive with an empty metadata index and an initial commit, and leave
// the default branch checked out.
func (m *Manager) Ensure(ctx context.Context) error {
	repo, err := m.openOrCreate(ctx)
	if err != nil {
		return err
	}
	m.repo = repo

	if err := m.configureIdentity(); err != nil {
		return err
	}
	if err := m.configureRemote(); err != nil {
		return err
	}

	if m.HasRemote() {
		m.syncWithRemote(ctx)
	}

	if err := m.seedIfEmpty(); err != nil {
		return err
	}

	return m.ensureBranch()
}

func (m *Manager) openOrCreate(ctx context.Context) (*git.Repository, error) {
	repo, err := git.PlainOpen(m.opts.Path)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	if err := os.MkdirAll(m.opts.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	if m.HasRemote() {
		repo, err = git.PlainCloneContext(ctx, m.opts.Path, false, &git.CloneOptions{
			URL:           m.opts.RemoteURL,
			RemoteName:    m.opts.RemoteName,
			ReferenceName: plumbing.NewBranchReferenceName(m.opts.Branch),
			SingleBranch:  true,
		})
		if err == nil {
			return repo, nil
		}
		// Fresh or unreachable remotes are expected; start locally and let
		// the first push create the remote branch.
		m.logger.Debug("clone failed, initializing locally", logging.Error(err))
	}

	repo, err = git.PlainInit(m.opts.Path, false)
	if err != nil {
		return nil, fmt.Errorf("init repository: %w", err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(m.opts.Branch))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, fmt.Errorf("point HEAD at %s: %w", m.opts.Branch, err)
	}
	return repo, nil
}

func (m *Manager) configureIdentity() error {
	cfg, err := m.repo.Config()
	if err != nil {
		return fmt.Errorf("read repository config: %w", err)
	}
	cfg.User.Name = m.opts.AuthorName
	cfg.User.Email = m.opts.AuthorEmail
	if err := m.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("write repository config: %w", err)
	}
	return nil
}

func (m *Manager) configureRemote() error {
	if !m.HasRemote() {
		return nil
	}
	desired := []string{m.opts.RemoteURL}

	remote, err := m.repo.Remote(m.opts.RemoteName)
	switch {
	case err == nil:
		if len(remote.Config().URLs) == 1 && remote.Config().URLs[0] == m.opts.RemoteURL {
			return nil
		}
		if err := m.repo.DeleteRemote(m.opts.RemoteName); err != nil {
			return fmt.Errorf("update remote %s: %w", m.opts.RemoteName, err)
		}
	case !errors.Is(err, git.ErrRemoteNotFound):
		return fmt.Errorf("inspect remote %s: %w", m.opts.RemoteName, err)
	}

	_, err = m.repo.CreateRemote(&gitconfig.RemoteConfig{Name: m.opts.RemoteName, URLs: desired})
	if err != nil {
		return fmt.Errorf("create remote %s: %w", m.opts.RemoteName, err)
	}
	return nil
}

// syncWithRemote fetches and pulls the default branch. Failures are expected
// on fresh or empty remotes and never abort the run.
func (m *Manager) syncWithRemote(ctx context.Context) {
	err := m.repo.FetchContext(ctx, &git.FetchOptions{RemoteName: m.opts.RemoteName})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) &&
		!errors.Is(err, transport.ErrEmptyRemoteRepository) {
		m.logger.Debug("fetch failed", logging.Error(err))
	}

	worktree, err := m.repo.Worktree()
	if err != nil {
		m.logger.Debug("worktree unavailable for pull", logging.Error(err))
		return
	}
	err = worktree.PullContext(ctx, &git.PullOptions{
		RemoteName:    m.opts.RemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(m.opts.Branch),
		SingleBranch:  true,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		m.logger.Debug("pull failed", logging.Error(err))
	}
}

// seedIfEmpty writes an empty metadata index when the archive has none, and
// creates the initial commit when the repository has no history yet.
func (m *Manager) seedIfEmpty() error {
	store := archive.NewStore(m.opts.Path, m.logger)

	if _, err := os.Stat(store.MetadataPath()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat metadata index: %w", err)
		}
		if err := store.WriteIndex(model.Library{}); err != nil {
			return err
		}
	}

	if _, err := m.repo.Head(); err == nil {
		return nil
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("resolve HEAD: %w", err)
	}

	worktree, err := m.repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage initial index: %w", err)
	}
	if _, err := worktree.Commit(InitialCommitMessage, &git.CommitOptions{Author: m.signature()}); err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}
	return nil
}

func (m *Manager) ensureBranch() error {
	head, err := m.repo.Head()
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}

	branchRef := plumbing.NewBranchReferenceName(m.opts.Branch)
	if head.Name() == branchRef {
		return nil
	}

	if _, err := m.repo.Reference(branchRef, false); err != nil {
		if !errors.Is(err, plumbing.ErrReferenceNotFound) {
			return fmt.Errorf("inspect branch %s: %w", m.opts.Branch, err)
		}
		if err := m.repo.Storer.SetReference(plumbing.NewHashReference(branchRef, head.Hash())); err != nil {
			return fmt.Errorf("create branch %s: %w", m.opts.Branch, err)
		}
	}

	worktree, err := m.repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: branchRef}); err != nil {
		return fmt.Errorf("checkout %s: %w", m.opts.Branch, err)
	}
	return nil
}

// SyncAndCommit stages everything in the working tree, including deletions.
// When nothing differs from the last commit it emits "No changes to commit"
// and creates none. Otherwise it invokes buildMessage (which typically diffs
// HEAD against the working tree), commits, and pushes the default branch
// when a remote is configured, creating the upstream link on first push.
// The returned bool reports whether a commit was created.
func (m *Manager) SyncAndCommit(ctx context.Context, buildMessage func() (string, error), emit func(string)) (bool, error) {
	if emit == nil {
		emit = func(string) {}
	}

	worktree, err := m.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return false, fmt.Errorf("stage changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("read status: %w", err)
	}
	if status.IsClean() {
		emit("No changes to commit")
		return false, nil
	}

	emit("Committing changes")
	message, err := buildMessage()
	if err != nil {
		return false, fmt.Errorf("build commit message: %w", err)
	}
	if _, err := worktree.Commit(message, &git.CommitOptions{Author: m.signature()}); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}

	if !m.HasRemote() {
		return true, nil
	}

	emit("Pushing to remote")
	if err := m.push(ctx); err != nil {
		return true, err
	}
	return true, nil
}

func (m *Manager) push(ctx context.Context) error {
	refSpec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", m.opts.Branch, m.opts.Branch))
	err := m.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: m.opts.RemoteName,
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push %s: %w", m.opts.Branch, err)
	}

	// First push establishes the tracking relationship.
	err = m.repo.CreateBranch(&gitconfig.Branch{
		Name:   m.opts.Branch,
		Remote: m.opts.RemoteName,
		Merge:  plumbing.NewBranchReferenceName(m.opts.Branch),
	})
	if err != nil && !errors.Is(err, git.ErrBranchExists) {
		return fmt.Errorf("record upstream for %s: %w", m.opts.Branch, err)
	}
	return nil
}

// FileAtHead reads a file's content as of the last commit without touching
// the working tree. The boolean reports whether the file existed there.
func (m *Manager) FileAtHead(path string) ([]byte, bool, error) {
	head, err := m.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := m.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, false, fmt.Errorf("load HEAD commit: %w", err)
	}
	file, err := commit.File(path)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("look up %s at HEAD: %w", path, err)
	}
	content, err := file.Contents()
	if err != nil {
		return nil, false, fmt.Errorf("read %s at HEAD: %w", path, err)
	}
	return []byte(content), true, nil
}

// HeadHash returns the current HEAD commit hash, or empty when there are no
// commits yet.
func (m *Manager) HeadHash() string {
	head, err := m.repo.Head()
	if err != nil {
		return ""
	}
	return head.Hash().String()
}

func (m *Manager) signature() *object.Signature {
	return &object.Signature{
		Name:  m.opts.AuthorName,
		Email: m.opts.AuthorEmail,
		When:  m.now(),
	}
}
