package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"crate/internal/archive"
	"crate/internal/export"
	"crate/internal/gitrepo"
	"crate/internal/hosting"
	"crate/internal/logging"
	"crate/internal/runs"
)

func newExportCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Capture the playlist library and commit the changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger, logFile, err := cctx.newLogger(cfg)
			if err != nil {
				return err
			}
			defer logFile.Close()

			token := cfg.SpotifyToken()
			if token == "" {
				return fmt.Errorf("spotify access token missing: set %s", cfg.Spotify.TokenEnv)
			}
			service, err := cctx.newService(cfg, token)
			if err != nil {
				return err
			}

			remoteURL := cfg.Git.RemoteURL
			if cfg.GitHub.Enabled {
				githubToken := cfg.GitHubToken()
				if githubToken == "" {
					return fmt.Errorf("github token missing: set %s", cfg.GitHub.TokenEnv)
				}
				host, err := hosting.New(cfg.GitHub.APIURL, githubToken)
				if err != nil {
					return err
				}
				if remoteURL, err = host.EnsureRepository(ctx, cfg.GitHub.RepoName); err != nil {
					return err
				}
			}

			release, err := export.AcquireLock(export.LockPath(cfg.Paths.ArchiveDir))
			if err != nil {
				return err
			}
			defer release()

			repo, err := gitrepo.NewManager(gitrepo.Options{
				Path:        cfg.Paths.ArchiveDir,
				RemoteName:  cfg.Git.RemoteName,
				RemoteURL:   remoteURL,
				Branch:      cfg.Git.Branch,
				AuthorName:  cfg.Git.AuthorName,
				AuthorEmail: cfg.Git.AuthorEmail,
			}, logger)
			if err != nil {
				return err
			}

			runner := export.NewRunner(export.RunnerOptions{
				Service: service,
				Store:   archive.NewStore(cfg.Paths.ArchiveDir, logger),
				Repo:    repo,
				Fetch: export.FetchOptions{
					ExcludePlatformOwned: cfg.Exclusions.PlatformOwned,
					ExcludeNames:         cfg.Exclusions.Names,
				},
			}, logger)

			history, err := runs.Open(cfg.Paths.LogDir)
			if err != nil {
				return err
			}
			defer history.Close()

			runID, err := history.Start(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			result, runErr := runner.Run(ctx, func(msg string) { fmt.Fprintln(out, msg) })

			// Record the outcome even when the run context was canceled.
			finishErr := history.Finish(context.Background(), runID, runs.Outcome{
				Playlists:  result.Playlists,
				Committed:  result.Committed,
				HeadCommit: result.HeadCommit,
			}, runErr)
			if finishErr != nil {
				logger.Warn("record run outcome", logging.Error(finishErr))
			}

			return runErr
		},
	}
}
