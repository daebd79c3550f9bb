// Package gitrepo manages the archive's versioned repository.
//
// The manager walks the repository through a small state machine: Ensure
// takes it from possibly-nonexistent to ready (clone or init, fixed commit
// identity, tolerant remote sync, seeded initial commit, default branch
// checked out), and SyncAndCommit performs the idempotent stage-commit-push
// cycle for a capture. Reading a file as of the last commit goes through
// FileAtHead so diffing never disturbs the working tree.
package gitrepo
