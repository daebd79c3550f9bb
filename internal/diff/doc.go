// Package diff computes structured differences between two playlist captures
// and narrates them as changelog text.
//
// Playlist membership diffs by ID; a shared ID with a differing snapshot
// token is a change, and its tracks diff as sets of (name, artist) pairs.
// Loaders for either side's track files are injected so the previous side
// can read from repository history while the current side reads the working
// directory; a failed load collapses to an empty track list rather than an
// error.
package diff
