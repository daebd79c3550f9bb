// Package export drives the capture pipeline: fetch the remote playlist
// library, persist it to the archive, narrate the differences against the
// last commit, and commit and push the result.
package export
