package diff

import (
	"strings"
	"time"
)

// Describe renders a changes object as the human-readable changelog used for
// commit messages. The rendering is deterministic and never fails; whatever
// the diff carries is written out literally.
func Describe(changes Changes) string {
	var b strings.Builder
	b.WriteString("Summary of Changes:\n")

	if len(changes.Added) > 0 {
		b.WriteString("  Added playlists:\n")
		for _, playlist := range changes.Added {
			b.WriteString("  + " + playlist.Name + "\n")
		}
	}

	if len(changes.Removed) > 0 {
		b.WriteString("\n  Removed playlists:\n")
		for _, playlist := range changes.Removed {
			b.WriteString("  - " + playlist.Name + "\n")
		}
	}

	if len(changes.Changed) > 0 {
		b.WriteString("\n  Changed playlists:\n")
		for _, change := range changes.Changed {
			if change.Renamed() {
				b.WriteString("  ~ " + change.OldName + " → " + change.Name + "\n")
			} else {
				b.WriteString("  ~ " + change.Name + "\n")
			}
		}
	}

	for _, playlist := range changes.Added {
		if len(playlist.Tracks) == 0 {
			continue
		}
		b.WriteString("\n  Tracks in added playlist " + playlist.Name + ":\n")
		for _, track := range playlist.Tracks {
			b.WriteString("  + " + track.String() + "\n")
		}
	}

	if len(changes.Changed) > 0 {
		b.WriteString("\n  Track changes in modified playlists:\n")
		for _, change := range changes.Changed {
			b.WriteString("    " + change.Name + ":\n")
			if len(change.AddedTracks) > 0 {
				b.WriteString("      Added tracks:\n")
				for _, key := range change.AddedTracks {
					b.WriteString("      + " + key.String() + "\n")
				}
			}
			if len(change.RemovedTracks) > 0 {
				b.WriteString("      Removed tracks:\n")
				for _, key := range change.RemovedTracks {
					b.WriteString("      - " + key.String() + "\n")
				}
			}
		}
	}

	return b.String()
}

// CommitMessage builds the archive commit message: a timestamped subject
// followed by the changelog body.
func CommitMessage(changes Changes, now time.Time) string {
	return "Archive " + now.Format("2006-01-02_15-04-05") + "\n\n" + Describe(changes)
}
