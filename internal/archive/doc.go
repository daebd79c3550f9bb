// Package archive owns the on-disk representation of a playlist capture.
//
// The layout is a metadata index (playlists_metadata.json, id-ascending, no
// tracks) plus one JSON track file per playlist under playlists/. Filenames
// derive from sanitized playlist names with an id suffix on collisions.
// Writes clear the playlists directory first so removed playlists leave no
// orphans; reads are fallible and callers pick the empty default, except
// SnapshotIndex which degrades to an empty library because an unreadable
// index only means the next capture refetches everything.
package archive
