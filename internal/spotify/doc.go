// Package spotify implements the remote playlist listing client.
//
// The client converts the API's loosely shaped JSON into the archive's typed
// model at this boundary: missing track payloads are skipped, absent artist
// lists collapse to the Unknown Artist sentinel, and durations are carried in
// both per-track seconds and per-page milliseconds so playlist totals match
// the upstream accounting. Pagination is cursor-based and resumable; callers
// follow Next until it is empty.
package spotify
