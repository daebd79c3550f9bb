// Package runs records export run history in a local SQLite database.
package runs
