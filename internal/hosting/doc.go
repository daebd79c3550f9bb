// Package hosting provisions remote repositories for the archive.
package hosting
