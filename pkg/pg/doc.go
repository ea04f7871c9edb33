// Package pg provides the PostgreSQL plumbing shared by storage
// implementations: pool construction with startup retries, embedded
// goose migrations, and error classification helpers.
package pg
