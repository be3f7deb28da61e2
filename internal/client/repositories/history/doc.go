// Package history keeps a local journal of finished upload attempts in
// SQLite. The journal is informational: it is listed by the CLI and never
// used to resume an upload.
package history
