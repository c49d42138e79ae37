package filtergraph

import "strings"

// EscapePath prepares a filesystem path for use inside a filter option:
// backslashes become forward slashes and colons are escaped so they are not
// read as option separators. Single quotes close and reopen the quoting.
func EscapePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	path = strings.ReplaceAll(path, "'", `'\''`)
	return path
}

// Quote wraps a value in single quotes so commas and colons survive the
// filter parser.
func Quote(value string) string {
	return "'" + value + "'"
}
