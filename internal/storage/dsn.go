package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileDSN builds a DSN for embedded, file-backed engines from a URI prefix and
// a schema name, the way the fixed default "file:~/" + "dblod" resolves to
// "file:/home/<user>/dblod<ext>".
//
// Rules:
//   - ":memory:", "file::memory:" (with any query) and URIs containing
//     "mode=memory" are returned unchanged.
//   - A leading "~" in the path (after an optional "file:" scheme) expands to
//     the user's home directory.
//   - Schema is appended to the path; ext is added when Schema has none.
//   - Any query string on uri is preserved after the path.
func FileDSN(uri, schema, ext string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", fmt.Errorf("uri must not be empty")
	}
	if IsMemoryURI(uri) {
		return uri, nil
	}

	path, query, _ := strings.Cut(uri, "?")
	scheme := ""
	if strings.HasPrefix(path, "file:") {
		scheme = "file:"
		path = strings.TrimPrefix(path, "file:")
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand home: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~")) + trailingSlash(path)
	}

	if schema = strings.TrimSpace(schema); schema != "" {
		path += schema
		if filepath.Ext(schema) == "" {
			path += ext
		}
	}

	out := scheme + path
	if query != "" {
		out += "?" + query
	}
	return out, nil
}

func trailingSlash(p string) string {
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		return "/"
	}
	return ""
}

// IsMemoryURI reports whether uri names an in-memory database rather than a
// file.
func IsMemoryURI(uri string) bool {
	uri = strings.TrimSpace(uri)
	if strings.Contains(uri, "mode=memory") {
		return true
	}
	path, _, _ := strings.Cut(uri, "?")
	return strings.TrimPrefix(path, "file:") == ":memory:"
}
