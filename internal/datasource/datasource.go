// Package datasource resolves CLI input locations to readers.
package datasource

import (
	"context"
	"io"
	"strings"

	"stepstore/internal/datasource/file"
	"stepstore/internal/datasource/httpds"
)

// Source opens one input document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// For returns the source for location: http(s) URLs are fetched with client,
// "-" reads standard input, anything else is a local path.
func For(location string, client *httpds.Client) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if client == nil {
			client = httpds.NewClient(httpds.Config{})
		}
		return httpds.NewSource(client, location)
	}
	return file.NewLocal(location)
}
