package file

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// ReadList reads path line by line and returns the non-empty lines that do
// not start with '#', trimmed and in order. The CLI uses it for column
// declaration files ("NAME:TYPE" per line).
func ReadList(ctx context.Context, path string) ([]string, error) {
	rc, err := NewLocal(path).Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []string
	sc := bufio.NewScanner(rc)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}
