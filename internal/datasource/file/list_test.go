package file

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "columns.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestReadList(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, `
# primary column first
PROPERTY:VARCHAR(100)
   # indented comment
LABEL:VARCHAR(100)

   NOTE : TEXT
`)
	got, err := ReadList(context.Background(), path)
	if err != nil {
		t.Fatalf("ReadList() error = %v", err)
	}
	want := []string{"PROPERTY:VARCHAR(100)", "LABEL:VARCHAR(100)", "NOTE : TEXT"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ReadList() = %q, want %q", got, want)
	}
}

func TestReadListMissing(t *testing.T) {
	t.Parallel()
	if _, err := ReadList(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("ReadList(missing) error = nil, want non-nil")
	}
}
