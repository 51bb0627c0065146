package duckdb

import (
	"testing"

	"stepstore/internal/storage"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  storage.Config
		want string
	}{
		{name: "memory", cfg: storage.Config{URI: ":memory:"}, want: ""},
		{name: "file scheme stripped", cfg: storage.Config{URI: "file:/tmp/", Schema: "dblod"}, want: "/tmp/dblod.duckdb"},
		{name: "explicit extension", cfg: storage.Config{URI: "/data/", Schema: "steps.db"}, want: "/data/steps.db"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Dialect{}.DSN(tt.cfg)
			if err != nil {
				t.Fatalf("DSN() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRowOrder(t *testing.T) {
	t.Parallel()
	if got := (Dialect{}).RowOrder(); got != "rowid" {
		t.Fatalf("RowOrder() = %q, want rowid", got)
	}
	if got := (Dialect{}).Reserved(); len(got) == 0 || got[0] != "ROWID" {
		t.Fatalf("Reserved() = %v, want the row-id aliases", got)
	}
}
