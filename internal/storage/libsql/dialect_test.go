package libsql

import (
	"testing"

	"stepstore/internal/storage"
)

func TestDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     storage.Config
		want    string
		wantErr bool
	}{
		{name: "token from password", cfg: storage.Config{URI: "libsql://db.turso.io", Password: "tok"}, want: "libsql://db.turso.io?authToken=tok"},
		{name: "no token", cfg: storage.Config{URI: "http://127.0.0.1:8080", Schema: "ignored"}, want: "http://127.0.0.1:8080"},
		{name: "file scheme rejected", cfg: storage.Config{URI: "file:/tmp/x.db"}, wantErr: true},
		{name: "empty", cfg: storage.Config{}, wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Dialect{}.DSN(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DSN() error = nil, want non-nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("DSN() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}
