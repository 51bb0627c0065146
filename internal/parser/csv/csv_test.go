package csv

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         string
		opt        Options
		wantHeader []string
		wantRows   [][]string
		wantErr    string
	}{
		{
			name:     "no header",
			in:       "fuseki:dataset\nrdfs:label\n",
			wantRows: [][]string{{"fuseki:dataset"}, {"rdfs:label"}},
		},
		{
			name:       "header with BOM and trimming",
			in:         "\uFEFFPROPERTY , LABEL\n a , b \n",
			opt:        Options{HasHeader: true, TrimSpace: true},
			wantHeader: []string{"PROPERTY", "LABEL"},
			wantRows:   [][]string{{"a", "b"}},
		},
		{
			name:     "BOM stripped from first data cell without header",
			in:       "\uFEFFx,y\n",
			wantRows: [][]string{{"x", "y"}},
		},
		{
			name:     "semicolon delimiter and empty first cell kept",
			in:       ";kept\nv;w\n",
			opt:      Options{Comma: ';'},
			wantRows: [][]string{{"", "kept"}, {"v", "w"}},
		},
		{
			name:    "expected fields enforced",
			in:      "a,b\nc\n",
			opt:     Options{ExpectedFields: 2},
			wantErr: "line 2",
		},
		{
			name:     "ragged rows allowed by default",
			in:       "a,b\nc\n",
			wantRows: [][]string{{"a", "b"}, {"c"}},
		},
		{
			name: "empty input",
			in:   "",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Read(strings.NewReader(tt.in), tt.opt)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Read() error = %v, want substring %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got.Header, tt.wantHeader) {
				t.Fatalf("Read().Header = %q, want %q", got.Header, tt.wantHeader)
			}
			if !reflect.DeepEqual(got.Rows, tt.wantRows) {
				t.Fatalf("Read().Rows = %q, want %q", got.Rows, tt.wantRows)
			}
		})
	}
}

func TestWriteThenRead(t *testing.T) {
	t.Parallel()

	header := []string{"PROPERTY", "LABEL"}
	rows := [][]string{{"fuseki:dataset", "has, comma"}, {"q\"uote", ""}}

	var buf bytes.Buffer
	if err := Write(&buf, header, rows, 0); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := Read(&buf, Options{HasHeader: true})
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !reflect.DeepEqual(got.Header, header) || !reflect.DeepEqual(got.Rows, rows) {
		t.Fatalf("Read(Write()) = %q %q, want %q %q", got.Header, got.Rows, header, rows)
	}
}

func TestWriteWithoutHeader(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(&buf, nil, [][]string{{"a", "b"}}, '\t'); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := buf.String(); got != "a\tb\n" {
		t.Fatalf("Write() = %q, want %q", got, "a\tb\n")
	}
}

func TestStripHeaderBOM(t *testing.T) {
	t.Parallel()
	if got := StripHeaderBOM(nil); got != nil {
		t.Fatalf("StripHeaderBOM(nil) = %v", got)
	}
	if got := StripHeaderBOM([]string{"\uFEFFa", "b"}); got[0] != "a" {
		t.Fatalf("StripHeaderBOM() = %q", got)
	}
}
