package ddl

import "testing"

func TestNormalizeIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "already normal", in: "PROPERTY", want: "PROPERTY"},
		{name: "lowercase", in: "property", want: "PROPERTY"},
		{name: "single space", in: "Property name", want: "PROPERTY_NAME"},
		{name: "whitespace run folds", in: "property \t  name", want: "PROPERTY_NAME"},
		{name: "surrounding space trimmed", in: "  label  ", want: "LABEL"},
		{name: "accents kept", in: "třída", want: "TŘÍDA"},
		{name: "decomposed accents compose", in: "cafe\u0301", want: "CAF\u00c9"},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeIdent(tt.in); got != tt.want {
				t.Fatalf("NormalizeIdent(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
