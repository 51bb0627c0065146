package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stepstore/internal/datasource/file"
	"stepstore/internal/stepstore"
)

// loadColumns reads declarations from the -columns flag and, when set, the
// -columns-file list. Flag columns come first.
func loadColumns(ctx context.Context, flagVal, path string) ([]stepstore.Column, error) {
	cols, err := parseColumns(flagVal)
	if err != nil {
		return nil, err
	}
	if path != "" {
		lines, err := file.ReadList(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("columns file: %w", err)
		}
		for _, l := range lines {
			c, err := parseColumn(l)
			if err != nil {
				return nil, fmt.Errorf("columns file %s: %w", path, err)
			}
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("no columns declared; use -columns or -columns-file")
	}
	return cols, nil
}

// parseColumns splits "NAME:TYPE,..." on commas outside parentheses so
// types such as DECIMAL(10,2) survive.
func parseColumns(s string) ([]stepstore.Column, error) {
	var (
		out   []stepstore.Column
		depth int
		start int
	)
	emit := func(part string) error {
		if strings.TrimSpace(part) == "" {
			return nil
		}
		c, err := parseColumn(part)
		if err != nil {
			return err
		}
		out = append(out, c)
		return nil
	}
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if err := emit(s[start:i]); err != nil {
					return nil, err
				}
				start = i + 1
			}
		}
	}
	if err := emit(s[start:]); err != nil {
		return nil, err
	}
	return out, nil
}

func parseColumn(s string) (stepstore.Column, error) {
	name, typ, ok := strings.Cut(s, ":")
	name, typ = strings.TrimSpace(name), strings.TrimSpace(typ)
	if !ok || name == "" || typ == "" {
		return stepstore.Column{}, fmt.Errorf("column %q: want NAME:TYPE", strings.TrimSpace(s))
	}
	return stepstore.Column{Name: name, Type: typ}, nil
}

// cellFor converts a CSV cell for a column of the given SQL type.
func cellFor(sqlType, cell string) stepstore.Value {
	if isIntegerType(sqlType) {
		if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return stepstore.Int(i)
		}
	}
	return stepstore.Text(cell)
}

func isIntegerType(sqlType string) bool {
	t := strings.ToUpper(strings.TrimSpace(sqlType))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "INT2", "INT4", "INT8":
		return true
	}
	return false
}

type stdinSource struct{ r io.Reader }

func (s stdinSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(s.r), nil
}
