package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"stepstore/internal/datasource"
	"stepstore/internal/datasource/httpds"
	"stepstore/internal/httpapi"
	"stepstore/internal/parser/csv"
	"stepstore/internal/stepstore"
	"stepstore/internal/storage"
)

type command func(ctx context.Context, e env, args []string) error

var commands = map[string]command{
	"schema": runSchema,
	"save":   runSave,
	"query":  runQuery,
	"delete": runDelete,
	"serve":  runServe,
}

// tableFlags are shared by every table command.
type tableFlags struct {
	table, trans, step string
	columns, colsFile  string
}

func newFlagSet(e env, name string, tf *tableFlags, owner, decl bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.StringVar(&tf.table, "table", "", "table name")
	if owner {
		fs.StringVar(&tf.trans, "trans", "", "owning transformation id")
		fs.StringVar(&tf.step, "step", "", "owning step id")
	}
	if decl {
		fs.StringVar(&tf.columns, "columns", "", `column declarations, "NAME:TYPE,..."`)
		fs.StringVar(&tf.colsFile, "columns-file", "", "file with one NAME:TYPE per line")
	}
	return fs
}

func (tf tableFlags) owner() stepstore.OwnerKey {
	return stepstore.OwnerKey{Transformation: tf.trans, Step: tf.step}
}

func (tf tableFlags) declared(ctx context.Context) (stepstore.Table, error) {
	cols, err := loadColumns(ctx, tf.columns, tf.colsFile)
	if err != nil {
		return stepstore.Table{}, err
	}
	return stepstore.Table{Name: tf.table, Columns: cols}, nil
}

func parseFlags(fs *flag.FlagSet, args []string, tf *tableFlags, owner bool) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if tf.table == "" || (owner && (tf.trans == "" || tf.step == "")) {
		fmt.Fprintf(fs.Output(), "%s: -table is required", fs.Name())
		if owner {
			fmt.Fprint(fs.Output(), ", as are -trans and -step")
		}
		fmt.Fprintln(fs.Output())
		fs.PrintDefaults()
		return errUsage
	}
	return nil
}

func open(e env) (*storage.Manager, error) {
	return storage.NewManager(e.cfg.Store.Storage())
}

func runSchema(ctx context.Context, e env, args []string) error {
	var tf tableFlags
	fs := newFlagSet(e, "schema", &tf, false, true)
	force := fs.Bool("force", false, "drop the table first, discarding every owner's rows")
	if err := parseFlags(fs, args, &tf, false); err != nil {
		return err
	}
	t, err := tf.declared(ctx)
	if err != nil {
		return err
	}
	m, err := open(e)
	if err != nil {
		return err
	}
	return storage.Session(ctx, m, func(ctx context.Context) error {
		return stepstore.New(m).CreateSchema(ctx, t, *force)
	})
}

func runSave(ctx context.Context, e env, args []string) error {
	var tf tableFlags
	fs := newFlagSet(e, "save", &tf, true, true)
	in := fs.String("in", "-", `CSV input: a path, an http(s) URL, or "-" for stdin`)
	header := fs.Bool("header", false, "the first CSV record is a header")
	if err := parseFlags(fs, args, &tf, true); err != nil {
		return err
	}
	t, err := tf.declared(ctx)
	if err != nil {
		return err
	}
	rows, err := readRows(ctx, e, *in, *header, t.Columns)
	if err != nil {
		return err
	}
	m, err := open(e)
	if err != nil {
		return err
	}
	return storage.Session(ctx, m, func(ctx context.Context) error {
		return stepstore.New(m).Save(ctx, t, tf.owner(), rows)
	})
}

// readRows decodes CSV from location. Cells of integer-typed columns that
// parse as integers become Int; everything else is Text.
func readRows(ctx context.Context, e env, location string, header bool, cols []stepstore.Column) ([]stepstore.Row, error) {
	var src datasource.Source
	if location == "-" {
		src = stdinSource{e.stdin}
	} else {
		src = datasource.For(location, httpds.NewClient(httpds.Config{MaxRetries: 3}))
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	tbl, err := csv.Read(rc, csv.Options{HasHeader: header, TrimSpace: true, ExpectedFields: len(cols)})
	if err != nil {
		return nil, err
	}
	rows := make([]stepstore.Row, len(tbl.Rows))
	for i, rec := range tbl.Rows {
		row := make(stepstore.Row, len(rec))
		for j, cell := range rec {
			row[j] = cellFor(cols[j].Type, cell)
		}
		rows[i] = row
	}
	return rows, nil
}

func runQuery(ctx context.Context, e env, args []string) error {
	var tf tableFlags
	fs := newFlagSet(e, "query", &tf, true, false)
	columns := fs.String("columns", "", `column names to return, "A,B"`)
	noHeader := fs.Bool("no-header", false, "omit the CSV header line")
	if err := parseFlags(fs, args, &tf, true); err != nil {
		return err
	}
	names := splitNames(*columns)

	m, err := open(e)
	if err != nil {
		return err
	}
	return storage.Session(ctx, m, func(ctx context.Context) error {
		rows, err := stepstore.New(m).Query(ctx, tf.table, tf.owner(), names)
		if err != nil {
			return err
		}
		got, err := rows.Collect()
		if err != nil {
			return err
		}
		out := make([][]string, len(got))
		for i, r := range got {
			out[i] = r.Strings()
		}
		var head []string
		if !*noHeader {
			head = rows.Columns()
		}
		return csv.Write(e.stdout, head, out, 0)
	})
}

func runDelete(ctx context.Context, e env, args []string) error {
	var tf tableFlags
	fs := newFlagSet(e, "delete", &tf, true, false)
	if err := parseFlags(fs, args, &tf, true); err != nil {
		return err
	}
	m, err := open(e)
	if err != nil {
		return err
	}
	return storage.Session(ctx, m, func(ctx context.Context) error {
		_, err := stepstore.New(m).Delete(ctx, tf.table, tf.owner())
		return err
	})
}

func runServe(ctx context.Context, e env, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	addr := fs.String("addr", e.cfg.HTTP.Addr, "listen address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	m, err := open(e)
	if err != nil {
		return err
	}
	if _, err := m.Connect(ctx); err != nil {
		return err
	}
	return httpapi.New(m).Run(ctx, *addr)
}

func splitNames(s string) []string {
	var out []string
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
