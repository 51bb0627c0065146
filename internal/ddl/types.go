package ddl

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - SQLType: type and inline constraint text supplied by the caller
//     (e.g., VARCHAR(100), INTEGER)
//   - Nullable: whether NULL is allowed; false renders NOT NULL
//   - PrimaryKey: whether the column is part of the composite primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name and an ordered list of columns. Primary key
// columns are emitted in declaration order.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// PrimaryKey returns the names of the columns flagged as primary key, in
// declaration order.
func (t TableDef) PrimaryKey() []string {
	var pks []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pks = append(pks, c.Name)
		}
	}
	return pks
}

// RenderOptions controls dialect-specific parts of a CREATE TABLE statement.
type RenderOptions struct {
	// Quote quotes a single identifier. Nil emits identifiers verbatim.
	Quote func(string) string

	// IfNotExists adds IF NOT EXISTS after CREATE TABLE.
	IfNotExists bool
}

func (o RenderOptions) quote(id string) string {
	if o.Quote == nil {
		return id
	}
	return o.Quote(id)
}
