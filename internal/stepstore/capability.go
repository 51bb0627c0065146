package stepstore

// TableNameExposer is implemented by pipeline steps that persist their
// configuration in a keyed table. ok is false when the step currently owns
// no table.
type TableNameExposer interface {
	ExposesTableName() (name string, ok bool)
}

// ExposedTable returns the table owned by v, if v exposes one.
func ExposedTable(v any) (string, bool) {
	e, ok := v.(TableNameExposer)
	if !ok {
		return "", false
	}
	return e.ExposesTableName()
}
