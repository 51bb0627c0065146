package stepstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindNull is the zero Value. It only appears in query results (SQL NULL)
	// and is rejected by Save.
	KindNull Kind = iota
	KindText
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInt:
		return "int"
	default:
		return "null"
	}
}

// Value is a single cell: text or a 64-bit integer.
type Value struct {
	kind Kind
	s    string
	i    int64
}

// Text returns a text cell.
func Text(s string) Value { return Value{kind: KindText, s: s} }

// Int returns an integer cell.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the Null cell read back from SQL NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsText returns the text payload and whether v is a text cell.
func (v Value) AsText() (string, bool) { return v.s, v.kind == KindText }

// AsInt returns the integer payload and whether v is an integer cell.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// IsEmpty reports whether v is the empty text cell. Rows whose first cell is
// empty are not persisted by Save.
func (v Value) IsEmpty() bool { return v.kind == KindText && v.s == "" }

// String renders the cell for display; Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	default:
		return ""
	}
}

// arg returns the driver argument for a non-null cell.
func (v Value) arg() any {
	switch v.kind {
	case KindText:
		return v.s
	case KindInt:
		return v.i
	default:
		return nil
	}
}

// MarshalJSON encodes text as a JSON string, integers as numbers and Null as
// null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.s)
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts a string, an integral number or null. Any other JSON
// type is an error.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0:
		return fmt.Errorf("stepstore: empty cell")
	case string(b) == "null":
		*v = Value{}
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	}
	i, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("stepstore: cell %s is neither text nor a 64-bit integer", b)
	}
	*v = Int(i)
	return nil
}

// ValueOf converts a Go value into a cell. Strings become Text; signed and
// unsigned integers that fit in int64 become Int; a Value passes through.
// Anything else is rejected.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case string:
		return Text(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Value{}, fmt.Errorf("stepstore: %d overflows int64", t)
		}
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("stepstore: %d overflows int64", t)
		}
		return Int(int64(t)), nil
	default:
		return Value{}, fmt.Errorf("stepstore: unsupported cell type %T", x)
	}
}

// Row is one record's cells in declared column order. Owner-key cells are
// never part of a Row.
type Row []Value

// ValuesOf builds a Row with ValueOf, failing on the first unsupported cell.
func ValuesOf(xs ...any) (Row, error) {
	row := make(Row, len(xs))
	for i, x := range xs {
		v, err := ValueOf(x)
		if err != nil {
			return nil, &ValueError{Row: -1, Column: i, Reason: err.Error()}
		}
		row[i] = v
	}
	return row, nil
}

// Strings renders every cell with Value.String.
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.String()
	}
	return out
}

// fromDriver converts a value scanned into *any back into a cell.
func fromDriver(x any) Value {
	switch t := x.(type) {
	case nil:
		return Value{}
	case int64:
		return Int(t)
	case int32:
		return Int(int64(t))
	case int:
		return Int(int64(t))
	case string:
		return Text(t)
	case []byte:
		return Text(string(t))
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return Int(int64(t))
		}
		return Text(strconv.FormatFloat(t, 'f', -1, 64))
	case time.Time:
		return Text(t.Format(time.RFC3339Nano))
	case bool:
		if t {
			return Int(1)
		}
		return Int(0)
	default:
		return Text(fmt.Sprint(t))
	}
}
