package schema

import "fmt"

// Record is the untyped row representation at the storage boundary: every cell
// is a string keyed by column name. Backends never hand rows past this shape;
// conversion to the typed model happens in internal/model.
type Record map[string]string

// Table fixes the name and column order of a logical table. The column order
// is part of the on-sheet/on-disk contract: append and update both derive cell
// positions from it, never from map iteration.
type Table struct {
	Name    string
	Columns []string
}

var (
	Users = Table{
		Name:    "Usuarios",
		Columns: []string{"nome", "sobrenome", "telefone", "email", "senha"},
	}

	Budgets = Table{
		Name: "Orcamentos",
		Columns: []string{
			"id", "user_email", "user_nome", "localizacao", "medidas",
			"descricao", "status", "imagens", "data_criacao",
		},
	}
)

// Col returns the zero-based position of a column, or -1 if the table has no
// such column.
func (t Table) Col(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HeaderRow returns the header cells written when a table is created.
func (t Table) HeaderRow() []interface{} {
	row := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		row[i] = c
	}
	return row
}

// Row serializes a record into one ordered row. Fields absent from the record
// serialize as empty cells in their fixed position; fields the table does not
// know are dropped.
func (t Table) Row(rec Record) []interface{} {
	row := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		row[i] = rec[c]
	}
	return row
}

// Record builds a field-keyed record from one row using the given header for
// the column names. Short rows read as empty strings, extra cells beyond the
// header are ignored. Every known column is present in the result so callers
// never probe for key existence.
func (t Table) Record(header []string, row []interface{}) Record {
	rec := make(Record, len(t.Columns))
	for _, c := range t.Columns {
		rec[c] = ""
	}
	for i, name := range header {
		if i >= len(row) {
			break
		}
		rec[name] = cellString(row[i])
	}
	return rec
}

// cellString normalizes a sheet cell to a string; the Sheets API hands back
// interface{} values that are almost always strings already.
func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
