package domain

// Cell is one column of a tabular record.
type Cell struct {
	Name  string
	Value string
}

// Row is one record from a tabular source. Cells keep the header order so
// that scans over every column are deterministic.
type Row []Cell

// RowOf builds a Row from alternating name/value pairs. A trailing name
// without a value is ignored.
func RowOf(pairs ...string) Row {
	r := make(Row, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		r = append(r, Cell{Name: pairs[i], Value: pairs[i+1]})
	}
	return r
}
