package services

import "strings"

// rowFold is the accumulator threaded through JoinWrappedRows. pending is the
// row still open to continuation lines; done holds rows that are closed.
type rowFold struct {
	done    [][]string
	pending []string
}

func (f rowFold) step(row []string) rowFold {
	if f.pending != nil && isBlank(row[0]) {
		f.pending = joinCells(f.pending, row)
		return f
	}
	if f.pending != nil {
		f.done = append(f.done, f.pending)
	}
	f.pending = cloneRow(row)
	return f
}

func (f rowFold) flush() [][]string {
	if f.pending != nil {
		f.done = append(f.done, f.pending)
	}
	if f.done == nil {
		return [][]string{}
	}
	return f.done
}

// JoinWrappedRows drops rows made only of blank cells, then folds every row whose
// first cell is blank into the row above it, joining cell text with a space.
// Cell text wrapped onto a second line by the PDF producer ends up in one row.
func JoinWrappedRows(rows [][]string) [][]string {
	acc := rowFold{}
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		acc = acc.step(row)
	}
	return acc.flush()
}

func joinCells(base, continuation []string) []string {
	if len(continuation) > len(base) {
		base = fitRow(base, len(continuation))
	}
	for i, cell := range continuation {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if strings.TrimSpace(base[i]) == "" {
			base[i] = cell
			continue
		}
		base[i] = strings.TrimSpace(base[i]) + " " + cell
	}
	return base
}

func isBlank(cell string) bool {
	return strings.TrimSpace(cell) == ""
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if !isBlank(cell) {
			return false
		}
	}
	return true
}
