package symbolic

import (
	"fmt"
	"strings"
)

// ============================================================
// Matrix: symbolic matrix
// ============================================================

type Matrix struct {
	rows, cols int
	data       [][]Expr
}

// NewMatrix returns a rows×cols matrix of zeros. Either dimension may be 0.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("symdecomp: invalid matrix shape %dx%d", rows, cols))
	}
	data := make([][]Expr, rows)
	for i := range data {
		data[i] = make([]Expr, cols)
		for j := range data[i] {
			data[i][j] = N(0)
		}
	}
	return &Matrix{rows: rows, cols: cols, data: data}
}

// MatrixFromRows copies a grid; every row must have the same length.
func MatrixFromRows(rows [][]Expr) (*Matrix, error) {
	if len(rows) == 0 {
		return NewMatrix(0, 0), nil
	}
	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("symbolic: row %d has %d entries, want %d", i, len(r), cols)
		}
		copy(m.data[i], r)
	}
	return m, nil
}

// ColumnVector builds an n×1 matrix.
func ColumnVector(entries ...Expr) *Matrix {
	m := NewMatrix(len(entries), 1)
	for i, e := range entries {
		m.data[i][0] = e
	}
	return m
}

func (m *Matrix) checkBounds(row, col int) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		panic(fmt.Sprintf("symdecomp: matrix index out of range [%d,%d] for %dx%d", row, col, m.rows, m.cols))
	}
}

func (m *Matrix) At(row, col int) Expr {
	m.checkBounds(row, col)
	return m.data[row][col]
}

func (m *Matrix) Set(row, col int, val Expr) {
	m.checkBounds(row, col)
	m.data[row][col] = val
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }
func (m *Matrix) Size() int { return m.rows * m.cols }

func (m *Matrix) Row(i int) []Expr {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("symdecomp: matrix row %d out of range for %dx%d", i, m.rows, m.cols))
	}
	return append([]Expr(nil), m.data[i]...)
}

// Each calls fn for every entry in row-major order until fn returns false.
func (m *Matrix) Each(fn func(row, col int, e Expr) bool) {
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if !fn(i, j, m.data[i][j]) {
				return
			}
		}
	}
}

// MulVec returns the column m·v.
func (m *Matrix) MulVec(v []Expr) []Expr {
	if len(v) != m.cols {
		panic("symdecomp: matrix dimension mismatch in MulVec")
	}
	out := make([]Expr, m.rows)
	for i := 0; i < m.rows; i++ {
		terms := make([]Expr, m.cols)
		for k := 0; k < m.cols; k++ {
			terms[k] = MulOf(m.data[i][k], v[k])
		}
		out[i] = AddOf(terms...)
	}
	return out
}

func (m *Matrix) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("[")
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(m.data[i][j].String())
		}
		sb.WriteString("]")
	}
	sb.WriteString("]")
	return sb.String()
}

func (m *Matrix) LaTeX() string {
	var sb strings.Builder
	sb.WriteString("\\begin{pmatrix}")
	for i := 0; i < m.rows; i++ {
		if i > 0 {
			sb.WriteString(" \\\\ ")
		}
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				sb.WriteString(" & ")
			}
			sb.WriteString(m.data[i][j].LaTeX())
		}
	}
	sb.WriteString("\\end{pmatrix}")
	return sb.String()
}
