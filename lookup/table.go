// Copyright 2022 ZK-Garage
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lookup

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Table is a width-4 lookup table: each row is a tuple the lookup gate may
// query. Rows are ordered; duplicates are allowed.
type Table struct {
	rows [][4]fr.Element
}

// NewTable returns an empty lookup table.
func NewTable() *Table {
	return &Table{}
}

// NewRangeTable returns the table of rows (i, 0, 0, 0) for i in [lower, upper).
func NewRangeTable(lower, upper uint64) *Table {
	t := NewTable()
	var row [4]fr.Element
	for i := lower; i < upper; i++ {
		row[0].SetUint64(i)
		t.AddRow(row)
	}
	return t
}

// NewXorTable returns the table of rows (a, b, a^b, 0) for all a, b of the
// given bit width.
func NewXorTable(bits uint) *Table {
	return newBinaryOpTable(bits, func(a, b uint64) uint64 { return a ^ b })
}

// NewAndTable returns the table of rows (a, b, a&b, 0) for all a, b of the
// given bit width.
func NewAndTable(bits uint) *Table {
	return newBinaryOpTable(bits, func(a, b uint64) uint64 { return a & b })
}

func newBinaryOpTable(bits uint, op func(a, b uint64) uint64) *Table {
	t := NewTable()
	bound := uint64(1) << bits
	var row [4]fr.Element
	for a := uint64(0); a < bound; a++ {
		for b := uint64(0); b < bound; b++ {
			row[0].SetUint64(a)
			row[1].SetUint64(b)
			row[2].SetUint64(op(a, b))
			t.AddRow(row)
		}
	}
	return t
}

// AddRow appends a row to the table.
func (t *Table) AddRow(row [4]fr.Element) {
	t.rows = append(t.rows, row)
}

// AddRowUint64 appends the row (a, b, c, d) given as integers.
func (t *Table) AddRowUint64(a, b, c, d uint64) {
	var row [4]fr.Element
	row[0].SetUint64(a)
	row[1].SetUint64(b)
	row[2].SetUint64(c)
	row[3].SetUint64(d)
	t.AddRow(row)
}

// NbRows returns the number of rows.
func (t *Table) NbRows() int { return len(t.rows) }

// Row returns the i-th row.
func (t *Table) Row(i int) [4]fr.Element { return t.rows[i] }

// Contains reports whether the table contains the given row.
func (t *Table) Contains(row *[4]fr.Element) bool {
	for i := range t.rows {
		if t.rows[i][0].Equal(&row[0]) &&
			t.rows[i][1].Equal(&row[1]) &&
			t.rows[i][2].Equal(&row[2]) &&
			t.rows[i][3].Equal(&row[3]) {
			return true
		}
	}
	return false
}

// Columns returns the four column multisets, each padded to size n.
func (t *Table) Columns(n uint64) ([4]MultiSet, error) {
	var cols [4]MultiSet
	for j := range cols {
		cols[j] = WithCapacity(len(t.rows))
	}
	for i := range t.rows {
		for j := range cols {
			cols[j].Push(t.rows[i][j])
		}
	}
	for j := range cols {
		if err := cols[j].Pad(n); err != nil {
			return cols, err
		}
	}
	return cols, nil
}
