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

package composer

import (
	"errors"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/fxamacker/cbor/v2"

	"github.com/ZK-Garage/crypto/lookup"
)

// circuitShape is the serialized form of a composer: selector columns and
// wire indices, without witness values. Field elements travel as big-endian
// 32 byte strings.
type circuitShape struct {
	N         int            `cbor:"1,keyasint"`
	Selectors [9][]byte      `cbor:"2,keyasint"`
	Wires     [4][]int       `cbor:"3,keyasint"`
	PI        map[int][]byte `cbor:"4,keyasint"`
	Table     [][]byte       `cbor:"5,keyasint"`
	NbVars    int            `cbor:"6,keyasint"`
}

func packColumn(col []fr.Element) []byte {
	out := make([]byte, 0, len(col)*fr.Bytes)
	for i := range col {
		b := col[i].Bytes()
		out = append(out, b[:]...)
	}
	return out
}

func unpackColumn(data []byte) ([]fr.Element, error) {
	if len(data)%fr.Bytes != 0 {
		return nil, ErrInvalidShapeEncoding
	}
	col := make([]fr.Element, len(data)/fr.Bytes)
	for i := range col {
		col[i].SetBytes(data[i*fr.Bytes : (i+1)*fr.Bytes])
	}
	return col, nil
}

// ErrInvalidShapeEncoding is returned when a serialized circuit shape does
// not decode to whole field elements.
var ErrInvalidShapeEncoding = errors.New("composer: invalid circuit shape encoding")

// MarshalShape serializes the circuit shape, without witness values, so a
// verifier side can rebuild selector polynomials and public input positions.
func (c *StandardComposer) MarshalShape() ([]byte, error) {
	shape := circuitShape{
		N:      c.n,
		NbVars: len(c.variables),
		PI:     make(map[int][]byte, len(c.publicInputs)),
	}
	cols := [9][]fr.Element{c.qM, c.qL, c.qR, c.qO, c.q4, c.qC, c.qArith, c.qRange, c.qLookup}
	for i, col := range cols {
		shape.Selectors[i] = packColumn(col)
	}
	for w, col := range [4][]Variable{c.wL, c.wR, c.wO, c.w4} {
		shape.Wires[w] = make([]int, len(col))
		for i, v := range col {
			shape.Wires[w][i] = int(v)
		}
	}
	for p, v := range c.publicInputs {
		b := v.Bytes()
		shape.PI[p] = b[:]
	}
	for r := 0; r < c.table.NbRows(); r++ {
		row := c.table.Row(r)
		packed := make([]byte, 0, 4*fr.Bytes)
		for i := range row {
			b := row[i].Bytes()
			packed = append(packed, b[:]...)
		}
		shape.Table = append(shape.Table, packed)
	}
	return cbor.Marshal(&shape)
}

// UnmarshalShape rebuilds a composer from a serialized shape. Witness values
// are zeroed; the result is only fit for preprocessing, not proving.
func UnmarshalShape(data []byte) (*StandardComposer, error) {
	var shape circuitShape
	if err := cbor.Unmarshal(data, &shape); err != nil {
		return nil, err
	}

	table := lookup.NewTable()
	for _, packed := range shape.Table {
		if len(packed) != 4*fr.Bytes {
			return nil, ErrInvalidShapeEncoding
		}
		var row [4]fr.Element
		for i := range row {
			row[i].SetBytes(packed[i*fr.Bytes : (i+1)*fr.Bytes])
		}
		table.AddRow(row)
	}

	c := &StandardComposer{
		n:            shape.N,
		publicInputs: make(map[int]fr.Element),
		piPositions:  bitset.New(uint(shape.N) + 1),
		perm:         newPermutation(),
		table:        table,
	}
	c.variables = make([]fr.Element, shape.NbVars)

	var err error
	cols := []*[]fr.Element{&c.qM, &c.qL, &c.qR, &c.qO, &c.q4, &c.qC, &c.qArith, &c.qRange, &c.qLookup}
	for i, col := range cols {
		if *col, err = unpackColumn(shape.Selectors[i]); err != nil {
			return nil, err
		}
	}
	c.qLogic = make([]fr.Element, c.n)
	c.qFixedGroupAdd = make([]fr.Element, c.n)
	c.qVariableGroupAdd = make([]fr.Element, c.n)

	for w, col := range []*[]Variable{&c.wL, &c.wR, &c.wO, &c.w4} {
		*col = make([]Variable, len(shape.Wires[w]))
		for i, v := range shape.Wires[w] {
			(*col)[i] = Variable(v)
		}
	}
	for i := 0; i < c.n; i++ {
		c.perm.addVariables(c.wL[i], c.wR[i], c.wO[i], c.w4[i], i)
	}

	for p, b := range shape.PI {
		var v fr.Element
		v.SetBytes(b)
		c.publicInputs[p] = v
		c.piPositions.Set(uint(p))
	}

	c.checkColumns()
	return c, nil
}
