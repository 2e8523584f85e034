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
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// LookupGate constrains (a, b, o, d) to be a row of the composer's table.
// The query is checked eagerly against the table so that a bad witness fails
// at circuit construction instead of deep inside proving.
func (c *StandardComposer) LookupGate(a, b, o, d Variable) error {
	row := [4]fr.Element{
		c.variables[a],
		c.variables[b],
		c.variables[o],
		c.variables[d],
	}
	if !c.table.Contains(&row) {
		return fmt.Errorf("lookup gate: row %v is not in the table", row)
	}

	var one fr.Element
	one.SetOne()
	c.appendGate(a, b, o, d, selectors{Lookup: one}, nil)
	return nil
}

// XorGate looks up o = a ^ b in the table, which must contain the XOR rows
// for the operand width. The fourth column holds zero.
func (c *StandardComposer) XorGate(a, b Variable) (Variable, error) {
	return c.binaryOpGate(a, b, func(x, y uint64) uint64 { return x ^ y })
}

// AndGate looks up o = a & b in the table.
func (c *StandardComposer) AndGate(a, b Variable) (Variable, error) {
	return c.binaryOpGate(a, b, func(x, y uint64) uint64 { return x & y })
}

func (c *StandardComposer) binaryOpGate(a, b Variable, op func(x, y uint64) uint64) (Variable, error) {
	va := c.variables[a].ToBigIntRegular(new(big.Int))
	vb := c.variables[b].ToBigIntRegular(new(big.Int))
	if !va.IsUint64() || !vb.IsUint64() {
		return 0, fmt.Errorf("lookup gate: operands do not fit 64 bits")
	}
	var vo fr.Element
	vo.SetUint64(op(va.Uint64(), vb.Uint64()))
	o := c.AddInput(vo)
	if err := c.LookupGate(a, b, o, c.zero); err != nil {
		return 0, err
	}
	return o, nil
}
