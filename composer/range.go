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

// RangeGate constrains v to numBits bits by decomposing it into base-4
// accumulators checked by the range widget. The decomposition runs most
// significant quad first:
//
//	acc_0 = 0, acc_{t+1} = 4*acc_t + quad_t
//
// so the final accumulator equals v; it is wired into the fourth column of a
// closing row whose selectors are all zero, where the widget's wrap-around
// term picks it up.
//
// Odd bit counts are handled by range checking 2v at numBits+1 bits, which
// holds iff v fits numBits bits.
func (c *StandardComposer) RangeGate(v Variable, numBits int) (Variable, error) {
	if numBits <= 0 {
		return v, fmt.Errorf("range gate: bit size must be positive, got %d", numBits)
	}
	if numBits%2 == 1 {
		var two fr.Element
		two.SetUint64(2)
		doubled := c.BigAdd(v, c.zero, c.zero, two, fr.Element{}, fr.Element{}, fr.Element{}, nil)
		if _, err := c.RangeGate(doubled, numBits+1); err != nil {
			return v, err
		}
		return v, nil
	}

	numQuads := numBits / 2
	// four quads per row; pad at the most significant end so padding quads
	// are zero and do not change the accumulated value
	numPadding := (4 - numQuads%4) % 4
	total := numQuads + numPadding

	value := c.variables[v]
	valueBig := value.ToBigIntRegular(new(big.Int))

	// quads, most significant first, including padding
	quads := make([]uint64, total)
	for q := 0; q < numQuads; q++ {
		shift := uint(2 * (numQuads - 1 - q))
		quads[numPadding+q] = new(big.Int).Rsh(valueBig, shift).Uint64() & 3
	}

	// accumulators: acc[t] holds the value of the top t quads
	accs := make([]Variable, total+1)
	accs[0] = c.zero
	var four fr.Element
	four.SetUint64(4)
	var running fr.Element
	for t := 0; t < total; t++ {
		var quad fr.Element
		quad.SetUint64(quads[t])
		running.Mul(&running, &four).Add(&running, &quad)
		accs[t+1] = c.AddInput(running)
	}

	var one fr.Element
	one.SetOne()
	rows := total / 4
	for r := 0; r < rows; r++ {
		d := accs[4*r]
		o := accs[4*r+1]
		b := accs[4*r+2]
		a := accs[4*r+3]
		c.appendGate(a, b, o, d, selectors{Range: one}, nil)
	}
	// closing row: w4 carries the final accumulator for the previous row's
	// wrap-around term, every selector is off
	c.appendGate(c.zero, c.zero, c.zero, accs[total], selectors{}, nil)

	// the final accumulator must be v itself
	c.AssertEqual(accs[total], v)

	return accs[total], nil
}
