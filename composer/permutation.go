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

// wireSlot locates one use of a variable: wire column and gate index.
type wireSlot struct {
	wire int
	gate int
}

// permutation records, per variable, every slot the variable occupies. The
// copy-constraint permutation cycles through those slots.
type permutation struct {
	occurrences map[Variable][]wireSlot
}

func newPermutation() *permutation {
	return &permutation{occurrences: make(map[Variable][]wireSlot)}
}

func (p *permutation) addVariables(a, b, o, d Variable, gate int) {
	p.occurrences[a] = append(p.occurrences[a], wireSlot{0, gate})
	p.occurrences[b] = append(p.occurrences[b], wireSlot{1, gate})
	p.occurrences[o] = append(p.occurrences[o], wireSlot{2, gate})
	p.occurrences[d] = append(p.occurrences[d], wireSlot{3, gate})
}

// ComputeMapping builds the copy-constraint permutation over the 4n wire
// slots, padded to domain size n. Slot i of wire w is encoded as w*n + i;
// slots holding the same variable form a cycle, everything else maps to
// itself.
func (c *StandardComposer) ComputeMapping(n uint64) [4][]int64 {
	var sigma [4][]int64
	for w := 0; w < 4; w++ {
		sigma[w] = make([]int64, n)
		for i := uint64(0); i < n; i++ {
			sigma[w][i] = int64(uint64(w)*n + i)
		}
	}
	for _, slots := range c.perm.occurrences {
		for k, s := range slots {
			next := slots[(k+1)%len(slots)]
			sigma[s.wire][s.gate] = int64(uint64(next.wire)*n + uint64(next.gate))
		}
	}
	return sigma
}
