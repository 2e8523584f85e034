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

// Package lookup implements the multiset machinery backing the Plookup-style
// lookup argument: the MultiSet type with its sort/split operations and the
// four-column lookup table.
package lookup

import (
	"errors"
	"fmt"
	"math/big"
	"sort"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
)

var (
	// ErrElementNotInTable is returned when a queried element does not appear
	// in the lookup table.
	ErrElementNotInTable = errors.New("element not found in table")

	// ErrNotPowerOfTwo is returned when a target padding length is not a
	// power of two.
	ErrNotPowerOfTwo = errors.New("size must be a power of two")

	// ErrInvalidEncoding is returned by FromBytes on a malformed byte stream.
	ErrInvalidEncoding = errors.New("invalid multiset encoding")
)

// MultiSet is an ordered multiset of field elements. Each entry represents
// either a wire value or an entry of a lookup table column.
type MultiSet []fr.Element

// WithCapacity returns an empty MultiSet with room for n elements.
func WithCapacity(n int) MultiSet {
	return make(MultiSet, 0, n)
}

// WithLen returns a MultiSet of n zero elements.
func WithLen(n int) MultiSet {
	return make(MultiSet, n)
}

// Push appends value to the multiset.
func (m *MultiSet) Push(value fr.Element) {
	*m = append(*m, value)
}

// PushUint64 appends the field element representing v.
func (m *MultiSet) PushUint64(v uint64) {
	var e fr.Element
	e.SetUint64(v)
	*m = append(*m, e)
}

// Extend appends all values to the multiset.
func (m *MultiSet) Extend(values []fr.Element) {
	*m = append(*m, values...)
}

// Last returns the last element, or false if the multiset is empty.
func (m MultiSet) Last() (fr.Element, bool) {
	if len(m) == 0 {
		return fr.Element{}, false
	}
	return m[len(m)-1], true
}

// Len returns the cardinality of the multiset.
func (m MultiSet) Len() int { return len(m) }

// IsEmpty reports whether the multiset has no elements.
func (m MultiSet) IsEmpty() bool { return len(m) == 0 }

// Position returns the index of the first occurrence of element, or -1.
func (m MultiSet) Position(element *fr.Element) int {
	for i := range m {
		if m[i].Equal(element) {
			return i
		}
	}
	return -1
}

// Contains reports whether entry occurs in the multiset.
func (m MultiSet) Contains(entry *fr.Element) bool {
	return m.Position(entry) != -1
}

// ContainsAll reports whether every element of other occurs in m. Membership
// is multiplicity-insensitive.
func (m MultiSet) ContainsAll(other MultiSet) bool {
	for i := range other {
		if !m.Contains(&other[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the multiset.
func (m MultiSet) Clone() MultiSet {
	c := make(MultiSet, len(m))
	copy(c, m)
	return c
}

// Pad extends the multiset to length n by repeating its first element,
// inserting a zero first when the multiset is empty. n must be a power of two
// not smaller than the current length.
func (m *MultiSet) Pad(n uint64) error {
	if n == 0 || n&(n-1) != 0 {
		return fmt.Errorf("pad to %d: %w", n, ErrNotPowerOfTwo)
	}
	if uint64(len(*m)) > n {
		return fmt.Errorf("pad to %d: multiset has %d elements", n, len(*m))
	}
	if len(*m) == 0 {
		*m = append(*m, fr.Element{})
	}
	first := (*m)[0]
	for uint64(len(*m)) < n {
		*m = append(*m, first)
	}
	return nil
}

// SortedConcat merges other into m and sorts the result in ascending order of
// the regular (non-Montgomery) representation.
func (m *MultiSet) SortedConcat(other MultiSet) {
	*m = append(*m, other...)
	sort.Slice(*m, func(i, j int) bool {
		return (*m)[i].Cmp(&(*m)[j]) < 0
	})
}

// SortedHalve concatenates the table m with the query f and splits the
// combined multiset into two equal halves h1, h2 of alternating parity:
// walking the table in order, each run of equal values is distributed evenly
// between the halves, with odd leftovers alternating sides. This interleaving
// is what makes the two halves satisfy the lookup grand-product identity
// across the domain boundary.
//
// Every element of f must already occur in m; the first missing element
// aborts with ErrElementNotInTable.
func (m MultiSet) SortedHalve(f MultiSet) (h1, h2 MultiSet, err error) {
	counters := make(map[fr.Element]int, len(m))
	for _, e := range m {
		counters[e]++
	}
	for i := range f {
		if _, ok := counters[f[i]]; !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrElementNotInTable, f[i].String())
		}
		counters[f[i]]++
	}

	nbElems := len(m) + len(f)
	h1 = make(MultiSet, 0, (nbElems+1)/2)
	h2 = make(MultiSet, 0, nbElems/2)
	parity := 0
	for _, e := range m {
		count := counters[e]
		if count == 0 {
			// duplicate table entry, already distributed
			continue
		}
		for i := 0; i < count/2; i++ {
			h1 = append(h1, e)
			h2 = append(h2, e)
		}
		if count%2 == 1 {
			if parity == 1 {
				h2 = append(h2, e)
				parity = 0
			} else {
				h1 = append(h1, e)
				parity = 1
			}
		}
		counters[e] = 0
	}

	return h1, h2, nil
}

// Halve splits the multiset by index into two overlapping halves [0, n/2] and
// [n/2, end] sharing one boundary element, so that h1[last] == h2[0]. The
// overlap is what makes the wrap-around check against domain-shifted
// evaluations hold.
func (m MultiSet) Halve() (MultiSet, MultiSet) {
	mid := len(m) / 2
	h1 := make(MultiSet, mid+1)
	copy(h1, m[:mid+1])
	h2 := make(MultiSet, len(m)-mid)
	copy(h2, m[mid:])
	return h1, h2
}

// HalveAlternating splits the multiset into its even-indexed and odd-indexed
// elements.
func (m MultiSet) HalveAlternating() (MultiSet, MultiSet) {
	evens := make(MultiSet, 0, (len(m)+1)/2)
	odds := make(MultiSet, 0, len(m)/2)
	for i := range m {
		if i%2 == 0 {
			evens = append(evens, m[i])
		} else {
			odds = append(odds, m[i])
		}
	}
	return evens, odds
}

// Compress folds equal-length multisets into one by a Horner random linear
// combination with challenge alpha, last multiset most significant:
// out = sets[0] + alpha*sets[1] + ... + alpha^(k-1)*sets[k-1].
func Compress(sets []MultiSet, alpha fr.Element) MultiSet {
	n := len(sets[0])
	for _, s := range sets[1:] {
		if len(s) != n {
			panic("lookup: compressing multisets of different lengths")
		}
	}
	res := WithLen(n)
	var t fr.Element
	for i := len(sets) - 1; i >= 0; i-- {
		for j := 0; j < n; j++ {
			t.Mul(&res[j], &alpha)
			res[j].Add(&t, &sets[i][j])
		}
	}
	return res
}

// ToPolynomial interprets the multiset as evaluations over the domain and
// returns the coefficient form via inverse FFT. The multiset length must
// equal the domain cardinality.
func (m MultiSet) ToPolynomial(domain *fft.Domain) ([]fr.Element, error) {
	if uint64(len(m)) != domain.Cardinality {
		return nil, fmt.Errorf("multiset has %d elements, domain has cardinality %d", len(m), domain.Cardinality)
	}
	p := make([]fr.Element, len(m))
	copy(p, m)
	domain.FFTInverse(p, fft.DIF)
	fft.BitReverse(p)
	return p, nil
}

// Bytes returns the multiset encoded element by element, each as its 32-byte
// big-endian regular-form representation.
func (m MultiSet) Bytes() []byte {
	out := make([]byte, 0, len(m)*fr.Bytes)
	for i := range m {
		b := m[i].Bytes()
		out = append(out, b[:]...)
	}
	return out
}

// FromBytes decodes a multiset produced by Bytes. Each 32-byte limb must be
// the canonical big-endian form of a field element; encodings at or above the
// modulus are rejected rather than silently reduced.
func FromBytes(data []byte) (MultiSet, error) {
	if len(data)%fr.Bytes != 0 {
		return nil, fmt.Errorf("%w: length %d not a multiple of %d", ErrInvalidEncoding, len(data), fr.Bytes)
	}
	q := fr.Modulus()
	var limb big.Int
	m := make(MultiSet, len(data)/fr.Bytes)
	for i := range m {
		chunk := data[i*fr.Bytes : (i+1)*fr.Bytes]
		if limb.SetBytes(chunk).Cmp(q) >= 0 {
			return nil, fmt.Errorf("%w: limb %d is not a canonical field element", ErrInvalidEncoding, i)
		}
		m[i].SetBytes(chunk)
	}
	return m, nil
}
