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
	"bytes"
	"sort"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromUint64(vs ...uint64) MultiSet {
	m := WithCapacity(len(vs))
	for _, v := range vs {
		m.PushUint64(v)
	}
	return m
}

func TestPad(t *testing.T) {
	m := fromUint64(2, 3, 5)
	require.NoError(t, m.Pad(8))
	assert.Equal(t, 8, m.Len())
	var two fr.Element
	two.SetUint64(2)
	for i := 3; i < 8; i++ {
		assert.True(t, m[i].Equal(&two))
	}
}

func TestPadRejectsNonPowerOfTwo(t *testing.T) {
	m := fromUint64(1, 2)
	err := m.Pad(6)
	assert.ErrorIs(t, err, ErrNotPowerOfTwo)
}

func TestPadEmpty(t *testing.T) {
	var m MultiSet
	require.NoError(t, m.Pad(4))
	assert.Equal(t, 4, m.Len())
	for i := range m {
		assert.True(t, m[i].IsZero())
	}
}

func TestPadRejectsShrinking(t *testing.T) {
	m := fromUint64(1, 2, 3, 4, 5)
	assert.Error(t, m.Pad(4))
}

func TestSortedConcat(t *testing.T) {
	m := fromUint64(7, 1, 5)
	m.SortedConcat(fromUint64(4, 1))
	expected := fromUint64(1, 1, 4, 5, 7)
	require.Equal(t, expected.Len(), m.Len())
	for i := range m {
		assert.True(t, m[i].Equal(&expected[i]))
	}
}

func TestSortedHalve(t *testing.T) {
	table := fromUint64(1, 2, 3, 4)
	f := fromUint64(1, 2, 2, 3)

	h1, h2, err := table.SortedHalve(f)
	require.NoError(t, err)

	// even and odd interleave of the merged multiset 1 1 2 2 2 3 3 4
	expectH1 := fromUint64(1, 2, 2, 3)
	expectH2 := fromUint64(1, 2, 3, 4)
	require.Equal(t, expectH1.Len(), h1.Len())
	require.Equal(t, expectH2.Len(), h2.Len())
	for i := range h1 {
		assert.True(t, h1[i].Equal(&expectH1[i]))
		assert.True(t, h2[i].Equal(&expectH2[i]))
	}
}

func TestSortedHalveRejectsMissingElement(t *testing.T) {
	table := fromUint64(1, 2, 3, 4)
	f := fromUint64(1, 9)
	_, _, err := table.SortedHalve(f)
	assert.ErrorIs(t, err, ErrElementNotInTable)
}

func TestHalveOverlaps(t *testing.T) {
	m := fromUint64(1, 2, 3, 4, 5, 6)
	h1, h2 := m.Halve()
	assert.Equal(t, 4, h1.Len())
	assert.Equal(t, 3, h2.Len())
	last := h1[h1.Len()-1]
	assert.True(t, last.Equal(&h2[0]))
}

func TestCompress(t *testing.T) {
	a := fromUint64(1, 2)
	b := fromUint64(10, 20)
	var alpha fr.Element
	alpha.SetUint64(3)

	out := Compress([]MultiSet{a, b}, alpha)

	// 1 + 3*10, 2 + 3*20
	expected := fromUint64(31, 62)
	for i := range out {
		assert.True(t, out[i].Equal(&expected[i]))
	}
}

func TestCompressRejectsLengthMismatch(t *testing.T) {
	var alpha fr.Element
	alpha.SetUint64(3)
	assert.Panics(t, func() {
		Compress([]MultiSet{fromUint64(1), fromUint64(1, 2)}, alpha)
	})
}

func TestPositionAndContains(t *testing.T) {
	m := fromUint64(5, 7, 5)
	var five, nine fr.Element
	five.SetUint64(5)
	nine.SetUint64(9)
	assert.Equal(t, 0, m.Position(&five))
	assert.True(t, m.Contains(&five))
	assert.False(t, m.Contains(&nine))
	assert.Equal(t, -1, m.Position(&nine))
}

func genMultiSet(maxLen int) gopter.Gen {
	return gen.SliceOf(gen.UInt64()).Map(func(vs []uint64) MultiSet {
		if len(vs) > maxLen {
			vs = vs[:maxLen]
		}
		return fromUint64(vs...)
	})
}

func TestBytesRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("FromBytes inverts Bytes", prop.ForAll(
		func(m MultiSet) bool {
			decoded, err := FromBytes(m.Bytes())
			if err != nil || decoded.Len() != m.Len() {
				return false
			}
			for i := range m {
				if !decoded[i].Equal(&m[i]) {
					return false
				}
			}
			return true
		},
		genMultiSet(64),
	))

	properties.TestingRun(t)
}

func TestFromBytesRejectsNonCanonicalLimb(t *testing.T) {
	data := bytes.Repeat([]byte{0xff}, fr.Bytes)
	_, err := FromBytes(data)
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	// a valid limb before the bad one must not mask the error
	good := fromUint64(42).Bytes()
	_, err = FromBytes(append(good, data...))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestFromBytesRejectsRaggedLength(t *testing.T) {
	_, err := FromBytes(make([]byte, fr.Bytes+1))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestSortedHalvePreservesElements(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("halves merge back to table and queries", prop.ForAll(
		func(raw []uint64) bool {
			if len(raw) == 0 {
				return true
			}
			table := fromUint64(raw...)
			// queries drawn from the table itself
			f := WithCapacity(len(raw))
			for i := range raw {
				f.Push(table[i%table.Len()])
			}
			h1, h2, err := table.SortedHalve(f)
			if err != nil {
				return false
			}

			merged := h1.Clone()
			merged.Extend(h2)
			all := table.Clone()
			all.Extend(f)
			if merged.Len() != all.Len() {
				return false
			}
			sortSet(merged)
			sortSet(all)
			for i := range merged {
				if !merged[i].Equal(&all[i]) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, gen.UInt64Range(0, 7)),
	))

	properties.TestingRun(t)
}

func sortSet(m MultiSet) {
	sort.Slice(m, func(i, j int) bool { return m[i].Cmp(&m[j]) < 0 })
}
