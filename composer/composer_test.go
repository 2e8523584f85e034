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
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func elt(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestAddAndMulGates(t *testing.T) {
	c := New()
	a := c.AddInput(elt(2))
	b := c.AddInput(elt(3))

	sum := c.Add(a, b)
	five := elt(5)
	got := c.WitnessValue(sum)
	assert.True(t, got.Equal(&five))

	prod := c.Mul(a, b)
	six := elt(6)
	got = c.WitnessValue(prod)
	assert.True(t, got.Equal(&six))

	require.NoError(t, c.CheckCircuitSatisfied())
}

func TestSub(t *testing.T) {
	c := New()
	a := c.AddInput(elt(10))
	b := c.AddInput(elt(4))
	diff := c.Sub(a, b)
	six := elt(6)
	got := c.WitnessValue(diff)
	assert.True(t, got.Equal(&six))
	require.NoError(t, c.CheckCircuitSatisfied())
}

func TestBigAddWithSelectors(t *testing.T) {
	c := New()
	a := c.AddInput(elt(2))
	b := c.AddInput(elt(3))
	d := c.AddInput(elt(4))

	// 5*2 + 1*3 + 2*4 + 7 = 28
	out := c.BigAdd(a, b, d, elt(5), elt(1), elt(2), elt(7), nil)
	expected := elt(28)
	got := c.WitnessValue(out)
	assert.True(t, got.Equal(&expected))
	require.NoError(t, c.CheckCircuitSatisfied())
}

func TestPublicInputGate(t *testing.T) {
	c := New()
	a := c.AddInput(elt(20))
	b := c.AddInput(elt(5))

	// a + b - 25 == 0 with -25 as the row's public input
	var minus25 fr.Element
	minus25.SetUint64(25)
	minus25.Neg(&minus25)
	g := c.NewGate(a, b, c.Zero()).WithLinear(elt(1), elt(1), fr.Element{})
	g.PI = &minus25
	c.Build(g)

	require.NoError(t, c.CheckCircuitSatisfied())

	pis := c.PublicInputs()
	require.Len(t, pis, 1)
	assert.True(t, pis[0].Equal(&minus25))

	positions := c.PublicInputPositions()
	require.Len(t, positions, 1)
	// gate 0 is the zero-variable pin added by New
	assert.Equal(t, 1, positions[0])
}

func TestUnsatisfiedConstraint(t *testing.T) {
	c := New()
	v := c.AddInput(elt(3))
	c.ConstrainToConstant(v, elt(4), nil)
	assert.ErrorIs(t, c.CheckCircuitSatisfied(), ErrUnsatisfiedConstraint)
}

func TestAssertEqual(t *testing.T) {
	c := New()
	a := c.AddInput(elt(9))
	b := c.AddInput(elt(9))
	c.AssertEqual(a, b)
	require.NoError(t, c.CheckCircuitSatisfied())

	c2 := New()
	a2 := c2.AddInput(elt(9))
	b2 := c2.AddInput(elt(8))
	c2.AssertEqual(a2, b2)
	assert.Error(t, c2.CheckCircuitSatisfied())
}

func TestFreezePanics(t *testing.T) {
	c := New()
	a := c.AddInput(elt(1))
	b := c.AddInput(elt(2))
	c.Add(a, b)
	c.Freeze()
	assert.Panics(t, func() { c.Add(a, b) })
}

func TestCircuitBound(t *testing.T) {
	c := New()
	assert.Equal(t, uint64(8), c.CircuitBound())

	for i := 0; i < 9; i++ {
		v := c.AddInput(elt(uint64(i)))
		c.Add(v, v)
	}
	assert.Equal(t, uint64(16), c.CircuitBound())
}

func TestComputeMappingCycles(t *testing.T) {
	c := New()
	a := c.AddInput(elt(1))
	b := c.AddInput(elt(2))
	out := c.Add(a, b)
	c.Add(out, a)

	n := c.CircuitBound()
	sigma := c.ComputeMapping(n)

	// every wire slot must appear exactly once as a target
	seen := make(map[int64]bool)
	for w := 0; w < 4; w++ {
		require.Len(t, sigma[w], int(n))
		for _, target := range sigma[w] {
			assert.False(t, seen[target])
			seen[target] = true
		}
	}
}

func TestShapeRoundTrip(t *testing.T) {
	c := New()
	a := c.AddInput(elt(20))
	b := c.AddInput(elt(5))
	var pi fr.Element
	pi.SetUint64(100)
	pi.Neg(&pi)
	c.MulWithPI(a, b, pi)
	c.AddTableRow(func() [4]fr.Element {
		var r [4]fr.Element
		r[0].SetUint64(1)
		return r
	}())

	data, err := c.MarshalShape()
	require.NoError(t, err)

	decoded, err := UnmarshalShape(data)
	require.NoError(t, err)
	assert.Equal(t, c.NbGates(), decoded.NbGates())
	assert.Equal(t, c.PublicInputPositions(), decoded.PublicInputPositions())
	assert.Equal(t, c.Table().NbRows(), decoded.Table().NbRows())

	reencoded, err := decoded.MarshalShape()
	require.NoError(t, err)
	assert.Equal(t, data, reencoded)
}
