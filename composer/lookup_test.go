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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZK-Garage/crypto/lookup"
)

func withXorTable(bits uint) *StandardComposer {
	c := New()
	xor := lookup.NewXorTable(bits)
	for i := 0; i < xor.NbRows(); i++ {
		c.AddTableRow(xor.Row(i))
	}
	return c
}

func TestLookupGate(t *testing.T) {
	c := withXorTable(2)
	a := c.AddInput(elt(1))
	b := c.AddInput(elt(3))
	o := c.AddInput(elt(2))
	require.NoError(t, c.LookupGate(a, b, o, c.Zero()))
	require.NoError(t, c.CheckCircuitSatisfied())
}

func TestLookupGateRejectsMissingRow(t *testing.T) {
	c := withXorTable(2)
	a := c.AddInput(elt(1))
	b := c.AddInput(elt(3))
	o := c.AddInput(elt(3)) // 1^3 != 3
	assert.Error(t, c.LookupGate(a, b, o, c.Zero()))
}

func TestXorGate(t *testing.T) {
	c := withXorTable(2)
	a := c.AddInput(elt(2))
	b := c.AddInput(elt(3))
	o, err := c.XorGate(a, b)
	require.NoError(t, err)
	one := elt(1)
	got := c.WitnessValue(o)
	assert.True(t, got.Equal(&one))
	require.NoError(t, c.CheckCircuitSatisfied())
}

func TestAndGate(t *testing.T) {
	c := New()
	and := lookup.NewAndTable(2)
	for i := 0; i < and.NbRows(); i++ {
		c.AddTableRow(and.Row(i))
	}
	a := c.AddInput(elt(3))
	b := c.AddInput(elt(2))
	o, err := c.AndGate(a, b)
	require.NoError(t, err)
	two := elt(2)
	got := c.WitnessValue(o)
	assert.True(t, got.Equal(&two))
	require.NoError(t, c.CheckCircuitSatisfied())
}
