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

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangeGateSatisfied(t *testing.T) {
	c := New()
	v := c.AddInput(elt(300))
	_, err := c.RangeGate(v, 10)
	require.NoError(t, err)
	require.NoError(t, c.CheckCircuitSatisfied())
}

func TestRangeGateOddBits(t *testing.T) {
	c := New()
	v := c.AddInput(elt(17))
	_, err := c.RangeGate(v, 5)
	require.NoError(t, err)
	require.NoError(t, c.CheckCircuitSatisfied())
}

func TestRangeGateOutOfRange(t *testing.T) {
	c := New()
	v := c.AddInput(elt(300))
	_, err := c.RangeGate(v, 8)
	require.NoError(t, err)
	// the decomposition only keeps the low 8 bits, so the accumulator no
	// longer matches v
	assert.Error(t, c.CheckCircuitSatisfied())
}

func TestRangeGateRejectsZeroBits(t *testing.T) {
	c := New()
	v := c.AddInput(elt(1))
	_, err := c.RangeGate(v, 0)
	assert.Error(t, err)
}

func TestRangeGateBoundary(t *testing.T) {
	c := New()
	v := c.AddInput(elt(255))
	_, err := c.RangeGate(v, 8)
	require.NoError(t, err)
	require.NoError(t, c.CheckCircuitSatisfied())

	c2 := New()
	v2 := c2.AddInput(elt(256))
	_, err = c2.RangeGate(v2, 8)
	require.NoError(t, err)
	assert.Error(t, c2.CheckCircuitSatisfied())
}

// The range constraint quad vanishes exactly on the base-4 digits 0..3.
func TestDeltaVanishesOnDigits(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("delta is zero on {0,1,2,3}", prop.ForAll(
		func(v uint64) bool {
			d := delta(elt(v))
			return d.IsZero()
		},
		gen.UInt64Range(0, 3),
	))

	properties.Property("delta is nonzero outside {0,1,2,3}", prop.ForAll(
		func(v uint64) bool {
			if v < 4 {
				return true
			}
			d := delta(elt(v))
			return !d.IsZero()
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
