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

// Package composer implements the PLONK constraint system builder: gates are
// accumulated row by row together with their witness values, copy constraints
// and lookup queries, until the circuit is frozen by preprocessing.
package composer

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/ZK-Garage/crypto/internal/utils"
	"github.com/ZK-Garage/crypto/lookup"
)

// Variable is an opaque handle identifying a witness slot. It never carries
// the value itself; values live in the composer's witness arena so that
// permutation bookkeeping operates purely on handles.
type Variable int

// ErrUnsatisfiedConstraint is returned by CheckCircuitSatisfied when a gate
// equation does not hold for the current witness.
var ErrUnsatisfiedConstraint = errors.New("constraint is not satisfied")

// StandardComposer accumulates gates, witness values and copy constraints.
// It is the single source of truth for the circuit shape.
//
// All wire and selector columns have identical length at every point of
// construction; the composer checks the invariant after each mutation.
type StandardComposer struct {
	n int // number of gates

	// selector columns
	qM, qL, qR, qO, q4, qC            []fr.Element
	qArith, qRange, qLogic, qLookup   []fr.Element
	qFixedGroupAdd, qVariableGroupAdd []fr.Element

	// wire columns
	wL, wR, wO, w4 []Variable

	// witness arena, indexed by Variable
	variables []fr.Element

	// public inputs, sparse over gate positions
	publicInputs map[int]fr.Element
	piPositions  *bitset.BitSet

	perm  *permutation
	table *lookup.Table

	zero Variable

	frozen bool
}

// New returns an empty composer with the zero variable registered and pinned
// to zero by a constant gate.
func New() *StandardComposer {
	c := &StandardComposer{
		publicInputs: make(map[int]fr.Element),
		piPositions:  bitset.New(64),
		perm:         newPermutation(),
		table:        lookup.NewTable(),
	}
	c.zero = c.AddInput(fr.Element{})
	c.ConstrainToConstant(c.zero, fr.Element{}, nil)
	return c
}

// AddInput allocates a new witness slot holding value and returns its handle.
func (c *StandardComposer) AddInput(value fr.Element) Variable {
	c.variables = append(c.variables, value)
	return Variable(len(c.variables) - 1)
}

// Zero returns the pre-registered variable holding zero.
func (c *StandardComposer) Zero() Variable { return c.zero }

// NbGates returns the number of gates added so far.
func (c *StandardComposer) NbGates() int { return c.n }

// WitnessValue returns the value held by v.
func (c *StandardComposer) WitnessValue(v Variable) fr.Element {
	return c.variables[int(v)]
}

// Table returns the composer's lookup table.
func (c *StandardComposer) Table() *lookup.Table { return c.table }

// AddTableRow appends a row to the lookup table.
func (c *StandardComposer) AddTableRow(row [4]fr.Element) {
	c.ensureMutable()
	c.table.AddRow(row)
}

// CircuitBound returns the power-of-two domain size the circuit will be
// padded to: it covers the gates and the lookup table, with a floor of 8.
func (c *StandardComposer) CircuitBound() uint64 {
	bound := utils.NextPowerOfTwo(uint64(c.n))
	if t := utils.NextPowerOfTwo(uint64(c.table.NbRows())); t > bound {
		bound = t
	}
	if bound < 8 {
		bound = 8
	}
	return bound
}

// PublicInputs returns the public input values ordered by gate position.
func (c *StandardComposer) PublicInputs() []fr.Element {
	pos := c.PublicInputPositions()
	values := make([]fr.Element, len(pos))
	for i, p := range pos {
		values[i] = c.publicInputs[p]
	}
	return values
}

// PublicInputPositions returns the sorted gate positions carrying a public
// input.
func (c *StandardComposer) PublicInputPositions() []int {
	pos := make([]int, 0, len(c.publicInputs))
	for i, e := c.piPositions.NextSet(0); e; i, e = c.piPositions.NextSet(i + 1) {
		pos = append(pos, int(i))
	}
	return pos
}

// DensePublicInputs returns the public inputs as a dense vector of length n.
func (c *StandardComposer) DensePublicInputs(n uint64) []fr.Element {
	dense := make([]fr.Element, n)
	for p, v := range c.publicInputs {
		dense[p] = v
	}
	return dense
}

// Freeze marks the composer read-only. Called once by preprocessing; gate
// calls after freezing are a programmer error and panic.
func (c *StandardComposer) Freeze() { c.frozen = true }

func (c *StandardComposer) ensureMutable() {
	if c.frozen {
		panic("composer: adding gates to a preprocessed circuit")
	}
}

// selectors carries one gate row's selector coefficients. Zero value means
// the corresponding term is inactive.
type selectors struct {
	M, L, R, O, Four, C             fr.Element
	Arith, Range, Logic, Lookup     fr.Element
	FixedGroupAdd, VariableGroupAdd fr.Element
}

// appendGate pushes one entry to every parallel column, records the optional
// public input and registers the wires in the permutation map.
func (c *StandardComposer) appendGate(a, b, o, d Variable, s selectors, pi *fr.Element) {
	c.ensureMutable()

	c.wL = append(c.wL, a)
	c.wR = append(c.wR, b)
	c.wO = append(c.wO, o)
	c.w4 = append(c.w4, d)

	c.qM = append(c.qM, s.M)
	c.qL = append(c.qL, s.L)
	c.qR = append(c.qR, s.R)
	c.qO = append(c.qO, s.O)
	c.q4 = append(c.q4, s.Four)
	c.qC = append(c.qC, s.C)
	c.qArith = append(c.qArith, s.Arith)
	c.qRange = append(c.qRange, s.Range)
	c.qLogic = append(c.qLogic, s.Logic)
	c.qLookup = append(c.qLookup, s.Lookup)
	c.qFixedGroupAdd = append(c.qFixedGroupAdd, s.FixedGroupAdd)
	c.qVariableGroupAdd = append(c.qVariableGroupAdd, s.VariableGroupAdd)

	if pi != nil {
		if c.piPositions.Test(uint(c.n)) {
			panic(fmt.Sprintf("composer: public input already set at gate %d", c.n))
		}
		c.piPositions.Set(uint(c.n))
		c.publicInputs[c.n] = *pi
	}

	c.perm.addVariables(a, b, o, d, c.n)

	c.n++
	c.checkColumns()
}

// checkColumns asserts the lock-step column invariant.
func (c *StandardComposer) checkColumns() {
	cols := []int{
		len(c.wL), len(c.wR), len(c.wO), len(c.w4),
		len(c.qM), len(c.qL), len(c.qR), len(c.qO), len(c.q4), len(c.qC),
		len(c.qArith), len(c.qRange), len(c.qLogic), len(c.qLookup),
		len(c.qFixedGroupAdd), len(c.qVariableGroupAdd),
	}
	for _, l := range cols {
		if l != c.n {
			panic(fmt.Sprintf("composer: column length %d drifted from gate count %d", l, c.n))
		}
	}
}

// WireColumns returns the four wire columns.
func (c *StandardComposer) WireColumns() (wl, wr, wo, w4 []Variable) {
	return c.wL, c.wR, c.wO, c.w4
}

// Selectors returns the committed selector columns. Used by preprocessing.
func (c *StandardComposer) Selectors() (qM, qL, qR, qO, q4, qC, qArith, qRange, qLookup []fr.Element) {
	return c.qM, c.qL, c.qR, c.qO, c.q4, c.qC, c.qArith, c.qRange, c.qLookup
}

// WireValues returns the four wire columns resolved to witness values and
// padded with zeroes to length n.
func (c *StandardComposer) WireValues(n uint64) (a, b, o, d []fr.Element) {
	a = make([]fr.Element, n)
	b = make([]fr.Element, n)
	o = make([]fr.Element, n)
	d = make([]fr.Element, n)
	for i := 0; i < c.n; i++ {
		a[i] = c.variables[c.wL[i]]
		b[i] = c.variables[c.wR[i]]
		o[i] = c.variables[c.wO[i]]
		d[i] = c.variables[c.w4[i]]
	}
	return
}

// CheckCircuitSatisfied evaluates every gate equation against the current
// witness, without any cryptography. Useful to debug circuits before proving.
func (c *StandardComposer) CheckCircuitSatisfied() error {
	var one, four fr.Element
	one.SetOne()
	four.SetUint64(4)

	wireValue := func(col []Variable, i int) fr.Element {
		return c.variables[col[i]]
	}

	for i := 0; i < c.n; i++ {
		a := wireValue(c.wL, i)
		b := wireValue(c.wR, i)
		o := wireValue(c.wO, i)
		d := wireValue(c.w4, i)

		if c.qArith[i].Equal(&one) {
			var res, t fr.Element
			res.Mul(&a, &b).Mul(&res, &c.qM[i])
			t.Mul(&c.qL[i], &a)
			res.Add(&res, &t)
			t.Mul(&c.qR[i], &b)
			res.Add(&res, &t)
			t.Mul(&c.qO[i], &o)
			res.Add(&res, &t)
			t.Mul(&c.q4[i], &d)
			res.Add(&res, &t)
			res.Add(&res, &c.qC[i])
			if pi, ok := c.publicInputs[i]; ok {
				res.Add(&res, &pi)
			}
			if !res.IsZero() {
				return fmt.Errorf("%w: arithmetic gate %d", ErrUnsatisfiedConstraint, i)
			}
		}

		if c.qRange[i].Equal(&one) {
			var dNext fr.Element
			if i+1 < c.n {
				dNext = wireValue(c.w4, i+1)
			}
			var t, acc fr.Element
			steps := [4][2]fr.Element{{o, d}, {b, o}, {a, b}, {dNext, a}}
			for _, s := range steps {
				t.Mul(&four, &s[1])
				t.Sub(&s[0], &t)
				acc = delta(t)
				if !acc.IsZero() {
					return fmt.Errorf("%w: range gate %d", ErrUnsatisfiedConstraint, i)
				}
			}
		}

		if c.qLookup[i].Equal(&one) {
			row := [4]fr.Element{a, b, o, d}
			if !c.table.Contains(&row) {
				return fmt.Errorf("%w: lookup gate %d queries a row outside the table", ErrUnsatisfiedConstraint, i)
			}
		}
	}
	return nil
}

// delta computes f(f-1)(f-2)(f-3), zero iff f is in {0,1,2,3}.
func delta(f fr.Element) fr.Element {
	var one, two, three, f1, f2, f3, res fr.Element
	one.SetOne()
	two.SetUint64(2)
	three.SetUint64(3)
	f1.Sub(&f, &one)
	f2.Sub(&f, &two)
	f3.Sub(&f, &three)
	res.Mul(&f, &f1).Mul(&res, &f2).Mul(&res, &f3)
	return res
}
