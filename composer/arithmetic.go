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
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ArithmeticGate describes one width-4 arithmetic gate
//
//	qM*a*b + qL*a + qR*b + qO*o + q4*d + qC + PI == 0
//
// with the output wire o chosen by the caller. The zero values of the
// optional coefficients disable the corresponding terms.
type ArithmeticGate struct {
	A, B, O, D             Variable
	QM, QL, QR, QO, Q4, QC fr.Element
	PI                     *fr.Element
}

// NewGate starts a gate builder over the three mandatory wires, with the
// fourth wire defaulting to the composer's zero variable.
func (c *StandardComposer) NewGate(a, b, o Variable) *ArithmeticGate {
	return &ArithmeticGate{A: a, B: b, O: o, D: c.zero}
}

// WithFourth sets the fourth wire.
func (g *ArithmeticGate) WithFourth(d Variable) *ArithmeticGate {
	g.D = d
	return g
}

// WithMul sets the multiplication coefficient.
func (g *ArithmeticGate) WithMul(qM fr.Element) *ArithmeticGate {
	g.QM = qM
	return g
}

// WithLinear sets the linear coefficients of a, b and d.
func (g *ArithmeticGate) WithLinear(qL, qR, q4 fr.Element) *ArithmeticGate {
	g.QL = qL
	g.QR = qR
	g.Q4 = q4
	return g
}

// WithOutput sets the output coefficient.
func (g *ArithmeticGate) WithOutput(qO fr.Element) *ArithmeticGate {
	g.QO = qO
	return g
}

// WithConstant sets the constant term.
func (g *ArithmeticGate) WithConstant(qC fr.Element) *ArithmeticGate {
	g.QC = qC
	return g
}

// WithPublicInput attaches a public input to the gate's row.
func (g *ArithmeticGate) WithPublicInput(pi fr.Element) *ArithmeticGate {
	g.PI = &pi
	return g
}

// Build appends the gate to the composer.
func (c *StandardComposer) Build(g *ArithmeticGate) {
	var one fr.Element
	one.SetOne()
	c.appendGate(g.A, g.B, g.O, g.D, selectors{
		M:     g.QM,
		L:     g.QL,
		R:     g.QR,
		O:     g.QO,
		Four:  g.Q4,
		C:     g.QC,
		Arith: one,
	}, g.PI)
}

// BigAddGate constrains qL*a + qR*b + q4*d + qC + PI == -qO*o for a caller
// supplied output o. It is the raw form behind BigAdd.
func (c *StandardComposer) BigAddGate(a, b, d, o Variable, qL, qR, q4, qO, qC fr.Element, pi *fr.Element) {
	g := c.NewGate(a, b, o).WithFourth(d).WithLinear(qL, qR, q4).WithOutput(qO).WithConstant(qC)
	g.PI = pi
	c.Build(g)
}

// BigMulGate constrains qM*a*b + q4*d + qC + PI == -qO*o.
func (c *StandardComposer) BigMulGate(a, b, d, o Variable, qM, q4, qO, qC fr.Element, pi *fr.Element) {
	var zero fr.Element
	g := c.NewGate(a, b, o).WithFourth(d).WithMul(qM).WithLinear(zero, zero, q4).WithOutput(qO).WithConstant(qC)
	g.PI = pi
	c.Build(g)
}

// BigAdd computes o = qL*a + qR*b + q4*d + qC + PI, allocates o and appends
// the gate enforcing it.
func (c *StandardComposer) BigAdd(a, b, d Variable, qL, qR, q4, qC fr.Element, pi *fr.Element) Variable {
	var res, t fr.Element
	va, vb, vd := c.variables[a], c.variables[b], c.variables[d]
	res.Mul(&qL, &va)
	t.Mul(&qR, &vb)
	res.Add(&res, &t)
	t.Mul(&q4, &vd)
	res.Add(&res, &t)
	res.Add(&res, &qC)
	if pi != nil {
		res.Add(&res, pi)
	}
	o := c.AddInput(res)

	var qO fr.Element
	qO.SetOne().Neg(&qO)
	c.BigAddGate(a, b, d, o, qL, qR, q4, qO, qC, pi)
	return o
}

// BigMul computes o = qM*a*b + q4*d + qC + PI, allocates o and appends the
// gate enforcing it.
func (c *StandardComposer) BigMul(a, b, d Variable, qM, q4, qC fr.Element, pi *fr.Element) Variable {
	var res, t fr.Element
	va, vb, vd := c.variables[a], c.variables[b], c.variables[d]
	res.Mul(&va, &vb).Mul(&res, &qM)
	t.Mul(&q4, &vd)
	res.Add(&res, &t)
	res.Add(&res, &qC)
	if pi != nil {
		res.Add(&res, pi)
	}
	o := c.AddInput(res)

	var qO fr.Element
	qO.SetOne().Neg(&qO)
	c.BigMulGate(a, b, d, o, qM, q4, qO, qC, pi)
	return o
}

// Add computes and constrains o = a + b.
func (c *StandardComposer) Add(a, b Variable) Variable {
	var one, zero fr.Element
	one.SetOne()
	return c.BigAdd(a, b, c.zero, one, one, zero, zero, nil)
}

// Sub computes and constrains o = a - b.
func (c *StandardComposer) Sub(a, b Variable) Variable {
	var one, minusOne, zero fr.Element
	one.SetOne()
	minusOne.Neg(&one)
	return c.BigAdd(a, b, c.zero, one, minusOne, zero, zero, nil)
}

// Mul computes and constrains o = a * b.
func (c *StandardComposer) Mul(a, b Variable) Variable {
	var one, zero fr.Element
	one.SetOne()
	return c.BigMul(a, b, c.zero, one, zero, zero, nil)
}

// AddWithPI computes and constrains o = a + b + pi where pi is a public
// input of the gate's row.
func (c *StandardComposer) AddWithPI(a, b Variable, pi fr.Element) Variable {
	var one, zero fr.Element
	one.SetOne()
	return c.BigAdd(a, b, c.zero, one, one, zero, zero, &pi)
}

// MulWithPI computes and constrains o = a*b + pi.
func (c *StandardComposer) MulWithPI(a, b Variable, pi fr.Element) Variable {
	var one, zero fr.Element
	one.SetOne()
	return c.BigMul(a, b, c.zero, one, zero, zero, &pi)
}

// ConstrainToConstant pins v to the given constant, optionally shifted by a
// public input.
func (c *StandardComposer) ConstrainToConstant(v Variable, constant fr.Element, pi *fr.Element) {
	var one, minusConst fr.Element
	one.SetOne()
	minusConst.Neg(&constant)
	g := c.NewGate(v, v, v).WithLinear(one, fr.Element{}, fr.Element{}).WithConstant(minusConst)
	g.PI = pi
	c.Build(g)
}

// AssertEqual adds a gate forcing a == b. The copy constraint alone would
// not do: the two handles may be distinct witness slots.
func (c *StandardComposer) AssertEqual(a, b Variable) {
	var one, minusOne fr.Element
	one.SetOne()
	minusOne.Neg(&one)
	c.Build(c.NewGate(a, b, c.zero).WithLinear(one, minusOne, fr.Element{}))
}
