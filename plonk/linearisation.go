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

package plonk

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// challenges groups the transcript challenges in derivation order. Zeta
// compresses the lookup columns; ZChallenge is the evaluation point.
type challenges struct {
	Zeta, Beta, Gamma, Delta, Epsilon fr.Element
	Alpha, RangeSep, LookupSep        fr.Element
	ZChallenge                        fr.Element
}

// linScalars are the coefficients of the linearisation polynomial: each
// field multiplies the commitment (verifier side) or the canonical
// polynomial (prover side) it is named after.
type linScalars struct {
	QM, QL, QR, QO, Q4, QC fr.Element
	QRange                 fr.Element
	QLookup                fr.Element
	Z2, H1                 fr.Element
	Z, S4                  fr.Element
}

// computeLinearisationScalars derives the linearisation coefficients from
// the proof evaluations. Prover and verifier share this so the linearisation
// polynomial and its reconstructed commitment agree by construction.
func computeLinearisationScalars(ks *[4]fr.Element, ev *ProofEvaluations, ch *challenges, l1Eval fr.Element) linScalars {
	var s linScalars

	// arithmetic widget: every selector coefficient carries q_arith(z)
	s.QM.Mul(&ev.A, &ev.B).Mul(&s.QM, &ev.QArith)
	s.QL.Mul(&ev.A, &ev.QArith)
	s.QR.Mul(&ev.B, &ev.QArith)
	s.QO.Mul(&ev.C, &ev.QArith)
	s.Q4.Mul(&ev.D, &ev.QArith)
	s.QC.Set(&ev.QArith)

	// range widget: kappa-separated quad checks on the accumulator deltas
	var kappa, kappaSq, kappaCu fr.Element
	kappa.Square(&ch.RangeSep)
	kappaSq.Square(&kappa)
	kappaCu.Mul(&kappaSq, &kappa)

	var b1, b2, b3, b4, t fr.Element
	b1 = deltaRange(quadStep(&ev.C, &ev.D))
	b2 = deltaRange(quadStep(&ev.B, &ev.C))
	b2.Mul(&b2, &kappa)
	b3 = deltaRange(quadStep(&ev.A, &ev.B))
	b3.Mul(&b3, &kappaSq)
	b4 = deltaRange(quadStep(&ev.DShifted, &ev.A))
	b4.Mul(&b4, &kappaCu)
	s.QRange.Add(&b1, &b2).Add(&s.QRange, &b3).Add(&s.QRange, &b4).Mul(&s.QRange, &ch.RangeSep)

	// lookup widget
	var lookupSepSq, lookupSepCu fr.Element
	lookupSepSq.Square(&ch.LookupSep)
	lookupSepCu.Mul(&lookupSepSq, &ch.LookupSep)

	compressed := compressEvals(&ev.A, &ev.B, &ev.C, &ev.D, &ch.Zeta)
	s.QLookup.Sub(&compressed, &ev.F).Mul(&s.QLookup, &ch.LookupSep)

	var onePlusDelta, epsOnePlusDelta fr.Element
	var one fr.Element
	one.SetOne()
	onePlusDelta.Add(&one, &ch.Delta)
	epsOnePlusDelta.Mul(&ch.Epsilon, &onePlusDelta)

	// z2 coefficient: the product side of the lookup grand product plus the
	// L1 boundary term
	var prodSide fr.Element
	t.Add(&ch.Epsilon, &ev.F)
	prodSide.Mul(&onePlusDelta, &t)
	t.Mul(&ch.Delta, &ev.TableShifted)
	t.Add(&t, &ev.Table).Add(&t, &epsOnePlusDelta)
	prodSide.Mul(&prodSide, &t).Mul(&prodSide, &lookupSepSq)
	var boundary fr.Element
	boundary.Mul(&l1Eval, &lookupSepCu)
	s.Z2.Add(&prodSide, &boundary)

	// h1 coefficient from the sorted half recurrence
	t.Mul(&ch.Delta, &ev.H1Shifted)
	t.Add(&t, &ev.H2).Add(&t, &epsOnePlusDelta)
	s.H1.Mul(&ev.Z2Shifted, &lookupSepSq).Mul(&s.H1, &t).Neg(&s.H1)

	// permutation argument
	var zAlpha fr.Element
	zAlpha.Set(&ch.Alpha)
	var betaZ fr.Element
	betaZ.Mul(&ch.Beta, &ch.ZChallenge)
	factors := [4]*fr.Element{&ev.A, &ev.B, &ev.C, &ev.D}
	for w := 0; w < 4; w++ {
		t.Mul(&betaZ, &ks[w])
		t.Add(&t, factors[w]).Add(&t, &ch.Gamma)
		zAlpha.Mul(&zAlpha, &t)
	}
	var alphaSqL1 fr.Element
	alphaSqL1.Square(&ch.Alpha).Mul(&alphaSqL1, &l1Eval)
	s.Z.Add(&zAlpha, &alphaSqL1)

	// s4 coefficient from the product over the opened sigma evaluations
	var sigmaProd fr.Element
	sigmaProd.Mul(&ch.Alpha, &ch.Beta).Mul(&sigmaProd, &ev.ZShifted).Neg(&sigmaProd)
	sigmas := [3]*fr.Element{&ev.S1, &ev.S2, &ev.S3}
	for w := 0; w < 3; w++ {
		t.Mul(&ch.Beta, sigmas[w])
		t.Add(&t, factors[w]).Add(&t, &ch.Gamma)
		sigmaProd.Mul(&sigmaProd, &t)
	}
	s.S4.Set(&sigmaProd)

	return s
}

// computeResidue evaluates the fully-opened remainder of the quotient
// identity at the evaluation point. The identity checked by the verifier is
//
//	lin(z) + residue == quotient(z) * (z^n - 1)
func computeResidue(ev *ProofEvaluations, ch *challenges, piEval, l1Eval fr.Element) fr.Element {
	var res, t, u fr.Element
	res.Set(&piEval)

	// permutation boundary term
	t.Square(&ch.Alpha).Mul(&t, &l1Eval)
	res.Sub(&res, &t)

	// evaluated side of the permutation product
	t.Mul(&ch.Alpha, &ev.ZShifted)
	sigmas := [3]*fr.Element{&ev.S1, &ev.S2, &ev.S3}
	factors := [3]*fr.Element{&ev.A, &ev.B, &ev.C}
	for w := 0; w < 3; w++ {
		u.Mul(&ch.Beta, sigmas[w])
		u.Add(&u, factors[w]).Add(&u, &ch.Gamma)
		t.Mul(&t, &u)
	}
	u.Add(&ev.D, &ch.Gamma)
	t.Mul(&t, &u)
	res.Sub(&res, &t)

	// lookup boundary term
	var lookupSepSq, lookupSepCu fr.Element
	lookupSepSq.Square(&ch.LookupSep)
	lookupSepCu.Mul(&lookupSepSq, &ch.LookupSep)
	t.Mul(&l1Eval, &lookupSepCu)
	res.Sub(&res, &t)

	// evaluated side of the lookup grand product
	var one, onePlusDelta, epsOnePlusDelta fr.Element
	one.SetOne()
	onePlusDelta.Add(&one, &ch.Delta)
	epsOnePlusDelta.Mul(&ch.Epsilon, &onePlusDelta)

	t.Mul(&ch.Delta, &ev.H2)
	t.Add(&t, &epsOnePlusDelta)
	u.Mul(&ch.Delta, &ev.H1Shifted)
	u.Add(&u, &ev.H2).Add(&u, &epsOnePlusDelta)
	t.Mul(&t, &u).Mul(&t, &lookupSepSq).Mul(&t, &ev.Z2Shifted)
	res.Sub(&res, &t)

	return res
}

// quadStep computes hi - 4*lo, the quad extracted between two consecutive
// base-4 accumulators.
func quadStep(hi, lo *fr.Element) fr.Element {
	var four, res fr.Element
	four.SetUint64(4)
	res.Mul(&four, lo)
	res.Sub(hi, &res)
	return res
}

// deltaRange computes f(f-1)(f-2)(f-3).
func deltaRange(f fr.Element) fr.Element {
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

// compressEvals folds four evaluations with powers of zeta, low column
// first.
func compressEvals(a, b, c, d, zeta *fr.Element) fr.Element {
	// Horner from the top column down
	var res fr.Element
	res.Mul(d, zeta).Add(&res, c)
	res.Mul(&res, zeta).Add(&res, b)
	res.Mul(&res, zeta).Add(&res, a)
	return res
}
