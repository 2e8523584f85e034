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
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"

	"github.com/ZK-Garage/crypto/internal/utils"
)

// ErrQuotientDegree is returned when the numerator does not divide by the
// vanishing polynomial, which means a gate equation is broken.
var ErrQuotientDegree = errors.New("plonk: quotient numerator is not divisible by the vanishing polynomial")

// cosetEvals groups the evaluations over the 8n coset, natural order, of
// every polynomial the quotient touches. Shifted accesses use index i+8.
type cosetEvals struct {
	A, B, C, D []fr.Element
	F, H1, H2  []fr.Element
	Z, Z2      []fr.Element
	Table      []fr.Element
	PI         []fr.Element
	L1         []fr.Element
}

// computeQuotientCanonical evaluates the full gate identity over the coset,
// divides by the vanishing polynomial and interpolates back to canonical
// form. The result has one coefficient per coset point and is split into
// chunks by the caller.
func computeQuotientCanonical(pk *ProvingKey, w *cosetEvals, ch *challenges) []fr.Element {
	m := int(pk.DomainBig.Cardinality)
	n := pk.DomainSmall.Cardinality
	ratio := int(pk.DomainBig.Cardinality / n)

	// the vanishing polynomial x^n - 1 is periodic over the coset with
	// period ratio
	zhInv := make([]fr.Element, ratio)
	var gn, expo fr.Element
	bigN := new(big.Int).SetUint64(n)
	gn.Exp(pk.DomainBig.FrMultiplicativeGen, bigN)
	expo.Exp(pk.DomainBig.Generator, bigN)
	var one fr.Element
	one.SetOne()
	acc := gn
	for k := 0; k < ratio; k++ {
		zhInv[k].Sub(&acc, &one)
		acc.Mul(&acc, &expo)
	}
	zhInv = fr.BatchInvert(zhInv)

	// separation powers
	var kappa, kappaSq, kappaCu fr.Element
	kappa.Square(&ch.RangeSep)
	kappaSq.Square(&kappa)
	kappaCu.Mul(&kappaSq, &kappa)

	var lookupSepSq, lookupSepCu fr.Element
	lookupSepSq.Square(&ch.LookupSep)
	lookupSepCu.Mul(&lookupSepSq, &ch.LookupSep)

	var onePlusDelta, epsOnePlusDelta fr.Element
	onePlusDelta.Add(&one, &ch.Delta)
	epsOnePlusDelta.Mul(&ch.Epsilon, &onePlusDelta)

	var alphaSq fr.Element
	alphaSq.Square(&ch.Alpha)

	ks := pk.Vk.Ks

	res := make([]fr.Element, m)
	utils.Parallelize(m, func(start, end int) {
		// x runs over the coset points of the slice
		var x fr.Element
		x.Exp(pk.DomainBig.Generator, new(big.Int).SetInt64(int64(start)))
		x.Mul(&x, &pk.DomainBig.FrMultiplicativeGen)

		var acc, t, u fr.Element
		for i := start; i < end; i++ {
			next := (i + ratio) % m

			// arithmetic gates and public inputs
			acc.Mul(&w.A[i], &w.B[i]).Mul(&acc, &pk.QM.Coset[i])
			t.Mul(&pk.QL.Coset[i], &w.A[i])
			acc.Add(&acc, &t)
			t.Mul(&pk.QR.Coset[i], &w.B[i])
			acc.Add(&acc, &t)
			t.Mul(&pk.QO.Coset[i], &w.C[i])
			acc.Add(&acc, &t)
			t.Mul(&pk.Q4.Coset[i], &w.D[i])
			acc.Add(&acc, &t)
			acc.Add(&acc, &pk.QC.Coset[i])
			acc.Mul(&acc, &pk.QArith.Coset[i])
			acc.Add(&acc, &w.PI[i])

			// range gates
			var rng fr.Element
			rng = deltaRange(quadStep(&w.C[i], &w.D[i]))
			t = deltaRange(quadStep(&w.B[i], &w.C[i]))
			t.Mul(&t, &kappa)
			rng.Add(&rng, &t)
			t = deltaRange(quadStep(&w.A[i], &w.B[i]))
			t.Mul(&t, &kappaSq)
			rng.Add(&rng, &t)
			t = deltaRange(quadStep(&w.D[next], &w.A[i]))
			t.Mul(&t, &kappaCu)
			rng.Add(&rng, &t)
			rng.Mul(&rng, &ch.RangeSep).Mul(&rng, &pk.QRange.Coset[i])
			acc.Add(&acc, &rng)

			// lookup gates: query, grand product and boundary
			var lk fr.Element
			lk = compressEvals(&w.A[i], &w.B[i], &w.C[i], &w.D[i], &ch.Zeta)
			lk.Sub(&lk, &w.F[i]).Mul(&lk, &pk.QLookup.Coset[i]).Mul(&lk, &ch.LookupSep)
			acc.Add(&acc, &lk)

			t.Add(&ch.Epsilon, &w.F[i])
			lk.Mul(&onePlusDelta, &t)
			t.Mul(&ch.Delta, &w.Table[next])
			t.Add(&t, &w.Table[i]).Add(&t, &epsOnePlusDelta)
			lk.Mul(&lk, &t).Mul(&lk, &w.Z2[i]).Mul(&lk, &lookupSepSq)
			acc.Add(&acc, &lk)

			t.Mul(&ch.Delta, &w.H2[i])
			t.Add(&t, &w.H1[i]).Add(&t, &epsOnePlusDelta)
			u.Mul(&ch.Delta, &w.H1[next])
			u.Add(&u, &w.H2[i]).Add(&u, &epsOnePlusDelta)
			lk.Mul(&t, &u).Mul(&lk, &w.Z2[next]).Mul(&lk, &lookupSepSq)
			acc.Sub(&acc, &lk)

			lk.Sub(&w.Z2[i], &one).Mul(&lk, &w.L1[i]).Mul(&lk, &lookupSepCu)
			acc.Add(&acc, &lk)

			// permutation argument
			var perm fr.Element
			perm.Set(&w.Z[i])
			wires := [4]*fr.Element{&w.A[i], &w.B[i], &w.C[i], &w.D[i]}
			for wi := 0; wi < 4; wi++ {
				t.Mul(&ch.Beta, &ks[wi]).Mul(&t, &x)
				t.Add(&t, wires[wi]).Add(&t, &ch.Gamma)
				perm.Mul(&perm, &t)
			}
			u.Set(&w.Z[next])
			for wi := 0; wi < 4; wi++ {
				t.Mul(&ch.Beta, &pk.SigmaCoset[wi][i])
				t.Add(&t, wires[wi]).Add(&t, &ch.Gamma)
				u.Mul(&u, &t)
			}
			perm.Sub(&perm, &u).Mul(&perm, &ch.Alpha)
			acc.Add(&acc, &perm)

			t.Sub(&w.Z[i], &one).Mul(&t, &w.L1[i]).Mul(&t, &alphaSq)
			acc.Add(&acc, &t)

			res[i].Mul(&acc, &zhInv[i%ratio])

			x.Mul(&x, &pk.DomainBig.Generator)
		}
	})

	pk.DomainBig.FFTInverse(res, fft.DIF, true)
	fft.BitReverse(res)
	return res
}

// splitQuotient cuts the canonical quotient into chunks of size n, low
// degree first.
func splitQuotient(q []fr.Element, n uint64, chunks int) [][]fr.Element {
	out := make([][]fr.Element, chunks)
	for i := 0; i < chunks; i++ {
		out[i] = q[uint64(i)*n : uint64(i+1)*n]
	}
	return out
}
