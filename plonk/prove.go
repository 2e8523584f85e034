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
	"math/big"
	"time"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
	"golang.org/x/sync/errgroup"

	"github.com/ZK-Garage/crypto/commitment"
	"github.com/ZK-Garage/crypto/composer"
	"github.com/ZK-Garage/crypto/internal/utils"
	"github.com/ZK-Garage/crypto/logger"
	"github.com/ZK-Garage/crypto/lookup"
	"github.com/ZK-Garage/crypto/transcript"
)

// Prove produces a proof that the composer's witness satisfies its circuit.
// The label and seed bind the proof to a protocol session.
func Prove(c *composer.StandardComposer, pk *ProvingKey, label, seed []byte) (*Proof, error) {
	log := logger.Logger().With().Str("backend", "plonk").Logger()
	start := time.Now()

	vk := pk.Vk
	n := pk.DomainSmall.Cardinality
	srs := vk.KZGSRS
	proof := &Proof{}

	t := newTranscript()
	publicInputs := c.PublicInputs()
	if err := bindPreamble(t, vk, label, seed, publicInputs); err != nil {
		return nil, err
	}

	// wire polynomials: Lagrange values, then blinded canonical form
	wa, wb, wc, wd := c.WireValues(n)
	bwa, bwb, bwc, bwd, err := computeBlindedWiresCanonical(wa, wb, wc, wd, &pk.DomainSmall)
	if err != nil {
		return nil, err
	}
	if err := commitInParallel(srs,
		commitJob{&proof.A, bwa}, commitJob{&proof.B, bwb},
		commitJob{&proof.C, bwc}, commitJob{&proof.D, bwd}); err != nil {
		return nil, err
	}

	var ch challenges
	if err := appendPoints(t, "zeta", "wire", &proof.A, &proof.B, &proof.C, &proof.D); err != nil {
		return nil, err
	}
	if ch.Zeta, err = t.ChallengeScalar("zeta"); err != nil {
		return nil, err
	}

	// lookup columns: compressed table, query column and sorted halves
	compressedTable := lookup.Compress([]lookup.MultiSet{pk.TableCols[0], pk.TableCols[1], pk.TableCols[2], pk.TableCols[3]}, ch.Zeta)
	tableCanonical := foldTableCanonical(pk, ch.Zeta)

	f := computeQueryColumn(pk, compressedTable, wa, wb, wc, wd, ch.Zeta)
	h1, h2, err := compressedTable.SortedHalve(f)
	if err != nil {
		return nil, err
	}

	bf, err := blindedCanonical(f, &pk.DomainSmall, 1)
	if err != nil {
		return nil, err
	}
	bh1, err := blindedCanonical(h1, &pk.DomainSmall, 2)
	if err != nil {
		return nil, err
	}
	bh2, err := blindedCanonical(h2, &pk.DomainSmall, 1)
	if err != nil {
		return nil, err
	}
	if err := commitInParallel(srs,
		commitJob{&proof.F, bf}, commitJob{&proof.H1, bh1}, commitJob{&proof.H2, bh2}); err != nil {
		return nil, err
	}

	if err := appendPoints(t, "beta", "lookup", &proof.F, &proof.H1, &proof.H2); err != nil {
		return nil, err
	}
	if ch.Beta, err = t.ChallengeScalar("beta"); err != nil {
		return nil, err
	}
	if ch.Gamma, err = t.ChallengeScalar("gamma"); err != nil {
		return nil, err
	}
	if ch.Delta, err = t.ChallengeScalar("delta"); err != nil {
		return nil, err
	}
	if ch.Epsilon, err = t.ChallengeScalar("epsilon"); err != nil {
		return nil, err
	}

	// grand products, from the unblinded Lagrange values
	bz, err := computeBlindedPermutationProductCanonical(pk, wa, wb, wc, wd, &ch)
	if err != nil {
		return nil, err
	}
	bz2, err := computeBlindedLookupProductCanonical(pk, f, h1, h2, compressedTable, &ch)
	if err != nil {
		return nil, err
	}
	if err := commitInParallel(srs,
		commitJob{&proof.Z, bz}, commitJob{&proof.Z2, bz2}); err != nil {
		return nil, err
	}

	if err := appendPoints(t, "alpha", "product", &proof.Z, &proof.Z2); err != nil {
		return nil, err
	}
	if ch.Alpha, err = t.ChallengeScalar("alpha"); err != nil {
		return nil, err
	}
	if ch.RangeSep, err = t.ChallengeScalar("range"); err != nil {
		return nil, err
	}
	if ch.LookupSep, err = t.ChallengeScalar("lookup"); err != nil {
		return nil, err
	}

	// quotient over the big coset
	w := &cosetEvals{
		A:     canonicalToCosetEvals(bwa, &pk.DomainBig),
		B:     canonicalToCosetEvals(bwb, &pk.DomainBig),
		C:     canonicalToCosetEvals(bwc, &pk.DomainBig),
		D:     canonicalToCosetEvals(bwd, &pk.DomainBig),
		F:     canonicalToCosetEvals(bf, &pk.DomainBig),
		H1:    canonicalToCosetEvals(bh1, &pk.DomainBig),
		H2:    canonicalToCosetEvals(bh2, &pk.DomainBig),
		Z:     canonicalToCosetEvals(bz, &pk.DomainBig),
		Z2:    canonicalToCosetEvals(bz2, &pk.DomainBig),
		Table: canonicalToCosetEvals(tableCanonical, &pk.DomainBig),
		PI:    canonicalToCosetEvals(publicInputCanonical(c, &pk.DomainSmall), &pk.DomainBig),
		L1:    canonicalToCosetEvals(firstLagrangeCanonical(&pk.DomainSmall), &pk.DomainBig),
	}
	quotient := computeQuotientCanonical(pk, w, &ch)
	chunks := splitQuotient(quotient, n, 8)

	var jobs []commitJob
	for i := range chunks {
		jobs = append(jobs, commitJob{&proof.T[i], chunks[i]})
	}
	if err := commitInParallel(srs, jobs...); err != nil {
		return nil, err
	}

	if err := appendPoints(t, "z", "quotient",
		&proof.T[0], &proof.T[1], &proof.T[2], &proof.T[3],
		&proof.T[4], &proof.T[5], &proof.T[6], &proof.T[7]); err != nil {
		return nil, err
	}
	if ch.ZChallenge, err = t.ChallengeScalar("z"); err != nil {
		return nil, err
	}

	// openings
	var zOmega fr.Element
	zOmega.Mul(&ch.ZChallenge, &vk.Generator)

	ev := &proof.Evaluations
	ev.A = eval(bwa, ch.ZChallenge)
	ev.B = eval(bwb, ch.ZChallenge)
	ev.C = eval(bwc, ch.ZChallenge)
	ev.D = eval(bwd, ch.ZChallenge)
	ev.S1 = eval(pk.SigmaCanonical[0], ch.ZChallenge)
	ev.S2 = eval(pk.SigmaCanonical[1], ch.ZChallenge)
	ev.S3 = eval(pk.SigmaCanonical[2], ch.ZChallenge)
	ev.QArith = eval(pk.QArith.Canonical, ch.ZChallenge)
	ev.F = eval(bf, ch.ZChallenge)
	ev.H2 = eval(bh2, ch.ZChallenge)
	ev.Table = eval(tableCanonical, ch.ZChallenge)
	ev.ZShifted = eval(bz, zOmega)
	ev.Z2Shifted = eval(bz2, zOmega)
	ev.TableShifted = eval(tableCanonical, zOmega)
	ev.H1Shifted = eval(bh1, zOmega)
	ev.DShifted = eval(bwd, zOmega)

	l1Eval := evalFirstLagrange(ch.ZChallenge, &pk.DomainSmall)

	// linearisation polynomial
	scalars := computeLinearisationScalars(&vk.Ks, ev, &ch, l1Eval)
	lin := computeLinearisationPolynomial(pk, &scalars, bz, bz2, bh1)
	ev.LinEval = eval(lin, ch.ZChallenge)

	// folded quotient
	foldedQuotient := foldQuotientChunks(chunks, ch.ZChallenge, n)
	ev.QuotientEval = eval(foldedQuotient, ch.ZChallenge)

	// aggregated opening at z
	if err := appendEvaluations(t, ev); err != nil {
		return nil, err
	}
	vAgg, err := t.ChallengeScalar("aggregate")
	if err != nil {
		return nil, err
	}
	foldedPoly, err := commitment.FoldPolynomials([][]fr.Element{
		foldedQuotient, lin,
		bwa, bwb, bwc, bwd,
		pk.SigmaCanonical[0], pk.SigmaCanonical[1], pk.SigmaCanonical[2],
		bf, bh2, tableCanonical, pk.QArith.Canonical,
	}, vAgg)
	if err != nil {
		return nil, err
	}
	proof.AggregateW, err = commitment.Open(foldedPoly, ch.ZChallenge, srs)
	if err != nil {
		return nil, err
	}

	// aggregated opening at z*omega
	vShift, err := t.ChallengeScalar("shifted aggregate")
	if err != nil {
		return nil, err
	}
	foldedShifted, err := commitment.FoldPolynomials([][]fr.Element{
		bz, bz2, tableCanonical, bh1, bwd,
	}, vShift)
	if err != nil {
		return nil, err
	}
	proof.AggregateWShifted, err = commitment.Open(foldedShifted, zOmega, srs)
	if err != nil {
		return nil, err
	}

	log.Debug().Dur("took", time.Since(start)).Uint64("n", n).Msg("prover done")
	return proof, nil
}

// appendEvaluations binds every claimed evaluation before the aggregation
// challenge is drawn.
func appendEvaluations(t *transcript.Transcript, ev *ProofEvaluations) error {
	scalars := []*fr.Element{
		&ev.A, &ev.B, &ev.C, &ev.D,
		&ev.S1, &ev.S2, &ev.S3,
		&ev.QArith,
		&ev.F, &ev.H2, &ev.Table,
		&ev.LinEval, &ev.QuotientEval,
		&ev.ZShifted, &ev.Z2Shifted, &ev.TableShifted, &ev.H1Shifted, &ev.DShifted,
	}
	for _, s := range scalars {
		if err := t.AppendScalar("aggregate", "eval", s); err != nil {
			return err
		}
	}
	return nil
}

func appendPoints(t *transcript.Transcript, challenge, label string, points ...*kzg.Digest) error {
	for _, p := range points {
		if err := t.AppendPoint(challenge, label, p); err != nil {
			return err
		}
	}
	return nil
}

type commitJob struct {
	dst  *kzg.Digest
	poly []fr.Element
}

func commitInParallel(srs *kzg.SRS, jobs ...commitJob) error {
	var g errgroup.Group
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			d, err := kzg.Commit(job.poly, srs)
			if err != nil {
				return err
			}
			*job.dst = d
			return nil
		})
	}
	return g.Wait()
}

// computeBlindedWiresCanonical interpolates the four wire columns and blinds
// each with a random polynomial times the vanishing polynomial. The fourth
// wire is also opened at the shifted point, so it carries one extra random
// coefficient.
func computeBlindedWiresCanonical(wa, wb, wc, wd []fr.Element, domain *fft.Domain) (bwa, bwb, bwc, bwd []fr.Element, err error) {
	if bwa, err = blindedCanonical(wa, domain, 1); err != nil {
		return
	}
	if bwb, err = blindedCanonical(wb, domain, 1); err != nil {
		return
	}
	if bwc, err = blindedCanonical(wc, domain, 1); err != nil {
		return
	}
	bwd, err = blindedCanonical(wd, domain, 2)
	return
}

// blindedCanonical interpolates Lagrange values and blinds the result with
// Q(X)*(X^n - 1), deg Q = bo. The input is not modified.
func blindedCanonical(evals []fr.Element, domain *fft.Domain, bo uint64) ([]fr.Element, error) {
	c := make([]fr.Element, domain.Cardinality, domain.Cardinality+bo+1)
	copy(c, evals)
	domain.FFTInverse(c, fft.DIF)
	fft.BitReverse(c)
	return blindPoly(c, domain.Cardinality, bo)
}

// blindPoly blinds a canonical polynomial by adding Q(X)*(X**rou - 1) with
// deg Q = bo. Reuses cp's backing array, which must have enough capacity.
func blindPoly(cp []fr.Element, rou, bo uint64) ([]fr.Element, error) {
	res := cp[:rou+bo+1]

	blindingPoly := make([]fr.Element, bo+1)
	for i := uint64(0); i < bo+1; i++ {
		if _, err := blindingPoly[i].SetRandom(); err != nil {
			return nil, err
		}
	}

	for i := uint64(0); i < bo+1; i++ {
		res[i].Sub(&res[i], &blindingPoly[i])
		res[rou+i].Add(&res[rou+i], &blindingPoly[i])
	}

	return res, nil
}

// computeQueryColumn builds the lookup query column: the compressed wire
// tuple where the lookup selector is on, the first table entry elsewhere.
func computeQueryColumn(pk *ProvingKey, compressedTable lookup.MultiSet, wa, wb, wc, wd []fr.Element, zeta fr.Element) lookup.MultiSet {
	n := int(pk.DomainSmall.Cardinality)
	var one fr.Element
	one.SetOne()
	padding := compressedTable[0]

	f := lookup.WithLen(n)
	for i := 0; i < n; i++ {
		if pk.QLookupLagrange[i].Equal(&one) {
			f[i] = compressEvals(&wa[i], &wb[i], &wc[i], &wd[i], &zeta)
		} else {
			f[i] = padding
		}
	}
	return f
}

// foldTableCanonical folds the four canonical table columns with powers of
// zeta.
func foldTableCanonical(pk *ProvingKey, zeta fr.Element) []fr.Element {
	n := len(pk.TableCanonical[0])
	res := make([]fr.Element, n)
	copy(res, pk.TableCanonical[3])
	var t fr.Element
	for col := 2; col >= 0; col-- {
		for i := 0; i < n; i++ {
			t.Mul(&res[i], &zeta)
			res[i].Add(&t, &pk.TableCanonical[col][i])
		}
	}
	return res
}

// computeBlindedPermutationProductCanonical computes the copy constraint
// grand product in canonical basis:
//
//	z(1) = 1
//	z(w**(i+1)) = z(w**i) * prod_w (wire_w + beta*k_w*w**i + gamma)
//	                      / prod_w (wire_w + beta*sigma_w(w**i) + gamma)
func computeBlindedPermutationProductCanonical(pk *ProvingKey, wa, wb, wc, wd []fr.Element, ch *challenges) ([]fr.Element, error) {
	nbElmts := int(pk.DomainSmall.Cardinality)
	z := make([]fr.Element, nbElmts, nbElmts+3)
	gInv := make([]fr.Element, nbElmts)

	z[0].SetOne()
	gInv[0].SetOne()

	ks := pk.Vk.Ks
	wires := [4][]fr.Element{wa, wb, wc, wd}

	utils.Parallelize(nbElmts-1, func(start, end int) {
		var u fr.Element
		u.Exp(pk.DomainSmall.Generator, new(big.Int).SetInt64(int64(start)))

		var f, g, t fr.Element
		for i := start; i < end; i++ {
			f.SetOne()
			g.SetOne()
			for w := 0; w < 4; w++ {
				t.Mul(&ch.Beta, &ks[w]).Mul(&t, &u)
				t.Add(&t, &wires[w][i]).Add(&t, &ch.Gamma)
				f.Mul(&f, &t)

				t.Mul(&ch.Beta, &pk.SigmaLagrange[w][i])
				t.Add(&t, &wires[w][i]).Add(&t, &ch.Gamma)
				g.Mul(&g, &t)
			}
			z[i+1] = f
			gInv[i+1] = g

			u.Mul(&u, &pk.DomainSmall.Generator)
		}
	})

	gInv = fr.BatchInvert(gInv)
	for i := 1; i < nbElmts; i++ {
		z[i].Mul(&z[i], &z[i-1]).
			Mul(&z[i], &gInv[i])
	}

	pk.DomainSmall.FFTInverse(z, fft.DIF)
	fft.BitReverse(z)

	return blindPoly(z, pk.DomainSmall.Cardinality, 2)
}

// computeBlindedLookupProductCanonical computes the plookup grand product in
// canonical basis:
//
//	z2(1) = 1
//	z2(w**(i+1)) = z2(w**i) * (1+delta)*(epsilon+f_i)*(epsilon*(1+delta)+t_i+delta*t_{i+1})
//	                        / ((epsilon*(1+delta)+h1_i+delta*h2_i)*(epsilon*(1+delta)+h2_i+delta*h1_{i+1}))
func computeBlindedLookupProductCanonical(pk *ProvingKey, f, h1, h2, table lookup.MultiSet, ch *challenges) ([]fr.Element, error) {
	nbElmts := int(pk.DomainSmall.Cardinality)
	z2 := make([]fr.Element, nbElmts, nbElmts+3)
	gInv := make([]fr.Element, nbElmts)

	z2[0].SetOne()
	gInv[0].SetOne()

	var one, onePlusDelta, epsOnePlusDelta fr.Element
	one.SetOne()
	onePlusDelta.Add(&one, &ch.Delta)
	epsOnePlusDelta.Mul(&ch.Epsilon, &onePlusDelta)

	utils.Parallelize(nbElmts-1, func(start, end int) {
		var num, den, t, u fr.Element
		for i := start; i < end; i++ {
			t.Add(&ch.Epsilon, &f[i])
			num.Mul(&onePlusDelta, &t)
			t.Mul(&ch.Delta, &table[(i+1)%nbElmts])
			t.Add(&t, &table[i]).Add(&t, &epsOnePlusDelta)
			num.Mul(&num, &t)

			t.Mul(&ch.Delta, &h2[i])
			t.Add(&t, &h1[i]).Add(&t, &epsOnePlusDelta)
			u.Mul(&ch.Delta, &h1[(i+1)%nbElmts])
			u.Add(&u, &h2[i]).Add(&u, &epsOnePlusDelta)
			den.Mul(&t, &u)

			z2[i+1] = num
			gInv[i+1] = den
		}
	})

	gInv = fr.BatchInvert(gInv)
	for i := 1; i < nbElmts; i++ {
		z2[i].Mul(&z2[i], &z2[i-1]).
			Mul(&z2[i], &gInv[i])
	}

	pk.DomainSmall.FFTInverse(z2, fft.DIF)
	fft.BitReverse(z2)

	return blindPoly(z2, pk.DomainSmall.Cardinality, 2)
}

// computeLinearisationPolynomial assembles the linearisation polynomial from
// the shared scalars and the canonical polynomials they multiply.
func computeLinearisationPolynomial(pk *ProvingKey, s *linScalars, bz, bz2, bh1 []fr.Element) []fr.Element {
	parts := []struct {
		scalar *fr.Element
		poly   []fr.Element
	}{
		{&s.QM, pk.QM.Canonical},
		{&s.QL, pk.QL.Canonical},
		{&s.QR, pk.QR.Canonical},
		{&s.QO, pk.QO.Canonical},
		{&s.Q4, pk.Q4.Canonical},
		{&s.QC, pk.QC.Canonical},
		{&s.QRange, pk.QRange.Canonical},
		{&s.QLookup, pk.QLookup.Canonical},
		{&s.Z2, bz2},
		{&s.H1, bh1},
		{&s.Z, bz},
		{&s.S4, pk.SigmaCanonical[3]},
	}

	max := 0
	for _, p := range parts {
		if len(p.poly) > max {
			max = len(p.poly)
		}
	}
	lin := make([]fr.Element, max)
	var t fr.Element
	for _, p := range parts {
		for i := range p.poly {
			t.Mul(p.scalar, &p.poly[i])
			lin[i].Add(&lin[i], &t)
		}
	}
	return lin
}

// foldQuotientChunks folds the quotient chunks with powers of z**n.
func foldQuotientChunks(chunks [][]fr.Element, z fr.Element, n uint64) []fr.Element {
	var zn fr.Element
	zn.Exp(z, new(big.Int).SetUint64(n))

	folded := make([]fr.Element, n)
	copy(folded, chunks[len(chunks)-1])
	var t fr.Element
	for c := len(chunks) - 2; c >= 0; c-- {
		for i := uint64(0); i < n; i++ {
			t.Mul(&folded[i], &zn)
			folded[i].Add(&t, &chunks[c][i])
		}
	}
	return folded
}

// publicInputCanonical interpolates the dense public input vector.
func publicInputCanonical(c *composer.StandardComposer, domain *fft.Domain) []fr.Element {
	pi := c.DensePublicInputs(domain.Cardinality)
	domain.FFTInverse(pi, fft.DIF)
	fft.BitReverse(pi)
	return pi
}

// firstLagrangeCanonical returns L1 in coefficient form: all coefficients
// equal 1/n.
func firstLagrangeCanonical(domain *fft.Domain) []fr.Element {
	l1 := make([]fr.Element, domain.Cardinality)
	for i := range l1 {
		l1[i] = domain.CardinalityInv
	}
	return l1
}

// evalFirstLagrange computes L1(z) = (z**n - 1) / (n * (z - 1)).
func evalFirstLagrange(z fr.Element, domain *fft.Domain) fr.Element {
	var one, num, den, card fr.Element
	one.SetOne()
	card.SetUint64(domain.Cardinality)
	num.Exp(z, new(big.Int).SetUint64(domain.Cardinality))
	num.Sub(&num, &one)
	den.Sub(&z, &one).Mul(&den, &card)
	den.Inverse(&den)
	num.Mul(&num, &den)
	return num
}

// eval evaluates c at p.
func eval(c []fr.Element, p fr.Element) fr.Element {
	var r fr.Element
	for i := len(c) - 1; i >= 0; i-- {
		r.Mul(&r, &p).Add(&r, &c[i])
	}
	return r
}
