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
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"

	"github.com/ZK-Garage/crypto/commitment"
	"github.com/ZK-Garage/crypto/logger"
)

// ErrInvalidProof is returned when any of the verifier checks fails.
var ErrInvalidProof = errors.New("plonk: invalid proof")

// ErrInvalidPublicInputCount is returned when the number of public inputs
// does not match the circuit.
var ErrInvalidPublicInputCount = errors.New("plonk: wrong number of public inputs")

// Verify checks the proof against the verifying key and the public inputs,
// given in gate position order.
func Verify(proof *Proof, vk *VerifyingKey, publicInputs []fr.Element, label, seed []byte) error {
	log := logger.Logger().With().Str("backend", "plonk").Logger()
	start := time.Now()

	if len(publicInputs) != len(vk.PiPositions) {
		return ErrInvalidPublicInputCount
	}

	// replay the transcript
	t := newTranscript()
	if err := bindPreamble(t, vk, label, seed, publicInputs); err != nil {
		return err
	}

	var ch challenges
	var err error
	if err = appendPoints(t, "zeta", "wire", &proof.A, &proof.B, &proof.C, &proof.D); err != nil {
		return err
	}
	if ch.Zeta, err = t.ChallengeScalar("zeta"); err != nil {
		return err
	}
	if err = appendPoints(t, "beta", "lookup", &proof.F, &proof.H1, &proof.H2); err != nil {
		return err
	}
	if ch.Beta, err = t.ChallengeScalar("beta"); err != nil {
		return err
	}
	if ch.Gamma, err = t.ChallengeScalar("gamma"); err != nil {
		return err
	}
	if ch.Delta, err = t.ChallengeScalar("delta"); err != nil {
		return err
	}
	if ch.Epsilon, err = t.ChallengeScalar("epsilon"); err != nil {
		return err
	}
	if err = appendPoints(t, "alpha", "product", &proof.Z, &proof.Z2); err != nil {
		return err
	}
	if ch.Alpha, err = t.ChallengeScalar("alpha"); err != nil {
		return err
	}
	if ch.RangeSep, err = t.ChallengeScalar("range"); err != nil {
		return err
	}
	if ch.LookupSep, err = t.ChallengeScalar("lookup"); err != nil {
		return err
	}
	if err = appendPoints(t, "z", "quotient",
		&proof.T[0], &proof.T[1], &proof.T[2], &proof.T[3],
		&proof.T[4], &proof.T[5], &proof.T[6], &proof.T[7]); err != nil {
		return err
	}
	if ch.ZChallenge, err = t.ChallengeScalar("z"); err != nil {
		return err
	}

	ev := &proof.Evaluations

	// evaluations of the vanishing and first Lagrange polynomials
	var one, zn, znMinusOne fr.Element
	one.SetOne()
	zn.Exp(ch.ZChallenge, new(big.Int).SetUint64(vk.Size))
	znMinusOne.Sub(&zn, &one)

	var l1Eval fr.Element
	{
		var den fr.Element
		den.Sub(&ch.ZChallenge, &one)
		var card fr.Element
		card.SetUint64(vk.Size)
		den.Mul(&den, &card).Inverse(&den)
		l1Eval.Mul(&znMinusOne, &den)
	}

	piEval := evalPublicInputs(vk, publicInputs, ch.ZChallenge, znMinusOne)

	// the quotient identity at the evaluation point
	scalars := computeLinearisationScalars(&vk.Ks, ev, &ch, l1Eval)
	residue := computeResidue(ev, &ch, piEval, l1Eval)

	var lhs, rhs fr.Element
	lhs.Add(&ev.LinEval, &residue)
	rhs.Mul(&ev.QuotientEval, &znMinusOne)
	if !lhs.Equal(&rhs) {
		return ErrInvalidProof
	}

	// reconstruct the linearisation commitment from the shared scalars
	linDigest, err := foldDigests(
		[]kzg.Digest{
			vk.QM, vk.QL, vk.QR, vk.QO, vk.Q4, vk.QC,
			vk.QRange, vk.QLookup,
			proof.Z2, proof.H1, proof.Z, vk.S[3],
		},
		[]fr.Element{
			scalars.QM, scalars.QL, scalars.QR, scalars.QO, scalars.Q4, scalars.QC,
			scalars.QRange, scalars.QLookup,
			scalars.Z2, scalars.H1, scalars.Z, scalars.S4,
		})
	if err != nil {
		return err
	}

	// folded table and quotient commitments
	zetaPowers := make([]fr.Element, 4)
	zetaPowers[0].SetOne()
	for i := 1; i < 4; i++ {
		zetaPowers[i].Mul(&zetaPowers[i-1], &ch.Zeta)
	}
	tableDigest, err := foldDigests(vk.T[:], zetaPowers)
	if err != nil {
		return err
	}

	znPowers := make([]fr.Element, 8)
	znPowers[0].SetOne()
	for i := 1; i < 8; i++ {
		znPowers[i].Mul(&znPowers[i-1], &zn)
	}
	quotientDigest, err := foldDigests(proof.T[:], znPowers)
	if err != nil {
		return err
	}

	// aggregated opening at z
	if err := appendEvaluations(t, ev); err != nil {
		return err
	}
	vAgg, err := t.ChallengeScalar("aggregate")
	if err != nil {
		return err
	}
	agg := commitment.NewAggregateProof(ch.ZChallenge)
	agg.AddPart(quotientDigest, ev.QuotientEval)
	agg.AddPart(linDigest, ev.LinEval)
	agg.AddPart(proof.A, ev.A)
	agg.AddPart(proof.B, ev.B)
	agg.AddPart(proof.C, ev.C)
	agg.AddPart(proof.D, ev.D)
	agg.AddPart(vk.S[0], ev.S1)
	agg.AddPart(vk.S[1], ev.S2)
	agg.AddPart(vk.S[2], ev.S3)
	agg.AddPart(proof.F, ev.F)
	agg.AddPart(proof.H2, ev.H2)
	agg.AddPart(tableDigest, ev.Table)
	agg.AddPart(vk.QArith, ev.QArith)
	foldedDigest, foldedValue, err := agg.Flatten(vAgg)
	if err != nil {
		return err
	}

	// aggregated opening at z*omega
	vShift, err := t.ChallengeScalar("shifted aggregate")
	if err != nil {
		return err
	}
	var zOmega fr.Element
	zOmega.Mul(&ch.ZChallenge, &vk.Generator)
	aggShifted := commitment.NewAggregateProof(zOmega)
	aggShifted.AddPart(proof.Z, ev.ZShifted)
	aggShifted.AddPart(proof.Z2, ev.Z2Shifted)
	aggShifted.AddPart(tableDigest, ev.TableShifted)
	aggShifted.AddPart(proof.H1, ev.H1Shifted)
	aggShifted.AddPart(proof.D, ev.DShifted)
	foldedDigestShifted, foldedValueShifted, err := aggShifted.Flatten(vShift)
	if err != nil {
		return err
	}

	// the claimed values are recomputed from the bound evaluations, so a
	// proof with inconsistent openings fails the pairing check
	openAtZ := kzg.OpeningProof{
		H:            proof.AggregateW.H,
		ClaimedValue: foldedValue,
	}
	openAtZOmega := kzg.OpeningProof{
		H:            proof.AggregateWShifted.H,
		ClaimedValue: foldedValueShifted,
	}
	if err := kzg.BatchVerifyMultiPoints(
		[]kzg.Digest{foldedDigest, foldedDigestShifted},
		[]kzg.OpeningProof{openAtZ, openAtZOmega},
		[]fr.Element{ch.ZChallenge, zOmega},
		vk.KZGSRS,
	); err != nil {
		return err
	}

	log.Debug().Dur("took", time.Since(start)).Msg("verifier done")
	return nil
}

// evalPublicInputs computes PI(z) over the sparse public input positions:
// PI(z) = sum_k pi_k * L_{p_k}(z) with L_i(z) = w**i * (z**n-1) / (n*(z-w**i)).
func evalPublicInputs(vk *VerifyingKey, publicInputs []fr.Element, z, znMinusOne fr.Element) fr.Element {
	var res fr.Element
	if len(publicInputs) == 0 {
		return res
	}

	var card fr.Element
	card.SetUint64(vk.Size)

	dens := make([]fr.Element, len(publicInputs))
	omegas := make([]fr.Element, len(publicInputs))
	for k, p := range vk.PiPositions {
		omegas[k].Exp(vk.Generator, new(big.Int).SetInt64(int64(p)))
		dens[k].Sub(&z, &omegas[k]).Mul(&dens[k], &card)
	}
	dens = fr.BatchInvert(dens)

	var t fr.Element
	for k := range publicInputs {
		t.Mul(&omegas[k], &znMinusOne).Mul(&t, &dens[k]).Mul(&t, &publicInputs[k])
		res.Add(&res, &t)
	}
	return res
}

func foldDigests(digests []kzg.Digest, scalars []fr.Element) (kzg.Digest, error) {
	var folded kzg.Digest
	if len(digests) == 0 || len(digests) != len(scalars) {
		return folded, commitment.ErrNothingToAggregate
	}
	points := make([]curve.G1Affine, len(digests))
	copy(points, digests)
	if _, err := folded.MultiExp(points, scalars, ecc.MultiExpConfig{ScalarsMont: true}); err != nil {
		return folded, err
	}
	return folded, nil
}
