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

// Package commitment aggregates KZG openings: several polynomial commitments
// opened at the same point are folded into one commitment and one claimed
// value using powers of a transcript challenge, so a single pairing check
// covers the whole batch.
package commitment

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc"
	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
)

// ErrNothingToAggregate is returned when Flatten is called on an empty
// aggregate.
var ErrNothingToAggregate = errors.New("kzg: no opening parts to aggregate")

// AggregateProof collects commitments with their claimed evaluations at one
// shared opening point. Parts fold in insertion order; prover and verifier
// must insert in the same order to derive the same folding.
type AggregateProof struct {
	point fr.Element
	parts []part
}

type part struct {
	digest kzg.Digest
	value  fr.Element
}

// NewAggregateProof starts an empty aggregate at the given opening point.
func NewAggregateProof(point fr.Element) *AggregateProof {
	return &AggregateProof{point: point}
}

// AddPart appends one commitment and its claimed evaluation.
func (a *AggregateProof) AddPart(digest kzg.Digest, value fr.Element) {
	a.parts = append(a.parts, part{digest: digest, value: value})
}

// Point returns the shared opening point.
func (a *AggregateProof) Point() fr.Element { return a.point }

// Flatten folds the parts with powers of the challenge v: the folded
// commitment is sum_i v^i C_i and the folded value is sum_i v^i y_i. The
// challenge is drawn from the shared transcript by the caller so the same
// powers can fold the underlying polynomials.
func (a *AggregateProof) Flatten(v fr.Element) (kzg.Digest, fr.Element, error) {
	var digest kzg.Digest
	var value fr.Element
	if len(a.parts) == 0 {
		return digest, value, ErrNothingToAggregate
	}

	scalars := challengePowers(v, len(a.parts))

	points := make([]curve.G1Affine, len(a.parts))
	for i, p := range a.parts {
		points[i] = p.digest
		var term fr.Element
		term.Mul(&scalars[i], &a.parts[i].value)
		value.Add(&value, &term)
	}
	if _, err := digest.MultiExp(points, scalars, ecc.MultiExpConfig{ScalarsMont: true}); err != nil {
		return digest, value, err
	}
	return digest, value, nil
}

// FoldPolynomials folds canonical polynomials with the same challenge powers
// Flatten uses for digests. Polynomials may have different lengths; the
// result has the length of the longest one.
func FoldPolynomials(polys [][]fr.Element, v fr.Element) ([]fr.Element, error) {
	if len(polys) == 0 {
		return nil, ErrNothingToAggregate
	}
	max := 0
	for _, p := range polys {
		if len(p) > max {
			max = len(p)
		}
	}
	folded := make([]fr.Element, max)
	scalars := challengePowers(v, len(polys))
	var t fr.Element
	for i, p := range polys {
		for j := range p {
			t.Mul(&scalars[i], &p[j])
			folded[j].Add(&folded[j], &t)
		}
	}
	return folded, nil
}

// ChallengePowers exposes the folding scalars so a prover can fold the
// underlying polynomials consistently with Flatten.
func ChallengePowers(v fr.Element, n int) ([]fr.Element, error) {
	if n <= 0 {
		return nil, ErrNothingToAggregate
	}
	return challengePowers(v, n), nil
}

func challengePowers(v fr.Element, n int) []fr.Element {
	powers := make([]fr.Element, n)
	powers[0].SetOne()
	for i := 1; i < n; i++ {
		powers[i].Mul(&powers[i-1], &v)
	}
	return powers
}

// Open produces a single KZG opening proof for the folded polynomial at the
// aggregate's point.
func Open(folded []fr.Element, point fr.Element, srs *kzg.SRS) (kzg.OpeningProof, error) {
	return kzg.Open(folded, point, srs)
}

// Verify checks one folded opening against the folded digest and value.
func Verify(digest *kzg.Digest, proof *kzg.OpeningProof, point fr.Element, srs *kzg.SRS) error {
	return kzg.Verify(digest, proof, point, srs)
}
