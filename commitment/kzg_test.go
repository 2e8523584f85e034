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

package commitment

import (
	"math/big"
	"testing"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSize = 64

func testSRS(t *testing.T) *kzg.SRS {
	t.Helper()
	srs, err := kzg.NewSRS(testSize+3, big.NewInt(42))
	require.NoError(t, err)
	return srs
}

func randomPoly(t *testing.T, n int) []fr.Element {
	t.Helper()
	p := make([]fr.Element, n)
	for i := range p {
		_, err := p[i].SetRandom()
		require.NoError(t, err)
	}
	return p
}

func evalPoly(p []fr.Element, x fr.Element) fr.Element {
	var r fr.Element
	for i := len(p) - 1; i >= 0; i-- {
		r.Mul(&r, &x).Add(&r, &p[i])
	}
	return r
}

func TestFlattenEmpty(t *testing.T) {
	var point fr.Element
	point.SetUint64(3)
	agg := NewAggregateProof(point)
	var v fr.Element
	v.SetUint64(7)
	_, _, err := agg.Flatten(v)
	assert.ErrorIs(t, err, ErrNothingToAggregate)
}

func TestFoldPolynomialsEmpty(t *testing.T) {
	var v fr.Element
	v.SetUint64(7)
	_, err := FoldPolynomials(nil, v)
	assert.ErrorIs(t, err, ErrNothingToAggregate)
}

func TestAggregateOpenVerify(t *testing.T) {
	srs := testSRS(t)

	var point, v fr.Element
	_, err := point.SetRandom()
	require.NoError(t, err)
	_, err = v.SetRandom()
	require.NoError(t, err)

	polys := [][]fr.Element{
		randomPoly(t, testSize),
		randomPoly(t, testSize/2),
		randomPoly(t, testSize),
	}

	agg := NewAggregateProof(point)
	for _, p := range polys {
		digest, err := kzg.Commit(p, srs)
		require.NoError(t, err)
		agg.AddPart(digest, evalPoly(p, point))
	}

	foldedDigest, foldedValue, err := agg.Flatten(v)
	require.NoError(t, err)

	folded, err := FoldPolynomials(polys, v)
	require.NoError(t, err)
	wantValue := evalPoly(folded, point)
	assert.True(t, foldedValue.Equal(&wantValue))

	proof, err := Open(folded, point, srs)
	require.NoError(t, err)
	assert.True(t, proof.ClaimedValue.Equal(&foldedValue))

	require.NoError(t, Verify(&foldedDigest, &proof, point, srs))
}

// The multi-exponentiation inside Flatten must agree with folding the
// digests one scalar multiplication at a time.
func TestFlattenMatchesScalarMultiplication(t *testing.T) {
	srs := testSRS(t)

	var point, v fr.Element
	point.SetUint64(11)
	_, err := v.SetRandom()
	require.NoError(t, err)

	polys := [][]fr.Element{
		randomPoly(t, testSize),
		randomPoly(t, testSize/2),
		randomPoly(t, testSize/4),
	}

	agg := NewAggregateProof(point)
	digests := make([]kzg.Digest, len(polys))
	for i, p := range polys {
		digests[i], err = kzg.Commit(p, srs)
		require.NoError(t, err)
		agg.AddPart(digests[i], evalPoly(p, point))
	}

	foldedDigest, _, err := agg.Flatten(v)
	require.NoError(t, err)

	scalars, err := ChallengePowers(v, len(polys))
	require.NoError(t, err)
	var want, term curve.G1Affine
	var s big.Int
	for i := range digests {
		scalars[i].ToBigIntRegular(&s)
		term.ScalarMultiplication(&digests[i], &s)
		want.Add(&want, &term)
	}
	assert.True(t, foldedDigest.Equal(&want))
}

// A single-part aggregate must reduce to the plain KZG opening: the folding
// powers collapse to 1, so digest, claimed value and witness all coincide.
func TestSinglePartAggregationIsPlainOpening(t *testing.T) {
	srs := testSRS(t)

	var point, v fr.Element
	_, err := point.SetRandom()
	require.NoError(t, err)
	_, err = v.SetRandom()
	require.NoError(t, err)

	p := randomPoly(t, testSize)
	digest, err := kzg.Commit(p, srs)
	require.NoError(t, err)

	agg := NewAggregateProof(point)
	agg.AddPart(digest, evalPoly(p, point))
	foldedDigest, foldedValue, err := agg.Flatten(v)
	require.NoError(t, err)
	assert.True(t, foldedDigest.Equal(&digest))

	plain, err := kzg.Open(p, point, srs)
	require.NoError(t, err)
	assert.True(t, foldedValue.Equal(&plain.ClaimedValue))

	folded, err := FoldPolynomials([][]fr.Element{p}, v)
	require.NoError(t, err)
	aggProof, err := Open(folded, point, srs)
	require.NoError(t, err)
	assert.True(t, aggProof.H.Equal(&plain.H))
	require.NoError(t, Verify(&foldedDigest, &aggProof, point, srs))
}

func TestVerifyRejectsWrongValue(t *testing.T) {
	srs := testSRS(t)

	var point, v fr.Element
	_, err := point.SetRandom()
	require.NoError(t, err)
	_, err = v.SetRandom()
	require.NoError(t, err)

	p := randomPoly(t, testSize)
	digest, err := kzg.Commit(p, srs)
	require.NoError(t, err)

	agg := NewAggregateProof(point)
	agg.AddPart(digest, evalPoly(p, point))
	foldedDigest, _, err := agg.Flatten(v)
	require.NoError(t, err)

	folded, err := FoldPolynomials([][]fr.Element{p}, v)
	require.NoError(t, err)
	proof, err := Open(folded, point, srs)
	require.NoError(t, err)

	var one fr.Element
	one.SetOne()
	proof.ClaimedValue.Add(&proof.ClaimedValue, &one)
	assert.Error(t, Verify(&foldedDigest, &proof, point, srs))
}

func TestChallengePowers(t *testing.T) {
	var v fr.Element
	v.SetUint64(5)
	powers, err := ChallengePowers(v, 4)
	require.NoError(t, err)
	require.Len(t, powers, 4)
	var one fr.Element
	one.SetOne()
	assert.True(t, powers[0].Equal(&one))

	var expect fr.Element
	expect.SetUint64(125)
	assert.True(t, powers[3].Equal(&expect))

	_, err = ChallengePowers(v, 0)
	assert.ErrorIs(t, err, ErrNothingToAggregate)
}
