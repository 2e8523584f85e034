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
	"bytes"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZK-Garage/crypto/composer"
	"github.com/ZK-Garage/crypto/lookup"
)

func elt(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func negElt(v uint64) fr.Element {
	e := elt(v)
	e.Neg(&e)
	return e
}

// gadgetTester builds the circuit twice, once with the prover and once with
// the verifier, preprocesses both and checks that an honest proof verifies.
func gadgetTester(t *testing.T, gadget func(c *composer.StandardComposer) error, srsSize uint64) (*Proof, *Verifier, []fr.Element) {
	t.Helper()

	srs, err := kzg.NewSRS(srsSize, big.NewInt(42))
	require.NoError(t, err)

	prover := NewProver("gadget test")
	require.NoError(t, gadget(prover.Composer))
	require.NoError(t, prover.Composer.CheckCircuitSatisfied())

	proof, err := prover.Prove(srs)
	require.NoError(t, err)

	verifier := NewVerifier("gadget test")
	require.NoError(t, gadget(verifier.Composer))
	require.NoError(t, verifier.Preprocess(srs))

	publicInputs := prover.Composer.PublicInputs()
	require.NoError(t, verifier.Verify(proof, publicInputs))

	return proof, verifier, publicInputs
}

// arithmeticGadget pins a=20 and b=5 through public inputs on an addition
// and a multiplication gate, then range checks both operands.
func arithmeticGadget(c *composer.StandardComposer) error {
	a := c.AddInput(elt(20))
	b := c.AddInput(elt(5))

	// a + b - 25 == 0
	piAdd := negElt(25)
	g := c.NewGate(a, b, c.Zero()).WithLinear(elt(1), elt(1), fr.Element{})
	g.PI = &piAdd
	c.Build(g)

	// a * b - 100 == 0
	piMul := negElt(100)
	g = c.NewGate(a, b, c.Zero()).WithMul(elt(1))
	g.PI = &piMul
	c.Build(g)

	if _, err := c.RangeGate(a, 6); err != nil {
		return err
	}
	if _, err := c.RangeGate(b, 5); err != nil {
		return err
	}
	return nil
}

func xorGadget(c *composer.StandardComposer) error {
	xor := lookup.NewXorTable(3)
	for i := 0; i < xor.NbRows(); i++ {
		c.AddTableRow(xor.Row(i))
	}

	a := c.AddInput(elt(5))
	b := c.AddInput(elt(3))
	o, err := c.XorGate(a, b)
	if err != nil {
		return err
	}

	// 5 ^ 3 == 6, pinned through a public input
	pi := negElt(6)
	c.ConstrainToConstant(o, fr.Element{}, &pi)
	return nil
}

func TestProveVerifyArithmetic(t *testing.T) {
	gadgetTester(t, arithmeticGadget, 64)
}

func TestProveVerifyLookup(t *testing.T) {
	gadgetTester(t, xorGadget, 128)
}

func TestVerifyRejectsWrongPublicInput(t *testing.T) {
	proof, verifier, publicInputs := gadgetTester(t, arithmeticGadget, 64)

	tampered := append([]fr.Element(nil), publicInputs...)
	var one fr.Element
	one.SetOne()
	tampered[0].Add(&tampered[0], &one)
	assert.Error(t, verifier.Verify(proof, tampered))
}

func TestVerifyRejectsTamperedEvaluation(t *testing.T) {
	proof, verifier, publicInputs := gadgetTester(t, arithmeticGadget, 64)

	var one fr.Element
	one.SetOne()
	proof.Evaluations.A.Add(&proof.Evaluations.A, &one)
	assert.Error(t, verifier.Verify(proof, publicInputs))
}

func TestVerifyRejectsTamperedCommitment(t *testing.T) {
	proof, verifier, publicInputs := gadgetTester(t, arithmeticGadget, 64)

	proof.Z, proof.Z2 = proof.Z2, proof.Z
	assert.Error(t, verifier.Verify(proof, publicInputs))
}

// tamperedWitnessGadget has the same shape as arithmeticGadget but feeds a
// witness that violates both arithmetic gates.
func tamperedWitnessGadget(c *composer.StandardComposer) error {
	a := c.AddInput(elt(20))
	b := c.AddInput(elt(6))

	piAdd := negElt(25)
	g := c.NewGate(a, b, c.Zero()).WithLinear(elt(1), elt(1), fr.Element{})
	g.PI = &piAdd
	c.Build(g)

	piMul := negElt(100)
	g = c.NewGate(a, b, c.Zero()).WithMul(elt(1))
	g.PI = &piMul
	c.Build(g)

	if _, err := c.RangeGate(a, 6); err != nil {
		return err
	}
	if _, err := c.RangeGate(b, 5); err != nil {
		return err
	}
	return nil
}

func TestVerifyRejectsTamperedWitness(t *testing.T) {
	srs, err := kzg.NewSRS(64, big.NewInt(42))
	require.NoError(t, err)

	prover := NewProver("gadget test")
	require.NoError(t, tamperedWitnessGadget(prover.Composer))
	require.Error(t, prover.Composer.CheckCircuitSatisfied())

	// the prover runs anyway; the resulting proof must not verify
	proof, err := prover.Prove(srs)
	require.NoError(t, err)

	verifier := NewVerifier("gadget test")
	require.NoError(t, arithmeticGadget(verifier.Composer))
	require.NoError(t, verifier.Preprocess(srs))
	assert.Error(t, verifier.Verify(proof, prover.Composer.PublicInputs()))
}

func TestVerifyRejectsWrongSession(t *testing.T) {
	proof, verifier, publicInputs := gadgetTester(t, arithmeticGadget, 64)

	verifier.KeyTranscript("gadget test", []byte("other session"))
	assert.Error(t, verifier.Verify(proof, publicInputs))

	verifier.KeyTranscript("gadget test", nil)
	require.NoError(t, verifier.Verify(proof, publicInputs))
}

func TestVerifyRejectsWrongInputCount(t *testing.T) {
	proof, verifier, publicInputs := gadgetTester(t, arithmeticGadget, 64)

	assert.ErrorIs(t, verifier.Verify(proof, publicInputs[:len(publicInputs)-1]), ErrInvalidPublicInputCount)
}

func TestProofSerialization(t *testing.T) {
	proof, _, _ := gadgetTester(t, arithmeticGadget, 64)

	var buf bytes.Buffer
	_, err := proof.WriteTo(&buf)
	require.NoError(t, err)
	encoded := buf.Bytes()

	var decoded Proof
	_, err = decoded.ReadFrom(bytes.NewReader(encoded))
	require.NoError(t, err)

	var buf2 bytes.Buffer
	_, err = decoded.WriteTo(&buf2)
	require.NoError(t, err)
	assert.Equal(t, encoded, buf2.Bytes())
}

func TestVerifyingKeySerialization(t *testing.T) {
	_, verifier, _ := gadgetTester(t, arithmeticGadget, 64)
	vk := verifier.VerifyingKey()

	var buf bytes.Buffer
	_, err := vk.WriteTo(&buf)
	require.NoError(t, err)
	encoded := buf.Bytes()

	var decoded VerifyingKey
	_, err = decoded.ReadFrom(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, vk.Size, decoded.Size)
	assert.Equal(t, vk.PiPositions, decoded.PiPositions)
	assert.True(t, decoded.Generator.Equal(&vk.Generator))
	assert.True(t, decoded.QM.Equal(&vk.QM))
	assert.True(t, decoded.S[3].Equal(&vk.S[3]))
}

func TestVerifyingKeyRejectsOversizedPositionCount(t *testing.T) {
	_, verifier, _ := gadgetTester(t, arithmeticGadget, 64)
	vk := verifier.VerifyingKey()

	var buf bytes.Buffer
	_, err := vk.WriteTo(&buf)
	require.NoError(t, err)
	encoded := buf.Bytes()

	// the position count sits right after the 8-byte circuit size
	for i := 8; i < 12; i++ {
		encoded[i] = 0xff
	}

	var decoded VerifyingKey
	_, err = decoded.ReadFrom(bytes.NewReader(encoded))
	assert.ErrorIs(t, err, ErrInvalidKeyEncoding)
}

// Blinding must not change the polynomial on the evaluation domain, and the
// blinded form carries exactly bo+1 extra coefficients.
func TestBlindingPreservesDomainEvaluations(t *testing.T) {
	domain := fft.NewDomain(8)
	evals := make([]fr.Element, domain.Cardinality)
	for i := range evals {
		_, err := evals[i].SetRandom()
		require.NoError(t, err)
	}

	for _, bo := range []uint64{1, 2} {
		blinded, err := blindedCanonical(evals, domain, bo)
		require.NoError(t, err)
		require.Len(t, blinded, int(domain.Cardinality+bo+1))

		var x fr.Element
		x.SetOne()
		for i := range evals {
			got := eval(blinded, x)
			assert.True(t, got.Equal(&evals[i]))
			x.Mul(&x, &domain.Generator)
		}
	}
}

func TestProvingKeySerialization(t *testing.T) {
	srs, err := kzg.NewSRS(64, big.NewInt(42))
	require.NoError(t, err)

	prover := NewProver("serialization")
	require.NoError(t, arithmeticGadget(prover.Composer))
	require.NoError(t, prover.Preprocess(srs))
	pk := prover.ProvingKey()

	var buf bytes.Buffer
	_, err = pk.WriteTo(&buf)
	require.NoError(t, err)

	var decoded ProvingKey
	_, err = decoded.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, pk.DomainSmall.Cardinality, decoded.DomainSmall.Cardinality)
	require.Equal(t, len(pk.QM.Canonical), len(decoded.QM.Canonical))
	for i := range pk.QM.Canonical {
		assert.True(t, decoded.QM.Canonical[i].Equal(&pk.QM.Canonical[i]))
	}
	require.Equal(t, len(pk.SigmaCoset[2]), len(decoded.SigmaCoset[2]))
	for i := range pk.SigmaCoset[2] {
		assert.True(t, decoded.SigmaCoset[2][i].Equal(&pk.SigmaCoset[2][i]))
	}

	// a proof from the deserialized key must still verify
	decoded.Vk.KZGSRS = srs
	proof, err := Prove(prover.Composer, &decoded, []byte("serialization"), nil)
	require.NoError(t, err)

	verifier := NewVerifier("serialization")
	require.NoError(t, arithmeticGadget(verifier.Composer))
	require.NoError(t, verifier.Preprocess(srs))
	require.NoError(t, verifier.Verify(proof, prover.Composer.PublicInputs()))
}

func TestSetupRejectsSmallSRS(t *testing.T) {
	srs, err := kzg.NewSRS(8, big.NewInt(42))
	require.NoError(t, err)

	prover := NewProver("small srs")
	require.NoError(t, arithmeticGadget(prover.Composer))
	_, _, err = Setup(prover.Composer, srs)
	assert.ErrorIs(t, err, ErrSRSTooSmall)
}
