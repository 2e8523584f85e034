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

// Package plonk implements a PLONK prover and verifier over BN254 with a
// plookup argument: circuits built with the composer package are
// preprocessed into proving and verifying keys, proved with KZG polynomial
// commitments and verified with two batched openings.
package plonk

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"

	"github.com/ZK-Garage/crypto/composer"
	"github.com/ZK-Garage/crypto/transcript"
)

// protocolScript lists the transcript challenges in derivation order. Both
// sides must bind and draw in exactly this order.
var protocolScript = []string{
	"zeta",
	"beta",
	"gamma",
	"delta",
	"epsilon",
	"alpha",
	"range",
	"lookup",
	"z",
	"aggregate",
	"shifted aggregate",
}

// ErrNotPreprocessed is returned when proving or verifying is attempted
// before the circuit has been preprocessed.
var ErrNotPreprocessed = errors.New("plonk: circuit has not been preprocessed")

func newTranscript() *transcript.Transcript {
	return transcript.New(protocolScript...)
}

// bindPreamble seeds the transcript with everything fixed before the first
// prover message: domain size, the session label and seed, the preprocessed
// commitments and the public inputs.
func bindPreamble(t *transcript.Transcript, vk *VerifyingKey, label, seed []byte, publicInputs []fr.Element) error {
	if err := t.CircuitDomainSep("zeta", vk.Size); err != nil {
		return err
	}
	if err := t.AppendBytes("zeta", "label", label); err != nil {
		return err
	}
	if err := t.AppendBytes("zeta", "seed", seed); err != nil {
		return err
	}
	keyDigests := []*kzg.Digest{
		&vk.QM, &vk.QL, &vk.QR, &vk.QO, &vk.Q4, &vk.QC, &vk.QArith,
		&vk.QRange, &vk.QLookup,
		&vk.T[0], &vk.T[1], &vk.T[2], &vk.T[3],
		&vk.S[0], &vk.S[1], &vk.S[2], &vk.S[3],
	}
	for _, d := range keyDigests {
		if err := t.AppendPoint("zeta", "vk", d); err != nil {
			return err
		}
	}
	for i := range publicInputs {
		if err := t.AppendScalar("zeta", "pi", &publicInputs[i]); err != nil {
			return err
		}
	}
	return nil
}

// Prover owns a composer and its proving key. The label separates proofs of
// different protocol sessions sharing a circuit.
type Prover struct {
	Composer *composer.StandardComposer

	label []byte
	seed  []byte
	pk    *ProvingKey
}

// NewProver returns a prover with an empty circuit.
func NewProver(label string) *Prover {
	return &Prover{Composer: composer.New(), label: []byte(label)}
}

// KeyTranscript rebinds the session label and seed. Proofs are only valid
// against a verifier sharing both.
func (p *Prover) KeyTranscript(label string, seed []byte) {
	p.label = []byte(label)
	p.seed = seed
}

// Preprocess builds the proving key for the current circuit.
func (p *Prover) Preprocess(srs *kzg.SRS) error {
	pk, _, err := Setup(p.Composer, srs)
	if err != nil {
		return err
	}
	p.pk = pk
	return nil
}

// ProvingKey returns the key built by Preprocess, nil before that.
func (p *Prover) ProvingKey() *ProvingKey { return p.pk }

// VerifyingKey returns the verifying key embedded in the proving key.
func (p *Prover) VerifyingKey() *VerifyingKey {
	if p.pk == nil {
		return nil
	}
	return p.pk.Vk
}

// Prove preprocesses the circuit if needed and produces a proof for the
// composer's witness.
func (p *Prover) Prove(srs *kzg.SRS) (*Proof, error) {
	if p.pk == nil {
		if err := p.Preprocess(srs); err != nil {
			return nil, err
		}
	}
	return Prove(p.Composer, p.pk, p.label, p.seed)
}

// Verifier owns a composer holding the circuit shape, without witness, and
// the verifying key derived from it.
type Verifier struct {
	Composer *composer.StandardComposer

	label []byte
	seed  []byte
	vk    *VerifyingKey
}

// NewVerifier returns a verifier with an empty circuit.
func NewVerifier(label string) *Verifier {
	return &Verifier{Composer: composer.New(), label: []byte(label)}
}

// KeyTranscript rebinds the session label and seed.
func (v *Verifier) KeyTranscript(label string, seed []byte) {
	v.label = []byte(label)
	v.seed = seed
}

// Preprocess builds the verifying key for the current circuit.
func (v *Verifier) Preprocess(srs *kzg.SRS) error {
	_, vk, err := Setup(v.Composer, srs)
	if err != nil {
		return err
	}
	v.vk = vk
	return nil
}

// VerifyingKey returns the key built by Preprocess, nil before that.
func (v *Verifier) VerifyingKey() *VerifyingKey { return v.vk }

// Verify checks the proof against the circuit and the given public inputs.
func (v *Verifier) Verify(proof *Proof, publicInputs []fr.Element) error {
	if v.vk == nil {
		return ErrNotPreprocessed
	}
	return Verify(proof, v.vk, publicInputs, v.label, v.seed)
}
