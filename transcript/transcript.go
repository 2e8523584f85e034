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

// Package transcript implements the Fiat-Shamir oracle used to derive every
// protocol challenge.
//
// A transcript is created from an ordered list of challenge names; this list
// is the protocol script shared by the prover and the verifier. Values are
// absorbed under the name of the next challenge to be derived, so the two
// roles cannot drift apart silently: absorbing into an already-derived
// challenge, or deriving out of order, surfaces as an error.
package transcript

import (
	"crypto/sha256"
	"encoding/binary"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	fiatshamir "github.com/consensys/gnark-crypto/fiat-shamir"
)

// Transcript is a stateful byte-absorbing oracle. For a fixed absorbed
// history, ChallengeScalar is a pure function: two transcripts fed the same
// ordered appends return the same scalars.
type Transcript struct {
	fs fiatshamir.Transcript
}

// New returns a transcript bound to the given ordered challenge script,
// hashing with sha256.
func New(challenges ...string) *Transcript {
	return &Transcript{
		fs: fiatshamir.NewTranscript(sha256.New(), challenges...),
	}
}

// CircuitDomainSep binds the circuit size to the challenge, separating proof
// sessions of different circuit sizes.
func (t *Transcript) CircuitDomainSep(challenge string, n uint64) error {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return t.AppendBytes(challenge, "circuit_size", b[:])
}

// AppendBytes absorbs raw bytes under a domain-separation label, bound to the
// given upcoming challenge.
func (t *Transcript) AppendBytes(challenge, label string, data []byte) error {
	bound := make([]byte, 0, len(label)+len(data))
	bound = append(bound, []byte(label)...)
	bound = append(bound, data...)
	return t.fs.Bind(challenge, bound)
}

// AppendScalar absorbs the canonical big-endian encoding of s.
func (t *Transcript) AppendScalar(challenge, label string, s *fr.Element) error {
	b := s.Bytes()
	return t.AppendBytes(challenge, label, b[:])
}

// AppendPoint absorbs the uncompressed encoding of p.
func (t *Transcript) AppendPoint(challenge, label string, p *curve.G1Affine) error {
	b := p.RawBytes()
	return t.AppendBytes(challenge, label, b[:])
}

// ChallengeScalar derives the named challenge from all data absorbed so far.
// The name must be the next unseen entry of the script.
func (t *Transcript) ChallengeScalar(challenge string) (fr.Element, error) {
	var r fr.Element
	b, err := t.fs.ComputeChallenge(challenge)
	if err != nil {
		return r, err
	}
	r.SetBytes(b)
	return r, nil
}
