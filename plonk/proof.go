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
	"io"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
)

// ProofEvaluations carries the openings the verifier needs: evaluations at
// the evaluation point and at its shift by the domain generator.
type ProofEvaluations struct {
	// wire polynomials at z
	A, B, C, D fr.Element

	// first three permutation polynomials at z
	S1, S2, S3 fr.Element

	// arithmetic selector at z
	QArith fr.Element

	// lookup query polynomial, second sorted half and compressed table at z
	F, H2, Table fr.Element

	// linearisation polynomial and folded quotient at z
	LinEval      fr.Element
	QuotientEval fr.Element

	// openings at z*omega
	ZShifted, Z2Shifted, TableShifted, H1Shifted, DShifted fr.Element
}

// Proof is a PLONK proof with lookup support.
type Proof struct {
	// commitments to the wire polynomials
	A, B, C, D kzg.Digest

	// commitments to the lookup query polynomial and the sorted halves
	F, H1, H2 kzg.Digest

	// commitments to the permutation and lookup grand products
	Z, Z2 kzg.Digest

	// commitments to the quotient chunks
	T [8]kzg.Digest

	// aggregated opening at the evaluation point
	AggregateW kzg.OpeningProof

	// aggregated opening at the shifted evaluation point
	AggregateWShifted kzg.OpeningProof

	Evaluations ProofEvaluations
}

// WriteTo writes the proof to w.
func (proof *Proof) WriteTo(w io.Writer) (int64, error) {
	enc := curve.NewEncoder(w)
	toEncode := proof.serializationOrder()
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return enc.BytesWritten(), err
		}
	}
	return enc.BytesWritten(), nil
}

// ReadFrom reads the proof from r.
func (proof *Proof) ReadFrom(r io.Reader) (int64, error) {
	dec := curve.NewDecoder(r)
	toDecode := proof.serializationOrder()
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return dec.BytesRead(), err
		}
	}
	return dec.BytesRead(), nil
}

func (proof *Proof) serializationOrder() []interface{} {
	ev := &proof.Evaluations
	return []interface{}{
		&proof.A, &proof.B, &proof.C, &proof.D,
		&proof.F, &proof.H1, &proof.H2,
		&proof.Z, &proof.Z2,
		&proof.T[0], &proof.T[1], &proof.T[2], &proof.T[3],
		&proof.T[4], &proof.T[5], &proof.T[6], &proof.T[7],
		&proof.AggregateW.H, &proof.AggregateW.ClaimedValue,
		&proof.AggregateWShifted.H, &proof.AggregateWShifted.ClaimedValue,
		&ev.A, &ev.B, &ev.C, &ev.D,
		&ev.S1, &ev.S2, &ev.S3,
		&ev.QArith,
		&ev.F, &ev.H2, &ev.Table,
		&ev.LinEval, &ev.QuotientEval,
		&ev.ZShifted, &ev.Z2Shifted, &ev.TableShifted, &ev.H1Shifted, &ev.DShifted,
	}
}
