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
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"

	"github.com/ZK-Garage/crypto/lookup"
)

// selectorPoly carries one preprocessed column in the bases the prover
// needs: canonical coefficients for commitment and opening, and evaluations
// over the 8n coset for the quotient computation.
type selectorPoly struct {
	Canonical []fr.Element
	Coset     []fr.Element
}

// ProvingKey stores the preprocessed circuit:
// * selector polynomials of the arithmetic, range and lookup widgets
// * the permutation polynomials in canonical, coset and Lagrange bases
// * the lookup table columns
// * the FFT domains of size n and 8n
type ProvingKey struct {
	// Verifying key is embedded into the proving key (needed by Prove)
	Vk *VerifyingKey

	// Domains used for the FFTs
	DomainSmall, DomainBig fft.Domain

	// arithmetic widget selectors
	QM, QL, QR, QO, Q4, QC, QArith selectorPoly

	// range widget selector
	QRange selectorPoly

	// lookup widget selector. The Lagrange basis is kept for building the
	// query column at proving time.
	QLookup         selectorPoly
	QLookupLagrange []fr.Element

	// lookup table columns, padded to n, in Lagrange and canonical bases
	TableCols      [4]lookup.MultiSet
	TableCanonical [4][]fr.Element

	// copy constraint permutation polynomials. SigmaLagrange holds the
	// permutation values k_{w'} * omega^j used by the grand product.
	SigmaCanonical [4][]fr.Element
	SigmaCoset     [4][]fr.Element
	SigmaLagrange  [4][]fr.Element

	// dense public input positions, sorted
	PiPositions []int
}

// VerifyingKey stores the commitments to the preprocessed polynomials and
// the domain data the verifier needs.
type VerifyingKey struct {
	// Size is the domain cardinality n, SizeInv its field inverse and
	// Generator the domain's root of unity.
	Size      uint64
	SizeInv   fr.Element
	Generator fr.Element

	// coset shifters of the four wire columns
	Ks [4]fr.Element

	// gate positions carrying a public input, sorted
	PiPositions []int

	// arithmetic widget commitments
	QM, QL, QR, QO, Q4, QC, QArith kzg.Digest

	// range widget commitment
	QRange kzg.Digest

	// lookup widget commitments: selector and the four table columns
	QLookup kzg.Digest
	T       [4]kzg.Digest

	// permutation commitments
	S [4]kzg.Digest

	KZGSRS *kzg.SRS
}

// wireShifters returns the coset shifters k0..k3 separating the four wire
// columns. k0 is one, the others are non-residues chosen so that the cosets
// k_w * H are pairwise disjoint.
func wireShifters() [4]fr.Element {
	var ks [4]fr.Element
	ks[0].SetOne()
	ks[1].SetUint64(7)
	ks[2].SetUint64(13)
	ks[3].SetUint64(17)
	return ks
}
