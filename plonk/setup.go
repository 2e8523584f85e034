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

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/fft"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
	"golang.org/x/sync/errgroup"

	"github.com/ZK-Garage/crypto/composer"
	"github.com/ZK-Garage/crypto/logger"
)

// ErrSRSTooSmall is returned when the SRS cannot commit to polynomials of
// the circuit's degree.
var ErrSRSTooSmall = errors.New("plonk: srs is too small for the circuit")

// Setup preprocesses the circuit: it builds the selector and permutation
// polynomials in the bases proving needs, commits to them and freezes the
// composer.
func Setup(c *composer.StandardComposer, srs *kzg.SRS) (*ProvingKey, *VerifyingKey, error) {
	log := logger.Logger().With().Str("backend", "plonk").Logger()

	n := c.CircuitBound()
	// blinded grand products have degree n+2
	if uint64(len(srs.G1)) < n+3 {
		return nil, nil, ErrSRSTooSmall
	}

	var pk ProvingKey
	var vk VerifyingKey
	pk.Vk = &vk
	vk.KZGSRS = srs

	pk.DomainSmall = *fft.NewDomain(n)
	pk.DomainBig = *fft.NewDomain(8 * n)

	vk.Size = pk.DomainSmall.Cardinality
	vk.SizeInv = pk.DomainSmall.CardinalityInv
	vk.Generator = pk.DomainSmall.Generator
	vk.Ks = wireShifters()
	vk.PiPositions = c.PublicInputPositions()
	pk.PiPositions = vk.PiPositions

	log.Debug().Uint64("n", n).Int("gates", c.NbGates()).Msg("preprocessing circuit")

	// selector columns, padded to n
	qM, qL, qR, qO, q4, qC, qArith, qRange, qLookup := c.Selectors()
	sels := []*selectorPoly{&pk.QM, &pk.QL, &pk.QR, &pk.QO, &pk.Q4, &pk.QC, &pk.QArith, &pk.QRange, &pk.QLookup}
	cols := [][]fr.Element{qM, qL, qR, qO, q4, qC, qArith, qRange, qLookup}
	for i, col := range cols {
		lagrange := make([]fr.Element, n)
		copy(lagrange, col)
		if i == len(cols)-1 {
			pk.QLookupLagrange = append([]fr.Element(nil), lagrange...)
		}
		sels[i].Canonical = lagrangeToCanonical(lagrange, &pk.DomainSmall)
		sels[i].Coset = canonicalToCosetEvals(sels[i].Canonical, &pk.DomainBig)
	}

	// lookup table columns
	tableCols, err := c.Table().Columns(n)
	if err != nil {
		return nil, nil, err
	}
	pk.TableCols = tableCols
	for i := range tableCols {
		pk.TableCanonical[i], err = tableCols[i].ToPolynomial(&pk.DomainSmall)
		if err != nil {
			return nil, nil, err
		}
	}

	// copy constraint permutation
	buildPermutationPolynomials(&pk, c, n)

	// commitments to the preprocessed polynomials
	var g errgroup.Group
	commit := func(dst *kzg.Digest, p []fr.Element) {
		g.Go(func() error {
			d, err := kzg.Commit(p, srs)
			if err != nil {
				return err
			}
			*dst = d
			return nil
		})
	}
	commit(&vk.QM, pk.QM.Canonical)
	commit(&vk.QL, pk.QL.Canonical)
	commit(&vk.QR, pk.QR.Canonical)
	commit(&vk.QO, pk.QO.Canonical)
	commit(&vk.Q4, pk.Q4.Canonical)
	commit(&vk.QC, pk.QC.Canonical)
	commit(&vk.QArith, pk.QArith.Canonical)
	commit(&vk.QRange, pk.QRange.Canonical)
	commit(&vk.QLookup, pk.QLookup.Canonical)
	for i := 0; i < 4; i++ {
		commit(&vk.T[i], pk.TableCanonical[i])
		commit(&vk.S[i], pk.SigmaCanonical[i])
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	c.Freeze()

	return &pk, &vk, nil
}

// buildPermutationPolynomials expands the composer's cycle map into the four
// sigma polynomials. Slot i of wire w maps to slot j of wire w'; the sigma
// value is k_{w'} * omega^j.
func buildPermutationPolynomials(pk *ProvingKey, c *composer.StandardComposer, n uint64) {
	mapping := c.ComputeMapping(n)

	omegas := make([]fr.Element, n)
	omegas[0].SetOne()
	for i := uint64(1); i < n; i++ {
		omegas[i].Mul(&omegas[i-1], &pk.DomainSmall.Generator)
	}

	ks := pk.Vk.Ks
	for w := 0; w < 4; w++ {
		pk.SigmaLagrange[w] = make([]fr.Element, n)
		for i := uint64(0); i < n; i++ {
			enc := uint64(mapping[w][i])
			target, j := enc/n, enc%n
			pk.SigmaLagrange[w][i].Mul(&ks[target], &omegas[j])
		}
		pk.SigmaCanonical[w] = lagrangeToCanonical(append([]fr.Element(nil), pk.SigmaLagrange[w]...), &pk.DomainSmall)
		pk.SigmaCoset[w] = canonicalToCosetEvals(pk.SigmaCanonical[w], &pk.DomainBig)
	}
}

// lagrangeToCanonical interpolates evaluations over the domain into
// coefficient form. The input is consumed.
func lagrangeToCanonical(evals []fr.Element, domain *fft.Domain) []fr.Element {
	domain.FFTInverse(evals, fft.DIF)
	fft.BitReverse(evals)
	return evals
}

// canonicalToCosetEvals evaluates a canonical polynomial over the big
// domain's coset, in natural order.
func canonicalToCosetEvals(canonical []fr.Element, domain *fft.Domain) []fr.Element {
	evals := make([]fr.Element, domain.Cardinality)
	copy(evals, canonical)
	domain.FFT(evals, fft.DIF, true)
	fft.BitReverse(evals)
	return evals
}
