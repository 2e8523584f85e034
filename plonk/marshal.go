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
	"encoding/binary"
	"errors"
	"io"

	curve "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrInvalidKeyEncoding is returned by ReadFrom when the serialized public
// input positions are inconsistent with the circuit size.
var ErrInvalidKeyEncoding = errors.New("plonk: invalid key encoding")

// WriteTo writes the verifying key to w. The SRS is not serialized; callers
// must attach it after reading.
func (vk *VerifyingKey) WriteTo(w io.Writer) (int64, error) {
	var written int64
	if err := binary.Write(w, binary.BigEndian, vk.Size); err != nil {
		return written, err
	}
	written += 8
	n, err := writePositions(w, vk.PiPositions)
	written += n
	if err != nil {
		return written, err
	}

	enc := curve.NewEncoder(w)
	toEncode := []interface{}{
		&vk.SizeInv, &vk.Generator,
		&vk.Ks[0], &vk.Ks[1], &vk.Ks[2], &vk.Ks[3],
		&vk.QM, &vk.QL, &vk.QR, &vk.QO, &vk.Q4, &vk.QC, &vk.QArith,
		&vk.QRange, &vk.QLookup,
		&vk.T[0], &vk.T[1], &vk.T[2], &vk.T[3],
		&vk.S[0], &vk.S[1], &vk.S[2], &vk.S[3],
	}
	for _, v := range toEncode {
		if err := enc.Encode(v); err != nil {
			return written + enc.BytesWritten(), err
		}
	}
	return written + enc.BytesWritten(), nil
}

// ReadFrom reads a verifying key from r. KZGSRS is left nil.
func (vk *VerifyingKey) ReadFrom(r io.Reader) (int64, error) {
	var read int64
	if err := binary.Read(r, binary.BigEndian, &vk.Size); err != nil {
		return read, err
	}
	read += 8
	positions, n, err := readPositions(r, vk.Size)
	read += n
	if err != nil {
		return read, err
	}
	vk.PiPositions = positions

	dec := curve.NewDecoder(r)
	toDecode := []interface{}{
		&vk.SizeInv, &vk.Generator,
		&vk.Ks[0], &vk.Ks[1], &vk.Ks[2], &vk.Ks[3],
		&vk.QM, &vk.QL, &vk.QR, &vk.QO, &vk.Q4, &vk.QC, &vk.QArith,
		&vk.QRange, &vk.QLookup,
		&vk.T[0], &vk.T[1], &vk.T[2], &vk.T[3],
		&vk.S[0], &vk.S[1], &vk.S[2], &vk.S[3],
	}
	for _, v := range toDecode {
		if err := dec.Decode(v); err != nil {
			return read + dec.BytesRead(), err
		}
	}
	return read + dec.BytesRead(), nil
}

// WriteTo writes the proving key to w. Coset representations are not
// serialized; ReadFrom rebuilds them from the canonical polynomials.
func (pk *ProvingKey) WriteTo(w io.Writer) (int64, error) {
	var written int64
	n, err := pk.Vk.WriteTo(w)
	written += n
	if err != nil {
		return written, err
	}
	n, err = pk.DomainSmall.WriteTo(w)
	written += n
	if err != nil {
		return written, err
	}
	n, err = pk.DomainBig.WriteTo(w)
	written += n
	if err != nil {
		return written, err
	}

	enc := curve.NewEncoder(w)
	for _, v := range pk.serializedPolynomials() {
		if err := enc.Encode(*v); err != nil {
			return written + enc.BytesWritten(), err
		}
	}
	return written + enc.BytesWritten(), nil
}

// ReadFrom reads a proving key from r and rebuilds the coset evaluations.
func (pk *ProvingKey) ReadFrom(r io.Reader) (int64, error) {
	var read int64
	pk.Vk = &VerifyingKey{}
	n, err := pk.Vk.ReadFrom(r)
	read += n
	if err != nil {
		return read, err
	}
	n, err = pk.DomainSmall.ReadFrom(r)
	read += n
	if err != nil {
		return read, err
	}
	n, err = pk.DomainBig.ReadFrom(r)
	read += n
	if err != nil {
		return read, err
	}

	dec := curve.NewDecoder(r)
	for _, v := range pk.serializedPolynomials() {
		if err := dec.Decode(v); err != nil {
			return read + dec.BytesRead(), err
		}
	}
	read += dec.BytesRead()

	pk.PiPositions = pk.Vk.PiPositions

	sels := []*selectorPoly{&pk.QM, &pk.QL, &pk.QR, &pk.QO, &pk.Q4, &pk.QC, &pk.QArith, &pk.QRange, &pk.QLookup}
	for _, s := range sels {
		s.Coset = canonicalToCosetEvals(s.Canonical, &pk.DomainBig)
	}
	for w := 0; w < 4; w++ {
		pk.SigmaCoset[w] = canonicalToCosetEvals(pk.SigmaCanonical[w], &pk.DomainBig)
	}
	return read, nil
}

func (pk *ProvingKey) serializedPolynomials() []*[]fr.Element {
	polys := []*[]fr.Element{
		&pk.QM.Canonical, &pk.QL.Canonical, &pk.QR.Canonical,
		&pk.QO.Canonical, &pk.Q4.Canonical, &pk.QC.Canonical,
		&pk.QArith.Canonical, &pk.QRange.Canonical, &pk.QLookup.Canonical,
		&pk.QLookupLagrange,
	}
	for w := 0; w < 4; w++ {
		polys = append(polys, &pk.SigmaCanonical[w], &pk.SigmaLagrange[w], &pk.TableCanonical[w])
		polys = append(polys, (*[]fr.Element)(&pk.TableCols[w]))
	}
	return polys
}

func writePositions(w io.Writer, positions []int) (int64, error) {
	if err := binary.Write(w, binary.BigEndian, uint32(len(positions))); err != nil {
		return 0, err
	}
	written := int64(4)
	for _, p := range positions {
		if err := binary.Write(w, binary.BigEndian, uint64(p)); err != nil {
			return written, err
		}
		written += 8
	}
	return written, nil
}

// readPositions decodes the public input positions. Positions are gate
// indices, so the count and every entry are bounded by the circuit size
// before anything is allocated.
func readPositions(r io.Reader, size uint64) ([]int, int64, error) {
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, 0, err
	}
	read := int64(4)
	if uint64(count) > size {
		return nil, read, ErrInvalidKeyEncoding
	}
	positions := make([]int, count)
	for i := range positions {
		var p uint64
		if err := binary.Read(r, binary.BigEndian, &p); err != nil {
			return nil, read, err
		}
		read += 8
		if p >= size {
			return nil, read, ErrInvalidKeyEncoding
		}
		positions[i] = int(p)
	}
	return positions, read, nil
}
