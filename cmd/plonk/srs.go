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

package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/kzg"
	"github.com/spf13/cobra"

	"github.com/ZK-Garage/crypto/internal/utils"
)

// srsCmd generates a structured reference string.
//
// The trapdoor is sampled locally and discarded, so the output is only fit
// for development and testing, not for production deployments.
var srsCmd = &cobra.Command{
	Use:   "srs",
	Short: "generates a structured reference string for testing",
	RunE:  cmdSRS,
}

var (
	fSrsSize uint64
	fSrsOut  string
)

func init() {
	rootCmd.AddCommand(srsCmd)

	srsCmd.PersistentFlags().Uint64Var(&fSrsSize, "size", 1<<10, "number of G1 points, must exceed the circuit size by at least 3")
	srsCmd.PersistentFlags().StringVar(&fSrsOut, "out", "plonk.srs", "output file path")
}

func cmdSRS(cmd *cobra.Command, args []string) error {
	size := utils.NextPowerOfTwo(fSrsSize)
	if size != fSrsSize {
		fmt.Printf("rounding size up to next power of two: %d\n", size)
	}

	tau, err := rand.Int(rand.Reader, fr.Modulus())
	if err != nil {
		return err
	}
	srs, err := kzg.NewSRS(size+3, tau)
	if err != nil {
		return err
	}
	// the trapdoor must not outlive the SRS
	tau.SetInt64(0)

	out := filepath.Clean(fSrsOut)
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	written, err := srs.WriteTo(f)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d bytes to %s\n", written, out)
	return nil
}

func loadSRS(path string) (*kzg.SRS, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var srs kzg.SRS
	if _, err := srs.ReadFrom(f); err != nil {
		return nil, err
	}
	return &srs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
