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
	"fmt"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/spf13/cobra"

	"github.com/ZK-Garage/crypto/composer"
	"github.com/ZK-Garage/crypto/plonk"
)

// verifyCmd checks a serialized proof against a serialized circuit shape.
var verifyCmd = &cobra.Command{
	Use:   "verify [circuit.shape] [proof.bin]",
	Short: "verifies a proof against a circuit shape",
	Args:  cobra.ExactArgs(2),
	RunE:  cmdVerify,
}

var (
	fSrsPath string
	fLabel   string
	fSeed    string
	fPublic  []string
)

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.PersistentFlags().StringVar(&fSrsPath, "srs", "plonk.srs", "path to the reference string")
	verifyCmd.PersistentFlags().StringVar(&fLabel, "label", "", "session label the proof was bound to")
	verifyCmd.PersistentFlags().StringVar(&fSeed, "seed", "", "session seed the proof was bound to")
	verifyCmd.PersistentFlags().StringArrayVar(&fPublic, "pi", nil, "public inputs in gate position order, decimal")
}

func cmdVerify(cmd *cobra.Command, args []string) error {
	shapePath := filepath.Clean(args[0])
	proofPath := filepath.Clean(args[1])
	for _, p := range []string{shapePath, proofPath} {
		if !fileExists(p) {
			return fmt.Errorf("%s: no such file", p)
		}
	}

	shapeData, err := os.ReadFile(shapePath)
	if err != nil {
		return err
	}
	circuit, err := composer.UnmarshalShape(shapeData)
	if err != nil {
		return err
	}

	proofFile, err := os.Open(proofPath)
	if err != nil {
		return err
	}
	defer proofFile.Close()
	var proof plonk.Proof
	if _, err := proof.ReadFrom(proofFile); err != nil {
		return err
	}

	srs, err := loadSRS(fSrsPath)
	if err != nil {
		return err
	}

	publicInputs := make([]fr.Element, len(fPublic))
	for i, s := range fPublic {
		publicInputs[i].SetString(s)
	}

	_, vk, err := plonk.Setup(circuit, srs)
	if err != nil {
		return err
	}
	if err := plonk.Verify(&proof, vk, publicInputs, []byte(fLabel), []byte(fSeed)); err != nil {
		return err
	}
	fmt.Println("proof verified")
	return nil
}
