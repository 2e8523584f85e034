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

// Package crypto implements a PLONK proof system with Plookup tables over
// BN254.
//
// The module is organised as follows:
//   - composer builds circuits gate by gate, with arithmetic, range and
//     lookup widgets
//   - lookup implements the multiset and table machinery behind Plookup
//   - plonk holds the prover, verifier and key material
//   - commitment wraps the KZG polynomial commitment scheme with batched
//     openings
//   - transcript derives Fiat-Shamir challenges
package crypto

import "github.com/blang/semver/v4"

var Version = semver.MustParse("0.1.0")
