/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package docutil

import (
	"crypto"
	"fmt"
	"hash"

	"github.com/multiformats/go-multihash"
)

// SHA2_256 multihash code.
const SHA2_256 = multihash.SHA2_256 //nolint:golint,stylecheck

// ComputeMultihash will compute the hash for the supplied bytes using multihash code.
func ComputeMultihash(multihashCode uint64, data []byte) ([]byte, error) {
	h, err := GetHash(multihashCode)
	if err != nil {
		return nil, err
	}

	if _, err := h.Write(data); err != nil {
		return nil, err
	}

	return multihash.Encode(h.Sum(nil), multihashCode)
}

// GetHash will return hash based on specified multihash code.
func GetHash(multihashCode uint64) (hash.Hash, error) {
	switch multihashCode {
	case multihash.SHA2_256:
		return crypto.SHA256.New(), nil
	default:
		return nil, fmt.Errorf("algorithm not supported, unable to compute hash")
	}
}

// IsComputedUsingMultihashCode checks to see if the given multihash has been hashed using supplied code.
func IsComputedUsingMultihashCode(multihashBytes []byte, multihashCode uint64) bool {
	mh, err := multihash.Decode(multihashBytes)
	if err != nil {
		return false
	}

	return mh.Code == multihashCode
}
