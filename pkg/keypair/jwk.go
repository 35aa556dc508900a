/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"encoding/json"
	"fmt"

	gojose "github.com/square/go-jose/v3"

	"github.com/trustbloc/did-method-v1/pkg/docutil"
)

const (
	secp256k1Crv = "secp256k1"
	secp256k1Kty = "EC"
)

// PublicKeyJWK returns the JWK projection of a key pair's public key.
func PublicKeyJWK(kp KeyPair) (map[string]interface{}, error) {
	switch key := kp.(type) {
	case *Ed25519KeyPair:
		return joseJWK(gojose.JSONWebKey{Key: key.publicKey, KeyID: key.id})
	case *Secp256k1KeyPair:
		// gojose doesn't handle the secp256k1 curve so the JWK is assembled directly.
		return map[string]interface{}{
			"kty": secp256k1Kty,
			"crv": secp256k1Crv,
			"kid": key.id,
			"x":   docutil.EncodeToString(key.publicKey.X.Bytes()),
			"y":   docutil.EncodeToString(key.publicKey.Y.Bytes()),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyType, kp.Type())
	}
}

func joseJWK(jwk gojose.JSONWebKey) (map[string]interface{}, error) {
	b, err := jwk.MarshalJSON()
	if err != nil {
		return nil, err
	}

	m := make(map[string]interface{})
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}

	return m, nil
}
