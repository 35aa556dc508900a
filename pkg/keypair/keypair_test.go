/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-method-v1/pkg/document"
)

func TestRegistryGenerate(t *testing.T) {
	registry := NewRegistry()

	t.Run("success - ed25519", func(t *testing.T) {
		key, err := registry.Generate(Ed25519KeyType)
		require.NoError(t, err)
		require.Equal(t, Ed25519KeyType, key.Type())
		require.True(t, key.HasPrivateKey())
	})

	t.Run("success - secp256k1", func(t *testing.T) {
		key, err := registry.Generate(Secp256k1KeyType)
		require.NoError(t, err)
		require.Equal(t, Secp256k1KeyType, key.Type())
		require.True(t, key.HasPrivateKey())
	})

	t.Run("error - unknown key type", func(t *testing.T) {
		key, err := registry.Generate("RsaVerificationKey2018")
		require.Error(t, err)
		require.ErrorIs(t, err, ErrUnknownKeyType)
		require.Nil(t, key)
	})
}

func TestFingerprint(t *testing.T) {
	registry := NewRegistry()

	for _, keyType := range []string{Ed25519KeyType, Secp256k1KeyType} {
		keyType := keyType

		t.Run(keyType, func(t *testing.T) {
			key, err := registry.Generate(keyType)
			require.NoError(t, err)

			fingerprint, err := key.Fingerprint()
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(fingerprint, "z"))

			result := key.VerifyFingerprint(fingerprint)
			require.NoError(t, result.Error)
			require.True(t, result.Valid)
		})
	}

	t.Run("invalid - fingerprint of another key", func(t *testing.T) {
		key, err := GenerateEd25519()
		require.NoError(t, err)

		other, err := GenerateEd25519()
		require.NoError(t, err)

		fingerprint, err := other.Fingerprint()
		require.NoError(t, err)

		result := key.VerifyFingerprint(fingerprint)
		require.False(t, result.Valid)
		require.Error(t, result.Error)
		require.Contains(t, result.Error.Error(), "does not match public key")
	})

	t.Run("invalid - wrong multicodec prefix", func(t *testing.T) {
		ed, err := GenerateEd25519()
		require.NoError(t, err)

		secp, err := GenerateSecp256k1()
		require.NoError(t, err)

		fingerprint, err := secp.Fingerprint()
		require.NoError(t, err)

		result := ed.VerifyFingerprint(fingerprint)
		require.False(t, result.Valid)
		require.Contains(t, result.Error.Error(), "multicodec prefix")
	})

	t.Run("invalid - not multibase", func(t *testing.T) {
		key, err := GenerateEd25519()
		require.NoError(t, err)

		result := key.VerifyFingerprint("not-multibase")
		require.False(t, result.Valid)
		require.Error(t, result.Error)
	})
}

func TestSignVerify(t *testing.T) {
	registry := NewRegistry()

	for _, keyType := range []string{Ed25519KeyType, Secp256k1KeyType} {
		keyType := keyType

		t.Run(keyType, func(t *testing.T) {
			key, err := registry.Generate(keyType)
			require.NoError(t, err)

			data := []byte("operation payload")

			signature, err := key.Sign(data)
			require.NoError(t, err)
			require.NoError(t, key.Verify(data, signature))

			require.Error(t, key.Verify([]byte("tampered payload"), signature))
		})
	}

	t.Run("error - public-only key cannot sign", func(t *testing.T) {
		key, err := GenerateEd25519()
		require.NoError(t, err)

		fingerprint, err := key.Fingerprint()
		require.NoError(t, err)

		publicOnly, err := registry.FromFingerprint(fingerprint)
		require.NoError(t, err)
		require.False(t, publicOnly.HasPrivateKey())

		_, err = publicOnly.Sign([]byte("data"))
		require.ErrorIs(t, err, ErrMissingPrivateKey)
	})
}

func TestFromFingerprint(t *testing.T) {
	registry := NewRegistry()

	t.Run("success - key type selected by multicodec prefix", func(t *testing.T) {
		for _, keyType := range []string{Ed25519KeyType, Secp256k1KeyType} {
			key, err := registry.Generate(keyType)
			require.NoError(t, err)

			fingerprint, err := key.Fingerprint()
			require.NoError(t, err)

			restored, err := registry.FromFingerprint(fingerprint)
			require.NoError(t, err)
			require.Equal(t, keyType, restored.Type())

			restoredFingerprint, err := restored.Fingerprint()
			require.NoError(t, err)
			require.Equal(t, fingerprint, restoredFingerprint)
		}
	})

	t.Run("error - unsupported multicodec prefix", func(t *testing.T) {
		// base58btc encoding of bytes with no known key prefix
		_, err := registry.FromFingerprint("z11111")
		require.Error(t, err)
	})

	t.Run("error - not multibase", func(t *testing.T) {
		_, err := registry.FromFingerprint("0abc")
		require.Error(t, err)
	})
}

func TestExportImport(t *testing.T) {
	registry := NewRegistry()

	for _, keyType := range []string{Ed25519KeyType, Secp256k1KeyType} {
		keyType := keyType

		t.Run(keyType+" - with private material", func(t *testing.T) {
			key, err := registry.Generate(keyType)
			require.NoError(t, err)

			key.SetID("did:v1:test:nym:zExample#zExample")
			key.SetController("did:v1:test:nym:zExample")

			node, err := key.Export(true)
			require.NoError(t, err)

			restored, err := registry.From(node)
			require.NoError(t, err)
			require.Equal(t, key.ID(), restored.ID())
			require.Equal(t, key.Controller(), restored.Controller())
			require.True(t, restored.HasPrivateKey())

			// The restored key signs, the original verifies.
			data := []byte("roundtrip")

			signature, err := restored.Sign(data)
			require.NoError(t, err)
			require.NoError(t, key.Verify(data, signature))
		})

		t.Run(keyType+" - public only", func(t *testing.T) {
			key, err := registry.Generate(keyType)
			require.NoError(t, err)

			node, err := key.Export(false)
			require.NoError(t, err)

			restored, err := registry.From(node)
			require.NoError(t, err)
			require.False(t, restored.HasPrivateKey())
		})
	}

	t.Run("error - exporting private material from public-only key", func(t *testing.T) {
		key, err := GenerateEd25519()
		require.NoError(t, err)

		fingerprint, err := key.Fingerprint()
		require.NoError(t, err)

		publicOnly, err := registry.FromFingerprint(fingerprint)
		require.NoError(t, err)

		_, err = publicOnly.Export(true)
		require.ErrorIs(t, err, ErrMissingPrivateKey)
	})

	t.Run("error - unknown node type", func(t *testing.T) {
		_, err := registry.From(map[string]interface{}{
			document.TypeProperty: "RsaVerificationKey2018",
		})
		require.ErrorIs(t, err, ErrUnknownKeyType)
	})
}

func TestPublicNode(t *testing.T) {
	t.Run("ed25519 carries publicKeyMultibase", func(t *testing.T) {
		key, err := GenerateEd25519()
		require.NoError(t, err)

		key.SetID("key-1")
		key.SetController("controller-1")

		node := key.PublicNode()
		require.Equal(t, "key-1", node.ID())
		require.Equal(t, "controller-1", node.Controller())
		require.Equal(t, Ed25519KeyType, node.Type())
		require.True(t, strings.HasPrefix(node.PublicKeyMultibase(), "z"))
	})

	t.Run("secp256k1 carries publicKeyBase58", func(t *testing.T) {
		key, err := GenerateSecp256k1()
		require.NoError(t, err)

		node := key.PublicNode()
		require.Equal(t, Secp256k1KeyType, node.Type())
		require.NotEmpty(t, node.PublicKeyBase58())
	})
}

func TestPublicKeyJWK(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		key, err := GenerateEd25519()
		require.NoError(t, err)

		jwk, err := PublicKeyJWK(key)
		require.NoError(t, err)
		require.Equal(t, "OKP", jwk["kty"])
		require.Equal(t, "Ed25519", jwk["crv"])
		require.NotEmpty(t, jwk["x"])
	})

	t.Run("secp256k1", func(t *testing.T) {
		key, err := GenerateSecp256k1()
		require.NoError(t, err)

		jwk, err := PublicKeyJWK(key)
		require.NoError(t, err)
		require.Equal(t, "EC", jwk["kty"])
		require.Equal(t, "secp256k1", jwk["crv"])
		require.NotEmpty(t, jwk["x"])
		require.NotEmpty(t, jwk["y"])
	})
}
