/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddoc

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-method-v1/pkg/did"
	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/jsonld"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
)

func TestGenerate(t *testing.T) {
	builder := NewBuilder()

	t.Run("success - defaults", func(t *testing.T) {
		doc, err := builder.Generate(GenerateParams{})
		require.NoError(t, err)

		require.True(t, strings.HasPrefix(doc.ID(), "did:v1:test:nym:z"))
		require.Equal(t, uint64(0), doc.Meta().Sequence)

		// All five purpose buckets are populated with one method each.
		for _, purpose := range document.ProofPurposes {
			methods := doc.Content().MethodsForPurpose(purpose)
			require.Len(t, methods, 1, purpose)
			require.Equal(t, doc.ID(), methods[0].Controller())
			require.True(t, strings.HasPrefix(methods[0].ID(), doc.ID()+"#"))
		}

		require.Contains(t, doc.Content().Context(), jsonld.DIDContextURL)
		require.Contains(t, doc.Content().Context(), jsonld.VeresOneContextURL)

		// The key map holds private material for every method.
		require.Len(t, doc.Keys(), len(document.ProofPurposes))
		for _, key := range doc.Keys() {
			require.True(t, key.HasPrivateKey())
		}
	})

	t.Run("success - cryptonym bound to invocation key", func(t *testing.T) {
		doc, err := builder.Generate(GenerateParams{DIDType: did.TypeNym, Mode: did.ModeDev})
		require.NoError(t, err)

		key, err := doc.InvocationKey()
		require.NoError(t, err)

		fingerprint, err := key.Fingerprint()
		require.NoError(t, err)
		require.Equal(t, "did:v1:dev:nym:"+fingerprint, doc.ID())
	})

	t.Run("success - uuid document", func(t *testing.T) {
		doc, err := builder.Generate(GenerateParams{DIDType: did.TypeUUID})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(doc.ID(), "did:v1:test:uuid:"))
	})

	t.Run("success - subset of purposes", func(t *testing.T) {
		doc, err := builder.Generate(GenerateParams{
			DIDType:  did.TypeUUID,
			Purposes: []string{document.AuthenticationProperty},
		})
		require.NoError(t, err)

		require.Len(t, doc.Content().Authentications(), 1)
		require.Empty(t, doc.Content().InvocationMethods())
	})

	t.Run("success - one key reused across purposes", func(t *testing.T) {
		key, err := keypair.GenerateEd25519()
		require.NoError(t, err)

		keys := make(map[string]keypair.KeyPair)
		for _, purpose := range document.ProofPurposes {
			keys[purpose] = key
		}

		doc, err := builder.Generate(GenerateParams{Keys: keys})
		require.NoError(t, err)

		ids := make(map[string]struct{})
		for _, purpose := range document.ProofPurposes {
			for _, m := range doc.Content().MethodsForPurpose(purpose) {
				ids[m.ID()] = struct{}{}
			}
		}

		require.Len(t, ids, 1)
		require.Len(t, doc.Keys(), 1)
	})

	t.Run("success - secp256k1 keys", func(t *testing.T) {
		doc, err := builder.Generate(GenerateParams{KeyType: keypair.Secp256k1KeyType})
		require.NoError(t, err)

		key, err := doc.InvocationKey()
		require.NoError(t, err)
		require.Equal(t, keypair.Secp256k1KeyType, key.Type())
	})

	t.Run("error - unknown purpose", func(t *testing.T) {
		_, err := builder.Generate(GenerateParams{Purposes: []string{"signing"}})
		require.ErrorIs(t, err, ErrUnknownProofPurpose)
	})

	t.Run("error - unknown purpose in supplied key map", func(t *testing.T) {
		key, err := keypair.GenerateEd25519()
		require.NoError(t, err)

		_, err = builder.Generate(GenerateParams{Keys: map[string]keypair.KeyPair{"signing": key}})
		require.ErrorIs(t, err, ErrUnknownProofPurpose)
	})

	t.Run("error - cryptonym without invocation purpose", func(t *testing.T) {
		_, err := builder.Generate(GenerateParams{
			DIDType:  did.TypeNym,
			Purposes: []string{document.AuthenticationProperty},
		})
		require.ErrorIs(t, err, ErrUnknownProofPurpose)
	})

	t.Run("error - unknown key type", func(t *testing.T) {
		_, err := builder.Generate(GenerateParams{KeyType: "RsaVerificationKey2018"})
		require.Error(t, err)
	})
}

func TestFromDocument(t *testing.T) {
	builder := NewBuilder()

	content := document.DIDDocument{
		document.IDProperty: "did:v1:test:uuid:0f2b4a5c6d7e8f9a0b1c2d3e4f5a6b7c",
	}

	doc := builder.FromDocument(content, 4)
	require.Equal(t, content.ID(), doc.ID())
	require.Equal(t, uint64(4), doc.Meta().Sequence)
	require.Empty(t, doc.Keys())

	_, err := doc.InvocationKey()
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMarshalJSON(t *testing.T) {
	builder := NewBuilder()

	doc, err := builder.Generate(GenerateParams{})
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	parsed := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Equal(t, doc.ID(), parsed[document.IDProperty])

	// Private key material never leaves through document serialization.
	require.NotContains(t, string(data), "privateKeyMultibase")
	require.NotContains(t, string(data), "privateKeyBase58")
}

func TestObserveCommit(t *testing.T) {
	builder := NewBuilder()

	doc, err := builder.Generate(GenerateParams{})
	require.NoError(t, err)

	require.NoError(t, doc.Observe())

	require.NoError(t, doc.AddService(AddServiceParams{
		Fragment: "agent",
		Type:     "AgentService",
		Endpoint: "https://agent.example.com/",
	}))

	ps, err := doc.Commit()
	require.NoError(t, err)
	require.NotEmpty(t, ps.Patch)
	require.Equal(t, uint64(0), ps.Sequence)
	require.Equal(t, doc.ID(), ps.Target)
	require.Equal(t, uint64(1), doc.Meta().Sequence)
}
