/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keypair provides the key pair capability consumed by the did:v1
// core: generation, import/export, signing, fingerprint computation and
// verification, and public verification-method projection.
package keypair

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/multiformats/go-multibase"

	"github.com/trustbloc/did-method-v1/pkg/document"
)

// Supported key types.
const (
	Ed25519KeyType   = "Ed25519VerificationKey2020"
	Secp256k1KeyType = "EcdsaSecp256k1VerificationKey2019"
)

// Multicodec prefixes for key material (varint encoded).
var (
	ed25519PubCodec    = []byte{0xed, 0x01}
	ed25519PrivCodec   = []byte{0x80, 0x26}
	secp256k1PubCodec  = []byte{0xe7, 0x01}
	secp256k1PrivCodec = []byte{0x81, 0x26}
)

// ErrUnknownKeyType is returned for key types outside the supported set.
var ErrUnknownKeyType = errors.New("unknown key type")

// ErrMissingPrivateKey is returned when an operation requires private key material.
var ErrMissingPrivateKey = errors.New("private key material is not present")

// Result is the outcome of a verification query. Expected invalidity is
// reported through Error with Valid set to false; the query itself never
// fails.
type Result struct {
	Valid bool
	Error error
}

func valid() *Result {
	return &Result{Valid: true}
}

func invalid(err error) *Result {
	return &Result{Valid: false, Error: err}
}

// KeyPair is a signing key with its public projection.
type KeyPair interface {

	// ID returns the verification method id ("" until assigned).
	ID() string

	// SetID assigns the verification method id.
	SetID(id string)

	// Controller returns the controlling identifier ("" until assigned).
	Controller() string

	// SetController assigns the controlling identifier.
	SetController(controller string)

	// Type returns the verification method type.
	Type() string

	// Fingerprint returns the multibase-encoded multicodec fingerprint of
	// the public key.
	Fingerprint() (string, error)

	// VerifyFingerprint verifies that the given multibase fingerprint was
	// derived from this key pair's public key.
	VerifyFingerprint(fingerprint string) *Result

	// Sign signs data and returns the signature value.
	Sign(data []byte) ([]byte, error)

	// Verify checks the signature over data against the public key.
	Verify(data, signature []byte) error

	// HasPrivateKey reports whether private key material is present.
	HasPrivateKey() bool

	// PublicNode returns the public verification method projection.
	PublicNode() document.VerificationMethod

	// Export returns the serializable key node. Private key material is
	// included only when withPrivate is set.
	Export(withPrivate bool) (map[string]interface{}, error)
}

// Registry creates key pairs: fresh, from serialized nodes, or from
// fingerprints alone.
type Registry interface {
	Generate(keyType string) (KeyPair, error)
	From(node map[string]interface{}) (KeyPair, error)
	FromFingerprint(fingerprint string) (KeyPair, error)
}

// DefaultRegistry supports the Ed25519 2020 and ECDSA secp256k1 2019 suites.
type DefaultRegistry struct{}

// NewRegistry returns the default key pair registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{}
}

// Generate creates a fresh key pair of the given type.
func (r *DefaultRegistry) Generate(keyType string) (KeyPair, error) {
	switch keyType {
	case Ed25519KeyType:
		return GenerateEd25519()
	case Secp256k1KeyType:
		return GenerateSecp256k1()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyType, keyType)
	}
}

// From reconstructs a key pair from a serialized key node.
func (r *DefaultRegistry) From(node map[string]interface{}) (KeyPair, error) {
	vm := document.NewVerificationMethod(node)

	switch vm.Type() {
	case Ed25519KeyType:
		return Ed25519From(node)
	case Secp256k1KeyType:
		return Secp256k1From(node)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyType, vm.Type())
	}
}

// FromFingerprint reconstructs a public-only key pair from a multibase
// fingerprint. The key type is selected by the embedded multicodec prefix.
func (r *DefaultRegistry) FromFingerprint(fingerprint string) (KeyPair, error) {
	_, decoded, err := multibase.Decode(fingerprint)
	if err != nil {
		return nil, fmt.Errorf("decode fingerprint: %w", err)
	}

	switch {
	case bytes.HasPrefix(decoded, ed25519PubCodec):
		return Ed25519FromPublicKey(decoded[len(ed25519PubCodec):])
	case bytes.HasPrefix(decoded, secp256k1PubCodec):
		return Secp256k1FromPublicKey(decoded[len(secp256k1PubCodec):])
	default:
		return nil, fmt.Errorf("%w: unsupported multicodec prefix", ErrUnknownKeyType)
	}
}

func encodeFingerprint(codec, pubKey []byte) (string, error) {
	return multibase.Encode(multibase.Base58BTC, append(append([]byte{}, codec...), pubKey...))
}

func verifyFingerprint(fingerprint string, codec, pubKey []byte) *Result {
	_, decoded, err := multibase.Decode(fingerprint)
	if err != nil {
		return invalid(fmt.Errorf("decode fingerprint: %w", err))
	}

	if !bytes.HasPrefix(decoded, codec) {
		return invalid(errors.New("fingerprint does not carry the expected multicodec prefix"))
	}

	if !bytes.Equal(decoded[len(codec):], pubKey) {
		return invalid(errors.New("fingerprint does not match public key"))
	}

	return valid()
}
