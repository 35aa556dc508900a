/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/multiformats/go-multibase"

	"github.com/trustbloc/did-method-v1/pkg/document"
)

// Ed25519KeyPair is an Ed25519VerificationKey2020 key pair.
type Ed25519KeyPair struct {
	id         string
	controller string
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
}

// GenerateEd25519 creates a fresh Ed25519 key pair.
func GenerateEd25519() (*Ed25519KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}

	return &Ed25519KeyPair{publicKey: pub, privateKey: priv}, nil
}

// Ed25519FromPublicKey creates a public-only key pair from raw public key bytes.
func Ed25519FromPublicKey(pubKey []byte) (*Ed25519KeyPair, error) {
	if len(pubKey) != ed25519.PublicKeySize {
		return nil, errors.New("invalid ed25519 public key size")
	}

	return &Ed25519KeyPair{publicKey: ed25519.PublicKey(pubKey)}, nil
}

// Ed25519From reconstructs a key pair from a serialized key node.
func Ed25519From(node map[string]interface{}) (*Ed25519KeyPair, error) {
	vm := document.NewVerificationMethod(node)

	if vm.PublicKeyMultibase() == "" {
		return nil, errors.New("key node is missing publicKeyMultibase")
	}

	pub, err := decodeMaterial(vm.PublicKeyMultibase(), ed25519PubCodec)
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}

	kp, err := Ed25519FromPublicKey(pub)
	if err != nil {
		return nil, err
	}

	kp.id = vm.ID()
	kp.controller = vm.Controller()

	if encodedPriv := document.FromJSONLDObject(node).GetStringValue(privateKeyMultibaseProperty); encodedPriv != "" {
		priv, err := decodeMaterial(encodedPriv, ed25519PrivCodec)
		if err != nil {
			return nil, fmt.Errorf("decode private key: %w", err)
		}

		if len(priv) != ed25519.PrivateKeySize {
			return nil, errors.New("invalid ed25519 private key size")
		}

		kp.privateKey = ed25519.PrivateKey(priv)
	}

	return kp, nil
}

// ID returns the verification method id.
func (kp *Ed25519KeyPair) ID() string {
	return kp.id
}

// SetID assigns the verification method id.
func (kp *Ed25519KeyPair) SetID(id string) {
	kp.id = id
}

// Controller returns the controlling identifier.
func (kp *Ed25519KeyPair) Controller() string {
	return kp.controller
}

// SetController assigns the controlling identifier.
func (kp *Ed25519KeyPair) SetController(controller string) {
	kp.controller = controller
}

// Type returns the verification method type.
func (kp *Ed25519KeyPair) Type() string {
	return Ed25519KeyType
}

// Fingerprint returns the multibase fingerprint of the public key.
func (kp *Ed25519KeyPair) Fingerprint() (string, error) {
	return encodeFingerprint(ed25519PubCodec, kp.publicKey)
}

// VerifyFingerprint verifies the multibase fingerprint against the public key.
func (kp *Ed25519KeyPair) VerifyFingerprint(fingerprint string) *Result {
	return verifyFingerprint(fingerprint, ed25519PubCodec, kp.publicKey)
}

// Sign signs data with the private key.
func (kp *Ed25519KeyPair) Sign(data []byte) ([]byte, error) {
	if kp.privateKey == nil {
		return nil, ErrMissingPrivateKey
	}

	return ed25519.Sign(kp.privateKey, data), nil
}

// Verify checks the signature over data against the public key.
func (kp *Ed25519KeyPair) Verify(data, signature []byte) error {
	if !ed25519.Verify(kp.publicKey, data, signature) {
		return errors.New("ed25519: invalid signature")
	}

	return nil
}

// HasPrivateKey reports whether private key material is present.
func (kp *Ed25519KeyPair) HasPrivateKey() bool {
	return kp.privateKey != nil
}

// PublicNode returns the public verification method projection.
func (kp *Ed25519KeyPair) PublicNode() document.VerificationMethod {
	encoded, _ := multibase.Encode(multibase.Base58BTC,
		append(append([]byte{}, ed25519PubCodec...), kp.publicKey...)) //nolint:errcheck

	return document.NewVerificationMethod(map[string]interface{}{
		document.IDProperty:                 kp.id,
		document.TypeProperty:               Ed25519KeyType,
		document.ControllerProperty:         kp.controller,
		document.PublicKeyMultibaseProperty: encoded,
	})
}

// Export returns the serializable key node.
func (kp *Ed25519KeyPair) Export(withPrivate bool) (map[string]interface{}, error) {
	pub, err := multibase.Encode(multibase.Base58BTC,
		append(append([]byte{}, ed25519PubCodec...), kp.publicKey...))
	if err != nil {
		return nil, err
	}

	node := map[string]interface{}{
		document.IDProperty:                 kp.id,
		document.TypeProperty:               Ed25519KeyType,
		document.ControllerProperty:         kp.controller,
		document.PublicKeyMultibaseProperty: pub,
	}

	if withPrivate {
		if kp.privateKey == nil {
			return nil, ErrMissingPrivateKey
		}

		priv, err := multibase.Encode(multibase.Base58BTC,
			append(append([]byte{}, ed25519PrivCodec...), kp.privateKey...))
		if err != nil {
			return nil, err
		}

		node[privateKeyMultibaseProperty] = priv
	}

	return node, nil
}

const privateKeyMultibaseProperty = "privateKeyMultibase"

func decodeMaterial(encoded string, codec []byte) ([]byte, error) {
	_, decoded, err := multibase.Decode(encoded)
	if err != nil {
		return nil, err
	}

	if len(decoded) <= len(codec) {
		return nil, errors.New("encoded key material is too short")
	}

	for i := range codec {
		if decoded[i] != codec[i] {
			return nil, errors.New("unexpected multicodec prefix")
		}
	}

	return decoded[len(codec):], nil
}
