/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keypair

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec"
	"github.com/btcsuite/btcutil/base58"

	"github.com/trustbloc/did-method-v1/pkg/document"
)

// Secp256k1KeyPair is an EcdsaSecp256k1VerificationKey2019 key pair.
type Secp256k1KeyPair struct {
	id         string
	controller string
	publicKey  *btcec.PublicKey
	privateKey *btcec.PrivateKey
}

// GenerateSecp256k1 creates a fresh secp256k1 key pair.
func GenerateSecp256k1() (*Secp256k1KeyPair, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key: %w", err)
	}

	return &Secp256k1KeyPair{publicKey: priv.PubKey(), privateKey: priv}, nil
}

// Secp256k1FromPublicKey creates a public-only key pair from compressed public key bytes.
func Secp256k1FromPublicKey(pubKey []byte) (*Secp256k1KeyPair, error) {
	pub, err := btcec.ParsePubKey(pubKey, btcec.S256())
	if err != nil {
		return nil, fmt.Errorf("parse secp256k1 public key: %w", err)
	}

	return &Secp256k1KeyPair{publicKey: pub}, nil
}

// Secp256k1From reconstructs a key pair from a serialized key node.
func Secp256k1From(node map[string]interface{}) (*Secp256k1KeyPair, error) {
	vm := document.NewVerificationMethod(node)

	if vm.PublicKeyBase58() == "" {
		return nil, errors.New("key node is missing publicKeyBase58")
	}

	kp, err := Secp256k1FromPublicKey(base58.Decode(vm.PublicKeyBase58()))
	if err != nil {
		return nil, err
	}

	kp.id = vm.ID()
	kp.controller = vm.Controller()

	if encodedPriv := document.FromJSONLDObject(node).GetStringValue(privateKeyBase58Property); encodedPriv != "" {
		priv, _ := btcec.PrivKeyFromBytes(btcec.S256(), base58.Decode(encodedPriv))
		kp.privateKey = priv
	}

	return kp, nil
}

// ID returns the verification method id.
func (kp *Secp256k1KeyPair) ID() string {
	return kp.id
}

// SetID assigns the verification method id.
func (kp *Secp256k1KeyPair) SetID(id string) {
	kp.id = id
}

// Controller returns the controlling identifier.
func (kp *Secp256k1KeyPair) Controller() string {
	return kp.controller
}

// SetController assigns the controlling identifier.
func (kp *Secp256k1KeyPair) SetController(controller string) {
	kp.controller = controller
}

// Type returns the verification method type.
func (kp *Secp256k1KeyPair) Type() string {
	return Secp256k1KeyType
}

// Fingerprint returns the multibase fingerprint of the compressed public key.
func (kp *Secp256k1KeyPair) Fingerprint() (string, error) {
	return encodeFingerprint(secp256k1PubCodec, kp.publicKey.SerializeCompressed())
}

// VerifyFingerprint verifies the multibase fingerprint against the public key.
func (kp *Secp256k1KeyPair) VerifyFingerprint(fingerprint string) *Result {
	return verifyFingerprint(fingerprint, secp256k1PubCodec, kp.publicKey.SerializeCompressed())
}

// Sign signs the SHA-256 digest of data and returns a DER-encoded signature.
func (kp *Secp256k1KeyPair) Sign(data []byte) ([]byte, error) {
	if kp.privateKey == nil {
		return nil, ErrMissingPrivateKey
	}

	digest := sha256.Sum256(data)

	sig, err := kp.privateKey.Sign(digest[:])
	if err != nil {
		return nil, err
	}

	return sig.Serialize(), nil
}

// Verify checks the DER-encoded signature over data against the public key.
func (kp *Secp256k1KeyPair) Verify(data, signature []byte) error {
	sig, err := btcec.ParseDERSignature(signature, btcec.S256())
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}

	digest := sha256.Sum256(data)

	if !sig.Verify(digest[:], kp.publicKey) {
		return errors.New("secp256k1: invalid signature")
	}

	return nil
}

// HasPrivateKey reports whether private key material is present.
func (kp *Secp256k1KeyPair) HasPrivateKey() bool {
	return kp.privateKey != nil
}

// PublicNode returns the public verification method projection.
func (kp *Secp256k1KeyPair) PublicNode() document.VerificationMethod {
	return document.NewVerificationMethod(map[string]interface{}{
		document.IDProperty:              kp.id,
		document.TypeProperty:            Secp256k1KeyType,
		document.ControllerProperty:      kp.controller,
		document.PublicKeyBase58Property: base58.Encode(kp.publicKey.SerializeCompressed()),
	})
}

// Export returns the serializable key node.
func (kp *Secp256k1KeyPair) Export(withPrivate bool) (map[string]interface{}, error) {
	node := map[string]interface{}{
		document.IDProperty:              kp.id,
		document.TypeProperty:            Secp256k1KeyType,
		document.ControllerProperty:      kp.controller,
		document.PublicKeyBase58Property: base58.Encode(kp.publicKey.SerializeCompressed()),
	}

	if withPrivate {
		if kp.privateKey == nil {
			return nil, ErrMissingPrivateKey
		}

		node[privateKeyBase58Property] = base58.Encode(kp.privateKey.Serialize())
	}

	return node, nil
}

const privateKeyBase58Property = "privateKeyBase58"
