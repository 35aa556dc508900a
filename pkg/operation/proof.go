/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import (
	"time"

	"github.com/multiformats/go-multibase"
	"github.com/pkg/errors"

	"github.com/trustbloc/did-method-v1/pkg/docutil"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
)

// Proof purposes and suites.
const (
	CapabilityInvocationPurpose = "capabilityInvocation"

	ed25519Suite   = "Ed25519Signature2020"
	secp256k1Suite = "EcdsaSecp256k1Signature2019"
)

// Proof is a linked data proof over a ledger operation.
type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
	Capability         string `json:"capability,omitempty"`
	CapabilityAction   string `json:"capabilityAction,omitempty"`
	InvocationTarget   string `json:"invocationTarget,omitempty"`
	ProofValue         string `json:"proofValue,omitempty"`
}

// InvocationParams holds the inputs for AttachInvocationProof.
type InvocationParams struct {

	// Capability is the capability being invoked (the identifier itself).
	Capability string

	// CapabilityAction is "create" or "update".
	CapabilityAction string

	// InvocationTarget is the record the operation applies to.
	InvocationTarget string

	// Key is the capability invocation key pair with private material.
	Key keypair.KeyPair
}

// AttachInvocationProof signs the operation with the capability invocation
// key and appends the resulting proof. The signature covers the canonical
// operation bytes including any previously attached proofs, so the
// eligibility proof (when present) is bound by the invocation proof.
func AttachInvocationProof(op *Operation, params InvocationParams) error {
	if params.Key == nil {
		return errors.New("an invocation key is required")
	}

	if !params.Key.HasPrivateKey() {
		return keypair.ErrMissingPrivateKey
	}

	suite, err := suiteForKeyType(params.Key.Type())
	if err != nil {
		return err
	}

	digest, err := operationDigest(op)
	if err != nil {
		return err
	}

	signature, err := params.Key.Sign(digest)
	if err != nil {
		return errors.Wrap(err, "sign operation")
	}

	proofValue, err := multibase.Encode(multibase.Base58BTC, signature)
	if err != nil {
		return errors.Wrap(err, "encode proof value")
	}

	op.Proof = append(op.Proof, &Proof{
		Type:               suite,
		Created:            time.Now().UTC().Format(time.RFC3339),
		VerificationMethod: params.Key.ID(),
		ProofPurpose:       CapabilityInvocationPurpose,
		Capability:         params.Capability,
		CapabilityAction:   params.CapabilityAction,
		InvocationTarget:   params.InvocationTarget,
		ProofValue:         proofValue,
	})

	return nil
}

// VerifyInvocationProof verifies the last proof on the operation against the
// given key pair.
func VerifyInvocationProof(op *Operation, key keypair.KeyPair) error {
	if len(op.Proof) == 0 {
		return errors.New("operation has no proof")
	}

	last, ok := op.Proof[len(op.Proof)-1].(*Proof)
	if !ok {
		return errors.New("last proof is not an invocation proof")
	}

	unsigned := *op
	unsigned.Proof = op.Proof[:len(op.Proof)-1]

	if len(unsigned.Proof) == 0 {
		unsigned.Proof = nil
	}

	digest, err := operationDigest(&unsigned)
	if err != nil {
		return err
	}

	_, signature, err := multibase.Decode(last.ProofValue)
	if err != nil {
		return errors.Wrap(err, "decode proof value")
	}

	return key.Verify(digest, signature)
}

// operationDigest computes the multihash digest of the canonical operation
// bytes; the digest is what invocation keys sign.
func operationDigest(op *Operation) ([]byte, error) {
	canonical, err := op.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "canonicalize operation")
	}

	digest, err := docutil.ComputeMultihash(docutil.SHA2_256, canonical)
	if err != nil {
		return nil, errors.Wrap(err, "compute operation digest")
	}

	return digest, nil
}

func suiteForKeyType(keyType string) (string, error) {
	switch keyType {
	case keypair.Ed25519KeyType:
		return ed25519Suite, nil
	case keypair.Secp256k1KeyType:
		return secp256k1Suite, nil
	default:
		return "", errors.Errorf("no signature suite for key type '%s'", keyType)
	}
}
