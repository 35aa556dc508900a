/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package operation models the unit submitted to the ledger: a document or
// document patch wrapped with its eligibility and capability invocation
// proofs.
package operation

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trustbloc/did-method-v1/pkg/docutil"
	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/jsonld"
	"github.com/trustbloc/did-method-v1/pkg/tracker"
)

// Type defines the ledger operation type.
type Type string

const (

	// TypeCreate captures enum value "create".
	TypeCreate Type = "create"

	// TypeUpdate captures enum value "update".
	TypeUpdate Type = "update"
)

// Operation is the unit submitted to the ledger. The proof array accumulates
// one eligibility proof and one capability invocation proof, in that order.
type Operation struct {
	Context     interface{}          `json:"@context"`
	Type        Type                 `json:"type"`
	Record      document.DIDDocument `json:"record,omitempty"`
	RecordPatch *tracker.PatchSet    `json:"recordPatch,omitempty"`
	Proof       []interface{}        `json:"proof,omitempty"`
}

func operationContext() interface{} {
	return []interface{}{jsonld.WebLedgerContextURL, jsonld.VeresOneContextURL}
}

// WrapCreate wraps a full document into a create operation.
func WrapCreate(record document.DIDDocument) (*Operation, error) {
	if record.ID() == "" {
		return nil, errors.New("record must have an id")
	}

	return &Operation{
		Context: operationContext(),
		Type:    TypeCreate,
		Record:  record,
	}, nil
}

// WrapUpdate wraps a document patch into an update operation.
func WrapUpdate(patch *tracker.PatchSet) (*Operation, error) {
	if patch == nil {
		return nil, errors.New("record patch is required")
	}

	if patch.Target == "" {
		return nil, errors.New("record patch must have a target")
	}

	return &Operation{
		Context:     operationContext(),
		Type:        TypeUpdate,
		RecordPatch: patch,
	}, nil
}

// Target returns the identifier the operation applies to.
func (op *Operation) Target() string {
	if op.RecordPatch != nil {
		return op.RecordPatch.Target
	}

	if op.Record != nil {
		return op.Record.ID()
	}

	return ""
}

// Bytes returns the canonical byte representation of the operation.
func (op *Operation) Bytes() ([]byte, error) {
	return docutil.MarshalCanonical(op)
}

// FromBytes parses the provided data into an operation.
func FromBytes(data []byte) (*Operation, error) {
	op := &Operation{}
	if err := json.Unmarshal(data, op); err != nil {
		return nil, errors.Wrap(err, "parse operation")
	}

	return op, nil
}
