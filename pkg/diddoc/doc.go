/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddoc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/trustbloc/did-method-v1/pkg/did"
	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
	"github.com/trustbloc/did-method-v1/pkg/tracker"
)

// Meta is the out-of-band document metadata.
type Meta struct {
	Sequence uint64
}

// Doc is a document together with its private key map and change tracker.
// The key map and tracker are exclusively owned by the Doc and are never
// serialized with it. A Doc is not safe for concurrent mutation.
type Doc struct {
	content  document.DIDDocument
	keys     map[string]keypair.KeyPair
	mode     did.Mode
	registry keypair.Registry
	logger   *zap.Logger
	tracker  *tracker.Tracker
}

// ID returns the document identifier.
func (d *Doc) ID() string {
	return d.content.ID()
}

// Content returns the live document tree.
func (d *Doc) Content() document.DIDDocument {
	return d.content
}

// Mode returns the mode the document was generated under.
func (d *Doc) Mode() did.Mode {
	return d.mode
}

// Meta returns the out-of-band document metadata.
func (d *Doc) Meta() Meta {
	return Meta{Sequence: d.tracker.Sequence()}
}

// Keys returns the key map (method id to key pair with private material).
func (d *Doc) Keys() map[string]keypair.KeyPair {
	return d.keys
}

// InvocationKey returns the private key pair for the document's capability
// invocation method, or ErrKeyNotFound if the method is absent or its private
// material is not held.
func (d *Doc) InvocationKey() (keypair.KeyPair, error) {
	methods := d.content.InvocationMethods()
	if len(methods) == 0 {
		return nil, fmt.Errorf("%w: document has no capability invocation method", ErrKeyNotFound)
	}

	for _, m := range methods {
		if key, ok := d.keys[m.ID()]; ok && key.HasPrivateKey() {
			return key, nil
		}
	}

	return nil, fmt.Errorf("%w: no private key for any capability invocation method", ErrKeyNotFound)
}

// AuthenticationKey returns the private key pair for the document's
// authentication method.
func (d *Doc) AuthenticationKey() (keypair.KeyPair, error) {
	for _, m := range d.content.Authentications() {
		if key, ok := d.keys[m.ID()]; ok && key.HasPrivateKey() {
			return key, nil
		}
	}

	return nil, fmt.Errorf("%w: no private key for any authentication method", ErrKeyNotFound)
}

// MarshalJSON serializes only the public document content. The key map never
// leaves the process through document serialization.
func (d *Doc) MarshalJSON() ([]byte, error) {
	return d.content.Bytes()
}

// Observe starts change tracking: a deep baseline of the document tree is
// captured. Observing an already-observed document restarts tracking.
func (d *Doc) Observe() error {
	return d.tracker.Observe()
}

// Unobserve discards the baseline without producing a patch.
func (d *Doc) Unobserve() error {
	return d.tracker.Unobserve()
}

// Commit produces the sequenced patch describing all mutations since Observe.
func (d *Doc) Commit() (*tracker.PatchSet, error) {
	return d.tracker.Commit()
}

// appendKey assigns controller/id defaults to the key, appends its public
// projection to the purpose bucket and records it in the key map.
func (d *Doc) appendKey(key keypair.KeyPair, purpose, identifier string) error {
	if key.Controller() == "" {
		key.SetController(identifier)
	}

	if key.ID() == "" {
		fingerprint, err := key.Fingerprint()
		if err != nil {
			return fmt.Errorf("compute fingerprint: %w", err)
		}

		key.SetID(identifier + "#" + fingerprint)
	}

	methods := d.content.MethodsForPurpose(purpose)
	methods = append(methods, key.PublicNode())
	d.content.SetMethodsForPurpose(purpose, methods)

	d.keys[key.ID()] = key

	return nil
}
