/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddoc

import (
	"fmt"

	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/internal/log"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
)

// AddKeyParams holds the inputs for AddKey.
type AddKeyParams struct {

	// Key is the key pair to add (private material is recorded in the key map).
	Key keypair.KeyPair

	// Purpose names the proof purpose bucket.
	Purpose string

	// Controller overrides the key's controller. Defaults to the document id.
	Controller string
}

// AddKey appends the key's public projection to the named bucket and records
// the key in the key map. The bucket must already exist on the document.
func (d *Doc) AddKey(params AddKeyParams) error {
	if params.Key == nil {
		return fmt.Errorf("%w: key", ErrMissingField)
	}

	if _, ok := d.content[params.Purpose]; !ok || !document.IsProofPurpose(params.Purpose) {
		return fmt.Errorf("%w: %s", ErrUnknownProofPurpose, params.Purpose)
	}

	if params.Controller != "" {
		params.Key.SetController(params.Controller)
	}

	if err := d.appendKey(params.Key, params.Purpose, d.ID()); err != nil {
		return err
	}

	d.logger.Debug("added key", log.WithDID(d.ID()),
		log.WithKeyID(params.Key.ID()), log.WithPurpose(params.Purpose))

	return nil
}

// RemoveKey removes the matching public entry from every proof purpose bucket
// that contains it and deletes it from the key map. Absence from a given
// bucket is not an error, but a key absent from all buckets and the key map
// fails with ErrKeyNotFound.
func (d *Doc) RemoveKey(id string) error {
	found := false

	for _, purpose := range document.ProofPurposes {
		methods := d.content.MethodsForPurpose(purpose)

		var kept []document.VerificationMethod

		for _, m := range methods {
			if m.ID() == id {
				found = true

				continue
			}

			kept = append(kept, m)
		}

		if len(kept) < len(methods) {
			if kept == nil {
				kept = []document.VerificationMethod{}
			}

			d.content.SetMethodsForPurpose(purpose, kept)
		}
	}

	if _, ok := d.keys[id]; ok {
		found = true

		delete(d.keys, id)
	}

	if !found {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, id)
	}

	d.logger.Debug("removed key", log.WithDID(d.ID()), log.WithKeyID(id))

	return nil
}

// RotateKeyParams holds the inputs for RotateKey.
type RotateKeyParams struct {

	// ID is the verification method id to rotate.
	ID string

	// Purpose optionally disambiguates which bucket the rotation applies to.
	// When empty, the first bucket containing the key (in fixed enumeration
	// order) wins.
	Purpose string
}

// RotateKey removes the existing method, generates a fresh key pair of the
// same type and controller under a new id, and inserts it into the same
// proof purpose bucket. The old id is never reused.
func (d *Doc) RotateKey(params RotateKeyParams) (keypair.KeyPair, error) {
	purpose, old, err := d.locateMethod(params.ID, params.Purpose)
	if err != nil {
		return nil, err
	}

	newKey, err := d.registry.Generate(old.Type())
	if err != nil {
		return nil, fmt.Errorf("generate replacement key: %w", err)
	}

	controller := old.Controller()
	if controller == "" {
		controller = d.ID()
	}

	newKey.SetController(controller)

	fingerprint, err := newKey.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("compute fingerprint: %w", err)
	}

	newKey.SetID(d.ID() + "#" + fingerprint)

	// Remove the old method from the located bucket; the key map entry goes
	// away once no bucket references it.
	methods := d.content.MethodsForPurpose(purpose)

	kept := make([]document.VerificationMethod, 0, len(methods))

	for _, m := range methods {
		if m.ID() != params.ID {
			kept = append(kept, m)
		}
	}

	kept = append(kept, newKey.PublicNode())
	d.content.SetMethodsForPurpose(purpose, kept)

	if !d.methodReferenced(params.ID) {
		delete(d.keys, params.ID)
	}

	d.keys[newKey.ID()] = newKey

	d.logger.Debug("rotated key", log.WithDID(d.ID()),
		log.WithKeyID(params.ID), log.WithPurpose(purpose))

	return newKey, nil
}

// KeyRecord is the result of a key lookup.
type KeyRecord struct {

	// Key is the key pair from the key map; nil when only the public
	// projection is held.
	Key keypair.KeyPair

	// Method is the public verification method entry.
	Method document.VerificationMethod

	// Purposes lists every bucket containing the method, in fixed order.
	Purposes []string
}

// FindKey locates a verification method by id across all purpose buckets.
func (d *Doc) FindKey(id string) (*KeyRecord, bool) {
	record := &KeyRecord{Key: d.keys[id]}

	for _, purpose := range document.ProofPurposes {
		for _, m := range d.content.MethodsForPurpose(purpose) {
			if m.ID() == id {
				record.Method = m
				record.Purposes = append(record.Purposes, purpose)

				break
			}
		}
	}

	if record.Method == nil && record.Key == nil {
		return nil, false
	}

	return record, true
}

// locateMethod finds the method and the bucket the operation applies to.
func (d *Doc) locateMethod(id, explicitPurpose string) (string, document.VerificationMethod, error) {
	purposes := document.ProofPurposes
	if explicitPurpose != "" {
		if !document.IsProofPurpose(explicitPurpose) {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownProofPurpose, explicitPurpose)
		}

		purposes = []string{explicitPurpose}
	}

	for _, purpose := range purposes {
		for _, m := range d.content.MethodsForPurpose(purpose) {
			if m.ID() == id {
				return purpose, m, nil
			}
		}
	}

	return "", nil, fmt.Errorf("%w: %s", ErrKeyNotFound, id)
}

func (d *Doc) methodReferenced(id string) bool {
	for _, purpose := range document.ProofPurposes {
		for _, m := range d.content.MethodsForPurpose(purpose) {
			if m.ID() == id {
				return true
			}
		}
	}

	return false
}
