/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package tracker captures a baseline snapshot of a live DID document and
// turns subsequent in-memory mutations into a sequenced RFC 6902 patch.
package tracker

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/wI2L/jsondiff"

	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/jsonld"
)

// ErrNotObserving is returned by Unobserve and Commit when no baseline has
// been captured.
var ErrNotObserving = errors.New("document is not being observed")

// PatchSet is the sequenced diff between a baseline and the current document.
type PatchSet struct {
	Context  interface{}    `json:"@context"`
	Patch    jsondiff.Patch `json:"patch"`
	Sequence uint64         `json:"sequence"`
	Target   string         `json:"target"`
}

// Bytes returns the canonical byte representation of the patch set.
func (ps *PatchSet) Bytes() ([]byte, error) {
	return json.Marshal(ps)
}

// Tracker is a two-state machine (idle, observing) over one live document.
// It is not safe for concurrent use: multiple logical writers sharing a
// document must serialize observe/commit/unobserve themselves.
type Tracker struct {
	doc      document.DIDDocument
	sequence uint64
	baseline []byte
}

// New returns an idle tracker over the given live document, starting at the
// given sequence number.
func New(doc document.DIDDocument, sequence uint64) *Tracker {
	return &Tracker{doc: doc, sequence: sequence}
}

// Sequence returns the sequence number the next commit will carry.
func (t *Tracker) Sequence() uint64 {
	return t.sequence
}

// Observing reports whether a baseline is currently captured.
func (t *Tracker) Observing() bool {
	return t.baseline != nil
}

// Observe captures a deep baseline of the document tree. Observing an
// already-observed document silently restarts tracking.
func (t *Tracker) Observe() error {
	if t.baseline != nil {
		if err := t.Unobserve(); err != nil {
			return err
		}
	}

	baseline, err := t.doc.Bytes()
	if err != nil {
		return fmt.Errorf("capture baseline: %w", err)
	}

	t.baseline = baseline

	return nil
}

// Unobserve discards the baseline without producing a patch.
func (t *Tracker) Unobserve() error {
	if t.baseline == nil {
		return ErrNotObserving
	}

	t.baseline = nil

	return nil
}

// Commit computes the ordered operation list transforming the baseline into
// the current document, advances the sequence by exactly one, and returns the
// patch set carrying the pre-increment sequence value. An empty mutation
// window yields a patch with zero operations but still advances the sequence.
func (t *Tracker) Commit() (*PatchSet, error) {
	if t.baseline == nil {
		return nil, ErrNotObserving
	}

	current, err := t.doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("capture current state: %w", err)
	}

	patch, err := jsondiff.CompareJSON(t.baseline, current)
	if err != nil {
		return nil, fmt.Errorf("diff document: %w", err)
	}

	if err := verifyReplay(t.baseline, current, patch); err != nil {
		return nil, err
	}

	ps := &PatchSet{
		Context:  []interface{}{jsonld.WebLedgerContextURL, jsonld.VeresOneContextURL},
		Patch:    patch,
		Sequence: t.sequence,
		Target:   t.doc.ID(),
	}

	t.sequence++
	t.baseline = nil

	return ps, nil
}

// verifyReplay checks that applying the generated patch to the baseline
// reproduces the current tree exactly.
func verifyReplay(baseline, current []byte, patch jsondiff.Patch) error {
	if len(patch) == 0 {
		return nil
	}

	patchBytes, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}

	decoded, err := jsonpatch.DecodePatch(patchBytes)
	if err != nil {
		return fmt.Errorf("decode patch: %w", err)
	}

	replayed, err := decoded.Apply(baseline)
	if err != nil {
		return fmt.Errorf("replay patch: %w", err)
	}

	if !jsonpatch.Equal(replayed, current) {
		return errors.New("replaying the patch does not reproduce the current document")
	}

	return nil
}
