/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jsonld resolves the JSON-LD context documents referenced by did:v1
// documents and ledger operations. Contexts are served from a static
// in-process table; resolution never goes to the network unless a fallback
// loader is supplied.
package jsonld

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/piprate/json-gold/ld"
)

// Context URLs understood by this method.
const (
	DIDContextURL       = "https://www.w3.org/ns/did/v1"
	VeresOneContextURL  = "https://w3id.org/veres-one/v1"
	WebLedgerContextURL = "https://w3id.org/webledger/v1"
	Ed25519ContextURL   = "https://w3id.org/security/suites/ed25519-2020/v1"
	SecurityContextURL  = "https://w3id.org/security/v2"
)

// ErrContextNotFound is returned when a context URL is not in the static
// table and no fallback loader is configured.
var ErrContextNotFound = errors.New("context document not found")

var staticContexts = map[string]string{
	DIDContextURL: `{
  "@context": {
    "@protected": true,
    "id": "@id",
    "type": "@type",
    "alsoKnownAs": {"@id": "https://www.w3.org/ns/activitystreams#alsoKnownAs", "@type": "@id"},
    "controller": {"@id": "https://w3id.org/security#controller", "@type": "@id"},
    "verificationMethod": {"@id": "https://w3id.org/security#verificationMethod", "@type": "@id"},
    "authentication": {"@id": "https://w3id.org/security#authenticationMethod", "@type": "@id", "@container": "@set"},
    "assertionMethod": {"@id": "https://w3id.org/security#assertionMethod", "@type": "@id", "@container": "@set"},
    "capabilityDelegation": {"@id": "https://w3id.org/security#capabilityDelegationMethod", "@type": "@id", "@container": "@set"},
    "capabilityInvocation": {"@id": "https://w3id.org/security#capabilityInvocationMethod", "@type": "@id", "@container": "@set"},
    "keyAgreement": {"@id": "https://w3id.org/security#keyAgreementMethod", "@type": "@id", "@container": "@set"},
    "service": {"@id": "https://www.w3.org/ns/did#service", "@type": "@id", "@container": "@set"},
    "serviceEndpoint": {"@id": "https://www.w3.org/ns/did#serviceEndpoint", "@type": "@id"}
  }
}`,
	VeresOneContextURL: `{
  "@context": {
    "@protected": true,
    "id": "@id",
    "type": "@type",
    "nym": "https://w3id.org/veres-one#nym",
    "uuid": "https://w3id.org/veres-one#uuid",
    "AccelerateRequest": "https://w3id.org/veres-one#AccelerateRequest",
    "accelerator": "https://w3id.org/veres-one#accelerator",
    "ticketService": "https://w3id.org/veres-one#ticketService"
  }
}`,
	WebLedgerContextURL: `{
  "@context": {
    "@protected": true,
    "id": "@id",
    "type": "@type",
    "CreateWebLedgerRecord": "https://w3id.org/webledger#CreateWebLedgerRecord",
    "UpdateWebLedgerRecord": "https://w3id.org/webledger#UpdateWebLedgerRecord",
    "record": {"@id": "https://w3id.org/webledger#record", "@type": "@id"},
    "recordPatch": {"@id": "https://w3id.org/webledger#recordPatch", "@type": "@id"},
    "sequence": "https://w3id.org/webledger#sequence",
    "patch": "https://w3id.org/webledger#patch",
    "target": {"@id": "https://w3id.org/webledger#target", "@type": "@id"}
  }
}`,
	Ed25519ContextURL: `{
  "@context": {
    "@protected": true,
    "id": "@id",
    "type": "@type",
    "Ed25519VerificationKey2020": {"@id": "https://w3id.org/security#Ed25519VerificationKey2020"},
    "Ed25519Signature2020": {"@id": "https://w3id.org/security#Ed25519Signature2020"},
    "publicKeyMultibase": {"@id": "https://w3id.org/security#publicKeyMultibase", "@type": "https://w3id.org/security#multibase"},
    "proofValue": {"@id": "https://w3id.org/security#proofValue", "@type": "https://w3id.org/security#multibase"}
  }
}`,
	SecurityContextURL: `{
  "@context": {
    "id": "@id",
    "type": "@type",
    "proof": {"@id": "https://w3id.org/security#proof", "@type": "@id", "@container": "@graph"},
    "proofPurpose": {"@id": "https://w3id.org/security#proofPurpose", "@type": "@vocab"},
    "capability": {"@id": "https://w3id.org/security#capability", "@type": "@id"},
    "capabilityAction": "https://w3id.org/security#capabilityAction",
    "invocationTarget": {"@id": "https://w3id.org/security#invocationTarget", "@type": "@id"},
    "verificationMethod": {"@id": "https://w3id.org/security#verificationMethod", "@type": "@id"},
    "created": {"@id": "http://purl.org/dc/terms/created", "@type": "http://www.w3.org/2001/XMLSchema#dateTime"}
  }
}`,
}

// Loader serves JSON-LD context documents from the static table, caching any
// document retrieved through the optional fallback loader.
type Loader struct {
	fallback ld.DocumentLoader

	mutex sync.RWMutex
	cache map[string]*ld.RemoteDocument
}

// Option configures the loader.
type Option func(*Loader)

// WithFallbackLoader sets a loader consulted for context URLs that are not in
// the static table.
func WithFallbackLoader(fallback ld.DocumentLoader) Option {
	return func(l *Loader) {
		l.fallback = fallback
	}
}

// NewLoader returns a context loader backed by the static table.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{cache: make(map[string]*ld.RemoteDocument)}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoadDocument implements ld.DocumentLoader.
func (l *Loader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	return l.Resolve(u)
}

// Resolve returns the context document for the given URL or ErrContextNotFound.
func (l *Loader) Resolve(u string) (*ld.RemoteDocument, error) {
	if doc, ok := staticContexts[u]; ok {
		parsed, err := ld.DocumentFromReader(strings.NewReader(doc))
		if err != nil {
			return nil, fmt.Errorf("parse static context %s: %w", u, err)
		}

		return &ld.RemoteDocument{DocumentURL: u, Document: parsed}, nil
	}

	l.mutex.RLock()
	cached, ok := l.cache[u]
	l.mutex.RUnlock()

	if ok {
		return cached, nil
	}

	if l.fallback == nil {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, u)
	}

	remote, err := l.fallback.LoadDocument(u)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrContextNotFound, u)
	}

	l.mutex.Lock()
	l.cache[u] = remote
	l.mutex.Unlock()

	return remote, nil
}
