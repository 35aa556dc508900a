/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package diddoc builds and mutates did:v1 documents: key generation per
// proof purpose, key rotation, service endpoints, and key map import/export.
package diddoc

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/trustbloc/did-method-v1/pkg/did"
	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/internal/log"
	"github.com/trustbloc/did-method-v1/pkg/jsonld"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
	"github.com/trustbloc/did-method-v1/pkg/tracker"
)

// Builder errors.
var (
	ErrUnknownProofPurpose = errors.New("unknown proof purpose")
	ErrKeyNotFound         = errors.New("key not found")
	ErrDuplicateService    = errors.New("service with this id already exists")
	ErrServiceNotFound     = errors.New("service not found")
	ErrMissingField        = errors.New("missing required field")
)

// Builder constructs documents. The zero options give a builder with the
// default key registry and a module logger; both can be overridden.
type Builder struct {
	registry keypair.Registry
	logger   *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithKeyRegistry sets the key pair registry.
func WithKeyRegistry(registry keypair.Registry) Option {
	return func(b *Builder) {
		b.registry = registry
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder returns a document builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		registry: keypair.NewRegistry(),
		logger:   log.New("did-method-v1-diddoc"),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// GenerateParams holds the inputs for Generate.
type GenerateParams struct {

	// DIDType is the identifier type. Defaults to nym.
	DIDType did.Type

	// KeyType is the verification method type for generated keys.
	// Defaults to Ed25519VerificationKey2020.
	KeyType string

	// Mode selects the ledger namespace. Defaults to test.
	Mode did.Mode

	// Purposes are the proof purpose buckets to populate. Defaults to all
	// five purposes.
	Purposes []string

	// Keys supplies pre-generated key pairs by purpose. A single key pair
	// may deliberately appear under multiple purposes.
	Keys map[string]keypair.KeyPair

	// Sequence is the initial document sequence. Defaults to 0.
	Sequence uint64
}

// Generate creates a document with one key per requested proof purpose. The
// capability invocation key is resolved first because a cryptonym identifier
// is derived from its fingerprint.
func (b *Builder) Generate(params GenerateParams) (*Doc, error) {
	didType := params.DIDType
	if didType == "" {
		didType = did.TypeNym
	}

	keyType := params.KeyType
	if keyType == "" {
		keyType = keypair.Ed25519KeyType
	}

	purposes := params.Purposes
	if len(purposes) == 0 {
		purposes = document.ProofPurposes
	}

	for _, purpose := range purposes {
		if !document.IsProofPurpose(purpose) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProofPurpose, purpose)
		}
	}

	keys := make(map[string]keypair.KeyPair, len(purposes))
	for purpose, key := range params.Keys {
		if !document.IsProofPurpose(purpose) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProofPurpose, purpose)
		}

		keys[purpose] = key
	}

	// The invocation key comes first: for cryptonyms the identifier is
	// derived from it.
	var invocationKey keypair.KeyPair

	if didType == did.TypeNym {
		if !containsPurpose(purposes, document.CapabilityInvocationProperty) {
			return nil, fmt.Errorf("%w: cryptonym documents require the %s purpose",
				ErrUnknownProofPurpose, document.CapabilityInvocationProperty)
		}

		var err error

		invocationKey, err = b.resolveKey(keys, document.CapabilityInvocationProperty, keyType)
		if err != nil {
			return nil, err
		}
	}

	identifier, err := did.Derive(did.DeriveParams{KeyPair: invocationKey, Type: didType, Mode: params.Mode})
	if err != nil {
		return nil, err
	}

	content := document.DIDDocument{
		document.ContextProperty: []interface{}{jsonld.DIDContextURL, jsonld.VeresOneContextURL},
		document.IDProperty:      identifier,
	}

	doc := &Doc{
		content:  content,
		keys:     make(map[string]keypair.KeyPair),
		mode:     params.Mode,
		registry: b.registry,
		logger:   b.logger,
		tracker:  tracker.New(content, params.Sequence),
	}

	// Populate buckets in fixed enumeration order.
	for _, purpose := range document.ProofPurposes {
		if !containsPurpose(purposes, purpose) {
			continue
		}

		key, err := b.resolveKey(keys, purpose, keyType)
		if err != nil {
			return nil, err
		}

		if err := doc.appendKey(key, purpose, identifier); err != nil {
			return nil, err
		}
	}

	b.logger.Debug("generated document",
		log.WithDID(identifier), log.WithMode(string(params.Mode)), log.WithKeyType(keyType))

	return doc, nil
}

// FromDocument wraps an existing document (for example one resolved from the
// ledger) without any private key material.
func (b *Builder) FromDocument(content document.DIDDocument, sequence uint64) *Doc {
	return &Doc{
		content:  content,
		keys:     make(map[string]keypair.KeyPair),
		registry: b.registry,
		logger:   b.logger,
		tracker:  tracker.New(content, sequence),
	}
}

// resolveKey returns the supplied key for the purpose, generating a fresh one
// when none was supplied. Supplied keys are memoized so that reusing one key
// pair across purposes yields the same instance.
func (b *Builder) resolveKey(keys map[string]keypair.KeyPair, purpose, keyType string) (keypair.KeyPair, error) {
	if key, ok := keys[purpose]; ok {
		return key, nil
	}

	key, err := b.registry.Generate(keyType)
	if err != nil {
		return nil, fmt.Errorf("generate %s key: %w", purpose, err)
	}

	keys[purpose] = key

	return key, nil
}

func containsPurpose(purposes []string, purpose string) bool {
	for _, p := range purposes {
		if p == purpose {
			return true
		}
	}

	return false
}
