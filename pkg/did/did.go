/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package did derives and validates did:v1 identifiers. Derivation is pure
// leaf logic: a cryptonym identifier is bound to the fingerprint of its
// invocation key, a uuid identifier to fresh randomness.
package did

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Mode selects the ledger namespace an identifier belongs to.
type Mode string

// Closed enumeration of modes.
const (
	ModeTest Mode = "test"
	ModeDev  Mode = "dev"
	ModeLive Mode = "live"
)

// Type is the identifier type.
type Type string

// Identifier types.
const (
	// TypeNym identifies a cryptonym: the specific id is the multibase
	// fingerprint of the invocation key.
	TypeNym Type = "nym"

	// TypeUUID identifies a random identifier.
	TypeUUID Type = "uuid"
)

const (
	prefixTest = "did:v1:test:"
	prefixDev  = "did:v1:dev:"
	prefixLive = "did:v1:"
)

// Derivation errors.
var (
	ErrInvalidMode = errors.New("invalid mode")
	ErrInvalidType = errors.New("invalid identifier type")
	ErrMissingKey  = errors.New("a key pair is required to derive a cryptonym identifier")
)

// Fingerprinter is the part of the key pair capability that derivation consumes.
type Fingerprinter interface {
	Fingerprint() (string, error)
}

// Prefix returns the identifier prefix for the given mode. Live mode carries
// no mode segment.
func Prefix(mode Mode) (string, error) {
	switch effectiveMode(mode) {
	case ModeTest:
		return prefixTest, nil
	case ModeDev:
		return prefixDev, nil
	case ModeLive:
		return prefixLive, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidMode, mode)
	}
}

// DeriveParams holds the inputs for Derive.
type DeriveParams struct {

	// KeyPair is the invocation key. Required for TypeNym.
	KeyPair Fingerprinter

	// Type is the identifier type. Defaults to TypeNym.
	Type Type

	// Mode selects the ledger namespace. Defaults to ModeTest.
	Mode Mode
}

// Derive computes the method-specific identifier string.
func Derive(params DeriveParams) (string, error) {
	prefix, err := Prefix(params.Mode)
	if err != nil {
		return "", err
	}

	didType := params.Type
	if didType == "" {
		didType = TypeNym
	}

	switch didType {
	case TypeUUID:
		return prefix + "uuid:" + strings.ReplaceAll(uuid.New().String(), "-", ""), nil
	case TypeNym:
		if params.KeyPair == nil {
			return "", ErrMissingKey
		}

		fingerprint, err := params.KeyPair.Fingerprint()
		if err != nil {
			return "", fmt.Errorf("compute fingerprint: %w", err)
		}

		return prefix + "nym:" + fingerprint, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidType, didType)
	}
}

// grammar matches scheme, optional mode segment, type segment and specific id.
// The specific id match is deliberately broad; the character-class check is a
// separate validation step.
var grammar = regexp.MustCompile(`^did:v1:(?:(test|dev):)?(nym|uuid):([^#]+)(?:#(.*))?$`)

// ID is a parsed did:v1 identifier.
type ID struct {
	Mode       Mode
	Type       Type
	SpecificID string
	Fragment   string
}

// Parse splits an identifier into its segments.
func Parse(identifier string) (*ID, error) {
	m := grammar.FindStringSubmatch(identifier)
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedID, identifier)
	}

	mode := ModeLive
	if m[1] != "" {
		mode = Mode(m[1])
	}

	return &ID{
		Mode:       mode,
		Type:       Type(m[2]),
		SpecificID: m[3],
		Fragment:   m[4],
	}, nil
}

// Base returns the identifier without any fragment.
func (id *ID) Base() string {
	prefix, _ := Prefix(id.Mode) //nolint:errcheck

	return prefix + string(id.Type) + ":" + id.SpecificID
}

// String returns the full identifier including any fragment.
func (id *ID) String() string {
	s := id.Base()
	if id.Fragment != "" {
		s += "#" + id.Fragment
	}

	return s
}

func effectiveMode(mode Mode) Mode {
	if mode == "" {
		return ModeTest
	}

	return mode
}
