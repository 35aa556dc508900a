/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
)

// Validation errors. Validation queries report these through Result.Error and
// never fail through a returned error.
var (
	ErrNilDocument          = errors.New("document is required")
	ErrMalformedID          = errors.New("identifier does not match the did:v1 grammar")
	ErrModeMismatch         = errors.New("identifier mode does not match the document mode")
	ErrInvalidCharacter     = errors.New("specific id contains an invalid character")
	ErrMissingInvocationKey = errors.New("document has no capability invocation verification method")
)

// Result is the outcome of a validation query. Expected invalidity is
// reported through Error with Valid set to false.
type Result struct {
	Valid bool
	Error error
}

// urnScheme is the legacy compatibility escape: identifiers under an
// unrelated URN scheme are accepted unconditionally.
const urnScheme = "urn:"

var specificIDChars = regexp.MustCompile(`^[A-Za-z0-9.:-]+$`)

// ValidateDIDParams holds the inputs for ValidateDID.
type ValidateDIDParams struct {

	// Doc is the document whose id is validated.
	Doc document.DIDDocument

	// Mode is the mode the document was generated under. Defaults to ModeTest.
	Mode Mode

	// Registry reconstructs key pairs from verification methods during
	// cryptonym verification. Defaults to the standard registry.
	Registry keypair.Registry
}

// ValidateDID validates the document's identifier. It is a query: it returns
// a result to branch on and never fails through a thrown error.
func ValidateDID(params ValidateDIDParams) *Result {
	if params.Doc == nil {
		return &Result{Valid: false, Error: ErrNilDocument}
	}

	identifier := params.Doc.ID()

	if strings.HasPrefix(identifier, urnScheme) {
		return &Result{Valid: true}
	}

	parsed, err := Parse(identifier)
	if err != nil {
		return &Result{Valid: false, Error: err}
	}

	if parsed.Mode != effectiveMode(params.Mode) {
		return &Result{Valid: false, Error: fmt.Errorf("%w: identifier is %q, document was generated under %q",
			ErrModeMismatch, parsed.Mode, effectiveMode(params.Mode))}
	}

	if !specificIDChars.MatchString(parsed.SpecificID) {
		return &Result{Valid: false, Error: fmt.Errorf("%w: %q", ErrInvalidCharacter, parsed.SpecificID)}
	}

	if parsed.Type == TypeNym {
		return verifyCryptonym(params, parsed)
	}

	return &Result{Valid: true}
}

// verifyCryptonym verifies the specific id against the fingerprint of the
// document's capability invocation key. Key reuse across purposes is
// tolerated: the first invocation method is used.
func verifyCryptonym(params ValidateDIDParams, parsed *ID) *Result {
	methods := params.Doc.InvocationMethods()
	if len(methods) == 0 {
		return &Result{Valid: false, Error: ErrMissingInvocationKey}
	}

	registry := params.Registry
	if registry == nil {
		registry = keypair.NewRegistry()
	}

	key, err := registry.From(methods[0].JSONLdObject())
	if err != nil {
		return &Result{Valid: false, Error: fmt.Errorf("reconstruct invocation key: %w", err)}
	}

	// The specific id must start with a multibase marker; the key pair
	// capability decodes the rest.
	if len(parsed.SpecificID) < 2 || parsed.SpecificID[0] != 'z' {
		return &Result{Valid: false, Error: fmt.Errorf("%w: missing multibase marker", ErrMalformedID)}
	}

	verified := key.VerifyFingerprint(parsed.SpecificID)

	return &Result{Valid: verified.Valid, Error: verified.Error}
}

// ValidateMethodIDs checks that every verification method id in every proof
// purpose bucket is prefixed by the document identifier.
func ValidateMethodIDs(doc document.DIDDocument) *Result {
	if doc == nil {
		return &Result{Valid: false, Error: ErrNilDocument}
	}

	identifier := doc.ID()

	for _, purpose := range document.ProofPurposes {
		for _, method := range doc.MethodsForPurpose(purpose) {
			if !strings.HasPrefix(method.ID(), identifier+"#") {
				return &Result{Valid: false, Error: fmt.Errorf(
					"method id %q is not prefixed by document id %q", method.ID(), identifier)}
			}
		}
	}

	return &Result{Valid: true}
}
