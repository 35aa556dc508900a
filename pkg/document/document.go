/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

import (
	"encoding/json"

	"github.com/trustbloc/did-method-v1/pkg/docutil"
)

const (

	// ContextProperty defines key for context property.
	ContextProperty = "@context"

	// IDProperty describes id key.
	IDProperty = "id"

	// TypeProperty describes type key.
	TypeProperty = "type"

	// ServiceProperty defines key for service property.
	ServiceProperty = "service"

	// AuthenticationProperty defines key for authentication property.
	AuthenticationProperty = "authentication"

	// AssertionMethodProperty defines key for assertion method property.
	AssertionMethodProperty = "assertionMethod"

	// CapabilityInvocationProperty defines key for capability invocation property.
	CapabilityInvocationProperty = "capabilityInvocation"

	// CapabilityDelegationProperty defines key for capability delegation property.
	CapabilityDelegationProperty = "capabilityDelegation"

	// KeyAgreementProperty defines key for key agreement property.
	KeyAgreementProperty = "keyAgreement"
)

// ProofPurposes enumerates the proof purpose buckets in their fixed order.
// Operations that resolve "the first bucket containing a key" iterate in
// this order.
var ProofPurposes = []string{
	AuthenticationProperty,
	AssertionMethodProperty,
	CapabilityInvocationProperty,
	CapabilityDelegationProperty,
	KeyAgreementProperty,
}

// IsProofPurpose returns true if the given property names a proof purpose bucket.
func IsProofPurpose(purpose string) bool {
	for _, p := range ProofPurposes {
		if p == purpose {
			return true
		}
	}

	return false
}

// DIDDocument defines DID document data structure.
type DIDDocument map[string]interface{}

// FromBytes creates an instance of DIDDocument by reading a JSON document from bytes.
func FromBytes(data []byte) (DIDDocument, error) {
	doc := make(DIDDocument)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// FromJSONLDObject creates an instance of DIDDocument from json ld object.
func FromJSONLDObject(jsonldObject map[string]interface{}) DIDDocument {
	return jsonldObject
}

// ID is identifier for DID subject (what DID document is about).
func (doc DIDDocument) ID() string {
	return stringEntry(doc[IDProperty])
}

// Context is the context of the did document.
func (doc DIDDocument) Context() []interface{} {
	return interfaceArray(doc[ContextProperty])
}

// Services is an array of service endpoints.
func (doc DIDDocument) Services() []Service {
	return ParseServices(doc[ServiceProperty])
}

// Authentications returns authentication verification methods.
func (doc DIDDocument) Authentications() []VerificationMethod {
	return ParseVerificationMethods(doc[AuthenticationProperty])
}

// AssertionMethods returns assertion verification methods.
func (doc DIDDocument) AssertionMethods() []VerificationMethod {
	return ParseVerificationMethods(doc[AssertionMethodProperty])
}

// InvocationMethods returns capability invocation verification methods.
func (doc DIDDocument) InvocationMethods() []VerificationMethod {
	return ParseVerificationMethods(doc[CapabilityInvocationProperty])
}

// DelegationMethods returns capability delegation verification methods.
func (doc DIDDocument) DelegationMethods() []VerificationMethod {
	return ParseVerificationMethods(doc[CapabilityDelegationProperty])
}

// AgreementMethods returns key agreement verification methods.
func (doc DIDDocument) AgreementMethods() []VerificationMethod {
	return ParseVerificationMethods(doc[KeyAgreementProperty])
}

// MethodsForPurpose returns the verification methods in the named purpose bucket.
func (doc DIDDocument) MethodsForPurpose(purpose string) []VerificationMethod {
	if !IsProofPurpose(purpose) {
		return nil
	}

	return ParseVerificationMethods(doc[purpose])
}

// SetMethodsForPurpose replaces the named purpose bucket. A nil slice removes
// the bucket entry entirely.
func (doc DIDDocument) SetMethodsForPurpose(purpose string, methods []VerificationMethod) {
	if methods == nil {
		delete(doc, purpose)

		return
	}

	entries := make([]interface{}, len(methods))
	for i, m := range methods {
		entries[i] = m.JSONLdObject()
	}

	doc[purpose] = entries
}

// SetServices replaces the service property. A nil slice removes the entry.
func (doc DIDDocument) SetServices(services []Service) {
	if services == nil {
		delete(doc, ServiceProperty)

		return
	}

	entries := make([]interface{}, len(services))
	for i, s := range services {
		entries[i] = s.JSONLdObject()
	}

	doc[ServiceProperty] = entries
}

// GetStringValue returns string value for specified key or "" if not found or wrong type.
func (doc DIDDocument) GetStringValue(key string) string {
	return stringEntry(doc[key])
}

// Bytes returns the canonical byte representation of the did document.
func (doc DIDDocument) Bytes() ([]byte, error) {
	return docutil.MarshalCanonical(doc)
}

// JSONLdObject returns map that represents JSON LD Object.
func (doc DIDDocument) JSONLdObject() map[string]interface{} {
	return doc
}

// ParseVerificationMethods is a helper function for parsing verification methods.
func ParseVerificationMethods(entry interface{}) []VerificationMethod {
	if entry == nil {
		return nil
	}

	typedEntry, ok := entry.([]interface{})
	if !ok {
		return nil
	}

	var result []VerificationMethod

	for _, e := range typedEntry {
		emap, ok := e.(map[string]interface{})
		if !ok {
			continue
		}

		result = append(result, NewVerificationMethod(emap))
	}

	return result
}

// ParseServices is a utility for parsing an array of service endpoints.
func ParseServices(entry interface{}) []Service {
	if entry == nil {
		return nil
	}

	typedEntry, ok := entry.([]interface{})
	if !ok {
		return nil
	}

	var result []Service

	for _, e := range typedEntry {
		emap, ok := e.(map[string]interface{})
		if !ok {
			continue
		}

		result = append(result, NewService(emap))
	}

	return result
}

func stringEntry(entry interface{}) string {
	if entry == nil {
		return ""
	}

	id, ok := entry.(string)
	if !ok {
		return ""
	}

	return id
}

func interfaceArray(entry interface{}) []interface{} {
	if entry == nil {
		return nil
	}

	entries, ok := entry.([]interface{})
	if !ok {
		return nil
	}

	return entries
}
