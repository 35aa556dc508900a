/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package document

const (

	// ControllerProperty defines key for controller.
	ControllerProperty = "controller"

	// PublicKeyMultibaseProperty defines multibase encoding for public key.
	PublicKeyMultibaseProperty = "publicKeyMultibase"

	// PublicKeyBase58Property defines base 58 encoding for public key.
	PublicKeyBase58Property = "publicKeyBase58"

	// PublicKeyJwkProperty describes external public key JWK.
	PublicKeyJwkProperty = "publicKeyJwk"
)

// VerificationMethod must include id and type properties, and exactly one value property.
type VerificationMethod map[string]interface{}

// NewVerificationMethod creates a new verification method.
func NewVerificationMethod(m map[string]interface{}) VerificationMethod {
	return m
}

// ID is verification method ID.
func (vm VerificationMethod) ID() string {
	return stringEntry(vm[IDProperty])
}

// Type is verification method type.
func (vm VerificationMethod) Type() string {
	return stringEntry(vm[TypeProperty])
}

// Controller identifies the entity that controls the corresponding private key.
func (vm VerificationMethod) Controller() string {
	return stringEntry(vm[ControllerProperty])
}

// PublicKeyMultibase is the multibase encoded public key.
func (vm VerificationMethod) PublicKeyMultibase() string {
	return stringEntry(vm[PublicKeyMultibaseProperty])
}

// PublicKeyBase58 is the base58 encoded public key.
func (vm VerificationMethod) PublicKeyBase58() string {
	return stringEntry(vm[PublicKeyBase58Property])
}

// PublicKeyJwk is the JWK value property.
func (vm VerificationMethod) PublicKeyJwk() map[string]interface{} {
	entry, ok := vm[PublicKeyJwkProperty]
	if !ok {
		return nil
	}

	jwk, ok := entry.(map[string]interface{})
	if !ok {
		return nil
	}

	return jwk
}

// JSONLdObject returns map that represents JSON LD Object.
func (vm VerificationMethod) JSONLdObject() map[string]interface{} {
	return vm
}
