/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log Fields.
const (
	FieldDID           = "did"
	FieldMode          = "mode"
	FieldKeyID         = "keyID"
	FieldKeyType       = "keyType"
	FieldPurpose       = "purpose"
	FieldServiceID     = "serviceID"
	FieldSequence      = "sequence"
	FieldOperationType = "operationType"
	FieldPatch         = "patch"
	FieldHost          = "host"
	FieldURI           = "uri"
	FieldStatus        = "status"
	FieldResponseBody  = "responseBody"
	FieldTotal         = "total"
	FieldDocument      = "document"
)

// WithDID sets the did field.
func WithDID(value string) zap.Field {
	return zap.String(FieldDID, value)
}

// WithMode sets the mode field.
func WithMode(value string) zap.Field {
	return zap.String(FieldMode, value)
}

// WithKeyID sets the key-id field.
func WithKeyID(value string) zap.Field {
	return zap.String(FieldKeyID, value)
}

// WithKeyType sets the key-type field.
func WithKeyType(value string) zap.Field {
	return zap.String(FieldKeyType, value)
}

// WithPurpose sets the purpose field.
func WithPurpose(value string) zap.Field {
	return zap.String(FieldPurpose, value)
}

// WithServiceID sets the service-id field.
func WithServiceID(value string) zap.Field {
	return zap.String(FieldServiceID, value)
}

// WithSequence sets the sequence field.
func WithSequence(value uint64) zap.Field {
	return zap.Uint64(FieldSequence, value)
}

// WithOperationType sets the operation-type field.
func WithOperationType(value string) zap.Field {
	return zap.String(FieldOperationType, value)
}

// WithPatch sets the patch field.
func WithPatch(value interface{}) zap.Field {
	return zap.Inline(newJSONMarshaller(FieldPatch, value))
}

// WithHost sets the host field.
func WithHost(value string) zap.Field {
	return zap.String(FieldHost, value)
}

// WithURIString sets the uri field.
func WithURIString(value string) zap.Field {
	return zap.String(FieldURI, value)
}

// WithStatus sets the status field.
func WithStatus(value int) zap.Field {
	return zap.Int(FieldStatus, value)
}

// WithResponseBody sets the response-body field.
func WithResponseBody(value []byte) zap.Field {
	return zap.String(FieldResponseBody, string(value))
}

// WithTotal sets the total field.
func WithTotal(value int) zap.Field {
	return zap.Int(FieldTotal, value)
}

// WithDocument sets the document field.
func WithDocument(value map[string]interface{}) zap.Field {
	return zap.Inline(newJSONMarshaller(FieldDocument, value))
}

type jsonMarshaller struct {
	key string
	obj interface{}
}

func newJSONMarshaller(key string, value interface{}) *jsonMarshaller {
	return &jsonMarshaller{key: key, obj: value}
}

func (m *jsonMarshaller) MarshalLogObject(e zapcore.ObjectEncoder) error {
	b, err := json.Marshal(m.obj)
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	e.AddString(m.key, string(b))

	return nil
}
