/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package mocks provides hand-rolled collaborator fakes for tests.
package mocks

import (
	"context"
	"sync"

	"github.com/trustbloc/did-method-v1/pkg/keypair"
	"github.com/trustbloc/did-method-v1/pkg/ledger"
	"github.com/trustbloc/did-method-v1/pkg/operation"
)

// Transport is a configurable fake ledger transport. Each stub may be nil, in
// which case the call succeeds with a zero-value response. Call counts are
// recorded for every method.
type Transport struct {
	GetRecordStub       func(ctx context.Context, id string) (*ledger.Record, error)
	GetStatusStub       func(ctx context.Context) (*ledger.Status, error)
	SendOperationStub   func(ctx context.Context, op *operation.Operation) (*ledger.Response, error)
	RequestTicketStub   func(ctx context.Context, serviceURL string, op *operation.Operation) (*operation.Operation, error)
	PostAcceleratorStub func(ctx context.Context, serviceURL string, op *operation.Operation, signer keypair.KeyPair) (*operation.Operation, error)

	mutex sync.Mutex
	calls map[string]int
}

// GetRecord implements the transport interface.
func (m *Transport) GetRecord(ctx context.Context, id string) (*ledger.Record, error) {
	m.record("GetRecord")

	if m.GetRecordStub != nil {
		return m.GetRecordStub(ctx, id)
	}

	return &ledger.Record{}, nil
}

// GetStatus implements the transport interface.
func (m *Transport) GetStatus(ctx context.Context) (*ledger.Status, error) {
	m.record("GetStatus")

	if m.GetStatusStub != nil {
		return m.GetStatusStub(ctx)
	}

	return &ledger.Status{}, nil
}

// SendOperation implements the transport interface.
func (m *Transport) SendOperation(ctx context.Context, op *operation.Operation) (*ledger.Response, error) {
	m.record("SendOperation")

	if m.SendOperationStub != nil {
		return m.SendOperationStub(ctx, op)
	}

	return &ledger.Response{Status: 200}, nil
}

// RequestTicket implements the transport interface.
func (m *Transport) RequestTicket(ctx context.Context, serviceURL string, op *operation.Operation) (*operation.Operation, error) {
	m.record("RequestTicket")

	if m.RequestTicketStub != nil {
		return m.RequestTicketStub(ctx, serviceURL, op)
	}

	return op, nil
}

// PostAccelerator implements the transport interface.
func (m *Transport) PostAccelerator(ctx context.Context, serviceURL string, op *operation.Operation, signer keypair.KeyPair) (*operation.Operation, error) {
	m.record("PostAccelerator")

	if m.PostAcceleratorStub != nil {
		return m.PostAcceleratorStub(ctx, serviceURL, op, signer)
	}

	return op, nil
}

// CallCount returns how many times the named method was invoked.
func (m *Transport) CallCount(method string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.calls[method]
}

func (m *Transport) record(method string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.calls == nil {
		m.calls = make(map[string]int)
	}

	m.calls[method]++
}
