/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ledger implements the HTTP transport to a did:v1 ledger node and
// its auxiliary ticket and accelerator services.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/trustbloc/did-method-v1/pkg/docutil"
	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/internal/log"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
	"github.com/trustbloc/did-method-v1/pkg/operation"
)

const (
	recordsPath    = "/records/"
	statusPath     = "/status"
	operationsPath = "/operations"

	contentType = "application/ld+json"
)

// TicketServiceName is the named endpoint in ledger status that points at the
// ticket service.
const TicketServiceName = "ledgerTicketService"

// Record is a ledger record together with its metadata.
type Record struct {
	Record document.DIDDocument   `json:"record"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
}

// Sequence returns the record's sequence number from its metadata.
func (r *Record) Sequence() uint64 {
	seq, ok := r.Meta["sequence"].(float64)
	if !ok {
		return 0
	}

	return uint64(seq)
}

// Endpoint is a named service endpoint advertised by the ledger.
type Endpoint struct {
	ID string `json:"id"`
}

// Status is the ledger status: named auxiliary service endpoints.
type Status struct {
	Services map[string]Endpoint `json:"service"`
}

// Response is the ledger's reply to a submitted operation.
type Response struct {
	Status int
	Body   json.RawMessage
}

// HTTPTransport talks to a ledger node over HTTPS.
type HTTPTransport struct {
	baseURL string
	host    string
	client  *http.Client
	logger  *zap.Logger
}

// TransportOption configures the transport.
type TransportOption func(*HTTPTransport)

// WithHTTPClient overrides the default http client.
func WithHTTPClient(client *http.Client) TransportOption {
	return func(t *HTTPTransport) {
		t.client = client
	}
}

// WithTransportLogger sets the logger.
func WithTransportLogger(logger *zap.Logger) TransportOption {
	return func(t *HTTPTransport) {
		t.logger = logger
	}
}

// NewHTTPTransport returns a transport for the ledger node at baseURL
// (scheme and host, for example "https://ledger.example.com").
func NewHTTPTransport(baseURL string, opts ...TransportOption) (*HTTPTransport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "parse ledger url")
	}

	t := &HTTPTransport{
		baseURL: baseURL,
		host:    u.Host,
		client:  http.DefaultClient,
		logger:  log.New("did-method-v1-ledger"),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t, nil
}

// GetRecord fetches the record for the given identifier. A ledger 404 is
// returned as *NotFoundError.
func (t *HTTPTransport) GetRecord(ctx context.Context, id string) (*Record, error) {
	body, status, err := t.do(ctx, http.MethodGet, t.baseURL+recordsPath+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound {
		return nil, &NotFoundError{ID: id}
	}

	if status != http.StatusOK {
		return nil, &NetworkError{Host: t.host, Status: status, Body: body}
	}

	rec := &Record{}
	if err := json.Unmarshal(body, rec); err != nil {
		return nil, errors.Wrap(err, "parse record response")
	}

	return rec, nil
}

// GetStatus fetches the ledger status with its named service endpoints.
func (t *HTTPTransport) GetStatus(ctx context.Context) (*Status, error) {
	body, status, err := t.do(ctx, http.MethodGet, t.baseURL+statusPath, nil)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, &NetworkError{Host: t.host, Status: status, Body: body}
	}

	s := &Status{}
	if err := json.Unmarshal(body, s); err != nil {
		return nil, errors.Wrap(err, "parse status response")
	}

	return s, nil
}

// SendOperation submits a fully proved operation to the ledger.
func (t *HTTPTransport) SendOperation(ctx context.Context, op *operation.Operation) (*Response, error) {
	payload, err := op.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "marshal operation")
	}

	body, status, err := t.do(ctx, http.MethodPost, t.baseURL+operationsPath, payload)
	if err != nil {
		return nil, err
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &NetworkError{Host: t.host, Status: status, Body: body}
	}

	t.logger.Debug("operation accepted", log.WithHost(t.host),
		log.WithOperationType(string(op.Type)), log.WithStatus(status))

	return &Response{Status: status, Body: body}, nil
}

// RequestTicket posts the pending operation to the ticket service and returns
// the same operation augmented with an eligibility proof.
func (t *HTTPTransport) RequestTicket(ctx context.Context, serviceURL string, op *operation.Operation) (*operation.Operation, error) {
	payload, err := op.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "marshal operation")
	}

	body, status, err := t.do(ctx, http.MethodPost, serviceURL, payload)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, &NetworkError{Host: hostOf(serviceURL), Status: status, Body: body}
	}

	proved, err := operation.FromBytes(body)
	if err != nil {
		return nil, errors.Wrap(err, "parse ticket service response")
	}

	return proved, nil
}

// PostAccelerator posts the pending operation to the accelerator, signing the
// request with the caller's authentication key, and returns the operation
// augmented with an eligibility proof.
func (t *HTTPTransport) PostAccelerator(ctx context.Context, serviceURL string, op *operation.Operation, signer keypair.KeyPair) (*operation.Operation, error) {
	payload, err := op.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "marshal operation")
	}

	digest, err := docutil.ComputeMultihash(docutil.SHA2_256, payload)
	if err != nil {
		return nil, errors.Wrap(err, "compute request digest")
	}

	signature, err := signer.Sign(digest)
	if err != nil {
		return nil, errors.Wrap(err, "sign accelerator request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serviceURL, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build accelerator request")
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Digest", "mh="+docutil.EncodeToString(digest))
	req.Header.Set("Authorization", fmt.Sprintf(`Signature keyId=%q,signature=%q`,
		signer.ID(), docutil.EncodeToString(signature)))

	body, status, err := t.doRequest(req)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		return nil, &NetworkError{Host: hostOf(serviceURL), Status: status, Body: body}
	}

	proved, err := operation.FromBytes(body)
	if err != nil {
		return nil, errors.Wrap(err, "parse accelerator response")
	}

	return proved, nil
}

func (t *HTTPTransport) do(ctx context.Context, method, uri string, payload []byte) ([]byte, int, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build request")
	}

	if payload != nil {
		req.Header.Set("Content-Type", contentType)
	}

	return t.doRequest(req)
}

func (t *HTTPTransport) doRequest(req *http.Request) ([]byte, int, error) {
	t.logger.Debug("sending request", log.WithURIString(req.URL.String()))

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "request to %s failed", req.URL.Host)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.logger.Warn("failed to close response body", zap.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errors.Wrap(err, "read response body")
	}

	return body, resp.StatusCode, nil
}

func hostOf(serviceURL string) string {
	u, err := url.Parse(serviceURL)
	if err != nil {
		return serviceURL
	}

	return u.Host
}
