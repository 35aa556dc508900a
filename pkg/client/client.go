/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package client implements the write-protocol pipeline: wrapping a document
// or patch into a ledger operation, acquiring an eligibility proof over one
// of two alternate paths, attaching the capability invocation proof, and
// submitting. The read side resolves identifiers with a deterministic local
// reconstruction fallback for cryptonyms the ledger does not know.
package client

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/trustbloc/did-method-v1/pkg/did"
	"github.com/trustbloc/did-method-v1/pkg/diddoc"
	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/internal/log"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
	"github.com/trustbloc/did-method-v1/pkg/ledger"
	"github.com/trustbloc/did-method-v1/pkg/operation"
	"github.com/trustbloc/did-method-v1/pkg/tracker"
)

// Pipeline errors.
var (
	ErrMissingTransport     = errors.New("a ledger transport is required")
	ErrMissingDocument      = errors.New("a document is required")
	ErrMissingAuthDocument  = errors.New("the accelerator path requires an auth document with a private authentication key")
	ErrMissingInvocationKey = errors.New("no private capability invocation key is available")
	ErrMissingTicketService = errors.New("ledger status does not advertise a ticket service")
)

// Transport is the ledger transport capability the pipeline consumes.
type Transport interface {
	GetRecord(ctx context.Context, id string) (*ledger.Record, error)
	GetStatus(ctx context.Context) (*ledger.Status, error)
	SendOperation(ctx context.Context, op *operation.Operation) (*ledger.Response, error)
	RequestTicket(ctx context.Context, serviceURL string, op *operation.Operation) (*operation.Operation, error)
	PostAccelerator(ctx context.Context, serviceURL string, op *operation.Operation, signer keypair.KeyPair) (*operation.Operation, error)
}

// Client drives the operation/proof pipeline against one ledger.
type Client struct {
	transport   Transport
	builder     *diddoc.Builder
	registry    keypair.Registry
	accelerator string
	mode        did.Mode
	logger      *zap.Logger
}

// Option configures the client.
type Option func(*Client)

// WithTransport sets the ledger transport.
func WithTransport(transport Transport) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithKeyRegistry sets the key pair registry used for local reconstruction.
func WithKeyRegistry(registry keypair.Registry) Option {
	return func(c *Client) {
		c.registry = registry
	}
}

// WithAccelerator sets a default accelerator hostname; Send then takes the
// accelerator path unless overridden per call.
func WithAccelerator(hostname string) Option {
	return func(c *Client) {
		c.accelerator = hostname
	}
}

// WithMode sets the ledger mode.
func WithMode(mode did.Mode) Option {
	return func(c *Client) {
		c.mode = mode
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New returns a pipeline client.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		registry: keypair.NewRegistry(),
		logger:   log.New("did-method-v1-client"),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport == nil {
		return nil, ErrMissingTransport
	}

	c.builder = diddoc.NewBuilder(diddoc.WithKeyRegistry(c.registry), diddoc.WithLogger(c.logger))

	return c, nil
}

// SendParams holds the inputs for Send.
type SendParams struct {

	// Doc is the document being registered or updated. Always required: it
	// holds the capability invocation key that signs the operation.
	Doc *diddoc.Doc

	// Patch switches the operation to an update carrying this patch instead
	// of the full document.
	Patch *tracker.PatchSet

	// Accelerator overrides the client's accelerator hostname for this call.
	Accelerator string

	// AuthDoc supplies the authentication key for the accelerator path.
	AuthDoc *diddoc.Doc
}

// Send wraps the document or patch into a ledger operation, acquires an
// eligibility proof, attaches the capability invocation proof and submits.
// If any stage fails, no later stage runs: the pipeline has no intermediate
// externally visible state.
func (c *Client) Send(ctx context.Context, params SendParams) (*ledger.Response, error) {
	if params.Doc == nil {
		return nil, ErrMissingDocument
	}

	if result := did.ValidateDID(did.ValidateDIDParams{
		Doc:      params.Doc.Content(),
		Mode:     c.mode,
		Registry: c.registry,
	}); !result.Valid {
		return nil, fmt.Errorf("document identifier is not valid: %w", result.Error)
	}

	op, err := wrap(params)
	if err != nil {
		return nil, err
	}

	op, err = c.acquireEligibilityProof(ctx, op, params)
	if err != nil {
		return nil, err
	}

	key, err := params.Doc.InvocationKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingInvocationKey, err)
	}

	err = operation.AttachInvocationProof(op, operation.InvocationParams{
		Capability:       params.Doc.ID(),
		CapabilityAction: string(op.Type),
		InvocationTarget: op.Target(),
		Key:              key,
	})
	if err != nil {
		return nil, fmt.Errorf("attach invocation proof: %w", err)
	}

	c.logger.Debug("submitting operation", log.WithDID(params.Doc.ID()),
		log.WithOperationType(string(op.Type)))

	return c.transport.SendOperation(ctx, op)
}

func wrap(params SendParams) (*operation.Operation, error) {
	if params.Patch != nil {
		return operation.WrapUpdate(params.Patch)
	}

	return operation.WrapCreate(params.Doc.Content())
}

// acquireEligibilityProof obtains the ledger admission proof over one of two
// mutually exclusive paths: the accelerator (when a hostname is given) or the
// default ticket service advertised by ledger status.
func (c *Client) acquireEligibilityProof(ctx context.Context, op *operation.Operation, params SendParams) (*operation.Operation, error) {
	accelerator := params.Accelerator
	if accelerator == "" {
		accelerator = c.accelerator
	}

	if accelerator != "" {
		// The auth document check runs before any network call.
		if params.AuthDoc == nil {
			return nil, ErrMissingAuthDocument
		}

		authKey, err := params.AuthDoc.AuthenticationKey()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingAuthDocument, err)
		}

		return c.transport.PostAccelerator(ctx, "https://"+accelerator+"/accelerator/proofs", op, authKey)
	}

	status, err := c.transport.GetStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("get ledger status: %w", err)
	}

	endpoint, ok := status.Services[ledger.TicketServiceName]
	if !ok || endpoint.ID == "" {
		return nil, ErrMissingTicketService
	}

	return c.transport.RequestTicket(ctx, endpoint.ID, op)
}

// Resolution is the outcome of Get. Method is set instead of Doc when the
// requested identifier carries a method-id fragment.
type Resolution struct {
	Doc    *diddoc.Doc
	Method document.VerificationMethod
}

// Get resolves an identifier. A not-found outcome for a cryptonym falls back
// to deterministic local reconstruction from the embedded fingerprint; any
// other not-found is surfaced unchanged.
func (c *Client) Get(ctx context.Context, id string) (*Resolution, error) {
	parsed, err := did.Parse(id)
	if err != nil {
		return nil, err
	}

	doc, err := c.fetch(ctx, parsed)
	if err != nil {
		return nil, err
	}

	if parsed.Fragment != "" {
		record, found := doc.FindKey(parsed.String())
		if !found || record.Method == nil {
			return nil, &ledger.NotFoundError{ID: parsed.String()}
		}

		return &Resolution{Method: record.Method}, nil
	}

	return &Resolution{Doc: doc}, nil
}

func (c *Client) fetch(ctx context.Context, parsed *did.ID) (*diddoc.Doc, error) {
	rec, err := c.transport.GetRecord(ctx, parsed.Base())
	if err == nil {
		return c.builder.FromDocument(rec.Record, rec.Sequence()), nil
	}

	if !ledger.IsNotFound(err) || parsed.Type != did.TypeNym {
		return nil, err
	}

	doc, rerr := c.reconstruct(parsed)
	if rerr != nil {
		c.logger.Debug("local reconstruction failed", log.WithDID(parsed.Base()), zap.Error(rerr))

		// Reconstruction failures surface the original not-found outcome.
		return nil, err
	}

	return doc, nil
}

// reconstruct derives the full document from the fingerprint embedded in a
// cryptonym identifier, with the invocation key reused across all purposes.
// No network round trip is involved.
func (c *Client) reconstruct(parsed *did.ID) (*diddoc.Doc, error) {
	key, err := c.registry.FromFingerprint(parsed.SpecificID)
	if err != nil {
		return nil, fmt.Errorf("reconstruct key from fingerprint: %w", err)
	}

	keys := make(map[string]keypair.KeyPair, len(document.ProofPurposes))
	for _, purpose := range document.ProofPurposes {
		keys[purpose] = key
	}

	doc, err := c.builder.Generate(diddoc.GenerateParams{
		DIDType: did.TypeNym,
		KeyType: key.Type(),
		Mode:    parsed.Mode,
		Keys:    keys,
	})
	if err != nil {
		return nil, err
	}

	if doc.ID() != parsed.Base() {
		return nil, fmt.Errorf("reconstructed identifier %q does not match %q", doc.ID(), parsed.Base())
	}

	c.logger.Debug("reconstructed document locally", log.WithDID(doc.ID()))

	return doc, nil
}
