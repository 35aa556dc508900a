/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trustbloc/did-method-v1/pkg/did"
	"github.com/trustbloc/did-method-v1/pkg/diddoc"
	"github.com/trustbloc/did-method-v1/pkg/keypair"
	"github.com/trustbloc/did-method-v1/pkg/ledger"
	"github.com/trustbloc/did-method-v1/pkg/mocks"
	"github.com/trustbloc/did-method-v1/pkg/operation"
	"github.com/trustbloc/did-method-v1/pkg/tracker"
)

func newClient(t *testing.T, transport *mocks.Transport, opts ...Option) *Client {
	t.Helper()

	c, err := New(append([]Option{WithTransport(transport)}, opts...)...)
	require.NoError(t, err)

	return c
}

func generateDoc(t *testing.T, mode did.Mode) *diddoc.Doc {
	t.Helper()

	doc, err := diddoc.NewBuilder().Generate(diddoc.GenerateParams{Mode: mode})
	require.NoError(t, err)

	return doc
}

func ticketStatus() *ledger.Status {
	return &ledger.Status{
		Services: map[string]ledger.Endpoint{
			ledger.TicketServiceName: {ID: "https://tickets.example.com/"},
		},
	}
}

func TestNew(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		c, err := New(WithTransport(&mocks.Transport{}))
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("error - transport is required", func(t *testing.T) {
		_, err := New()
		require.ErrorIs(t, err, ErrMissingTransport)
	})
}

func TestSendCreate(t *testing.T) {
	t.Run("success - default ticket service path", func(t *testing.T) {
		transport := &mocks.Transport{
			GetStatusStub: func(ctx context.Context) (*ledger.Status, error) {
				return ticketStatus(), nil
			},
			RequestTicketStub: func(ctx context.Context, serviceURL string, op *operation.Operation) (*operation.Operation, error) {
				require.Equal(t, "https://tickets.example.com/", serviceURL)

				op.Proof = append(op.Proof, &operation.Proof{Type: "Ed25519Signature2020"})

				return op, nil
			},
			SendOperationStub: func(ctx context.Context, op *operation.Operation) (*ledger.Response, error) {
				require.Equal(t, operation.TypeCreate, op.Type)

				// Eligibility proof first, capability invocation proof last.
				require.Len(t, op.Proof, 2)

				proof, ok := op.Proof[1].(*operation.Proof)
				require.True(t, ok)
				require.Equal(t, operation.CapabilityInvocationPurpose, proof.ProofPurpose)
				require.Equal(t, "create", proof.CapabilityAction)
				require.Equal(t, op.Record.ID(), proof.Capability)
				require.Equal(t, op.Record.ID(), proof.InvocationTarget)

				return &ledger.Response{Status: 202}, nil
			},
		}

		c := newClient(t, transport)
		doc := generateDoc(t, did.ModeTest)

		resp, err := c.Send(context.Background(), SendParams{Doc: doc})
		require.NoError(t, err)
		require.Equal(t, 202, resp.Status)
		require.Equal(t, 1, transport.CallCount("GetStatus"))
		require.Equal(t, 1, transport.CallCount("RequestTicket"))
		require.Equal(t, 1, transport.CallCount("SendOperation"))
		require.Equal(t, 0, transport.CallCount("PostAccelerator"))
	})

	t.Run("success - accelerator path", func(t *testing.T) {
		doc := generateDoc(t, did.ModeTest)

		transport := &mocks.Transport{
			PostAcceleratorStub: func(ctx context.Context, serviceURL string, op *operation.Operation, signer keypair.KeyPair) (*operation.Operation, error) {
				require.Equal(t, "https://accel.example.com/accelerator/proofs", serviceURL)
				require.True(t, signer.HasPrivateKey())

				op.Proof = append(op.Proof, &operation.Proof{Type: "Ed25519Signature2020"})

				return op, nil
			},
		}

		c := newClient(t, transport, WithAccelerator("accel.example.com"))

		resp, err := c.Send(context.Background(), SendParams{Doc: doc, AuthDoc: doc})
		require.NoError(t, err)
		require.NotNil(t, resp)
		require.Equal(t, 1, transport.CallCount("PostAccelerator"))
		require.Equal(t, 0, transport.CallCount("GetStatus"))
		require.Equal(t, 0, transport.CallCount("RequestTicket"))
	})

	t.Run("success - per-call accelerator override", func(t *testing.T) {
		doc := generateDoc(t, did.ModeTest)

		transport := &mocks.Transport{
			PostAcceleratorStub: func(ctx context.Context, serviceURL string, op *operation.Operation, signer keypair.KeyPair) (*operation.Operation, error) {
				require.Equal(t, "https://other.example.com/accelerator/proofs", serviceURL)

				return op, nil
			},
		}

		c := newClient(t, transport)

		_, err := c.Send(context.Background(), SendParams{
			Doc:         doc,
			Accelerator: "other.example.com",
			AuthDoc:     doc,
		})
		require.NoError(t, err)
	})

	t.Run("error - accelerator without auth document fails before any network call", func(t *testing.T) {
		transport := &mocks.Transport{}

		c := newClient(t, transport, WithAccelerator("accel.example.com"))
		doc := generateDoc(t, did.ModeTest)

		_, err := c.Send(context.Background(), SendParams{Doc: doc})
		require.ErrorIs(t, err, ErrMissingAuthDocument)
		require.Equal(t, 0, transport.CallCount("PostAccelerator"))
		require.Equal(t, 0, transport.CallCount("GetStatus"))
		require.Equal(t, 0, transport.CallCount("SendOperation"))
	})

	t.Run("error - auth document without private authentication key", func(t *testing.T) {
		transport := &mocks.Transport{}

		c := newClient(t, transport, WithAccelerator("accel.example.com"))
		doc := generateDoc(t, did.ModeTest)

		// A resolved document carries no private key material.
		authDoc := diddoc.NewBuilder().FromDocument(doc.Content(), 0)

		_, err := c.Send(context.Background(), SendParams{Doc: doc, AuthDoc: authDoc})
		require.ErrorIs(t, err, ErrMissingAuthDocument)
		require.Equal(t, 0, transport.CallCount("PostAccelerator"))
	})

	t.Run("error - missing document", func(t *testing.T) {
		c := newClient(t, &mocks.Transport{})

		_, err := c.Send(context.Background(), SendParams{})
		require.ErrorIs(t, err, ErrMissingDocument)
	})

	t.Run("error - document mode does not match client mode", func(t *testing.T) {
		c := newClient(t, &mocks.Transport{}, WithMode(did.ModeLive))
		doc := generateDoc(t, did.ModeTest)

		_, err := c.Send(context.Background(), SendParams{Doc: doc})
		require.Error(t, err)
		require.ErrorIs(t, err, did.ErrModeMismatch)
	})

	t.Run("error - status does not advertise a ticket service", func(t *testing.T) {
		transport := &mocks.Transport{
			GetStatusStub: func(ctx context.Context) (*ledger.Status, error) {
				return &ledger.Status{}, nil
			},
		}

		c := newClient(t, transport)
		doc := generateDoc(t, did.ModeTest)

		_, err := c.Send(context.Background(), SendParams{Doc: doc})
		require.ErrorIs(t, err, ErrMissingTicketService)
		require.Equal(t, 0, transport.CallCount("SendOperation"))
	})

	t.Run("error - status fetch failure halts the pipeline", func(t *testing.T) {
		transport := &mocks.Transport{
			GetStatusStub: func(ctx context.Context) (*ledger.Status, error) {
				return nil, errors.New("connection refused")
			},
		}

		c := newClient(t, transport)
		doc := generateDoc(t, did.ModeTest)

		_, err := c.Send(context.Background(), SendParams{Doc: doc})
		require.Error(t, err)
		require.Equal(t, 0, transport.CallCount("SendOperation"))
	})

	t.Run("error - document without private invocation key", func(t *testing.T) {
		transport := &mocks.Transport{
			GetStatusStub: func(ctx context.Context) (*ledger.Status, error) {
				return ticketStatus(), nil
			},
		}

		c := newClient(t, transport)
		doc := generateDoc(t, did.ModeTest)

		// Resolved copy: public content only.
		resolved := diddoc.NewBuilder().FromDocument(doc.Content(), 0)

		_, err := c.Send(context.Background(), SendParams{Doc: resolved})
		require.ErrorIs(t, err, ErrMissingInvocationKey)
		require.Equal(t, 0, transport.CallCount("SendOperation"))
	})
}

func TestSendUpdate(t *testing.T) {
	t.Run("success - patch rides an update operation", func(t *testing.T) {
		doc := generateDoc(t, did.ModeTest)

		require.NoError(t, doc.Observe())
		require.NoError(t, doc.AddService(diddoc.AddServiceParams{
			Fragment: "agent",
			Type:     "AgentService",
			Endpoint: "https://agent.example.com/",
		}))

		ps, err := doc.Commit()
		require.NoError(t, err)

		transport := &mocks.Transport{
			GetStatusStub: func(ctx context.Context) (*ledger.Status, error) {
				return ticketStatus(), nil
			},
			SendOperationStub: func(ctx context.Context, op *operation.Operation) (*ledger.Response, error) {
				require.Equal(t, operation.TypeUpdate, op.Type)
				require.Nil(t, op.Record)
				require.Equal(t, doc.ID(), op.RecordPatch.Target)
				require.Equal(t, uint64(0), op.RecordPatch.Sequence)

				return &ledger.Response{Status: 200}, nil
			},
		}

		c := newClient(t, transport)

		_, err = c.Send(context.Background(), SendParams{Doc: doc, Patch: ps})
		require.NoError(t, err)
		require.Equal(t, 1, transport.CallCount("SendOperation"))
	})

	t.Run("error - patch without target", func(t *testing.T) {
		c := newClient(t, &mocks.Transport{})
		doc := generateDoc(t, did.ModeTest)

		_, err := c.Send(context.Background(), SendParams{Doc: doc, Patch: &tracker.PatchSet{}})
		require.Error(t, err)
	})
}

func TestGet(t *testing.T) {
	t.Run("success - record found on the ledger", func(t *testing.T) {
		doc := generateDoc(t, did.ModeTest)

		transport := &mocks.Transport{
			GetRecordStub: func(ctx context.Context, id string) (*ledger.Record, error) {
				require.Equal(t, doc.ID(), id)

				return &ledger.Record{
					Record: doc.Content(),
					Meta:   map[string]interface{}{"sequence": float64(5)},
				}, nil
			},
		}

		c := newClient(t, transport)

		res, err := c.Get(context.Background(), doc.ID())
		require.NoError(t, err)
		require.NotNil(t, res.Doc)
		require.Equal(t, doc.ID(), res.Doc.ID())
		require.Equal(t, uint64(5), res.Doc.Meta().Sequence)
	})

	t.Run("success - unknown cryptonym reconstructs locally", func(t *testing.T) {
		doc := generateDoc(t, did.ModeTest)

		key, err := doc.InvocationKey()
		require.NoError(t, err)

		fingerprint, err := key.Fingerprint()
		require.NoError(t, err)

		id := "did:v1:test:nym:" + fingerprint

		transport := &mocks.Transport{
			GetRecordStub: func(ctx context.Context, requested string) (*ledger.Record, error) {
				return nil, &ledger.NotFoundError{ID: requested}
			},
		}

		c := newClient(t, transport)

		res, err := c.Get(context.Background(), id)
		require.NoError(t, err)
		require.NotNil(t, res.Doc)
		require.Equal(t, id, res.Doc.ID())

		// The single ledger probe is the only network activity.
		require.Equal(t, 1, transport.CallCount("GetRecord"))
		require.Equal(t, 0, transport.CallCount("GetStatus"))

		// The reconstructed document reuses the key across every purpose.
		record, found := res.Doc.FindKey(id + "#" + fingerprint)
		require.True(t, found)
		require.Len(t, record.Purposes, 5)
	})

	t.Run("success - fragment resolves a single method", func(t *testing.T) {
		doc := generateDoc(t, did.ModeTest)

		methodID := doc.Content().Authentications()[0].ID()

		transport := &mocks.Transport{
			GetRecordStub: func(ctx context.Context, id string) (*ledger.Record, error) {
				require.Equal(t, doc.ID(), id)

				return &ledger.Record{Record: doc.Content()}, nil
			},
		}

		c := newClient(t, transport)

		res, err := c.Get(context.Background(), methodID)
		require.NoError(t, err)
		require.Nil(t, res.Doc)
		require.NotNil(t, res.Method)
		require.Equal(t, methodID, res.Method.ID())
	})

	t.Run("error - unknown fragment", func(t *testing.T) {
		doc := generateDoc(t, did.ModeTest)

		transport := &mocks.Transport{
			GetRecordStub: func(ctx context.Context, id string) (*ledger.Record, error) {
				return &ledger.Record{Record: doc.Content()}, nil
			},
		}

		c := newClient(t, transport)

		_, err := c.Get(context.Background(), doc.ID()+"#zMissing")
		require.True(t, ledger.IsNotFound(err))
	})

	t.Run("error - unknown uuid surfaces not-found", func(t *testing.T) {
		transport := &mocks.Transport{
			GetRecordStub: func(ctx context.Context, id string) (*ledger.Record, error) {
				return nil, &ledger.NotFoundError{ID: id}
			},
		}

		c := newClient(t, transport)

		_, err := c.Get(context.Background(), "did:v1:test:uuid:0f2b4a5c6d7e8f9a0b1c2d3e4f5a6b7c")
		require.True(t, ledger.IsNotFound(err))
	})

	t.Run("error - reconstruction failure surfaces the original not-found", func(t *testing.T) {
		transport := &mocks.Transport{
			GetRecordStub: func(ctx context.Context, id string) (*ledger.Record, error) {
				return nil, &ledger.NotFoundError{ID: id}
			},
		}

		c := newClient(t, transport)

		// The specific id is not a decodable fingerprint.
		_, err := c.Get(context.Background(), "did:v1:test:nym:zzzz")
		require.True(t, ledger.IsNotFound(err))
	})

	t.Run("error - network failure is not masked", func(t *testing.T) {
		transport := &mocks.Transport{
			GetRecordStub: func(ctx context.Context, id string) (*ledger.Record, error) {
				return nil, &ledger.NetworkError{Host: "ledger.example.com", Status: 500}
			},
		}

		c := newClient(t, transport)

		_, err := c.Get(context.Background(), "did:v1:test:nym:zInvalid")

		var netErr *ledger.NetworkError
		require.ErrorAs(t, err, &netErr)
	})

	t.Run("error - malformed identifier", func(t *testing.T) {
		c := newClient(t, &mocks.Transport{})

		_, err := c.Get(context.Background(), "did:web:example.com")
		require.ErrorIs(t, err, did.ErrMalformedID)
	})
}
