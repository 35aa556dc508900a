/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ledger

import (
	"errors"
	"fmt"
)

// NotFoundError is returned when the ledger has no record for the identifier.
type NotFoundError struct {
	ID string
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record not found: %s", e.ID)
}

// NetworkError is a transport-layer failure. Details carry enough context to
// diagnose without re-querying.
type NetworkError struct {
	Host   string
	Status int
	Body   []byte
}

// Error returns the error string.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("ledger request to %s failed with status %d: %s", e.Host, e.Status, e.Body)
}

// IsNotFound reports whether the error is a ledger not-found outcome.
func IsNotFound(err error) bool {
	var nf *NotFoundError

	return errors.As(err, &nf)
}
