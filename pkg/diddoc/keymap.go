/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddoc

import (
	"fmt"

	"github.com/trustbloc/did-method-v1/pkg/internal/log"
)

// ExportKeys returns the serializable form of the key map: method id to key
// material artifacts (including private material). The exported form never
// includes a key's document-level public projection.
func (d *Doc) ExportKeys() (map[string]map[string]interface{}, error) {
	exported := make(map[string]map[string]interface{}, len(d.keys))

	for id, key := range d.keys {
		node, err := key.Export(true)
		if err != nil {
			return nil, fmt.Errorf("export key %s: %w", id, err)
		}

		exported[id] = node
	}

	return exported, nil
}

// ImportKeys rebuilds the key map from a previously exported form. Existing
// entries with the same id are replaced.
func (d *Doc) ImportKeys(data map[string]map[string]interface{}) error {
	for id, node := range data {
		key, err := d.registry.From(node)
		if err != nil {
			return fmt.Errorf("import key %s: %w", id, err)
		}

		d.keys[id] = key
	}

	d.logger.Debug("imported keys", log.WithDID(d.ID()), log.WithTotal(len(data)))

	return nil
}
