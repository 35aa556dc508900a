/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package diddoc

import (
	"fmt"

	"github.com/trustbloc/did-method-v1/pkg/document"
	"github.com/trustbloc/did-method-v1/pkg/internal/log"
)

// ServiceParams addresses a service endpoint by id or by fragment relative to
// the document identifier.
type ServiceParams struct {
	Fragment string
	ID       string
}

func (d *Doc) serviceID(params ServiceParams) (string, error) {
	if params.ID != "" {
		return params.ID, nil
	}

	if params.Fragment == "" {
		return "", fmt.Errorf("%w: fragment or id", ErrMissingField)
	}

	return d.ID() + "#" + params.Fragment, nil
}

// AddServiceParams holds the inputs for AddService.
type AddServiceParams struct {

	// Fragment derives the service id relative to the document identifier.
	Fragment string

	// ID is the service id, supplied verbatim. Takes precedence over Fragment.
	ID string

	// Type is the service type. Required.
	Type string

	// Endpoint is the service endpoint. Required.
	Endpoint string

	// Properties carries any additional service properties.
	Properties map[string]interface{}
}

// AddService appends a service endpoint. The resulting id must be unique
// within the document.
func (d *Doc) AddService(params AddServiceParams) error {
	if params.Type == "" {
		return fmt.Errorf("%w: type", ErrMissingField)
	}

	if params.Endpoint == "" {
		return fmt.Errorf("%w: endpoint", ErrMissingField)
	}

	id, err := d.serviceID(ServiceParams{Fragment: params.Fragment, ID: params.ID})
	if err != nil {
		return err
	}

	if _, found := d.findServiceByID(id); found {
		return fmt.Errorf("%w: %s", ErrDuplicateService, id)
	}

	entry := map[string]interface{}{
		document.IDProperty:              id,
		document.TypeProperty:            params.Type,
		document.ServiceEndpointProperty: params.Endpoint,
	}

	for k, v := range params.Properties {
		if _, reserved := entry[k]; !reserved {
			entry[k] = v
		}
	}

	services := append(d.content.Services(), document.NewService(entry))
	d.content.SetServices(services)

	d.logger.Debug("added service", log.WithDID(d.ID()), log.WithServiceID(id))

	return nil
}

// RemoveService removes the addressed service endpoint.
func (d *Doc) RemoveService(params ServiceParams) error {
	id, err := d.serviceID(params)
	if err != nil {
		return err
	}

	services := d.content.Services()

	kept := make([]document.Service, 0, len(services))

	for _, s := range services {
		if s.ID() != id {
			kept = append(kept, s)
		}
	}

	if len(kept) == len(services) {
		return fmt.Errorf("%w: %s", ErrServiceNotFound, id)
	}

	d.content.SetServices(kept)

	d.logger.Debug("removed service", log.WithDID(d.ID()), log.WithServiceID(id))

	return nil
}

// FindService returns the addressed service endpoint.
func (d *Doc) FindService(params ServiceParams) (document.Service, bool) {
	id, err := d.serviceID(params)
	if err != nil {
		return nil, false
	}

	return d.findServiceByID(id)
}

// HasService reports whether the addressed service endpoint exists.
func (d *Doc) HasService(params ServiceParams) bool {
	_, found := d.FindService(params)

	return found
}

func (d *Doc) findServiceByID(id string) (document.Service, bool) {
	for _, s := range d.content.Services() {
		if s.ID() == id {
			return s, true
		}
	}

	return nil, false
}
