/*
Copyright 2025-2026 the Bellhop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package contract validates live responses against the embedded booker
// OpenAPI document. Validation is opt-in: healing exists to absorb drift, and
// turning every drifted response into a hard failure would defeat it, so the
// validator only runs when explicitly enabled.
package contract

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/rs/zerolog"
)

//go:embed booker.yaml
var specData []byte

// Validator routes requests to their contract operation and checks the
// response against its declared schema.
type Validator struct {
	router routers.Router
	log    zerolog.Logger
}

// NewValidator loads and validates the embedded document, failing fast if it
// has been edited into an invalid state.
func NewValidator(log zerolog.Logger) (*Validator, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(specData)
	if err != nil {
		return nil, fmt.Errorf("unable to load booker contract: %w", err)
	}

	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid booker contract: %w", err)
	}

	router, err := legacyrouter.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("unable to build contract router: %w", err)
	}

	return &Validator{
		router: router,
		log:    log.With().Str("component", "contract").Logger(),
	}, nil
}

// ValidateResponse checks a response against the operation the request routes
// to. Requests outside the document and statuses it does not declare are not
// findings: negative scenarios probe paths on purpose, and quirk statuses
// like the Accept teapot must pass through untouched.
func (v *Validator) ValidateResponse(req *http.Request, status int, header http.Header, body []byte) error {
	route, pathParams, err := v.router.FindRoute(req)
	if err != nil {
		v.log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Msg("request outside contract, skipping validation")

		return nil
	}

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: pathParams,
			Route:      route,
		},
		Status: status,
		Header: header,
	}

	input.SetBodyBytes(body)

	if err := openapi3filter.ValidateResponse(req.Context(), input); err != nil {
		v.log.Debug().Str("method", req.Method).Str("path", req.URL.Path).Int("status", status).Err(err).Msg("contract violation")

		return err
	}

	return nil
}
