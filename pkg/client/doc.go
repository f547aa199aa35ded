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

// Package client provides the HTTP request client the framework drives the
// booking API with.
//
// # Separate Client Implementation
//
// This package intentionally maintains a hand-written HTTP client instead of
// a generated OpenAPI client. This design choice provides several benefits:
//
// 1. **API Contract Validation**: the self-healing layer needs to see raw
// statuses and bodies exactly as the server produced them, including shapes a
// generated client would reject outright. Schema conformance is checked
// separately and deliberately (see the contract package), not baked into
// decoding.
//
// 2. **Test-Specific Features**: the client carries features tailored for
// driving a flaky remote API:
//   - W3C trace context propagation for request correlation
//   - Detailed error logging with trace IDs for debugging
//   - Transparent token injection with refresh-and-retry on 401
//   - Bounded retry with exponential backoff on transport failures
//   - Direct access to HTTP status codes and response bodies
package client
