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

package auth

import (
	"context"

	"github.com/bellhopqa/bellhop/pkg/client"
)

// BookerAuthenticator acquires tokens from the booking API's auth endpoint.
type BookerAuthenticator struct {
	client   *client.Client
	username string
	password string
}

// NewBookerAuthenticator creates an authenticator with the given
// credentials.
func NewBookerAuthenticator(c *client.Client, username, password string) *BookerAuthenticator {
	return &BookerAuthenticator{
		client:   c,
		username: username,
		password: password,
	}
}

// Authenticate requests a fresh token.
func (a *BookerAuthenticator) Authenticate(ctx context.Context) (string, error) {
	return a.client.CreateToken(ctx, a.username, a.password)
}
