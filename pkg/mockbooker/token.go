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

package mockbooker

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenIssuer mints and verifies the session tokens /auth hands out. The real
// service issues opaque tokens; the twin issues HS256 JWTs instead so clients
// that mine the exp claim get a real expiry to work with.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func newTokenIssuer(ttl time.Duration) (*tokenIssuer, error) {
	secret := make([]byte, 32)

	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("unable to generate token secret: %w", err)
	}

	return &tokenIssuer{
		secret: secret,
		ttl:    ttl,
	}, nil
}

func (i *tokenIssuer) Issue(username string) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("unable to sign token: %w", err)
	}

	return token, nil
}

func (i *tokenIssuer) Verify(token string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}

		return i.secret, nil
	})

	return err == nil && parsed.Valid
}
