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

package booking

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// PayloadBuilder builds booking payloads for testing. The payload is kept as
// a plain map so malformed variants (missing fields, wrong types) can be
// expressed for negative tests.
type PayloadBuilder struct {
	payload map[string]interface{}
}

// NewPayload creates a new booking payload builder seeded with generated
// valid data.
func NewPayload() *PayloadBuilder {
	b := Generate()

	payload := map[string]interface{}{
		"firstname":   b.Firstname,
		"lastname":    b.Lastname,
		"totalprice":  b.TotalPrice,
		"depositpaid": b.DepositPaid,
		"bookingdates": map[string]interface{}{
			"checkin":  b.BookingDates.Checkin.Format("2006-01-02"),
			"checkout": b.BookingDates.Checkout.Format("2006-01-02"),
		},
	}

	if b.AdditionalNeeds != nil {
		payload["additionalneeds"] = *b.AdditionalNeeds
	}

	return &PayloadBuilder{payload: payload}
}

// WithFirstname sets the guest first name.
func (b *PayloadBuilder) WithFirstname(name string) *PayloadBuilder {
	b.payload["firstname"] = name
	return b
}

// WithLastname sets the guest last name.
func (b *PayloadBuilder) WithLastname(name string) *PayloadBuilder {
	b.payload["lastname"] = name
	return b
}

// WithTotalPrice sets the booking price.
func (b *PayloadBuilder) WithTotalPrice(price int) *PayloadBuilder {
	b.payload["totalprice"] = price
	return b
}

// WithDepositPaid sets the deposit flag.
func (b *PayloadBuilder) WithDepositPaid(paid bool) *PayloadBuilder {
	b.payload["depositpaid"] = paid
	return b
}

// WithDates sets check-in and check-out as wire dates (2006-01-02).
func (b *PayloadBuilder) WithDates(checkin, checkout string) *PayloadBuilder {
	b.payload["bookingdates"] = map[string]interface{}{
		"checkin":  checkin,
		"checkout": checkout,
	}

	return b
}

// WithAdditionalNeeds sets the additional needs field.
func (b *PayloadBuilder) WithAdditionalNeeds(needs string) *PayloadBuilder {
	b.payload["additionalneeds"] = needs
	return b
}

// WithField sets an arbitrary top level field, typed however the test needs.
func (b *PayloadBuilder) WithField(name string, value interface{}) *PayloadBuilder {
	b.payload[name] = value
	return b
}

// WithoutField removes a top level field for missing-field tests.
func (b *PayloadBuilder) WithoutField(name string) *PayloadBuilder {
	delete(b.payload, name)
	return b
}

// WithInvalidDates replaces the booking dates with values the API cannot parse.
func (b *PayloadBuilder) WithInvalidDates() *PayloadBuilder {
	return b.WithDates("not-a-date", "2099-99-99")
}

// WithLongNames sets both names to n repeated characters, probing field
// length limits.
func (b *PayloadBuilder) WithLongNames(n int) *PayloadBuilder {
	long := strings.Repeat("a", n)

	return b.WithFirstname(long).WithLastname(long)
}

// WithSpecialCharNames sets names containing accents, quotes and non-latin
// characters.
func (b *PayloadBuilder) WithSpecialCharNames() *PayloadBuilder {
	return b.WithFirstname("José-François").WithLastname("O'Brien-Müller")
}

// WithMaxPrice sets the price to the largest value the API stores.
func (b *PayloadBuilder) WithMaxPrice() *PayloadBuilder {
	return b.WithTotalPrice(math.MaxInt32)
}

// WithZeroPrice sets the price to the smallest accepted value.
func (b *PayloadBuilder) WithZeroPrice() *PayloadBuilder {
	return b.WithTotalPrice(0)
}

// Build returns the completed booking payload.
func (b *PayloadBuilder) Build() map[string]interface{} {
	return b.payload
}

// BuildTyped returns the payload as a typed Booking. Fails when a mutation
// has made the payload unrepresentable.
func (b *PayloadBuilder) BuildTyped() (Booking, error) {
	data, err := json.Marshal(b.payload)
	if err != nil {
		return Booking{}, fmt.Errorf("marshaling booking payload: %w", err)
	}

	var booking Booking
	if err := json.Unmarshal(data, &booking); err != nil {
		return Booking{}, fmt.Errorf("unmarshaling booking payload: %w", err)
	}

	return booking, nil
}
