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
	"time"

	"github.com/oapi-codegen/runtime/types"
)

// Booking is the wire representation of a hotel booking.
type Booking struct {
	Firstname       string       `json:"firstname"`
	Lastname        string       `json:"lastname"`
	TotalPrice      int          `json:"totalprice"`
	DepositPaid     bool         `json:"depositpaid"`
	BookingDates    BookingDates `json:"bookingdates"`
	AdditionalNeeds *string      `json:"additionalneeds,omitempty"`
}

// BookingDates holds the check-in and check-out dates. The API speaks
// date-only values, never timestamps.
type BookingDates struct {
	Checkin  types.Date `json:"checkin"`
	Checkout types.Date `json:"checkout"`
}

// Created is the create response envelope: the server wraps the echoed
// booking and prefixes the generated ID.
type Created struct {
	BookingID int     `json:"bookingid"`
	Booking   Booking `json:"booking"`
}

// Date truncates t to a wire date.
func Date(t time.Time) types.Date {
	return types.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}
