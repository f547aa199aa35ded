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

package client

import (
	"fmt"
)

// Endpoints contains all API endpoint patterns.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// Auth endpoints.
func (e *Endpoints) CreateToken() string {
	return "/auth"
}

// Booking endpoints.
func (e *Endpoints) ListBookings() string {
	return "/booking"
}

func (e *Endpoints) CreateBooking() string {
	return "/booking"
}

func (e *Endpoints) GetBooking(bookingID int) string {
	return fmt.Sprintf("/booking/%d", bookingID)
}

func (e *Endpoints) UpdateBooking(bookingID int) string {
	return fmt.Sprintf("/booking/%d", bookingID)
}

func (e *Endpoints) PartialUpdateBooking(bookingID int) string {
	return fmt.Sprintf("/booking/%d", bookingID)
}

func (e *Endpoints) DeleteBooking(bookingID int) string {
	return fmt.Sprintf("/booking/%d", bookingID)
}

// Health endpoints.
func (e *Endpoints) Ping() string {
	return "/ping"
}
