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
	"sort"
	"sync"
	"time"

	"github.com/bellhopqa/bellhop/pkg/booking"
)

// Store holds bookings in memory. IDs are allocated sequentially starting at
// 1, matching the API it imitates.
type Store struct {
	mu       sync.RWMutex
	bookings map[int]booking.Booking
	nextID   int
}

func NewStore() *Store {
	return &Store{
		bookings: map[int]booking.Booking{},
		nextID:   1,
	}
}

// Seed loads the sample bookings a fresh instance of the real service ships
// with, so list and read scenarios have something to find.
func (s *Store) Seed() {
	now := time.Now()

	price := func(v int) booking.Booking {
		return booking.Booking{
			TotalPrice:  v,
			DepositPaid: true,
			BookingDates: booking.BookingDates{
				Checkin:  booking.Date(now.AddDate(0, 0, 1)),
				Checkout: booking.Date(now.AddDate(0, 0, 5)),
			},
		}
	}

	sally := price(111)
	sally.Firstname = "Sally"
	sally.Lastname = "Brown"

	jim := price(222)
	jim.Firstname = "Jim"
	jim.Lastname = "Brown"
	jim.DepositPaid = false

	s.Create(sally)
	s.Create(jim)
}

func (s *Store) Create(b booking.Booking) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	s.bookings[id] = b

	return id
}

func (s *Store) Get(id int) (booking.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]

	return b, ok
}

func (s *Store) Update(id int, b booking.Booking) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return false
	}

	s.bookings[id] = b

	return true
}

func (s *Store) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[id]; !ok {
		return false
	}

	delete(s.bookings, id)

	return true
}

// List returns the IDs of bookings the filter accepts, ascending.
func (s *Store) List(filter func(booking.Booking) bool) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.bookings))

	for id, b := range s.bookings {
		if filter == nil || filter(b) {
			ids = append(ids, id)
		}
	}

	sort.Ints(ids)

	return ids
}
