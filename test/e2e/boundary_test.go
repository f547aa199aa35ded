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

//nolint:testpackage,revive // test package in e2e is standard for these tests, dot imports standard for Ginkgo
package e2e

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bellhopqa/bellhop/pkg/booking"
)

var _ = Describe("Boundary Value Validation", func() {
	Context("When submitting invalid booking data", func() {
		Describe("Given payloads with missing required fields", func() {
			It("should reject creation with the API's opaque 500", func() {
				payload := booking.NewPayload().WithoutField("firstname").Build()

				_, err := api.CreateBooking(ctx, payload)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("got 500"))
			})
		})

		Describe("Given payloads the API cannot parse", func() {
			It("should reject unparsable dates", func() {
				payload := booking.NewPayload().WithInvalidDates().Build()

				_, err := api.CreateBooking(ctx, payload)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("got 500"))
			})

			It("should reject mistyped fields", func() {
				payload := booking.NewPayload().WithField("totalprice", "one hundred").Build()

				_, err := api.CreateBooking(ctx, payload)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("got 500"))
			})
		})
	})

	Context("When submitting extreme but valid data", func() {
		Describe("Given boundary values", func() {
			It("should accept the maximum price", func() {
				created, err := api.CreateBooking(ctx, booking.NewPayload().WithMaxPrice().Build())
				Expect(err).NotTo(HaveOccurred())
				Expect(created.Booking.TotalPrice).To(Equal(math.MaxInt32))

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})
			})

			It("should accept a zero price", func() {
				created, err := api.CreateBooking(ctx, booking.NewPayload().WithZeroPrice().Build())
				Expect(err).NotTo(HaveOccurred())
				Expect(created.Booking.TotalPrice).To(BeZero())

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})
			})

			It("should round-trip names with special characters", func() {
				created, err := api.CreateBooking(ctx, booking.NewPayload().WithSpecialCharNames().Build())
				Expect(err).NotTo(HaveOccurred())

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})

				fetched, err := api.GetBooking(ctx, created.BookingID)
				Expect(err).NotTo(HaveOccurred())
				Expect(fetched.Firstname).To(Equal("José-François"))
				Expect(fetched.Lastname).To(Equal("O'Brien-Müller"))
			})

			It("should store very long names", func() {
				created, err := api.CreateBooking(ctx, booking.NewPayload().WithLongNames(1000).Build())
				Expect(err).NotTo(HaveOccurred())

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})

				fetched, err := api.GetBooking(ctx, created.BookingID)
				Expect(err).NotTo(HaveOccurred())
				Expect(fetched.Firstname).To(HaveLen(1000))
			})
		})
	})
})
