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
	"net/http"
	"net/url"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bellhopqa/bellhop/pkg/booking"
	"github.com/bellhopqa/bellhop/pkg/client"
)

var _ = Describe("Core Booking Management", func() {
	Context("When managing a booking across its full lifecycle", func() {
		Describe("Given a generated guest booking", func() {
			It("should create, read, update, patch and delete the booking", func() {
				guest := booking.Generate()

				created, err := api.CreateBooking(ctx, guest)
				Expect(err).NotTo(HaveOccurred())
				Expect(created.BookingID).NotTo(BeZero())
				Expect(created.Booking.Firstname).To(Equal(guest.Firstname))

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})

				fetched, err := api.GetBooking(ctx, created.BookingID)
				Expect(err).NotTo(HaveOccurred())
				Expect(fetched.Firstname).To(Equal(guest.Firstname))
				Expect(fetched.Lastname).To(Equal(guest.Lastname))
				Expect(fetched.TotalPrice).To(Equal(guest.TotalPrice))
				Expect(fetched.DepositPaid).To(Equal(guest.DepositPaid))
				Expect(fetched.BookingDates.Checkin.Format(time.DateOnly)).To(Equal(guest.BookingDates.Checkin.Format(time.DateOnly)))

				guest.TotalPrice += 50

				updated, err := api.UpdateBooking(ctx, created.BookingID, guest)
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.TotalPrice).To(Equal(guest.TotalPrice))

				patched, err := api.PartialUpdateBooking(ctx, created.BookingID, map[string]interface{}{
					"additionalneeds": "Late checkout",
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(patched.AdditionalNeeds).NotTo(BeNil())
				Expect(*patched.AdditionalNeeds).To(Equal("Late checkout"))
				Expect(patched.TotalPrice).To(Equal(guest.TotalPrice))

				Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())

				_, err = api.GetBooking(ctx, created.BookingID)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not found"))
			})
		})
	})

	Context("When listing bookings", func() {
		Describe("Given a booking with a unique lastname", func() {
			It("should find it by name filter", func() {
				guest := booking.Generate()
				guest.Lastname = booking.GenerateTestID()

				created, err := api.CreateBooking(ctx, guest)
				Expect(err).NotTo(HaveOccurred())

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})

				ids, err := api.ListBookingIDs(ctx, url.Values{"lastname": []string{guest.Lastname}})
				Expect(err).NotTo(HaveOccurred())
				Expect(ids).To(ConsistOf(created.BookingID))
			})

			It("should exclude it from a non-matching filter", func() {
				guest := booking.Generate()
				guest.Lastname = booking.GenerateTestID()

				created, err := api.CreateBooking(ctx, guest)
				Expect(err).NotTo(HaveOccurred())

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})

				ids, err := api.ListBookingIDs(ctx, url.Values{"firstname": []string{"nobody-by-this-name"}})
				Expect(err).NotTo(HaveOccurred())
				Expect(ids).NotTo(ContainElement(created.BookingID))
			})
		})
	})

	Context("When updating without a token", func() {
		Describe("Given an unauthenticated request", func() {
			It("should be rejected with the API's plain text Forbidden", func() {
				guest := booking.Generate()

				created, err := api.CreateBooking(ctx, guest)
				Expect(err).NotTo(HaveOccurred())

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})

				resp, err := api.Do(ctx, client.Request{
					Method: http.MethodPut,
					Path:   api.Endpoints().UpdateBooking(created.BookingID),
					Body:   guest,
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.Status).To(Equal(http.StatusForbidden))
				Expect(string(resp.Body)).To(Equal("Forbidden"))
			})
		})
	})
})
