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
	"errors"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/bellhopqa/bellhop/pkg/booking"
	"github.com/bellhopqa/bellhop/pkg/client"
)

var _ = Describe("Transport Resilience", func() {
	Context("When the API suffers transient server errors", func() {
		Describe("Given an outage shorter than the retry budget", func() {
			It("should absorb the failure and succeed", func() {
				twin.FailNext(1, http.StatusServiceUnavailable)

				Expect(api.Ping(ctx)).To(Succeed())
			})
		})

		Describe("Given an outage longer than the retry budget", func() {
			It("should surface a transport error and recover once the outage clears", func() {
				twin.FailNext(6, http.StatusServiceUnavailable)

				err := api.Ping(ctx)
				Expect(err).To(HaveOccurred())

				transportErr := &client.TransportError{}
				Expect(errors.As(err, &transportErr)).To(BeTrue())
				Expect(transportErr.Attempts).To(Equal(2))

				Eventually(func() error {
					return api.Ping(ctx)
				}).WithTimeout(10 * time.Second).WithPolling(100 * time.Millisecond).Should(Succeed())
			})
		})
	})

	Context("When authentication degrades", func() {
		Describe("Given bad credentials", func() {
			It("should report the API's bad credentials reason", func() {
				_, err := api.CreateToken(ctx, "admin", "wrong-password")
				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, client.ErrBadCredentials)).To(BeTrue())
			})
		})

		Describe("Given a token the API no longer recognises", func() {
			It("should refresh the token once and complete the write", func() {
				tokens.Prime("stale-token", time.Now().Add(time.Hour))

				guest := booking.Generate()

				created, err := api.CreateBooking(ctx, guest)
				Expect(err).NotTo(HaveOccurred())

				DeferCleanup(func() {
					Expect(api.DeleteBooking(ctx, created.BookingID)).To(Succeed())
				})

				guest.TotalPrice++

				updated, err := api.UpdateBooking(ctx, created.BookingID, guest)
				Expect(err).NotTo(HaveOccurred())
				Expect(updated.TotalPrice).To(Equal(guest.TotalPrice))
			})
		})
	})
})
