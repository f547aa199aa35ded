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

package booking_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bellhopqa/bellhop/pkg/booking"
)

// TestGenerate ensures generated bookings are valid and in the future.
func TestGenerate(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		b := booking.Generate()

		require.NotEmpty(t, b.Firstname)
		require.NotEmpty(t, b.Lastname)
		require.Positive(t, b.TotalPrice)
		require.True(t, b.BookingDates.Checkin.After(time.Now()), "check-in must be in the future")
		require.True(t, b.BookingDates.Checkout.After(b.BookingDates.Checkin.Time), "check-out must follow check-in")
	}
}

// TestDateWireFormat ensures dates marshal as date-only values, never
// timestamps.
func TestDateWireFormat(t *testing.T) {
	t.Parallel()

	dates := booking.BookingDates{
		Checkin:  booking.Date(time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)),
		Checkout: booking.Date(time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC)),
	}

	data, err := json.Marshal(dates)
	require.NoError(t, err)
	require.JSONEq(t, `{"checkin": "2026-03-14", "checkout": "2026-03-18"}`, string(data))
}

// TestPayloadBuilder ensures the builder produces complete payloads and that
// mutations land.
func TestPayloadBuilder(t *testing.T) {
	t.Parallel()

	payload := booking.NewPayload().
		WithFirstname("Hazel").
		WithLastname("Porter").
		WithTotalPrice(180).
		WithDepositPaid(true).
		WithDates("2026-09-01", "2026-09-05").
		WithAdditionalNeeds("Breakfast").
		Build()

	require.Equal(t, "Hazel", payload["firstname"])
	require.Equal(t, 180, payload["totalprice"])
	require.Equal(t, true, payload["depositpaid"])
	require.Equal(t, "Breakfast", payload["additionalneeds"])

	dates, ok := payload["bookingdates"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "2026-09-01", dates["checkin"])
}

// TestPayloadBuilderTyped ensures a valid payload converts to the typed
// representation and an invalid one reports the conversion failure.
func TestPayloadBuilderTyped(t *testing.T) {
	t.Parallel()

	b, err := booking.NewPayload().
		WithFirstname("Hazel").
		WithDates("2026-09-01", "2026-09-05").
		BuildTyped()
	require.NoError(t, err)
	require.Equal(t, "Hazel", b.Firstname)
	require.Equal(t, "2026-09-01", b.BookingDates.Checkin.Format("2006-01-02"))

	_, err = booking.NewPayload().WithInvalidDates().BuildTyped()
	require.Error(t, err)
}

// TestPayloadBuilderNegativeShapes ensures field removal and retyping work,
// since negative tests depend on them.
func TestPayloadBuilderNegativeShapes(t *testing.T) {
	t.Parallel()

	payload := booking.NewPayload().
		WithoutField("firstname").
		WithField("totalprice", "not-a-number").
		Build()

	_, present := payload["firstname"]
	require.False(t, present)
	require.Equal(t, "not-a-number", payload["totalprice"])
}

// TestGenerateTestID ensures IDs are unique enough to name test data.
func TestGenerateTestID(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}

	for i := 0; i < 100; i++ {
		id := booking.GenerateTestID()

		require.Regexp(t, `^test-[0-9a-f]{8}$`, id)
		require.False(t, seen[id], "generated a duplicate ID")

		seen[id] = true
	}
}
