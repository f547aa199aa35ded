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
	"math/rand/v2"
	"time"

	"k8s.io/utils/ptr"
)

var firstnames = []string{
	"James", "Mary", "Priya", "Wei", "Sofia", "Liam", "Amara", "Noah",
	"Yuki", "Carlos", "Ingrid", "Omar", "Grace", "Tariq", "Elena",
}

var lastnames = []string{
	"Smith", "García", "Chen", "Patel", "Johansson", "Okafor", "Brown",
	"Tanaka", "Novak", "Ali", "Murphy", "Silva", "Kowalski", "Dubois",
}

var additionalNeeds = []string{
	"Breakfast", "Late checkout", "Extra pillows", "Airport transfer",
	"Sea view", "Quiet room",
}

// Generate returns a random valid booking. Stay dates land within the next
// month so generated data never collides with seeded fixtures.
func Generate() Booking {
	checkin := time.Now().AddDate(0, 0, 1+rand.IntN(30))
	checkout := checkin.AddDate(0, 0, 1+rand.IntN(14))

	b := Booking{
		Firstname:   firstnames[rand.IntN(len(firstnames))],
		Lastname:    lastnames[rand.IntN(len(lastnames))],
		TotalPrice:  1 + rand.IntN(999),
		DepositPaid: rand.IntN(2) == 0,
		BookingDates: BookingDates{
			Checkin:  Date(checkin),
			Checkout: Date(checkout),
		},
	}

	if rand.IntN(4) != 0 {
		b.AdditionalNeeds = ptr.To(additionalNeeds[rand.IntN(len(additionalNeeds))])
	}

	return b
}
