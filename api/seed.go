/*
seed.go - Demo data for local exploration

PURPOSE:
  Loads a handful of providers, packages, and bookings covering every
  cancellation policy, so the API is explorable immediately after startup
  with -seed. Bookings are normally written by the booking service; these
  rows stand in for it during development.
*/
package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tripline/refund-engine/booking"
	"github.com/tripline/refund-engine/store/sqlite"
)

// SeedDemoData loads demo packages and bookings. Idempotent: rows are
// upserted by fixed IDs.
func SeedDemoData(ctx context.Context, store *sqlite.Store) error {
	packages := []struct {
		id, provider, kind, name string
	}{
		{"pkg-hotel-alps", "prov-alpine", "hotel", "Alpine Lodge Retreat"},
		{"pkg-hotel-coast", "prov-coastal", "hotel", "Coastal View Resort"},
		{"pkg-tour-delta", "prov-delta", "tour", "Mekong Delta Explorer"},
	}
	for _, p := range packages {
		if err := store.SavePackage(ctx, p.id, p.provider, p.kind, p.name); err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	in10 := now.AddDate(0, 0, 10)
	in2 := now.AddDate(0, 0, 2)
	tomorrow := now.AddDate(0, 0, 1)

	bookings := []booking.Booking{
		{
			ID:                 "bkg-flexible",
			UserID:             "user-ana",
			Status:             booking.StatusConfirmed,
			CheckInDate:        &in10,
			PriceSnapshot:      priceJSON("500", "35", "50", "585"),
			CancellationPolicy: "FLEXIBLE",
			HotelPackageID:     "pkg-hotel-alps",
		},
		{
			ID:                 "bkg-moderate",
			UserID:             "user-ben",
			Status:             booking.StatusConfirmed,
			CheckInDate:        &in2,
			PriceSnapshot:      priceJSON("800", "56", "80", "936"),
			CancellationPolicy: "MODERATE",
			HotelPackageID:     "pkg-hotel-coast",
		},
		{
			ID:            "bkg-strict-tour",
			UserID:        "user-chi",
			Status:        booking.StatusPaymentPending,
			DepartureDate: &tomorrow,
			PriceSnapshot: priceJSON("300", "21", "30", "351"),
			// Policy arrives as a JSON snapshot here; its type field wins.
			CancellationPolicyJSON: json.RawMessage(`{"type":"STRICT","source":"package-default"}`),
			TourPackageID:          "pkg-tour-delta",
		},
	}
	for i := range bookings {
		if err := store.SaveBooking(ctx, &bookings[i]); err != nil {
			return err
		}
	}
	return nil
}

func priceJSON(base, tax, commission, total string) json.RawMessage {
	payload, _ := json.Marshal(map[string]string{
		"basePrice":  base,
		"tax":        tax,
		"commission": commission,
		"total":      total,
	})
	return payload
}
