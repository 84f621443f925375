package model

import (
	"encoding/json"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func sampleBooking() *Booking {
	return &Booking{
		RoomID: "507f1f77bcf86cd799439011",
		StayInterval: StayInterval{
			CheckIn:  time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC),
		},
		GuestParty: GuestParty{Adults: 2, Children: 1},
		GuestInfo: GuestInfo{
			Name:  "Amina Otieno",
			Email: "amina@example.com",
			Phone: "+254712345678",
		},
		Nights:        5,
		RoomRate:      5000,
		TotalPrice:    25000,
		Currency:      "KES",
		Status:        StatusPending,
		PaymentStatus: PaymentUnpaid,
	}
}

func TestGuestParty_Size(t *testing.T) {
	tests := []struct {
		name  string
		party GuestParty
		want  int
	}{
		{"adults only", GuestParty{Adults: 2}, 2},
		{"adults and children", GuestParty{Adults: 2, Children: 3}, 5},
		{"empty party", GuestParty{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.party.Size(); got != tt.want {
				t.Errorf("Size() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBooking_JSONIsFlat(t *testing.T) {
	data, err := json.Marshal(sampleBooking())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"check_in", "check_out", "adults", "children", "guest_name", "guest_email", "guest_phone", "total_price", "payment_status"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("expected top-level key %q in %s", key, string(data))
		}
	}
	if _, ok := fields["StayInterval"]; ok {
		t.Errorf("embedded struct should not appear as nested object")
	}
}

func TestBooking_BSONIsFlat(t *testing.T) {
	data, err := bson.Marshal(sampleBooking())
	if err != nil {
		t.Fatalf("bson marshal failed: %v", err)
	}

	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		t.Fatalf("bson unmarshal failed: %v", err)
	}

	for _, key := range []string{"room_id", "check_in", "check_out", "adults", "guest_email", "status", "payment_status"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("expected top-level bson field %q", key)
		}
	}
	if _, ok := doc["_id"]; ok {
		t.Errorf("empty ID should be omitted so the driver assigns one")
	}
	if _, ok := doc["package_id"]; ok {
		t.Errorf("empty package_id should be omitted")
	}
}
