package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestQuoteRequest_UnmarshalDates(t *testing.T) {
	nairobi := time.FixedZone("EAT", 3*60*60)

	tests := []struct {
		name         string
		body         string
		wantCheckIn  time.Time
		wantCheckOut time.Time
		wantErr      bool
	}{
		{
			name:         "date only",
			body:         `{"room_id":"r1","check_in":"2024-05-10","check_out":"2024-05-13","adults":2}`,
			wantCheckIn:  time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			wantCheckOut: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:         "rfc3339 with offset",
			body:         `{"room_id":"r1","check_in":"2024-05-10T00:00:00+03:00","check_out":"2024-05-12T12:00:00+03:00","adults":2}`,
			wantCheckIn:  time.Date(2024, 5, 10, 0, 0, 0, 0, nairobi),
			wantCheckOut: time.Date(2024, 5, 12, 12, 0, 0, 0, nairobi),
		},
		{
			name:         "mixed forms",
			body:         `{"room_id":"r1","check_in":"2024-05-10","check_out":"2024-05-13T00:00:00Z","adults":2}`,
			wantCheckIn:  time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
			wantCheckOut: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "missing dates stay zero",
			body:    `{"room_id":"r1","adults":2}`,
			wantErr: false,
		},
		{"day out of range", `{"room_id":"r1","check_in":"2024-02-30","check_out":"2024-03-02"}`, time.Time{}, time.Time{}, true},
		{"not a date", `{"room_id":"r1","check_in":"next friday","check_out":"2024-03-02"}`, time.Time{}, time.Time{}, true},
		{"number", `{"room_id":"r1","check_in":20240510,"check_out":"2024-05-13"}`, time.Time{}, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req QuoteRequest
			err := json.Unmarshal([]byte(tt.body), &req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", req)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.RoomID != "r1" || req.Adults != 2 {
				t.Errorf("other fields lost: %+v", req)
			}
			if !req.CheckIn.Equal(tt.wantCheckIn) || !req.CheckOut.Equal(tt.wantCheckOut) {
				t.Errorf("dates = %v .. %v, want %v .. %v", req.CheckIn, req.CheckOut, tt.wantCheckIn, tt.wantCheckOut)
			}
		})
	}
}

func TestQuoteRequest_MarshalledFormReadsBack(t *testing.T) {
	in := QuoteRequest{
		RoomID:   "r1",
		CheckIn:  time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC),
		Adults:   1,
		Children: 2,
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var out QuoteRequest
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !out.CheckIn.Equal(in.CheckIn) || !out.CheckOut.Equal(in.CheckOut) || out.Children != 2 {
		t.Errorf("read back %+v, want %+v", out, in)
	}
}

func TestSubmitRequest_InlineQuoteAcceptsDateOnly(t *testing.T) {
	body := `{"quote":{"room_id":"r1","check_in":"2024-05-10","check_out":"2024-05-12","adults":1},"guest":{"guest_name":"Ada"}}`

	var req SubmitRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Quote == nil || req.Quote.CheckOut.Day() != 12 || req.Guest.Name != "Ada" {
		t.Errorf("decoded %+v", req)
	}
}
