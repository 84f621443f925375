package repository

import (
	"testing"
	"time"

	"innkeep/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildCountFilter(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		q    BookingCount
		want bson.M
	}{
		{"everything", BookingCount{}, bson.M{}},
		{
			"by status",
			BookingCount{Statuses: []string{model.StatusPending}},
			bson.M{"status": bson.M{"$in": []string{model.StatusPending}}},
		},
		{
			"check-ins",
			BookingCount{Statuses: []string{model.StatusConfirmed}, CheckInOn: &day},
			bson.M{"status": bson.M{"$in": []string{model.StatusConfirmed}}, "check_in": day},
		},
		{"check-outs", BookingCount{CheckOutOn: &day}, bson.M{"check_out": day}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildCountFilter(tt.q)
			if len(got) != len(tt.want) {
				t.Fatalf("filter = %v, want %v", got, tt.want)
			}
			for key, want := range tt.want {
				if key == "status" {
					gotIn := got[key].(bson.M)["$in"].([]string)
					wantIn := want.(bson.M)["$in"].([]string)
					if len(gotIn) != len(wantIn) || gotIn[0] != wantIn[0] {
						t.Errorf("status = %v, want %v", gotIn, wantIn)
					}
					continue
				}
				if got[key] != want {
					t.Errorf("%s = %v, want %v", key, got[key], want)
				}
			}
		})
	}
}
