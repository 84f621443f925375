package model

import "time"

type Room struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	Rate        int64     `json:"rate" bson:"rate" validate:"currency_amount"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=50"`
	Amenities   []string  `json:"amenities" bson:"amenities" validate:"omitempty,max=50,amenities"`
	ImageURL    string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url,max=2048"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type RoomUpdate struct {
	Name        string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Rate        *int64    `json:"rate,omitempty" validate:"omitempty,currency_amount"`
	Capacity    *int      `json:"capacity,omitempty" validate:"omitempty,min=1,max=50"`
	Amenities   *[]string `json:"amenities,omitempty" validate:"omitempty"`
	ImageURL    *string   `json:"image_url,omitempty" validate:"omitempty,max=2048"`
}

type Package struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=2000"`
	AddonRate   int64     `json:"price_addon" bson:"price_addon" validate:"currency_amount"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type PackageUpdate struct {
	Name        string  `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	AddonRate   *int64  `json:"price_addon,omitempty" validate:"omitempty,currency_amount"`
}
