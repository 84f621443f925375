// Package pricing computes stay totals. It is the single place prices are
// derived; callers supply current room and package rates.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidStayInterval = errors.New("check-out must be after check-in")

	ErrStayInPast = errors.New("check-in date is in the past")

	ErrNegativeRate = errors.New("rate cannot be negative")

	ErrOverflow = errors.New("price exceeds supported range")
)

const day = 24 * time.Hour

type Breakdown struct {
	Nights       int
	RoomRate     int64
	RoomTotal    int64
	PackageRate  int64
	PackageTotal int64
	Total        int64
	WithPackage  bool
}

// Date returns the calendar day t names in its own location, as midnight UTC.
// A check-in of 2024-05-10T00:00+03:00 is the 10th, not the 9th.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the UTC calendar day of the server clock reading now.
func Today(now time.Time) time.Time {
	return Date(now.UTC())
}

// Nights counts calendar days between check-in and check-out.
func Nights(checkIn, checkOut time.Time) (int, error) {
	nights := int(Date(checkOut).Sub(Date(checkIn)) / day)
	if nights <= 0 {
		return 0, fmt.Errorf("%w: %d nights", ErrInvalidStayInterval, nights)
	}
	return nights, nil
}

// Calculate returns roomRate*nights plus packageRate*nights when a package is
// selected. A nil packageRate means no package.
func Calculate(roomRate int64, packageRate *int64, nights int) (*Breakdown, error) {
	if nights <= 0 {
		return nil, fmt.Errorf("%w: %d nights", ErrInvalidStayInterval, nights)
	}
	if roomRate < 0 {
		return nil, fmt.Errorf("%w: room rate %d", ErrNegativeRate, roomRate)
	}

	roomTotal, ok := multiply(roomRate, nights)
	if !ok {
		return nil, ErrOverflow
	}

	b := &Breakdown{
		Nights:    nights,
		RoomRate:  roomRate,
		RoomTotal: roomTotal,
		Total:     roomTotal,
	}

	if packageRate == nil {
		return b, nil
	}
	if *packageRate < 0 {
		return nil, fmt.Errorf("%w: package rate %d", ErrNegativeRate, *packageRate)
	}

	packageTotal, ok := multiply(*packageRate, nights)
	if !ok {
		return nil, ErrOverflow
	}
	if roomTotal > math.MaxInt64-packageTotal {
		return nil, ErrOverflow
	}

	b.WithPackage = true
	b.PackageRate = *packageRate
	b.PackageTotal = packageTotal
	b.Total = roomTotal + packageTotal
	return b, nil
}

// Quote validates a new stay against today's date and prices it.
// Same-day check-in is allowed.
func Quote(roomRate int64, packageRate *int64, checkIn, checkOut, now time.Time) (*Breakdown, error) {
	if Date(checkIn).Before(Today(now)) {
		return nil, fmt.Errorf("%w: %s", ErrStayInPast, Date(checkIn).Format(time.DateOnly))
	}

	nights, err := Nights(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	return Calculate(roomRate, packageRate, nights)
}

func multiply(rate int64, nights int) (int64, bool) {
	if rate == 0 {
		return 0, true
	}
	n := int64(nights)
	if rate > math.MaxInt64/n {
		return 0, false
	}
	return rate * n, true
}
