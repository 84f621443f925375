package errors

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")

	ErrPackageNotFound = errors.New("package not found")

	ErrInvalidID = errors.New("invalid directory ID format")
)
