package domain

import "errors"

var (
	ErrPlantNotFound          = errors.New("plant not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
)
