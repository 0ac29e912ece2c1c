package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCoordinates = errors.New("latitude must be in [-90, 90] and longitude in [-180, 180]")

type Location struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidateCoordinates(lat, lng float64) error {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}
