package entity

import (
	"time"

	"github.com/google/uuid"
)

// HeroImage is one slide of the landing-page carousel.
type HeroImage struct {
	ID           uuid.UUID
	Title        string
	Subtitle     string
	Category     string
	Image        MediaRef
	Link         string
	DisplayOrder int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
