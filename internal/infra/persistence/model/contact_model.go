package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MediaJSON is one stored attachment.
type MediaJSON struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// ContactModel mirrors the 'contacts' table. Attachments are a jsonb array.
type ContactModel struct {
	ID        uuid.UUID                      `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string                         `gorm:"type:varchar(100);not null"`
	Email     string                         `gorm:"type:varchar(254);not null"`
	Subject   string                         `gorm:"type:varchar(20);not null"`
	Message   string                         `gorm:"type:text;not null"`
	Images    datatypes.JSONSlice[MediaJSON] `gorm:"type:jsonb;not null"`
	Status    string                         `gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (ContactModel) TableName() string {
	return "contacts"
}

// HeroImageModel mirrors the 'hero_images' table.
type HeroImageModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Title        string    `gorm:"type:varchar(120);not null"`
	Subtitle     string    `gorm:"type:varchar(200)"`
	Category     string    `gorm:"type:varchar(50)"`
	ImageURL     string    `gorm:"type:text;not null"`
	ImageID      string    `gorm:"type:text;not null"`
	Link         string    `gorm:"type:text"`
	DisplayOrder int       `gorm:"not null;default:0;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (HeroImageModel) TableName() string {
	return "hero_images"
}
