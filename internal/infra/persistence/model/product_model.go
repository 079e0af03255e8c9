package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ProductModel mirrors the 'products' table. Money columns hold subunits.
// Additional images are parallel text arrays of URLs and storage IDs.
type ProductModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name               string    `gorm:"type:varchar(120);not null"`
	Description        string    `gorm:"type:text"`
	Price              int64     `gorm:"not null"`
	DiscountPrice      *int64
	ImageURL           string         `gorm:"type:text"`
	ImageID            string         `gorm:"type:text"`
	AdditionalImageURL pq.StringArray `gorm:"type:text[]"`
	AdditionalImageID  pq.StringArray `gorm:"type:text[]"`
	VideoURL           *string        `gorm:"type:text"`
	VideoID            *string        `gorm:"type:text"`
	Category           string         `gorm:"type:varchar(20);not null;index"`
	InStock            bool           `gorm:"not null;default:true"`
	Rating             float64        `gorm:"type:numeric(2,1);not null;default:0"`
	ReviewCount        int            `gorm:"not null;default:0"`
	Featured           bool           `gorm:"not null;default:false"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
