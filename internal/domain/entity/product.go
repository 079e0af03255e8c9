// Package entity contains the core business objects of the storefront.
package entity

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MaxAdditionalImages bounds the gallery beside the primary image.
const MaxAdditionalImages = 2

// Category is the closed set of product categories.
type Category string

const (
	CategoryPainting  Category = "painting"
	CategoryPrint     Category = "print"
	CategorySketch    Category = "sketch"
	CategoryTShirt    Category = "tshirt"
	CategoryHoodie    Category = "hoodie"
	CategoryAccessory Category = "accessory"
)

// IsValid checks if the Category is a known value.
func (c Category) IsValid() bool {
	switch c {
	case CategoryPainting, CategoryPrint, CategorySketch, CategoryTShirt, CategoryHoodie, CategoryAccessory:
		return true
	default:
		return false
	}
}

// Product is a purchasable catalog item.
type Product struct {
	ID               uuid.UUID
	Name             string
	Description      string
	Price            Money
	DiscountPrice    *Money
	Image            MediaRef
	AdditionalImages []MediaRef
	Video            *MediaRef
	Category         Category
	InStock          bool
	Rating           float64
	ReviewCount      int
	Featured         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate enforces the catalog invariants. Persistence never re-checks them.
func (p *Product) Validate() error {
	nameLen := utf8.RuneCountInString(p.Name)
	if nameLen < 2 || nameLen > 120 {
		return errors.New("name must be between 2 and 120 characters")
	}
	if utf8.RuneCountInString(p.Description) > 2000 {
		return errors.New("description must be at most 2000 characters")
	}
	if p.Price <= 0 {
		return errors.New("price must be positive")
	}
	if p.DiscountPrice != nil {
		if *p.DiscountPrice <= 0 {
			return errors.New("discount price must be positive")
		}
		if *p.DiscountPrice >= p.Price {
			return errors.New("discount price must be lower than price")
		}
	}
	if !p.Category.IsValid() {
		return errors.Errorf("unknown category %q", p.Category)
	}
	if len(p.AdditionalImages) > MaxAdditionalImages {
		return errors.Errorf("at most %d additional images are allowed", MaxAdditionalImages)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return errors.New("rating must be between 0 and 5")
	}

	return nil
}

// EffectivePrice is the current selling price: the discount price when set.
func (p *Product) EffectivePrice() Money {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}

	return p.Price
}

// IsInStock reports the advisory stock flag.
func (p *Product) IsInStock() bool {
	return p.InStock
}

// MediaIDs lists every storage key owned by the product.
func (p *Product) MediaIDs() []string {
	ids := make([]string, 0, 2+len(p.AdditionalImages))
	if p.Image.ID != "" {
		ids = append(ids, p.Image.ID)
	}
	for _, img := range p.AdditionalImages {
		if img.ID != "" {
			ids = append(ids, img.ID)
		}
	}
	if p.Video != nil && p.Video.ID != "" {
		ids = append(ids, p.Video.ID)
	}

	return ids
}

// ProductFilter narrows catalog listings. Nil fields are ignored.
type ProductFilter struct {
	Category *Category
	Featured *bool
	InStock  *bool
}
