package models

import (
	"time"

	"github.com/google/uuid"
)

// Item categories
const (
	CategoryTops        = "tops"
	CategoryBottoms     = "bottoms"
	CategoryDresses     = "dresses"
	CategoryOuterwear   = "outerwear"
	CategoryShoes       = "shoes"
	CategoryAccessories = "accessories"
	CategoryBags        = "bags"
	CategoryOther       = "other"
)

// Item conditions
const (
	ConditionNew     = "new"
	ConditionLikeNew = "like_new"
	ConditionGood    = "good"
	ConditionFair    = "fair"
	ConditionPoor    = "poor"
)

// ItemCategories lists every accepted category.
var ItemCategories = map[string]struct{}{
	CategoryTops: {}, CategoryBottoms: {}, CategoryDresses: {}, CategoryOuterwear: {},
	CategoryShoes: {}, CategoryAccessories: {}, CategoryBags: {}, CategoryOther: {},
}

// ItemConditions lists every accepted condition.
var ItemConditions = map[string]struct{}{
	ConditionNew: {}, ConditionLikeNew: {}, ConditionGood: {}, ConditionFair: {}, ConditionPoor: {},
}

// ItemDB represents a listed garment in the database
type ItemDB struct {
	ItemID      uuid.UUID `json:"id" db:"item_id"`                // Unique item identifier
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`         // Current owner
	Title       string    `json:"title" db:"title"`               // Listing title
	Description string    `json:"description" db:"description"`   // Free-text description
	Category    string    `json:"category" db:"category"`         // One of ItemCategories
	Condition   string    `json:"condition" db:"condition"`       // One of ItemConditions
	Size        string    `json:"size" db:"size"`                 // Garment size label
	Brand       string    `json:"brand" db:"brand"`               // Brand name
	PricePoints int64     `json:"price_points" db:"price_points"` // Minimum points for a points exchange
	IsAvailable bool      `json:"is_available" db:"is_available"` // False once an exchange is accepted
	CreatedAt   time.Time `json:"created_at" db:"created_at"`     // Creation timestamp
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`     // Last update timestamp
}

// ItemListing is an available item joined with its owner's username
type ItemListing struct {
	ItemDB
	OwnerUsername string `json:"owner_username" db:"owner_username"` // Username of the owner
}

// ItemFilter narrows the catalog of available items
type ItemFilter struct {
	Category string // Exact category match, empty for any
	Search   string // Case-insensitive substring of title, description or brand
	Page     int    // 1-based page number
	Limit    int    // Page size
}

// Pagination describes the page returned by a catalog query
type Pagination struct {
	Page  int `json:"page"`  // 1-based page number
	Limit int `json:"limit"` // Page size
	Total int `json:"total"` // Matching items across all pages
}

// ItemPage is one page of the catalog
type ItemPage struct {
	Items      []ItemListing `json:"items"`
	Pagination Pagination    `json:"pagination"`
}
