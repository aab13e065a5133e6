package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deal is a time-boxed promotional listing.
type Deal struct {
	ID            string    `firestore:"-" json:"id"` // Firestore document ID, not stored in the document itself
	Title         string    `firestore:"title" json:"title"`
	Description   string    `firestore:"description" json:"description"`
	Price         float64   `firestore:"price" json:"price"`
	OriginalPrice float64   `firestore:"originalPrice" json:"originalPrice"`
	ImageURL      string    `firestore:"imageUrl" json:"imageUrl"`
	Link          string    `firestore:"link" json:"link"`
	Category      string    `firestore:"category" json:"category"`
	CreatedAt     time.Time `firestore:"createdAt,serverTimestamp" json:"createdAt"`
	ExpireAt      time.Time `firestore:"expireAt" json:"expireAt"`
	IsHotDeal     bool      `firestore:"isHotDeal" json:"isHotDeal"`
}

// DiscountPercent returns the whole-percent saving against OriginalPrice.
func (d Deal) DiscountPercent() int {
	if d.OriginalPrice <= 0 || d.OriginalPrice <= d.Price {
		return 0
	}
	orig := decimal.NewFromFloat(d.OriginalPrice)
	saved := orig.Sub(decimal.NewFromFloat(d.Price))
	return int(saved.Div(orig).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// Expired reports whether the deal has passed its expiry at now.
func (d Deal) Expired(now time.Time) bool {
	return !d.ExpireAt.After(now)
}

// DealInput is the admin-supplied payload for a new deal. ExpireAt is kept as
// text so that both RFC 3339 timestamps and plain dates from a form are accepted.
type DealInput struct {
	Title         string  `json:"title" validate:"required,notblank"`
	Description   string  `json:"description" validate:"required,notblank"`
	Price         float64 `json:"price" validate:"gt=0"`
	OriginalPrice float64 `json:"originalPrice" validate:"gt=0"`
	ImageURL      string  `json:"imageUrl" validate:"required,http_url"`
	Link          string  `json:"link" validate:"required,http_url"`
	Category      string  `json:"category" validate:"required,notblank"`
	ExpireAt      string  `json:"expireAt" validate:"required,datetime_any"`
	IsHotDeal     bool    `json:"isHotDeal"`
}

// DateGroup is one day-section of a listing, keyed by local creation date.
type DateGroup struct {
	Date  string `json:"date"`
	Deals []Deal `json:"deals"`
}
