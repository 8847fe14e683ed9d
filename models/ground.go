package models

import (
	"strings"
	"time"
)

// GroundStatus is the approval state of a ground. Grounds are never removed;
// taking one off the platform means moving it to inactive.
type GroundStatus string

const (
	GroundActive   GroundStatus = "active"
	GroundInactive GroundStatus = "inactive"
	GroundPending  GroundStatus = "pending"
)

// Valid reports whether s is one of the known ground states.
func (s GroundStatus) Valid() bool {
	switch s {
	case GroundActive, GroundInactive, GroundPending:
		return true
	}
	return false
}

type GroundLocation struct {
	Address string `bson:"address" json:"address"`
	CityID  string `bson:"cityId" json:"cityId"`
	Pincode string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

type GroundPrice struct {
	PerHour  float64 `bson:"perHour" json:"perHour"`
	Currency string  `bson:"currency" json:"currency"`
	Discount float64 `bson:"discount,omitempty" json:"discount,omitempty"` // percent, 0-100
}

// Ground is a bookable cricket box.
type Ground struct {
	ID          string         `bson:"id" json:"id"`
	Name        string         `bson:"name" json:"name"`
	Description string         `bson:"description,omitempty" json:"description,omitempty"`
	Location    GroundLocation `bson:"location" json:"location"`
	Price       GroundPrice    `bson:"price" json:"price"`
	Amenities   []string       `bson:"amenities,omitempty" json:"amenities,omitempty"`
	Images      []string       `bson:"images,omitempty" json:"images,omitempty"`
	OwnerID     string         `bson:"ownerId,omitempty" json:"ownerId,omitempty"`
	Status      GroundStatus   `bson:"status" json:"status"`
	IsVerified  bool           `bson:"isVerified" json:"isVerified"`
	CreatedAt   time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// GroundFilter narrows a ground listing. Zero values mean "no constraint".
type GroundFilter struct {
	Status   GroundStatus `json:"status,omitempty"`
	CityID   string       `json:"cityId,omitempty"`
	Search   string       `json:"search,omitempty"`
	MinPrice float64      `json:"minPrice,omitempty"`
	MaxPrice float64      `json:"maxPrice,omitempty"`
}

// Matches applies the filter to a single ground. Stores that cannot push the
// filter down to the database use this.
func (f GroundFilter) Matches(g Ground) bool {
	if f.Status != "" && g.Status != f.Status {
		return false
	}
	if f.CityID != "" && g.Location.CityID != f.CityID {
		return false
	}
	if f.MinPrice > 0 && g.Price.PerHour < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && g.Price.PerHour > f.MaxPrice {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(strings.TrimSpace(f.Search))
		if !strings.Contains(strings.ToLower(g.Name), q) &&
			!strings.Contains(strings.ToLower(g.Location.Address), q) {
			return false
		}
	}
	return true
}

// GroundStatusUpdate is an admin approval action.
type GroundStatusUpdate struct {
	Status     *GroundStatus `json:"status,omitempty"`
	IsVerified *bool         `json:"isVerified,omitempty"`
}
