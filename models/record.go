package models

// PropertyRecord is one observed listing snapshot from a search results page.
// Optional fields are pointers so "present but zero" stays distinguishable
// from "not found on the page". PropertyID can be empty when the detail link
// carries no numeric identifier; such records exist but can never be deduped.
type PropertyRecord struct {
	PropertyID   string  `json:"property_id" db:"property_id"`
	ListingURL   string  `json:"listing_url" db:"listing_url"`
	Address      *string `json:"address" db:"address"`
	Description  *string `json:"description" db:"description"`
	Bedrooms     *int    `json:"bedrooms" db:"bedrooms"`
	Bathrooms    *int    `json:"bathrooms" db:"bathrooms"`
	PropertyType *string `json:"property_type" db:"property_type"`
	AreaSqFt     *int    `json:"area_sqft" db:"area_sqft"`
	Leasehold    *bool   `json:"leasehold" db:"leasehold"`
	Price        *int    `json:"price" db:"price"`
	Agent        *string `json:"agent" db:"agent"`
	AgentContact *string `json:"agent_contact" db:"agent_contact"`
	DateListed   *string `json:"date_listed" db:"date_listed"`
}
