package entity

import "github.com/google/uuid"

// Catalog entities are owned by the wider platform. This service only reads
// them to resolve payout recipients.

type Venue struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Class struct {
	ID      uuid.UUID `json:"id"`
	VenueID uuid.UUID `json:"venue_id"`
	Title   string    `json:"title"`
}

// Meetup may or may not be hosted at a venue. When VenueID is nil the payout
// recipient is the meetup's creator.
type Meetup struct {
	ID        uuid.UUID  `json:"id"`
	VenueID   *uuid.UUID `json:"venue_id,omitempty"`
	CreatorID uuid.UUID  `json:"creator_id"`
	Title     string     `json:"title"`
}

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)
