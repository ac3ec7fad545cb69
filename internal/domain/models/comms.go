package models

import "time"

// CommsStatus is the operating state of a radio set.
type CommsStatus string

const (
	CommsOnline   CommsStatus = "Online"
	CommsOffline  CommsStatus = "Offline"
	CommsNotInUse CommsStatus = "Not in Use"
	CommsSpoilt   CommsStatus = "Spoilt / Decommissioned"
)

// CommsStatuses lists the statuses in display order.
var CommsStatuses = []CommsStatus{CommsOnline, CommsOffline, CommsNotInUse, CommsSpoilt}

// Valid reports whether s is a known comms status.
func (s CommsStatus) Valid() bool {
	for _, v := range CommsStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CommsRecord tracks one radio set. SetNumber is unique across records.
type CommsRecord struct {
	ID        string      `json:"id"`
	SetNumber int         `json:"setNumber"`
	Role      string      `json:"volunteerRole"`
	Location  string      `json:"locationOfUse"`
	CallSign  string      `json:"callSign"`
	Status    CommsStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
