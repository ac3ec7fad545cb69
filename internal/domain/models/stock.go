package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Kind distinguishes consumable supplies from reusable fixtures.
type Kind string

const (
	KindConsumable Kind = "consumable"
	KindFixture    Kind = "fixture"
)

// StockStatus is the condition of a stock pile. Valid values depend on the Kind.
type StockStatus string

const (
	StatusSustainable StockStatus = "Sustainable"
	StatusLow         StockStatus = "Low"
	StatusCritical    StockStatus = "Critical"
	StatusUsable      StockStatus = "Usable"
	StatusDamaged     StockStatus = "Damaged"
	StatusMissing     StockStatus = "Missing"
)

// SiteStatus marks whether a pile is held on site.
type SiteStatus string

const (
	SiteOnSite  SiteStatus = "on_site"
	SiteOffSite SiteStatus = "off_site"
)

var statusesByKind = map[Kind][]StockStatus{
	KindConsumable: {StatusSustainable, StatusLow, StatusCritical, StatusDamaged, StatusMissing},
	KindFixture:    {StatusUsable, StatusDamaged, StatusMissing},
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := statusesByKind[k]
	return ok
}

// Statuses lists the statuses allowed for the kind, in display order.
func (k Kind) Statuses() []StockStatus {
	list := statusesByKind[k]
	out := make([]StockStatus, len(list))
	copy(out, list)
	return out
}

// Allows reports whether status is permitted for the kind.
func (k Kind) Allows(status StockStatus) bool {
	for _, s := range statusesByKind[k] {
		if s == status {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known site status.
func (s SiteStatus) Valid() bool {
	return s == SiteOnSite || s == SiteOffSite
}

// Label returns the human-readable site status.
func (s SiteStatus) Label() string {
	if s == SiteOnSite {
		return "On Site"
	}
	return "Off Site"
}

// StockRecord is one quantity-bearing pile of a stock item at a location.
type StockRecord struct {
	ID            string      `json:"id"`
	Kind          Kind        `json:"type"`
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	Status        StockStatus `json:"status"`
	Quantity      int         `json:"quantity"`
	LocationMain  string      `json:"locMain"`
	LocationExact string      `json:"locExact"`
	SiteStatus    SiteStatus  `json:"siteStatus"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// Identity returns the tuple that defines the record's logical pile.
func (r StockRecord) Identity() Identity {
	return Identity{
		Kind:          r.Kind,
		Name:          r.Name,
		Category:      r.Category,
		Status:        r.Status,
		LocationMain:  r.LocationMain,
		LocationExact: r.LocationExact,
		SiteStatus:    r.SiteStatus,
	}
}

// Identity is the field combination under which quantities merge.
// All fields compare with exact, case-sensitive equality.
type Identity struct {
	Kind          Kind        `json:"type"`
	Name          string      `json:"name"`
	Category      string      `json:"category"`
	Status        StockStatus `json:"status"`
	LocationMain  string      `json:"locMain"`
	LocationExact string      `json:"locExact"`
	SiteStatus    SiteStatus  `json:"siteStatus"`
}

// Relocated returns the same item identity at another location.
func (id Identity) Relocated(main, exact string, site SiteStatus) Identity {
	id.LocationMain = main
	id.LocationExact = exact
	id.SiteStatus = site
	return id
}

// SameItem reports whether both identities describe the same item regardless of location.
func (id Identity) SameItem(other Identity) bool {
	return id.Kind == other.Kind &&
		id.Name == other.Name &&
		id.Category == other.Category &&
		id.Status == other.Status
}

// Key renders a stable digest of the identity, suitable as a document id.
func (id Identity) Key() string {
	parts := []string{
		string(id.Kind), id.Name, id.Category, string(id.Status),
		id.LocationMain, id.LocationExact, string(id.SiteStatus),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether the record (name, category, status, locations, site, kind)
// contains q as a case-insensitive substring. An empty query matches everything.
func (r StockRecord) Matches(q string) bool {
	if q == "" {
		return true
	}
	hay := strings.Join([]string{
		string(r.Kind), r.Name, r.Category, string(r.Status),
		r.LocationMain, r.LocationExact, string(r.SiteStatus),
	}, " ")
	return strings.Contains(strings.ToLower(hay), strings.ToLower(q))
}

// StockFilter narrows stock listings.
type StockFilter struct {
	Kind   Kind
	Search string
}

// DuplicateGroup lists records that share one identity tuple.
type DuplicateGroup struct {
	Identity Identity      `json:"identity"`
	Records  []StockRecord `json:"records"`
}
