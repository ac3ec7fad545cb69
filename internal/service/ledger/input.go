package ledger

import (
	"fmt"
	"strings"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

// StockInput is the editable field set of a stock record. A negative Quantity
// stands for missing or non-numeric input.
type StockInput struct {
	Kind          models.Kind
	Name          string
	Category      string
	Status        models.StockStatus
	Quantity      int
	LocationMain  string
	LocationExact string
	SiteStatus    models.SiteStatus
}

// Validate trims the text fields in place, then checks all fields and collects all errors.
func (i *StockInput) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	i.LocationMain = strings.TrimSpace(i.LocationMain)
	i.LocationExact = strings.TrimSpace(i.LocationExact)

	var errs []models.FieldError

	if !i.Kind.Valid() {
		errs = append(errs, models.FieldError{Field: "type", Message: "must be consumable or fixture"})
	} else if !i.Kind.Allows(i.Status) {
		errs = append(errs, models.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("%q is not a valid %s status", i.Status, i.Kind),
		})
	}
	if i.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "required"})
	}
	if i.Category == "" {
		errs = append(errs, models.FieldError{Field: "category", Message: "required"})
	}
	if i.LocationMain == "" {
		errs = append(errs, models.FieldError{Field: "locMain", Message: "required"})
	}
	if i.LocationExact == "" {
		errs = append(errs, models.FieldError{Field: "locExact", Message: "required"})
	}
	if !i.SiteStatus.Valid() {
		errs = append(errs, models.FieldError{Field: "siteStatus", Message: "must be on_site or off_site"})
	}
	if i.Quantity > models.MaxQuantity {
		errs = append(errs, models.FieldError{Field: "quantity", Message: fmt.Sprintf("must not exceed %d", models.MaxQuantity)})
	}

	if len(errs) > 0 {
		return &models.ValidationError{Errors: errs}
	}
	return nil
}

func (i StockInput) identity() models.Identity {
	return models.Identity{
		Kind:          i.Kind,
		Name:          i.Name,
		Category:      i.Category,
		Status:        i.Status,
		LocationMain:  i.LocationMain,
		LocationExact: i.LocationExact,
		SiteStatus:    i.SiteStatus,
	}
}

// TransferInput moves quantity from one pile to another location.
// A nil Quantity transfers everything the source holds.
type TransferInput struct {
	SourceID      string
	LocationMain  string
	LocationExact string
	SiteStatus    models.SiteStatus
	Quantity      *int
}

// Validate trims the destination fields in place and checks them.
func (i *TransferInput) Validate() error {
	i.SourceID = strings.TrimSpace(i.SourceID)
	i.LocationMain = strings.TrimSpace(i.LocationMain)
	i.LocationExact = strings.TrimSpace(i.LocationExact)

	var errs []models.FieldError

	if i.SourceID == "" {
		errs = append(errs, models.FieldError{Field: "id", Message: "required"})
	}
	if i.LocationMain == "" {
		errs = append(errs, models.FieldError{Field: "locMain", Message: "required"})
	}
	if i.LocationExact == "" {
		errs = append(errs, models.FieldError{Field: "locExact", Message: "required"})
	}
	if !i.SiteStatus.Valid() {
		errs = append(errs, models.FieldError{Field: "siteStatus", Message: "must be on_site or off_site"})
	}

	if len(errs) > 0 {
		return &models.ValidationError{Errors: errs}
	}
	return nil
}

// CommsInput is the editable field set of a radio set.
type CommsInput struct {
	SetNumber int
	Role      string
	Location  string
	CallSign  string
	Status    models.CommsStatus
}

// Validate trims the text fields in place, then checks all fields and collects all errors.
func (i *CommsInput) Validate() error {
	i.Role = strings.TrimSpace(i.Role)
	i.Location = strings.TrimSpace(i.Location)
	i.CallSign = strings.TrimSpace(i.CallSign)

	var errs []models.FieldError

	if i.SetNumber <= 0 {
		errs = append(errs, models.FieldError{Field: "setNumber", Message: "must be a positive integer"})
	}
	if i.Role == "" {
		errs = append(errs, models.FieldError{Field: "volunteerRole", Message: "required"})
	}
	if i.Location == "" {
		errs = append(errs, models.FieldError{Field: "locationOfUse", Message: "required"})
	}
	if i.CallSign == "" {
		errs = append(errs, models.FieldError{Field: "callSign", Message: "required"})
	}
	if i.Status == "" {
		i.Status = models.CommsOnline
	} else if !i.Status.Valid() {
		errs = append(errs, models.FieldError{Field: "status", Message: "unknown comms status"})
	}

	if len(errs) > 0 {
		return &models.ValidationError{Errors: errs}
	}
	return nil
}
