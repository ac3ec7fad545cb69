package ledger

import (
	"fmt"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

// Stored field names.
const (
	fieldKind          = "type"
	fieldName          = "name"
	fieldCategory      = "category"
	fieldStatus        = "status"
	fieldQuantity      = "quantity"
	fieldLocationMain  = "locMain"
	fieldLocationExact = "locExact"
	fieldSiteStatus    = "siteStatus"

	fieldSetNumber = "setNumber"
	fieldRole      = "volunteerRole"
	fieldLocation  = "locationOfUse"
	fieldCallSign  = "callSign"

	fieldClaimRecordID = "recordId"
)

func identityFields(id models.Identity) recordstore.Fields {
	return recordstore.Fields{
		fieldKind:          string(id.Kind),
		fieldName:          id.Name,
		fieldCategory:      id.Category,
		fieldStatus:        string(id.Status),
		fieldLocationMain:  id.LocationMain,
		fieldLocationExact: id.LocationExact,
		fieldSiteStatus:    string(id.SiteStatus),
	}
}

func stockFields(id models.Identity, quantity int) recordstore.Fields {
	f := identityFields(id)
	f[fieldQuantity] = quantity
	return f
}

func identityPredicates(id models.Identity) []recordstore.Predicate {
	return []recordstore.Predicate{
		recordstore.Eq(fieldKind, string(id.Kind)),
		recordstore.Eq(fieldName, id.Name),
		recordstore.Eq(fieldCategory, id.Category),
		recordstore.Eq(fieldStatus, string(id.Status)),
		recordstore.Eq(fieldLocationMain, id.LocationMain),
		recordstore.Eq(fieldLocationExact, id.LocationExact),
		recordstore.Eq(fieldSiteStatus, string(id.SiteStatus)),
	}
}

func stockFromDoc(doc recordstore.Document) models.StockRecord {
	f := doc.Fields
	return models.StockRecord{
		ID:            doc.ID,
		Kind:          models.Kind(text(f[fieldKind])),
		Name:          text(f[fieldName]),
		Category:      text(f[fieldCategory]),
		Status:        models.StockStatus(text(f[fieldStatus])),
		Quantity:      models.ParseQuantity(f[fieldQuantity], 0),
		LocationMain:  text(f[fieldLocationMain]),
		LocationExact: text(f[fieldLocationExact]),
		SiteStatus:    models.SiteStatus(text(f[fieldSiteStatus])),
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

func commsFields(in CommsInput) recordstore.Fields {
	return recordstore.Fields{
		fieldSetNumber: in.SetNumber,
		fieldRole:      in.Role,
		fieldLocation:  in.Location,
		fieldCallSign:  in.CallSign,
		fieldStatus:    string(in.Status),
	}
}

func commsFromDoc(doc recordstore.Document) models.CommsRecord {
	f := doc.Fields
	return models.CommsRecord{
		ID:        doc.ID,
		SetNumber: models.ParseQuantity(f[fieldSetNumber], 0),
		Role:      text(f[fieldRole]),
		Location:  text(f[fieldLocation]),
		CallSign:  text(f[fieldCallSign]),
		Status:    models.CommsStatus(text(f[fieldStatus])),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
}

func commsClaimKey(setNumber int) string {
	return fmt.Sprintf("set-%d", setNumber)
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}
