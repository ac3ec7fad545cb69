package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stringer string

func (s stringer) String() string { return string(s) }

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"nil", nil, -1},
		{"int", 7, 7},
		{"negative int", -3, -1},
		{"int64", int64(12), 12},
		{"json float truncates", 4.9, 4},
		{"numeric string", " 15 ", 15},
		{"leading digits", "12 boxes", 12},
		{"signed string", "+3", 3},
		{"negative string", "-2", -1},
		{"empty string", "", -1},
		{"letters", "lots", -1},
		{"json number", json.Number("21"), 21},
		{"stringer", stringer("8"), 8},
		{"bool", true, -1},
		{"largest exact", float64(MaxQuantity), MaxQuantity},
		{"huge float saturates", 1e300, MaxQuantity + 1},
		{"huge int64 saturates", int64(1 << 62), MaxQuantity + 1},
		{"out of range string saturates", "99999999999999999999999", MaxQuantity + 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseQuantity(tc.value, -1))
		})
	}
}

func TestKind(t *testing.T) {
	assert.True(t, KindConsumable.Valid())
	assert.False(t, Kind("vehicle").Valid())

	assert.True(t, KindConsumable.Allows(StatusLow))
	assert.False(t, KindConsumable.Allows(StatusUsable))
	assert.True(t, KindFixture.Allows(StatusUsable))
	assert.False(t, KindFixture.Allows(StatusCritical))
	assert.False(t, Kind("vehicle").Allows(StatusDamaged))

	statuses := KindFixture.Statuses()
	statuses[0] = "mutated"
	assert.Equal(t, StatusUsable, KindFixture.Statuses()[0])
}

func TestIdentity(t *testing.T) {
	rec := StockRecord{
		ID: "a", Kind: KindConsumable, Name: "Gloves", Category: "PPE", Status: StatusLow,
		Quantity: 4, LocationMain: "Storeroom", LocationExact: "Shelf A", SiteStatus: SiteOnSite,
	}
	id := rec.Identity()

	moved := id.Relocated("Clinic", "Ward 1", SiteOffSite)
	assert.True(t, id.SameItem(moved))
	assert.NotEqual(t, id, moved)
	assert.Equal(t, "Storeroom", id.LocationMain, "Relocated must not modify the receiver")

	assert.Equal(t, id.Key(), rec.Identity().Key())
	assert.NotEqual(t, id.Key(), moved.Key())
	assert.Len(t, id.Key(), 64)

	// the separator keeps shifted boundaries from colliding
	a := Identity{Name: "ab", Category: "c"}
	b := Identity{Name: "a", Category: "bc"}
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestStockRecordMatches(t *testing.T) {
	rec := StockRecord{Kind: KindFixture, Name: "Folding Table", Category: "Furniture", Status: StatusUsable, LocationMain: "Hall", LocationExact: "Stage"}

	assert.True(t, rec.Matches(""))
	assert.True(t, rec.Matches("folding"))
	assert.True(t, rec.Matches("STAGE"))
	assert.True(t, rec.Matches("fixture"))
	assert.False(t, rec.Matches("chair"))
}

func TestSiteStatus(t *testing.T) {
	assert.True(t, SiteOnSite.Valid())
	assert.False(t, SiteStatus("nearby").Valid())
	assert.Equal(t, "On Site", SiteOnSite.Label())
	assert.Equal(t, "Off Site", SiteOffSite.Label())
}

func TestCommsStatusValid(t *testing.T) {
	for _, s := range CommsStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, CommsStatus("online").Valid())
}

func TestValidationError(t *testing.T) {
	single := NewValidationError("name", "required")
	assert.Equal(t, "validation: name: required", single.Error())
	assert.True(t, errors.Is(single, ErrValidation))

	multi := &ValidationError{Errors: []FieldError{{Field: "name"}, {Field: "status"}}}
	assert.Equal(t, "validation: 2 errors (name, status)", multi.Error())

	var target *ValidationError
	require.True(t, errors.As(error(multi), &target))
	assert.Len(t, target.Errors, 2)
}

func TestSeverityRank(t *testing.T) {
	assert.Less(t, SeverityHigh.Rank(), SeverityMed.Rank())
}
