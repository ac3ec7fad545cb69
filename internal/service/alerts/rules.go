package alerts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

// Links to the record pages of the front end.
const (
	LinkConsumables = "consumable-records.html"
	LinkFixtures    = "fixture-records.html"
	LinkComms       = "communications.html"
)

var stockRules = map[models.Kind]map[models.StockStatus]models.Severity{
	models.KindConsumable: {
		models.StatusCritical: models.SeverityHigh,
		models.StatusMissing:  models.SeverityHigh,
		models.StatusDamaged:  models.SeverityMed,
		models.StatusLow:      models.SeverityMed,
	},
	models.KindFixture: {
		models.StatusMissing: models.SeverityHigh,
		models.StatusDamaged: models.SeverityMed,
	},
}

var commsRules = map[models.CommsStatus]models.Severity{
	models.CommsSpoilt: models.SeverityHigh,
}

// DeriveAlerts classifies records into alerts ordered by severity. Stock alerts
// precede comms alerts of equal severity and input order is otherwise kept.
func DeriveAlerts(stock []models.StockRecord, comms []models.CommsRecord) []models.AlertDescriptor {
	out := make([]models.AlertDescriptor, 0)

	for _, r := range stock {
		sev, ok := stockRules[r.Kind][r.Status]
		if !ok {
			continue
		}
		module, link := models.ModuleConsumable, LinkConsumables
		if r.Kind == models.KindFixture {
			module, link = models.ModuleFixture, LinkFixtures
		}
		title := strings.TrimSpace(r.Name)
		if title == "" {
			title = "Unnamed"
		}
		out = append(out, models.AlertDescriptor{
			Module:   module,
			Title:    title,
			Status:   string(r.Status),
			Location: strings.TrimSpace(r.LocationMain + " / " + r.LocationExact),
			Severity: sev,
			Link:     link,
		})
	}

	for _, r := range comms {
		sev, ok := commsRules[r.Status]
		if !ok {
			continue
		}
		title := fmt.Sprintf("Set %d", r.SetNumber)
		if cs := strings.TrimSpace(r.CallSign); cs != "" {
			title += " (" + cs + ")"
		}
		out = append(out, models.AlertDescriptor{
			Module:   models.ModuleComms,
			Title:    title,
			Status:   string(r.Status),
			Location: strings.TrimSpace(r.Location),
			Severity: sev,
			Link:     LinkComms,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Severity.Rank() < out[j].Severity.Rank() })
	return out
}

// CountBySeverity tallies alerts per severity.
func CountBySeverity(alerts []models.AlertDescriptor) map[models.Severity]int {
	counts := map[models.Severity]int{models.SeverityHigh: 0, models.SeverityMed: 0}
	for _, a := range alerts {
		counts[a.Severity]++
	}
	return counts
}
