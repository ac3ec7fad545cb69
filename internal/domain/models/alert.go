package models

// Severity ranks how urgently an alert needs attention.
type Severity string

const (
	SeverityHigh Severity = "high"
	SeverityMed  Severity = "med"
)

// Rank orders severities for display. Unknown severities sort last.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMed:
		return 1
	default:
		return 9
	}
}

// AlertModule names the record family an alert was raised from.
type AlertModule string

const (
	ModuleConsumable AlertModule = "Consumable"
	ModuleFixture    AlertModule = "Fixture"
	ModuleComms      AlertModule = "Comms"
)

// AlertDescriptor is a derived, unpersisted alert.
type AlertDescriptor struct {
	Module   AlertModule `json:"module"`
	Title    string      `json:"title"`
	Status   string      `json:"status"`
	Location string      `json:"location"`
	Severity Severity    `json:"severity"`
	Link     string      `json:"link"`
}
