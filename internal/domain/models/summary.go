package models

// KindSummary aggregates record count and quantity for one kind.
type KindSummary struct {
	Records  int `json:"records"`
	Quantity int `json:"quantity"`
}

// DashboardSummary is the overview shown next to the alert list.
type DashboardSummary struct {
	TotalRecords int              `json:"totalRecords"`
	Consumables  KindSummary      `json:"consumables"`
	Fixtures     KindSummary      `json:"fixtures"`
	Comms        int              `json:"comms"`
	Alerts       map[Severity]int `json:"alerts"`
}
