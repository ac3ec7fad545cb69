package ledger

import "github.com/inderaputra17/JLG-LOGS/internal/domain/models"

// AddResult reports the record that absorbed an AddOrMerge call.
type AddResult struct {
	Record models.StockRecord `json:"record"`
	Merged bool               `json:"merged"`
}

// TransferResult holds both piles as committed by a transfer.
type TransferResult struct {
	Source      models.StockRecord `json:"source"`
	Destination models.StockRecord `json:"destination"`
	Quantity    int                `json:"quantity"`
	Created     bool               `json:"created"`
}

// CommsResult reports the record written by UpsertComms.
type CommsResult struct {
	Record  models.CommsRecord `json:"record"`
	Created bool               `json:"created"`
}
