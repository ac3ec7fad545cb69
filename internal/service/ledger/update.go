package ledger

import (
	"context"

	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

// UpdateFields replaces the editable fields of a stock record. A negative
// quantity keeps the stored one. The identity tuple is not deduplicated here,
// so an edit may leave two records on one identity (see FindDuplicates).
func (s *Service) UpdateFields(ctx context.Context, recordID string, in StockInput) (rec models.StockRecord, err error) {
	defer func() { observe("update", err) }()

	if err := in.Validate(); err != nil {
		return models.StockRecord{}, err
	}

	doc, err := s.store.Get(ctx, stockCollection, recordID)
	if err != nil {
		return models.StockRecord{}, translateErr("update stock", err)
	}
	prior := stockFromDoc(doc)

	qty := in.Quantity
	if qty < 0 {
		qty = prior.Quantity
	}
	if err := s.store.Update(ctx, stockCollection, recordID, stockFields(in.identity(), qty)); err != nil {
		return models.StockRecord{}, translateErr("update stock", err)
	}

	rec = s.reload(ctx, recordFor(recordID, in.identity(), qty))
	s.logger.Info("stock updated",
		zap.String("id", recordID),
		zap.Int("quantity", rec.Quantity),
		zap.Bool("identity_changed", prior.Identity() != in.identity()),
	)
	return rec, nil
}
