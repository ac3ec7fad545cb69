package ledger

import (
	"context"
	"sort"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

// ListStock returns stock records matching the filter, most recently updated first.
func (s *Service) ListStock(ctx context.Context, filter models.StockFilter) ([]models.StockRecord, error) {
	var preds []recordstore.Predicate
	if filter.Kind != "" {
		preds = append(preds, recordstore.Eq(fieldKind, string(filter.Kind)))
	}
	docs, err := s.store.Query(ctx, stockCollection, preds...)
	if err != nil {
		return nil, translateErr("list stock", err)
	}

	out := make([]models.StockRecord, 0, len(docs))
	for _, doc := range docs {
		rec := stockFromDoc(doc)
		if rec.Matches(filter.Search) {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// GetStock loads one stock record.
func (s *Service) GetStock(ctx context.Context, recordID string) (models.StockRecord, error) {
	doc, err := s.store.Get(ctx, stockCollection, recordID)
	if err != nil {
		return models.StockRecord{}, translateErr("get stock", err)
	}
	return stockFromDoc(doc), nil
}
