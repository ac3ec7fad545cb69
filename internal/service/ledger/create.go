package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

// AddOrMerge adds quantity to the pile matching the input's identity tuple, or
// creates the pile when none exists. Negative quantity counts as 0.
func (s *Service) AddOrMerge(ctx context.Context, in StockInput) (res AddResult, err error) {
	defer func() { observe("add_or_merge", err) }()

	if err := in.Validate(); err != nil {
		return AddResult{}, err
	}
	if in.Quantity < 0 {
		in.Quantity = 0
	}
	id := in.identity()

	err = s.withRetry(ctx, "add or merge", func(ctx context.Context) error {
		existing, found, err := s.resolveIdentity(ctx, id)
		if err != nil {
			return err
		}
		if found {
			rec, err := s.mergeAdd(ctx, existing.ID, id, in.Quantity)
			if err != nil {
				return err
			}
			res = AddResult{Record: rec, Merged: true}
			return nil
		}
		rec, err := s.createStock(ctx, id, in.Quantity)
		if err != nil {
			return err
		}
		res = AddResult{Record: rec}
		return nil
	})
	if err != nil {
		return AddResult{}, err
	}

	s.logger.Info("stock added",
		zap.String("id", res.Record.ID),
		zap.Bool("merged", res.Merged),
		zap.Int("added", in.Quantity),
		zap.Int("quantity", res.Record.Quantity),
	)
	return res, nil
}

// mergeAdd increments the quantity of a resolved pile. The pile vanishing or
// changing identity since resolution is reported as a conflict so the caller
// re-resolves.
func (s *Service) mergeAdd(ctx context.Context, recordID string, id models.Identity, qty int) (models.StockRecord, error) {
	var rec models.StockRecord
	err := s.store.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		doc, err := tx.Get(ctx, stockCollection, recordID)
		if errors.Is(err, recordstore.ErrNotFound) {
			return conflictf("merge target %s deleted", recordID)
		}
		if err != nil {
			return err
		}
		rec = stockFromDoc(doc)
		if rec.Identity() != id {
			return conflictf("merge target %s changed identity", recordID)
		}

		if qty > models.MaxQuantity-rec.Quantity {
			return fmt.Errorf("merge %d into %d on %s: %w", qty, rec.Quantity, recordID, models.ErrInvalidQuantity)
		}
		rec.Quantity += qty
		return tx.Update(ctx, stockCollection, recordID, recordstore.Fields{fieldQuantity: rec.Quantity})
	})
	if err != nil {
		return models.StockRecord{}, err
	}
	return s.reload(ctx, rec), nil
}

func (s *Service) createStock(ctx context.Context, id models.Identity, qty int) (models.StockRecord, error) {
	var newID string
	err := s.store.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		if err := checkStockClaim(ctx, tx, id); err != nil {
			return err
		}
		var err error
		newID, err = tx.Insert(ctx, stockCollection, stockFields(id, qty))
		if err != nil {
			return err
		}
		return putStockClaim(ctx, tx, id, newID)
	})
	if err != nil {
		return models.StockRecord{}, err
	}
	return s.reload(ctx, recordFor(newID, id, qty)), nil
}

// reload re-reads a committed record for its store-assigned timestamps. The
// write already committed, so a failed read falls back to the written values.
func (s *Service) reload(ctx context.Context, written models.StockRecord) models.StockRecord {
	doc, err := s.store.Get(ctx, stockCollection, written.ID)
	if err != nil {
		s.logger.Debug("reload after commit failed", zap.String("id", written.ID), zap.Error(err))
		return written
	}
	return stockFromDoc(doc)
}

func recordFor(recordID string, id models.Identity, qty int) models.StockRecord {
	return models.StockRecord{
		ID:            recordID,
		Kind:          id.Kind,
		Name:          id.Name,
		Category:      id.Category,
		Status:        id.Status,
		Quantity:      qty,
		LocationMain:  id.LocationMain,
		LocationExact: id.LocationExact,
		SiteStatus:    id.SiteStatus,
	}
}
