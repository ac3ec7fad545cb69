package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

// Transfer moves quantity from a source pile to the pile with the same item at
// the destination location, creating the destination when needed. Both writes
// commit together or not at all, and the source is kept even when it reaches 0.
//
// The destination is resolved by query before the atomic unit and re-validated
// by id inside it; quantity preconditions are checked against the values read in
// the atomic unit of the attempt that commits.
func (s *Service) Transfer(ctx context.Context, in TransferInput) (res TransferResult, err error) {
	defer func() { observe("transfer", err) }()

	if err := in.Validate(); err != nil {
		return TransferResult{}, err
	}

	err = s.withRetry(ctx, "transfer", func(ctx context.Context) error {
		srcDoc, err := s.store.Get(ctx, stockCollection, in.SourceID)
		if err != nil {
			return err
		}
		if in.Quantity != nil && *in.Quantity <= 0 {
			return fmt.Errorf("transfer %d from %s: %w", *in.Quantity, in.SourceID, models.ErrInvalidQuantity)
		}
		srcID := stockFromDoc(srcDoc).Identity()
		destID := srcID.Relocated(in.LocationMain, in.LocationExact, in.SiteStatus)
		if destID == srcID {
			return models.NewValidationError("locMain", "destination is the source location")
		}

		dest, found, err := s.resolveIdentity(ctx, destID)
		if err != nil {
			return err
		}
		destRef := ""
		if found {
			destRef = dest.ID
		}

		res, err = s.transferAtomic(ctx, in, srcID, destID, destRef)
		return err
	})
	if err != nil {
		return TransferResult{}, err
	}

	res.Source = s.reload(ctx, res.Source)
	res.Destination = s.reload(ctx, res.Destination)
	s.logger.Info("stock transferred",
		zap.String("source_id", res.Source.ID),
		zap.String("destination_id", res.Destination.ID),
		zap.Int("quantity", res.Quantity),
		zap.Bool("created", res.Created),
	)
	return res, nil
}

func (s *Service) transferAtomic(ctx context.Context, in TransferInput, srcID, destID models.Identity, destRef string) (TransferResult, error) {
	var res TransferResult
	err := s.store.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
		// reads
		srcDoc, err := tx.Get(ctx, stockCollection, in.SourceID)
		if errors.Is(err, recordstore.ErrNotFound) {
			return fmt.Errorf("transfer source %s: %w", in.SourceID, models.ErrNotFound)
		}
		if err != nil {
			return err
		}
		source := stockFromDoc(srcDoc)
		if source.Identity() != srcID {
			return conflictf("transfer source %s changed identity", source.ID)
		}

		var dest models.StockRecord
		if destRef != "" {
			destDoc, err := tx.Get(ctx, stockCollection, destRef)
			switch {
			case errors.Is(err, recordstore.ErrNotFound):
				destRef = ""
			case err != nil:
				return err
			default:
				dest = stockFromDoc(destDoc)
				if dest.Identity() != destID {
					return conflictf("transfer destination %s changed identity", destRef)
				}
			}
		}
		if destRef == "" {
			if err := checkStockClaim(ctx, tx, destID); err != nil {
				return err
			}
		}

		// preconditions against the fresh source
		qty := source.Quantity
		if in.Quantity != nil {
			qty = *in.Quantity
		}
		if qty <= 0 {
			return fmt.Errorf("transfer %d from %s: %w", qty, source.ID, models.ErrInvalidQuantity)
		}
		if qty > source.Quantity {
			return fmt.Errorf("transfer %d of %d from %s: %w", qty, source.Quantity, source.ID, models.ErrInsufficientQuantity)
		}

		// writes
		source.Quantity -= qty
		if err := tx.Update(ctx, stockCollection, source.ID, recordstore.Fields{fieldQuantity: source.Quantity}); err != nil {
			return err
		}

		if destRef != "" {
			if qty > models.MaxQuantity-dest.Quantity {
				return fmt.Errorf("transfer %d onto %d at %s: %w", qty, dest.Quantity, dest.ID, models.ErrInvalidQuantity)
			}
			dest.Quantity += qty
			if err := tx.Update(ctx, stockCollection, dest.ID, recordstore.Fields{fieldQuantity: dest.Quantity}); err != nil {
				return err
			}
			res = TransferResult{Source: source, Destination: dest, Quantity: qty}
			return nil
		}

		newID, err := tx.Insert(ctx, stockCollection, stockFields(destID, qty))
		if err != nil {
			return err
		}
		if err := putStockClaim(ctx, tx, destID, newID); err != nil {
			return err
		}
		res = TransferResult{Source: source, Destination: recordFor(newID, destID, qty), Quantity: qty, Created: true}
		return nil
	})
	return res, err
}
