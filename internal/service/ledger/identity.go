package ledger

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

// FindByIdentity returns the record holding the identity tuple. When several
// records share it (possible after UpdateFields), the oldest one wins.
func (s *Service) FindByIdentity(ctx context.Context, id models.Identity) (models.StockRecord, bool, error) {
	rec, found, err := s.resolveIdentity(ctx, id)
	if err != nil {
		return models.StockRecord{}, false, translateErr("find by identity", err)
	}
	return rec, found, nil
}

// FindBySetNumber returns the comms record for a set number.
func (s *Service) FindBySetNumber(ctx context.Context, setNumber int) (models.CommsRecord, bool, error) {
	rec, found, err := s.resolveSetNumber(ctx, setNumber)
	if err != nil {
		return models.CommsRecord{}, false, translateErr("find by set number", err)
	}
	return rec, found, nil
}

func (s *Service) resolveIdentity(ctx context.Context, id models.Identity) (models.StockRecord, bool, error) {
	docs, err := s.store.Query(ctx, stockCollection, identityPredicates(id)...)
	if err != nil {
		return models.StockRecord{}, false, err
	}
	if len(docs) == 0 {
		s.logger.Debug("identity not found", zap.String("name", id.Name), zap.String("loc_main", id.LocationMain))
		return models.StockRecord{}, false, nil
	}
	if len(docs) > 1 {
		s.logger.Warn("duplicate records share one identity",
			zap.Int("count", len(docs)),
			zap.String("first_id", docs[0].ID),
			zap.String("name", id.Name),
		)
	}
	return stockFromDoc(docs[0]), true, nil
}

func (s *Service) resolveSetNumber(ctx context.Context, setNumber int) (models.CommsRecord, bool, error) {
	docs, err := s.store.Query(ctx, commsCollection, recordstore.Eq(fieldSetNumber, setNumber))
	if err != nil {
		return models.CommsRecord{}, false, err
	}
	if len(docs) == 0 {
		return models.CommsRecord{}, false, nil
	}
	if len(docs) > 1 {
		s.logger.Warn("duplicate comms records share one set number",
			zap.Int("count", len(docs)), zap.Int("set_number", setNumber))
	}
	return commsFromDoc(docs[0]), true, nil
}

// checkStockClaim reads the identity claim inside tx. A claim pointing at a live
// record of the same identity means the pile was created after it was resolved.
func checkStockClaim(ctx context.Context, tx recordstore.Tx, id models.Identity) error {
	claim, err := tx.Get(ctx, stockClaimCollection, id.Key())
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	claimed := text(claim.Fields[fieldClaimRecordID])
	if claimed == "" {
		return nil
	}
	doc, err := tx.Get(ctx, stockCollection, claimed)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if stockFromDoc(doc).Identity() == id {
		return conflictf("identity claimed by %s", claimed)
	}
	return nil
}

func putStockClaim(ctx context.Context, tx recordstore.Tx, id models.Identity, recordID string) error {
	if err := tx.Put(ctx, stockClaimCollection, id.Key(), recordstore.Fields{fieldClaimRecordID: recordID}); err != nil {
		return fmt.Errorf("claim identity: %w", err)
	}
	return nil
}

func checkCommsClaim(ctx context.Context, tx recordstore.Tx, setNumber int) error {
	claim, err := tx.Get(ctx, commsClaimCollection, commsClaimKey(setNumber))
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	claimed := text(claim.Fields[fieldClaimRecordID])
	if claimed == "" {
		return nil
	}
	doc, err := tx.Get(ctx, commsCollection, claimed)
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if commsFromDoc(doc).SetNumber == setNumber {
		return conflictf("set %d claimed by %s", setNumber, claimed)
	}
	return nil
}

func putCommsClaim(ctx context.Context, tx recordstore.Tx, setNumber int, recordID string) error {
	if err := tx.Put(ctx, commsClaimCollection, commsClaimKey(setNumber), recordstore.Fields{fieldClaimRecordID: recordID}); err != nil {
		return fmt.Errorf("claim set number: %w", err)
	}
	return nil
}
