package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
	"github.com/inderaputra17/JLG-LOGS/internal/repository/recordstore"
)

// UpsertComms writes the radio set identified by its set number, creating it
// when no record holds that number yet.
func (s *Service) UpsertComms(ctx context.Context, in CommsInput) (res CommsResult, err error) {
	defer func() { observe("upsert_comms", err) }()

	if err := in.Validate(); err != nil {
		return CommsResult{}, err
	}

	var recordID string
	err = s.withRetry(ctx, "upsert comms", func(ctx context.Context) error {
		existing, found, err := s.resolveSetNumber(ctx, in.SetNumber)
		if err != nil {
			return err
		}
		if found {
			recordID = existing.ID
			res.Created = false
			return s.store.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
				doc, err := tx.Get(ctx, commsCollection, existing.ID)
				if errors.Is(err, recordstore.ErrNotFound) {
					return conflictf("comms %s deleted", existing.ID)
				}
				if err != nil {
					return err
				}
				if commsFromDoc(doc).SetNumber != in.SetNumber {
					return conflictf("comms %s changed set number", existing.ID)
				}
				return tx.Update(ctx, commsCollection, existing.ID, commsFields(in))
			})
		}

		res.Created = true
		return s.store.RunAtomic(ctx, func(ctx context.Context, tx recordstore.Tx) error {
			if err := checkCommsClaim(ctx, tx, in.SetNumber); err != nil {
				return err
			}
			id, err := tx.Insert(ctx, commsCollection, commsFields(in))
			if err != nil {
				return err
			}
			recordID = id
			return putCommsClaim(ctx, tx, in.SetNumber, id)
		})
	})
	if err != nil {
		return CommsResult{}, err
	}

	res.Record = s.reloadComms(ctx, models.CommsRecord{
		ID:        recordID,
		SetNumber: in.SetNumber,
		Role:      in.Role,
		Location:  in.Location,
		CallSign:  in.CallSign,
		Status:    in.Status,
	})
	s.logger.Info("comms saved",
		zap.String("id", recordID),
		zap.Int("set_number", in.SetNumber),
		zap.Bool("created", res.Created),
	)
	return res, nil
}

// SetCommsStatus changes only the status of a radio set.
func (s *Service) SetCommsStatus(ctx context.Context, recordID string, status models.CommsStatus) (rec models.CommsRecord, err error) {
	defer func() { observe("set_comms_status", err) }()

	if !status.Valid() {
		return models.CommsRecord{}, models.NewValidationError("status", "unknown comms status")
	}
	if err := s.store.Update(ctx, commsCollection, recordID, recordstore.Fields{fieldStatus: string(status)}); err != nil {
		return models.CommsRecord{}, translateErr("set comms status", err)
	}
	rec, err = s.GetComms(ctx, recordID)
	if err != nil {
		return models.CommsRecord{}, err
	}
	s.logger.Info("comms status changed", zap.String("id", recordID), zap.String("status", string(status)))
	return rec, nil
}

// RemoveComms deletes a radio set.
func (s *Service) RemoveComms(ctx context.Context, recordID string) (err error) {
	defer func() { observe("remove_comms", err) }()

	if err := s.store.Delete(ctx, commsCollection, recordID); err != nil {
		return translateErr("remove comms", err)
	}
	s.logger.Info("comms removed", zap.String("id", recordID))
	return nil
}

// ListComms returns every radio set ordered by set number.
func (s *Service) ListComms(ctx context.Context) ([]models.CommsRecord, error) {
	docs, err := s.store.Query(ctx, commsCollection)
	if err != nil {
		return nil, translateErr("list comms", err)
	}
	out := make([]models.CommsRecord, 0, len(docs))
	for _, doc := range docs {
		out = append(out, commsFromDoc(doc))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

// GetComms loads one radio set.
func (s *Service) GetComms(ctx context.Context, recordID string) (models.CommsRecord, error) {
	doc, err := s.store.Get(ctx, commsCollection, recordID)
	if err != nil {
		return models.CommsRecord{}, translateErr(fmt.Sprintf("get comms %s", recordID), err)
	}
	return commsFromDoc(doc), nil
}

func (s *Service) reloadComms(ctx context.Context, written models.CommsRecord) models.CommsRecord {
	doc, err := s.store.Get(ctx, commsCollection, written.ID)
	if err != nil {
		s.logger.Debug("reload after commit failed", zap.String("id", written.ID), zap.Error(err))
		return written
	}
	return commsFromDoc(doc)
}
