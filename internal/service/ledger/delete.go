package ledger

import (
	"context"

	"go.uber.org/zap"
)

// Remove deletes a stock record. Nothing cascades.
func (s *Service) Remove(ctx context.Context, recordID string) (err error) {
	defer func() { observe("remove", err) }()

	if err := s.store.Delete(ctx, stockCollection, recordID); err != nil {
		return translateErr("remove stock", err)
	}
	s.logger.Info("stock removed", zap.String("id", recordID))
	return nil
}
