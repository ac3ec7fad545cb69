package ledger

import (
	"context"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

// FindDuplicates groups stock records that share an identity tuple. Groups come
// back in order of their oldest record; nothing is repaired.
func (s *Service) FindDuplicates(ctx context.Context) ([]models.DuplicateGroup, error) {
	docs, err := s.store.Query(ctx, stockCollection)
	if err != nil {
		return nil, translateErr("find duplicates", err)
	}

	index := make(map[models.Identity]int)
	var groups []models.DuplicateGroup
	for _, doc := range docs {
		rec := stockFromDoc(doc)
		id := rec.Identity()
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, models.DuplicateGroup{Identity: id})
		}
		groups[i].Records = append(groups[i].Records, rec)
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Records) > 1 {
			out = append(out, g)
		}
	}
	return out, nil
}
