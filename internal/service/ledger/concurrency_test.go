package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inderaputra17/JLG-LOGS/internal/domain/models"
)

func newContendedService(t *testing.T, factory storeFactory) (*Service, func() int) {
	st := factory(t)
	svc := NewService(st, nil, WithRetry(200, time.Millisecond))
	return svc, func() int { return countStock(t, st) }
}

func TestConcurrentAddOrMerge_KeepsOneRecordPerIdentity(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, count := newContendedService(t, factory)

			const workers = 12
			var wg sync.WaitGroup
			errs := make(chan error, workers)
			for i := 1; i <= workers; i++ {
				wg.Add(1)
				go func(qty int) {
					defer wg.Done()
					_, err := svc.AddOrMerge(ctx, bandages(qty))
					errs <- err
				}(i)
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			assert.Equal(t, 1, count())
			rec, found, err := svc.FindByIdentity(ctx, bandages(0).identity())
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, workers*(workers+1)/2, rec.Quantity)
		})
	}
}

func TestConcurrentTransfers_ConserveQuantity(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			svc, count := newContendedService(t, factory)

			created, err := svc.AddOrMerge(ctx, bandages(40))
			require.NoError(t, err)
			source := created.Record

			destinations := []TransferInput{
				toWard(source.ID, intPtr(1)),
				{SourceID: source.ID, LocationMain: "Ward2", LocationExact: "Cabinet1", SiteStatus: models.SiteOnSite, Quantity: intPtr(1)},
				{SourceID: source.ID, LocationMain: "Van", LocationExact: "Rear", SiteStatus: models.SiteOffSite, Quantity: intPtr(1)},
			}

			const rounds = 5
			var wg sync.WaitGroup
			errs := make(chan error, rounds*len(destinations))
			for r := 0; r < rounds; r++ {
				for _, in := range destinations {
					wg.Add(1)
					go func(in TransferInput) {
						defer wg.Done()
						_, err := svc.Transfer(ctx, in)
						errs <- err
					}(in)
				}
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				require.NoError(t, err)
			}

			all, err := svc.ListStock(ctx, models.StockFilter{})
			require.NoError(t, err)
			total := 0
			for _, rec := range all {
				assert.GreaterOrEqual(t, rec.Quantity, 0)
				total += rec.Quantity
			}
			assert.Equal(t, 40, total)
			assert.Equal(t, 4, count())

			got, err := svc.GetStock(ctx, source.ID)
			require.NoError(t, err)
			assert.Equal(t, 40-rounds*len(destinations), got.Quantity)

			dups, err := svc.FindDuplicates(ctx)
			require.NoError(t, err)
			assert.Empty(t, dups)
		})
	}
}

func TestConcurrentTransfers_NeverOverdraw(t *testing.T) {
	ctx := context.Background()
	svc, _ := newContendedService(t, storeFactories()["memory"])

	created, err := svc.AddOrMerge(ctx, bandages(5))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(ctx, toWard(created.Record.ID, intPtr(2)))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok, insufficient := 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		default:
			require.ErrorIs(t, err, models.ErrInsufficientQuantity)
			insufficient++
		}
	}
	assert.Equal(t, 2, ok)
	assert.Equal(t, workers-2, insufficient)

	got, err := svc.GetStock(ctx, created.Record.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Quantity)
}
