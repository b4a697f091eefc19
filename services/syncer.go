package services

import (
	"context"
	"fmt"
	"time"

	"flyer-deals/metrics"
	"flyer-deals/models"
	"flyer-deals/storage"
	"flyer-deals/utils"
)

// DefaultBatchSize is the number of deals sent per upsert call.
const DefaultBatchSize = 100

// FlyerSource is the read side of the flyer API.
type FlyerSource interface {
	PostalCode(ctx context.Context, postalCode string) (*models.Location, error)
	Flyers(ctx context.Context, postalCode string) ([]models.Flyer, error)
	FlyerItems(ctx context.Context, flyerID int64) ([]models.RawItem, error)
}

// SyncOptions are the optional collaborators of a Syncer.
type SyncOptions struct {
	BatchSize int
	Now       func() time.Time

	// Snapshot, when set, receives every fetched deal before the store is touched.
	Snapshot storage.DealSnapshotWriter
	Metrics  *metrics.SyncMetrics
}

// SyncResult describes one completed run.
type SyncResult struct {
	Location *models.Location
	Deals    []*models.Deal
	Expired  int64
	Batches  int
}

// Syncer fetches deals for a location and reconciles them into a DealStore:
// expired rows are deleted, then fresh deals are upserted on their natural key.
type Syncer struct {
	source     FlyerSource
	store      storage.DealStore
	stores     models.StoreIndex
	classifier *Classifier
	normalizer *Normalizer
	logger     *utils.Logger

	batchSize int
	now       func() time.Time
	snapshot  storage.DealSnapshotWriter
	metrics   *metrics.SyncMetrics
}

// NewSyncer wires a Syncer. stores is read-only for the Syncer's lifetime.
func NewSyncer(source FlyerSource, store storage.DealStore, stores models.StoreIndex,
	classifier *Classifier, normalizer *Normalizer, logger *utils.Logger, opts SyncOptions) *Syncer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Syncer{
		source:     source,
		store:      store,
		stores:     stores,
		classifier: classifier,
		normalizer: normalizer,
		logger:     logger,
		batchSize:  opts.BatchSize,
		now:        opts.Now,
		snapshot:   opts.Snapshot,
		metrics:    opts.Metrics,
	}
}

// Sync runs one fetch-and-reconcile pass and returns the number of deals synced.
func (s *Syncer) Sync(ctx context.Context, postalCode string) (int, error) {
	res, err := s.Run(ctx, postalCode)
	if err != nil {
		return 0, err
	}
	return len(res.Deals), nil
}

// Run is Sync with the full result. Only persistence errors are returned;
// flyer API failures shrink the fetched set instead.
func (s *Syncer) Run(ctx context.Context, postalCode string) (res *SyncResult, err error) {
	started := s.now()
	defer func() { s.metrics.Finished(started, s.now(), err) }()

	res = &SyncResult{}
	res.Location = s.resolveLocation(ctx, postalCode)
	res.Deals = s.FetchDeals(ctx, postalCode)

	if len(res.Deals) == 0 {
		s.logger.Info("[sync] No deals found to sync")
		return res, nil
	}

	s.writeSnapshot(res.Deals)

	today := s.now().Format("2006-01-02")
	res.Expired, err = s.store.DeleteExpired(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("sync: delete expired: %w", err)
	}
	s.metrics.ExpiredDeleted(res.Expired)
	s.logger.Info("[sync] Cleaned up %d expired deals (valid_to before %s)", res.Expired, today)

	for start := 0; start < len(res.Deals); start += s.batchSize {
		end := min(start+s.batchSize, len(res.Deals))
		batch := res.Deals[start:end]
		if err := s.store.UpsertDeals(ctx, batch, models.DealConflictKey); err != nil {
			return nil, fmt.Errorf("sync: upsert deals %d-%d: %w", start, end-1, err)
		}
		res.Batches++
		s.metrics.BatchUpserted(len(batch))
		s.logger.Debug("[sync] Upserted batch %d (%d deals)", res.Batches, len(batch))
	}

	s.logger.Info("[sync] Synced %d deals in %d batches", len(res.Deals), res.Batches)
	return res, nil
}

// FetchDeals collects normalized deals from every flyer of a priority store.
// API failures are logged and treated as empty results.
func (s *Syncer) FetchDeals(ctx context.Context, postalCode string) []*models.Deal {
	flyers, err := s.source.Flyers(ctx, postalCode)
	if err != nil {
		s.logger.Error("[sync] Error fetching flyers: %v", err)
		s.metrics.FetchError("flyers")
		flyers = nil
	}
	s.logger.Info("[sync] Found %d flyers for zip code %s", len(flyers), postalCode)

	var deals []*models.Deal
	for i := range flyers {
		flyer := &flyers[i]

		slug, ok := s.classifier.MatchStore(flyer.Merchant)
		if !ok {
			s.metrics.FlyerSeen("unmatched")
			continue
		}
		storeID, ok := s.stores.Lookup(slug)
		if !ok {
			s.logger.Warn("[sync] Store %s not found in database", slug)
			s.metrics.FlyerSeen("unknown_store")
			continue
		}
		s.metrics.FlyerSeen("matched")

		s.logger.Info("[sync] Fetching items from %s (flyer %d)...", flyer.Merchant, flyer.ID)
		items, err := s.source.FlyerItems(ctx, flyer.ID)
		if err != nil {
			s.logger.Error("[sync] Error fetching flyer items: %v", err)
			s.metrics.FetchError("items")
			items = nil
		}

		kept := 0
		for j := range items {
			if deal := s.normalizer.Normalize(flyer, &items[j], storeID); deal != nil {
				deals = append(deals, deal)
				kept++
			}
		}
		s.metrics.DealsNormalized(slug, kept)
		s.logger.Info("[sync]   Found %d items", len(items))
	}

	return deals
}

func (s *Syncer) resolveLocation(ctx context.Context, postalCode string) *models.Location {
	loc, err := s.source.PostalCode(ctx, postalCode)
	if err != nil {
		s.logger.Warn("[sync] Error getting postal code data: %v", err)
		s.metrics.FetchError("postal_code")
		return nil
	}
	if loc.City != "" {
		s.logger.Info("[sync] Zip code %s resolves to %s, %s", postalCode, loc.City, loc.Province)
	}
	return loc
}

func (s *Syncer) writeSnapshot(deals []*models.Deal) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot.WriteDeals(deals); err != nil {
		s.logger.Warn("[sync] Snapshot write failed: %v", err)
		return
	}
	s.logger.Info("[sync] Wrote %d deals to snapshot", len(deals))
}
