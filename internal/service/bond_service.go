package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ndewijer/bondcalc/internal/apperrors"
	"github.com/ndewijer/bondcalc/internal/config"
	"github.com/ndewijer/bondcalc/internal/model"
	"github.com/ndewijer/bondcalc/internal/moex"
	"github.com/ndewijer/bondcalc/internal/repository"
	"github.com/rs/zerolog"
)

const defaultSearchLimit = 100

// BondService owns the local bond snapshot: it installs refreshed data from
// the exchange and answers search and lookup queries against it.
type BondService struct {
	db             *sql.DB
	bondRepo       *repository.BondRepository
	marketDataRepo *repository.MarketDataRepository
	snapshotRepo   *repository.SnapshotRepository
	client         moex.Client
	excludedBoard  string
	searchLimit    int
	log            zerolog.Logger
	now            func() time.Time
}

// NewBondService creates a new BondService with the provided repository dependencies.
func NewBondService(
	db *sql.DB,
	bondRepo *repository.BondRepository,
	marketDataRepo *repository.MarketDataRepository,
	snapshotRepo *repository.SnapshotRepository,
	client moex.Client,
	cfg *config.Config,
	log zerolog.Logger,
) *BondService {
	limit := cfg.Search.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return &BondService{
		db:             db,
		bondRepo:       bondRepo,
		marketDataRepo: marketDataRepo,
		snapshotRepo:   snapshotRepo,
		client:         client,
		excludedBoard:  cfg.MOEX.ExcludedBoard,
		searchLimit:    limit,
		log:            log.With().Str("component", "bond_service").Logger(),
		now:            time.Now,
	}
}

// RefreshSecurities fetches the full bond list from the exchange and
// replaces the stored securities snapshot with it.
//
// The workflow is:
//  1. Fetch the securities table from ISS
//  2. Drop rows on the excluded board and rows with a placeholder coupon date
//  3. Map every remaining row into a model.Bond, rejecting malformed rows
//  4. In one transaction, delete all bonds, insert the new list and record
//     the snapshot row
//
// Nothing is written before step 4, and step 4 either commits completely or
// not at all, so on any error the previous snapshot stays queryable.
//
// Returns:
//   - Snapshot: the installed snapshot (row and rejection counts, run id)
//   - error: wrapping apperrors.ErrFailedToFetchSecurities or
//     apperrors.ErrFailedToStoreSnapshot
func (s *BondService) RefreshSecurities(ctx context.Context) (model.Snapshot, error) {
	snap := s.newSnapshot(model.SnapshotSecurities)
	log := s.runLogger(snap)
	log.Info().Msg("Loading bonds from MOEX")

	table, err := s.client.FetchSecurities(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch securities, keeping previous snapshot")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchSecurities, err)
	}

	parsed, err := moex.ParseSecurities(table, s.excludedBoard)
	if err != nil {
		log.Error().Err(err).Msg("Failed to map securities, keeping previous snapshot")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchSecurities, err)
	}
	s.logRejected(log, parsed.Rejected)

	if len(parsed.Bonds) == 0 {
		log.Error().Int("fetched", len(table.Data)).Msg("No usable bonds in response, keeping previous snapshot")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchSecurities, apperrors.ErrEmptySnapshot)
	}

	snap.Rows = len(parsed.Bonds)
	snap.Rejected = len(parsed.Rejected)

	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.bondRepo.WithTx(tx).ReplaceBonds(ctx, parsed.Bonds); err != nil {
			return err
		}
		return s.snapshotRepo.WithTx(tx).SaveSnapshot(ctx, snap)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to update bonds, keeping previous snapshot")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToStoreSnapshot, err)
	}

	log.Info().
		Int("fetched", len(table.Data)).
		Int("skipped", parsed.Skipped).
		Int("rejected", snap.Rejected).
		Int("stored", snap.Rows).
		Msg("Updated bonds in db")
	return snap, nil
}

// RefreshMarketData fetches the latest trade prices and replaces the stored
// market data snapshot. Failure semantics match RefreshSecurities; an empty
// price list is a valid snapshot (no trades yet today), in which case reads
// fall back to each bond's previous price.
func (s *BondService) RefreshMarketData(ctx context.Context) (model.Snapshot, error) {
	snap := s.newSnapshot(model.SnapshotMarketData)
	log := s.runLogger(snap)

	table, err := s.client.FetchMarketData(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch market data, keeping previous snapshot")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchMarketData, err)
	}

	parsed, err := moex.ParseMarketData(table, s.excludedBoard)
	if err != nil {
		log.Error().Err(err).Msg("Failed to map market data, keeping previous snapshot")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchMarketData, err)
	}
	s.logRejected(log, parsed.Rejected)

	snap.Rows = len(parsed.Rows)
	snap.Rejected = len(parsed.Rejected)

	err = repository.RunInTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.marketDataRepo.WithTx(tx).ReplaceMarketData(ctx, parsed.Rows); err != nil {
			return err
		}
		return s.snapshotRepo.WithTx(tx).SaveSnapshot(ctx, snap)
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to update market data, keeping previous snapshot")
		return model.Snapshot{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToStoreSnapshot, err)
	}

	log.Debug().
		Int("skipped", parsed.Skipped).
		Int("rejected", snap.Rejected).
		Int("stored", snap.Rows).
		Msg("Updated market data in db")
	return snap, nil
}

// Search finds bonds by name substring, ISIN substring or exact secid,
// case-insensitively, ordered by name. A limit <= 0 uses the configured
// default.
//
// Search never fails loudly: on a storage error it logs and returns an
// empty slice together with an error wrapping apperrors.ErrSearchFailed,
// so callers that only display results can ignore the error.
func (s *BondService) Search(ctx context.Context, query string, limit int) ([]model.Bond, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}

	bonds, err := s.bondRepo.SearchBonds(ctx, query, limit)
	if err != nil {
		s.log.Error().Err(err).Str("query", query).Msg("DB search failed")
		return []model.Bond{}, fmt.Errorf("%w: %w", apperrors.ErrSearchFailed, err)
	}

	s.log.Debug().Str("query", query).Int("found", len(bonds)).Msg("Searched bonds")
	return bonds, nil
}

// Get returns the single bond stored under secID.
//
// Returns:
//   - apperrors.ErrInvalidSecID if secID is empty
//   - apperrors.ErrBondNotFound if no bond, or more than one bond, has secID
//   - an error wrapping apperrors.ErrFailedToRetrieveBond on storage errors
func (s *BondService) Get(ctx context.Context, secID string) (*model.Bond, error) {
	if secID == "" {
		return nil, apperrors.ErrInvalidSecID
	}

	bonds, err := s.bondRepo.GetBondsBySecID(ctx, secID, 2)
	if err != nil {
		s.log.Error().Err(err).Str("secid", secID).Msg("Loading bond failed")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrFailedToRetrieveBond, err)
	}

	switch len(bonds) {
	case 0:
		return nil, apperrors.ErrBondNotFound
	case 1:
		return &bonds[0], nil
	default:
		s.log.Warn().
			Err(apperrors.ErrDataInconsistency).
			Str("secid", secID).
			Msg("Secid is stored more than once, treating as not found")
		return nil, apperrors.ErrBondNotFound
	}
}

// Status returns the last installed snapshot of each table. Tables that
// were never refreshed are absent.
func (s *BondService) Status(ctx context.Context) ([]model.Snapshot, error) {
	return s.snapshotRepo.GetSnapshots(ctx)
}

// LastRefresh returns the installed snapshot of kind, or
// apperrors.ErrSnapshotNotFound when that table was never refreshed.
func (s *BondService) LastRefresh(ctx context.Context, kind model.SnapshotKind) (model.Snapshot, error) {
	return s.snapshotRepo.GetSnapshot(ctx, kind)
}

// Counts returns how many bonds and live prices are stored right now.
func (s *BondService) Counts(ctx context.Context) (bonds, prices int, err error) {
	if bonds, err = s.bondRepo.CountBonds(ctx); err != nil {
		return 0, 0, err
	}
	if prices, err = s.marketDataRepo.CountMarketData(ctx); err != nil {
		return 0, 0, err
	}
	return bonds, prices, nil
}

func (s *BondService) newSnapshot(kind model.SnapshotKind) model.Snapshot {
	return model.Snapshot{
		Kind:        kind,
		RunID:       uuid.New().String(),
		RefreshedAt: s.now().UTC(),
	}
}

func (s *BondService) runLogger(snap model.Snapshot) zerolog.Logger {
	return s.log.With().
		Str("snapshot", string(snap.Kind)).
		Str("run_id", snap.RunID).
		Logger()
}

func (s *BondService) logRejected(log zerolog.Logger, rejected []*moex.RowError) {
	for _, rerr := range rejected {
		log.Debug().Err(rerr).Msg("Rejected malformed row")
	}
	if len(rejected) > 0 {
		log.Warn().Int("rejected", len(rejected)).Msg("Upstream rows failed validation")
	}
}
