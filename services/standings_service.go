package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
	"github.com/Dosada05/league-system/storage"
)

const statisticsConcurrency = 4

type ExportResult struct {
	TournamentID string    `json:"tournament_id"`
	Key          string    `json:"key"`
	URL          string    `json:"url"`
	ExportedAt   time.Time `json:"exported_at"`
}

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID string) (*models.TournamentStats, error)
	GetAllStatistics(ctx context.Context) ([]models.TournamentStats, error)
	ExportStandings(ctx context.Context, tournamentID string) (*ExportResult, error)
}

type standingsService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	cache          storage.StandingsCache
	uploader       storage.FileUploader
	logger         *slog.Logger
	now            func() time.Time
}

// NewStandingsService wires the standings reader. uploader may be nil, in
// which case exports fail with ErrExportDisabled.
func NewStandingsService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	cache storage.StandingsCache,
	uploader storage.FileUploader,
	logger *slog.Logger,
) StandingsService {
	if cache == nil {
		cache = storage.NoopStandingsCache{}
	}
	return &standingsService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		cache:          cache,
		uploader:       uploader,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *standingsService) GetStandings(ctx context.Context, tournamentID string) (*models.TournamentStats, error) {
	if cached, ok, err := s.cache.Get(ctx, tournamentID); err != nil {
		s.logger.Warn("standings cache read failed", "tournament_id", tournamentID, "error", err)
	} else if ok {
		return cached, nil
	}

	var (
		tournament *models.Tournament
		teams      []models.Team
		completed  []models.CompletedMatch
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(gCtx, tournamentID)
		return handleRepositoryError(err)
	})
	g.Go(func() error {
		var err error
		if teams, err = s.teamRepo.ListByTournament(gCtx, nil, tournamentID); err != nil {
			return fmt.Errorf("failed to list teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if completed, err = s.matchRepo.ListCompletedByTournament(gCtx, nil, tournamentID); err != nil {
			return fmt.Errorf("failed to list completed matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table, err := standings.Compute(teams, completed)
	if err != nil {
		return nil, fmt.Errorf("failed to compute standings for tournament %s: %w", tournamentID, err)
	}

	stats := &models.TournamentStats{
		TournamentID:   tournament.ID,
		TournamentName: tournament.Name,
		Teams:          table,
	}
	if err := s.cache.Set(ctx, stats); err != nil {
		s.logger.Warn("standings cache write failed", "tournament_id", tournamentID, "error", err)
	}
	return stats, nil
}

// GetAllStatistics returns the table of every tournament in listing order.
func (s *standingsService) GetAllStatistics(ctx context.Context) ([]models.TournamentStats, error) {
	tournaments, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}

	all := make([]models.TournamentStats, len(tournaments))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(statisticsConcurrency)
	for i, t := range tournaments {
		i, id := i, t.ID
		g.Go(func() error {
			stats, err := s.GetStandings(gCtx, id)
			if err != nil {
				return fmt.Errorf("tournament %s: %w", id, err)
			}
			all[i] = *stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

// ExportStandings uploads a JSON snapshot of the current table and returns
// where it can be downloaded.
func (s *standingsService) ExportStandings(ctx context.Context, tournamentID string) (*ExportResult, error) {
	if s.uploader == nil {
		return nil, ErrExportDisabled
	}

	stats, err := s.GetStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	exportedAt := s.now().UTC()
	payload, err := json.MarshalIndent(struct {
		*models.TournamentStats
		ExportedAt time.Time `json:"exported_at"`
	}{stats, exportedAt}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings: %w", err)
	}

	key := fmt.Sprintf("standings/%s/%s.json", tournamentID, exportedAt.Format("20060102T150405Z"))
	uploaded, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}

	s.logger.Info("standings exported", "tournament_id", tournamentID, "key", uploaded.Key)
	return &ExportResult{
		TournamentID: tournamentID,
		Key:          uploaded.Key,
		URL:          uploaded.Location,
		ExportedAt:   exportedAt,
	}, nil
}
