package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/storage"
)

type TournamentService interface {
	List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	GetByID(ctx context.Context, tournamentID string) (*models.Tournament, error)
	ListTeams(ctx context.Context, tournamentID string) ([]models.Team, error)
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	uploader       storage.FileUploader
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		uploader:       uploader,
		logger:         logger,
	}
}

func (s *tournamentService) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	if filter.Status != nil {
		switch *filter.Status {
		case models.StatusUpcoming, models.StatusActive, models.StatusCompleted:
		default:
			return nil, fmt.Errorf("%w: unknown tournament status %q", ErrValidationFailed, *filter.Status)
		}
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrValidationFailed)
	}

	tournaments, err := s.tournamentRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// GetByID returns the tournament with its roster attached.
func (s *tournamentService) GetByID(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	var (
		tournament *models.Tournament
		teams      []models.Team
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(gCtx, tournamentID)
		return handleRepositoryError(err)
	})
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.ListByTournament(gCtx, nil, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tournament.Teams = s.populateLogoURLs(teams)
	return tournament, nil
}

func (s *tournamentService) ListTeams(ctx context.Context, tournamentID string) ([]models.Team, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %s: %w", tournamentID, err)
	}
	return s.populateLogoURLs(teams), nil
}

func (s *tournamentService) populateLogoURLs(teams []models.Team) []models.Team {
	if s.uploader == nil {
		return teams
	}
	for i := range teams {
		if teams[i].LogoKey != nil && *teams[i].LogoKey != "" {
			url := s.uploader.GetPublicURL(*teams[i].LogoKey)
			teams[i].LogoURL = &url
		}
	}
	return teams
}
