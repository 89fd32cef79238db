package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Dosada05/league-system/brackets"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
	"github.com/Dosada05/league-system/storage"
)

type UpdateMatchInput struct {
	Date   *string             `json:"date,omitempty" example:"2026-03-14"`
	Time   *string             `json:"time,omitempty" example:"20:00"`
	Status *models.MatchStatus `json:"status,omitempty" example:"cancelled"`
}

type RecordResultInput struct {
	HomeScore int     `json:"home_score" example:"2"`
	AwayScore int     `json:"away_score" example:"1"`
	Notes     *string `json:"notes,omitempty"`
}

type MatchService interface {
	ListByTournament(ctx context.Context, tournamentID string, filter repositories.ListMatchesFilter) ([]models.Match, error)
	GetByID(ctx context.Context, matchID string) (*models.Match, error)
	UpdateDetails(ctx context.Context, matchID string, input UpdateMatchInput) (*models.Match, error)
	RecordResult(ctx context.Context, matchID string, input RecordResultInput, recordedBy string) (*models.Match, error)
	ListResults(ctx context.Context, matchID string) ([]models.MatchResult, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	matchRepo      repositories.MatchRepository
	resultRepo     repositories.MatchResultRepository
	standings      StandingsService
	cache          storage.StandingsCache
	notifier       Notifier
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	matchRepo repositories.MatchRepository,
	resultRepo repositories.MatchResultRepository,
	standingsService StandingsService,
	cache storage.StandingsCache,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	if cache == nil {
		cache = storage.NoopStandingsCache{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		matchRepo:      matchRepo,
		resultRepo:     resultRepo,
		standings:      standingsService,
		cache:          cache,
		notifier:       notifier,
		logger:         logger,
	}
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID string, filter repositories.ListMatchesFilter) ([]models.Match, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidationFailed, *filter.Status)
	}
	if filter.Matchday != nil && *filter.Matchday < 1 {
		return nil, fmt.Errorf("%w: matchday must be positive", ErrValidationFailed)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return match, nil
}

// UpdateDetails moves a fixture in the calendar or cancels it. Played
// matches are frozen.
func (s *matchService) UpdateDetails(ctx context.Context, matchID string, input UpdateMatchInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if match.Status == models.MatchStatusCompleted {
		return nil, ErrMatchAlreadyCompleted
	}

	date, kickoff, status := match.Date, match.Time, match.Status
	if input.Date != nil {
		d, err := parseDate(*input.Date)
		if err != nil {
			return nil, err
		}
		date = d.Format(brackets.DateLayout)
	}
	if input.Time != nil {
		if kickoff, err = brackets.ParseKickoff(*input.Time); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		switch *input.Status {
		case models.MatchStatusPending, models.MatchStatusCancelled:
			status = *input.Status
		default:
			return nil, fmt.Errorf("%w: got %q", ErrInvalidMatchStatus, *input.Status)
		}
	}

	if err := s.matchRepo.UpdateDetails(ctx, nil, matchID, date, kickoff, status); err != nil {
		return nil, handleRepositoryError(err)
	}
	match.Date, match.Time, match.Status = date, kickoff, status

	s.logger.Info("match details updated", "match_id", matchID, "date", date, "time", kickoff, "status", status)
	s.notifier.NotifyTournament(match.TournamentID, brackets.EventMatchUpdated, match)
	return match, nil
}

// RecordResult stores a final score. A completed match may be corrected;
// every call is kept in the result history.
func (s *matchService) RecordResult(ctx context.Context, matchID string, input RecordResultInput, recordedBy string) (*models.Match, error) {
	if input.HomeScore < 0 || input.AwayScore < 0 {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidScore, input.HomeScore, input.AwayScore)
	}

	var match *models.Match
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		var err error
		if match, err = s.matchRepo.GetByID(ctx, tx, matchID); err != nil {
			return handleRepositoryError(err)
		}
		if match.Status == models.MatchStatusCancelled {
			return ErrMatchCancelled
		}
		if err := standings.Validate(models.CompletedMatch{
			HomeTeamID: match.HomeTeamID,
			AwayTeamID: match.AwayTeamID,
			HomeScore:  input.HomeScore,
			AwayScore:  input.AwayScore,
		}); err != nil {
			return err
		}
		if err := s.matchRepo.UpdateResult(ctx, tx, matchID, input.HomeScore, input.AwayScore); err != nil {
			return handleRepositoryError(err)
		}
		return s.resultRepo.Create(ctx, tx, &models.MatchResult{
			MatchID:    matchID,
			HomeScore:  input.HomeScore,
			AwayScore:  input.AwayScore,
			RecordedBy: recordedBy,
			Notes:      input.Notes,
		})
	})
	if err != nil {
		return nil, err
	}

	home, away := input.HomeScore, input.AwayScore
	match.HomeScore, match.AwayScore = &home, &away
	match.Status = models.MatchStatusCompleted

	s.logger.Info("match result recorded",
		"match_id", matchID,
		"tournament_id", match.TournamentID,
		"score", fmt.Sprintf("%d-%d", home, away),
		"recorded_by", recordedBy,
	)

	if err := s.cache.Invalidate(ctx, match.TournamentID); err != nil {
		s.logger.Warn("failed to invalidate standings cache", "tournament_id", match.TournamentID, "error", err)
	}
	s.notifier.NotifyTournament(match.TournamentID, brackets.EventMatchUpdated, match)

	if s.standings != nil {
		table, err := s.standings.GetStandings(ctx, match.TournamentID)
		if err != nil {
			s.logger.Error("failed to refresh standings after result", "tournament_id", match.TournamentID, "error", err)
		} else {
			s.notifier.NotifyTournament(match.TournamentID, brackets.EventStandingsUpdated, table)
		}
	}

	return match, nil
}

func (s *matchService) ListResults(ctx context.Context, matchID string) ([]models.MatchResult, error) {
	if _, err := s.matchRepo.GetByID(ctx, nil, matchID); err != nil {
		return nil, handleRepositoryError(err)
	}
	results, err := s.resultRepo.ListByMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results of match %s: %w", matchID, err)
	}
	return results, nil
}
