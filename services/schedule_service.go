package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/league-system/brackets"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/storage"
)

type GenerateScheduleInput struct {
	// StartDate is YYYY-MM-DD; the tournament start date is used when empty.
	StartDate string `json:"start_date" example:"2026-03-07"`
	// DefaultTime is the HH:MM kickoff of every fixture.
	DefaultTime       string `json:"default_time" example:"18:00"`
	RoundIntervalDays int    `json:"round_interval_days,omitempty" example:"7"`
	// Replace drops the existing fixtures if none of them has been played.
	Replace bool `json:"replace"`
}

type ScheduleResult struct {
	TournamentID string         `json:"tournament_id"`
	Generator    string         `json:"generator"`
	Matchdays    int            `json:"matchdays"`
	Matches      []models.Match `json:"matches"`
	Byes         []brackets.Bye `json:"byes,omitempty"`
}

type ScheduleDefaults struct {
	Kickoff           string
	RoundIntervalDays int
}

type ScheduleService interface {
	GenerateSchedule(ctx context.Context, tournamentID string, input GenerateScheduleInput) (*ScheduleResult, error)
}

type scheduleService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	generator      brackets.ScheduleGenerator
	cache          storage.StandingsCache
	notifier       Notifier
	defaults       ScheduleDefaults
	logger         *slog.Logger
}

func NewScheduleService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	generator brackets.ScheduleGenerator,
	cache storage.StandingsCache,
	notifier Notifier,
	defaults ScheduleDefaults,
	logger *slog.Logger,
) ScheduleService {
	if cache == nil {
		cache = storage.NoopStandingsCache{}
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &scheduleService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		generator:      generator,
		cache:          cache,
		notifier:       notifier,
		defaults:       defaults,
		logger:         logger,
	}
}

func (s *scheduleService) GenerateSchedule(ctx context.Context, tournamentID string, input GenerateScheduleInput) (*ScheduleResult, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	startDate, err := s.resolveStartDate(input.StartDate, tournament)
	if err != nil {
		return nil, err
	}
	kickoff := strings.TrimSpace(input.DefaultTime)
	if kickoff == "" {
		kickoff = s.defaults.Kickoff
	}
	interval := input.RoundIntervalDays
	if interval <= 0 {
		interval = s.defaults.RoundIntervalDays
	}

	teams, err := s.teamRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams for tournament %s: %w", tournamentID, err)
	}

	fixtures, err := s.generator.Generate(ctx, brackets.GenerateScheduleParams{
		Teams:             teams,
		StartDate:         startDate,
		KickoffTime:       kickoff,
		RoundIntervalDays: interval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate schedule for tournament %s: %w", tournamentID, err)
	}
	byes, err := brackets.Byes(teams)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	matches := make([]*models.Match, len(fixtures))
	for i, f := range fixtures {
		matches[i] = &models.Match{
			TournamentID: tournamentID,
			HomeTeamID:   f.HomeTeamID,
			AwayTeamID:   f.AwayTeamID,
			Matchday:     f.Matchday,
			Date:         f.DateString(),
			Time:         f.Time,
			Status:       models.MatchStatusPending,
			HomeTeamName: names[f.HomeTeamID],
			AwayTeamName: names[f.AwayTeamID],
		}
	}

	var replaced int64
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		counts, err := s.matchRepo.CountByTournament(ctx, tx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to count fixtures: %w", err)
		}
		if counts.Total > 0 {
			if !input.Replace {
				return ErrScheduleExists
			}
			if counts.Completed > 0 {
				return fmt.Errorf("%w: %d completed", ErrScheduleLocked, counts.Completed)
			}
			if replaced, err = s.matchRepo.DeleteByTournament(ctx, tx, tournamentID, nil); err != nil {
				return fmt.Errorf("failed to delete old fixtures: %w", err)
			}
		}
		if err := s.matchRepo.BatchCreate(ctx, tx, matches); err != nil {
			return handleRepositoryError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, tournamentID); err != nil {
		s.logger.Warn("failed to invalidate standings cache", "tournament_id", tournamentID, "error", err)
	}

	result := &ScheduleResult{
		TournamentID: tournamentID,
		Generator:    s.generator.GetName(),
		Matches:      make([]models.Match, len(matches)),
		Byes:         byes,
	}
	for i, m := range matches {
		result.Matches[i] = *m
		if m.Matchday > result.Matchdays {
			result.Matchdays = m.Matchday
		}
	}

	s.logger.Info("schedule generated",
		"tournament_id", tournamentID,
		"teams", len(teams),
		"fixtures", len(matches),
		"replaced", replaced,
	)
	s.notifier.NotifyTournament(tournamentID, brackets.EventScheduleGenerated, result)

	return result, nil
}

func (s *scheduleService) resolveStartDate(raw string, tournament *models.Tournament) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		raw = derefString(tournament.StartDate)
	}
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, brackets.ErrInvalidStartDate
	}
	t, err := parseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", brackets.ErrInvalidStartDate, err)
	}
	return t, nil
}
