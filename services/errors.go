package services

import (
	"errors"

	"github.com/Dosada05/league-system/brackets"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Ошибки валидации
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidMatchDate   = errors.New("match date must be in YYYY-MM-DD format")
	ErrInvalidMatchStatus = errors.New("match status can only be set to pending or cancelled")
	ErrInvalidScore       = errors.New("score must be a non-negative integer")

	// Ошибки конфликтов
	ErrScheduleExists        = errors.New("tournament already has a schedule")
	ErrScheduleLocked        = errors.New("schedule has completed matches and cannot be regenerated")
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrMatchCancelled        = errors.New("match is cancelled")

	// Внешние зависимости
	ErrExportDisabled = errors.New("standings export is not configured")
)

// IsValidationError reports whether err comes from bad caller input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrValidationFailed, ErrInvalidMatchDate, ErrInvalidMatchStatus, ErrInvalidScore,
		brackets.ErrInsufficientTeams, brackets.ErrDuplicateTeam, brackets.ErrInvalidTeam,
		brackets.ErrInvalidKickoffTime, brackets.ErrInvalidStartDate,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
