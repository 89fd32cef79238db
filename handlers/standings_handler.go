package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(ss services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss}
}

// GetHandler godoc
// @Summary Турнирная таблица
// @Tags standings
// @Description Points, then goal difference, then goals scored, then team name.
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string "Результат ссылается на команду вне турнира"
// @Router /tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.standingsService.GetStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ExportHandler godoc
// @Summary Выгрузить таблицу в хранилище
// @Tags standings
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string "Хранилище не настроено"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/standings/export [post]
func (h *StandingsHandler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	export, err := h.standingsService.ExportStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"export": export}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// StatisticsHandler godoc
// @Summary Таблицы всех турниров
// @Tags standings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /statistics [get]
func (h *StandingsHandler) StatisticsHandler(w http.ResponseWriter, r *http.Request) {
	all, err := h.standingsService.GetAllStatistics(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": all}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
