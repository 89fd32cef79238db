package handlers

import (
	"net/http"

	"github.com/Dosada05/league-system/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

// GenerateHandler godoc
// @Summary Сгенерировать календарь (двухкруговой турнир)
// @Tags schedule
// @Description Creates a home and away round-robin for the tournament roster. An empty body uses the tournament start date and the configured kickoff.
// @Accept json
// @Produce json
// @Param tournamentID path string true "Tournament ID"
// @Param input body services.GenerateScheduleInput false "Schedule options"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Недостаточно команд, неверная дата или время"
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string "Календарь уже существует"
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/schedule [post]
func (h *ScheduleHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GenerateScheduleInput
	if r.ContentLength != 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	result, err := h.scheduleService.GenerateSchedule(r.Context(), tournamentID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"schedule": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
