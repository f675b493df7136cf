package handlers

import (
	"net/http"

	"github.com/Dosada05/prode/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(ss services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss}
}

// OfficialHandler godoc
// @Summary  Group tables from final results
// @Tags     standings
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Success  200 {object} map[string][]models.GroupStandings
// @Router   /tournaments/{tournamentID}/standings [get]
func (h *StandingsHandler) OfficialHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.standingsService.OfficialStandings(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SimulatedHandler godoc
// @Summary  Group tables completed with the caller's predictions
// @Tags     standings
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Success  200 {object} map[string][]models.GroupStandings
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/standings/simulated [get]
func (h *StandingsHandler) SimulatedHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	groups, err := h.standingsService.SimulatedStandings(r.Context(), tournamentID, userID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"groups": groups}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SnapshotHandler godoc
// @Summary  Export the official tables to object storage
// @Tags     standings
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Success  201 {object} services.SnapshotResult
// @Failure  503 {object} map[string]string
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/standings/snapshot [post]
func (h *StandingsHandler) SnapshotHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshot, err := h.standingsService.ExportSnapshot(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
