package handlers

import (
	"net/http"

	"github.com/Dosada05/prode/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

type importMatchesRequest struct {
	Matches []services.ImportMatchInput `json:"matches"`
}

// ListHandler godoc
// @Summary  List the matches of a tournament
// @Tags     matches
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Success  200 {object} map[string][]models.Match
// @Router   /tournaments/{tournamentID}/matches [get]
func (h *MatchHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatches(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ImportHandler godoc
// @Summary  Import a results feed
// @Tags     matches
// @Accept   json
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    feed body importMatchesRequest true "Feed records"
// @Success  200 {object} services.ImportSummary
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/matches/import [post]
func (h *MatchHandler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input importMatchesRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.matchService.ImportMatches(r.Context(), tournamentID, input.Matches)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"import": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResultHandler godoc
// @Summary  Record the score and status of a match
// @Tags     matches
// @Accept   json
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    matchID path int true "Match ID"
// @Param    result body services.RecordResultInput true "Result"
// @Success  200 {object} models.Match
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/matches/{matchID}/result [put]
func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.RecordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.RecordResult(r.Context(), tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
