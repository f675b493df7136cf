package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/prode/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
}

func NewLeaderboardHandler(ls services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

type tiebreakerRequest struct {
	TotalGoals *int `json:"total_goals"`
}

// LeaderboardHandler godoc
// @Summary  Ranked users of a tournament or league
// @Tags     leaderboard
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    league_id query int false "League ID"
// @Success  200 {object} models.Leaderboard
// @Router   /tournaments/{tournamentID}/leaderboard [get]
func (h *LeaderboardHandler) LeaderboardHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	leagueID, err := getLeagueID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	board, err := h.leaderboardService.Leaderboard(r.Context(), tournamentID, leagueID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"leaderboard": board}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TiebreakerHandler godoc
// @Summary  Save the caller's total-goals guess
// @Tags     leaderboard
// @Accept   json
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    league_id query int false "League ID"
// @Param    guess body tiebreakerRequest true "Total goals"
// @Success  200 {object} models.TiebreakerGuess
// @Failure  409 {object} map[string]string
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/tiebreaker [put]
func (h *LeaderboardHandler) TiebreakerHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, leagueID, ok := bracketScope(w, r)
	if !ok {
		return
	}

	var input tiebreakerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.TotalGoals == nil {
		badRequestResponse(w, r, errors.New("total_goals is required"))
		return
	}

	guess, err := h.leaderboardService.SaveTiebreaker(r.Context(), userID, tournamentID, leagueID, *input.TotalGoals)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tiebreaker": guess}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
