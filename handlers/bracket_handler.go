package handlers

import (
	"net/http"

	"github.com/Dosada05/prode/models"
	"github.com/Dosada05/prode/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

type submitPicksRequest struct {
	Picks models.BracketPicks `json:"picks"`
}

type pickRequest struct {
	Team string `json:"team"`
}

// bracketScope reads the caller, tournament and league shared by every
// bracket route. It writes the error response itself.
func bracketScope(w http.ResponseWriter, r *http.Request) (userID, tournamentID, leagueID int, ok bool) {
	userID, ok = requireUser(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, 0, false
	}
	leagueID, err = getLeagueID(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return 0, 0, 0, false
	}
	return userID, tournamentID, leagueID, true
}

func (h *BracketHandler) writeBracket(w http.ResponseWriter, r *http.Request, view *services.BracketView, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetHandler godoc
// @Summary  The caller's bracket board
// @Tags     bracket
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    league_id query int false "League ID"
// @Success  200 {object} services.BracketView
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/bracket [get]
func (h *BracketHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, leagueID, ok := bracketScope(w, r)
	if !ok {
		return
	}
	view, err := h.bracketService.GetBracket(r.Context(), userID, tournamentID, leagueID)
	h.writeBracket(w, r, view, err)
}

// SubmitHandler godoc
// @Summary  Apply several picks at once
// @Description Rejected as a whole when any pick is locked or invalid. An empty team removes the pick.
// @Tags     bracket
// @Accept   json
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    league_id query int false "League ID"
// @Param    picks body submitPicksRequest true "Match id to team"
// @Success  200 {object} services.BracketView
// @Failure  409 {object} map[string]string
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/bracket [put]
func (h *BracketHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, leagueID, ok := bracketScope(w, r)
	if !ok {
		return
	}
	var input submitPicksRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.bracketService.SubmitPicks(r.Context(), userID, tournamentID, leagueID, input.Picks)
	h.writeBracket(w, r, view, err)
}

// ClearHandler godoc
// @Summary  Remove every pick that can still change
// @Tags     bracket
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    league_id query int false "League ID"
// @Success  200 {object} services.BracketView
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/bracket [delete]
func (h *BracketHandler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, leagueID, ok := bracketScope(w, r)
	if !ok {
		return
	}
	view, err := h.bracketService.ClearBracket(r.Context(), userID, tournamentID, leagueID)
	h.writeBracket(w, r, view, err)
}

// PickHandler godoc
// @Summary  Pick the winner of one knockout match
// @Tags     bracket
// @Accept   json
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    matchID path int true "Match ID"
// @Param    league_id query int false "League ID"
// @Param    pick body pickRequest true "Team code; empty removes the pick"
// @Success  200 {object} services.BracketView
// @Failure  409 {object} map[string]string
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/bracket/picks/{matchID} [put]
func (h *BracketHandler) PickHandler(w http.ResponseWriter, r *http.Request) {
	userID, tournamentID, leagueID, ok := bracketScope(w, r)
	if !ok {
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input pickRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.bracketService.Pick(r.Context(), userID, tournamentID, leagueID, matchID, input.Team)
	h.writeBracket(w, r, view, err)
}

// LocksHandler godoc
// @Summary  Lock state of every knockout phase
// @Tags     bracket
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Success  200 {object} brackets.LockState
// @Router   /tournaments/{tournamentID}/bracket/locks [get]
func (h *BracketHandler) LocksHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.bracketService.Locks(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"locks": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
