package handlers

import (
	"net/http"

	"github.com/Dosada05/prode/services"
)

type PredictionHandler struct {
	predictionService services.PredictionService
}

func NewPredictionHandler(ps services.PredictionService) *PredictionHandler {
	return &PredictionHandler{predictionService: ps}
}

// ListHandler godoc
// @Summary  The caller's predictions with the points earned so far
// @Tags     predictions
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Success  200 {object} map[string][]models.ScoredPrediction
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/predictions [get]
func (h *PredictionHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	predictions, err := h.predictionService.ListPredictions(r.Context(), userID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"predictions": predictions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ScoreHandler godoc
// @Summary  The caller's prediction total
// @Tags     predictions
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Success  200 {object} services.UserScore
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/predictions/score [get]
func (h *PredictionHandler) ScoreHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	score, err := h.predictionService.UserScore(r.Context(), userID, tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"score": score}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveHandler godoc
// @Summary  Save or clear a prediction
// @Description Both scores null clears the prediction and answers 204.
// @Tags     predictions
// @Accept   json
// @Produce  json
// @Param    tournamentID path int true "Tournament ID"
// @Param    matchID path int true "Match ID"
// @Param    prediction body services.SavePredictionInput true "Scores"
// @Success  200 {object} models.Prediction
// @Success  204
// @Failure  409 {object} map[string]string
// @Security BearerAuth
// @Router   /tournaments/{tournamentID}/predictions/{matchID} [put]
func (h *PredictionHandler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
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

	var input services.SavePredictionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	prediction, err := h.predictionService.SavePrediction(r.Context(), userID, tournamentID, matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if prediction == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"prediction": prediction}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
