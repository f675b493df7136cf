package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/middleware"
	"github.com/Dosada05/prode/scoring"
	"github.com/Dosada05/prode/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err) // ошибка программиста: передан не указатель
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// Error codes sent next to the message so clients can branch without parsing text.
const (
	codeBadRequest           = "BAD_REQUEST"
	codeUnauthorized         = "UNAUTHORIZED"
	codeNotFound             = "NOT_FOUND"
	codeValidationFailed     = "VALIDATION_FAILED"
	codeInvalidScore         = "INVALID_SCORE"
	codeIncompletePrediction = "INCOMPLETE_PREDICTION"
	codeInvalidPick          = "INVALID_PICK"
	codeMatchNotInBracket    = "MATCH_NOT_IN_BRACKET"
	codeMatchLocked          = "MATCH_LOCKED"
	codePredictionLocked     = "PREDICTION_LOCKED"
	codeTiebreakerLocked     = "TIEBREAKER_LOCKED"
	codeStorageDisabled      = "STORAGE_DISABLED"
	codeInternal             = "INTERNAL"
)

func errorResponse(w http.ResponseWriter, r *http.Request, status int, code string, message interface{}) {
	env := jsonResponse{"error": message, "code": code}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, codeInternal, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, codeBadRequest, err.Error())
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, codeUnauthorized, message)
}

// mapServiceErrorToHTTP преобразует ошибки сервисного слоя в HTTP-ответы
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, brackets.ErrMatchNotInBracket):
		errorResponse(w, r, http.StatusNotFound, codeMatchNotInBracket, err.Error())
	case errors.Is(err, services.ErrMatchNotFound),
		errors.Is(err, services.ErrNotFound):
		errorResponse(w, r, http.StatusNotFound, codeNotFound, err.Error())

	case errors.Is(err, scoring.ErrInvalidScore):
		errorResponse(w, r, http.StatusBadRequest, codeInvalidScore, err.Error())
	case errors.Is(err, services.ErrIncompletePrediction):
		errorResponse(w, r, http.StatusBadRequest, codeIncompletePrediction, err.Error())
	case errors.Is(err, brackets.ErrInvalidPick):
		errorResponse(w, r, http.StatusBadRequest, codeInvalidPick, err.Error())
	case errors.Is(err, services.ErrValidationFailed):
		errorResponse(w, r, http.StatusBadRequest, codeValidationFailed, err.Error())

	case errors.Is(err, brackets.ErrMatchLocked):
		errorResponse(w, r, http.StatusConflict, codeMatchLocked, err.Error())
	case errors.Is(err, services.ErrPredictionLocked):
		errorResponse(w, r, http.StatusConflict, codePredictionLocked, err.Error())
	case errors.Is(err, services.ErrTiebreakerLocked):
		errorResponse(w, r, http.StatusConflict, codeTiebreakerLocked, err.Error())

	case errors.Is(err, services.ErrStorageDisabled):
		errorResponse(w, r, http.StatusServiceUnavailable, codeStorageDisabled, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

func getIDFromURL(r *http.Request, paramName string) (int, error) {
	idStr := chi.URLParam(r, paramName)
	if idStr == "" {
		return 0, fmt.Errorf("missing %s in URL path", paramName)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s format: %q", paramName, idStr)
	}

	if id <= 0 {
		return 0, fmt.Errorf("invalid %s value: %d", paramName, id)
	}

	return id, nil
}

// getLeagueID reads the optional league_id query parameter; absent means the
// tournament-wide pool (0).
func getLeagueID(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("league_id")
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid league_id query parameter: %q", raw)
	}
	return id, nil
}

// requireUser reads the authenticated user id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return 0, false
	}
	return userID, true
}
