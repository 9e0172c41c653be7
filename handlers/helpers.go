package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skilloww/cs2panel/get5"
	"github.com/skilloww/cs2panel/repositories"
	"github.com/skilloww/cs2panel/services"
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
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
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

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// getIDFromURL extracts and validates a uuid path parameter.
func getIDFromURL(r *http.Request, param string) (string, error) {
	id := chi.URLParam(r, param)
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

// mapServiceErrorToHTTP converts service and repository errors into HTTP
// responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *get5.ValidationError

	switch {
	// Not found
	case errors.Is(err, repositories.ErrUserNotFound),
		errors.Is(err, repositories.ErrTeamNotFound),
		errors.Is(err, repositories.ErrServerNotFound),
		errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrMapStatNotFound):
		notFoundResponse(w, r)

	// Conflicts
	case errors.Is(err, repositories.ErrUserSteamIDConflict),
		errors.Is(err, repositories.ErrTeamPlayerConflict),
		errors.Is(err, repositories.ErrServerAddressTaken),
		errors.Is(err, repositories.ErrMatchAPIKeyConflict):
		conflictResponse(w, r, err.Error())

	// Invalid input / business rules
	case errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrInvalidSteamID),
		errors.Is(err, services.ErrServerFieldsRequired),
		errors.Is(err, services.ErrInvalidSeries),
		errors.Is(err, services.ErrEmptyMapPool),
		errors.Is(err, services.ErrSameTeamTwice),
		errors.Is(err, services.ErrMatchNoServer),
		errors.Is(err, services.ErrUnknownRconAction),
		errors.Is(err, services.ErrUnknownEventTeam),
		errors.Is(err, repositories.ErrMatchTeamInvalid),
		errors.Is(err, repositories.ErrServerOwnerInvalid):
		badRequestResponse(w, r, err)

	// Webhook payload validation: report every violation.
	case errors.As(err, &validationErr):
		errorResponse(w, r, http.StatusBadRequest, validationErr.Violations)

	// Access
	case errors.Is(err, services.ErrWebhookAuth),
		errors.Is(err, services.ErrInvalidSteamAssertion):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrTeamAccessDenied),
		errors.Is(err, services.ErrServerAccessDenied),
		errors.Is(err, services.ErrMatchAccessDenied):
		forbiddenResponse(w, r, err.Error())

	// Lifecycle
	case errors.Is(err, services.ErrInvalidTransition):
		conflictResponse(w, r, err.Error())
	case errors.Is(err, services.ErrLogoNotConfigured):
		errorResponse(w, r, http.StatusNotImplemented, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
