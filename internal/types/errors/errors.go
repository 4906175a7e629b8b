package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

var (
	ErrDBInternal = errors.New("database internal error")
	ErrNotFound   = errors.New("record not found")
	ErrBadID      = errors.New("bad id")

	ErrAlreadyExists    = errors.New("record already exists")
	ErrCategoryNotFound = errors.New("category does not exist")

	ErrTitleTooShort       = errors.New("titulo must be at least 5 characters")
	ErrDescriptionTooShort = errors.New("descripcion must be at least 20 characters")
	ErrNameTooShort        = errors.New("nombre must be at least 3 characters")
	ErrInvalidCost         = errors.New("costo must be a positive number")
	ErrEmptyUpdate         = errors.New("update contains no fields")

	ErrInvalidJSONPayload = errors.New("invalid JSON payload")
	ErrInvalidFormPayload = errors.New("invalid form payload")
)

type ErrorServer struct {
	Message string `json:"message"`
}

func (e *ErrorServer) Error() string {
	return e.Message
}

// NewErrorServer accepts a nil error, which is rendered as a plain
// success message for confirmation responses.
func NewErrorServer(err error) ErrorServer {
	if err == nil {
		return ErrorServer{
			Message: "success",
		}
	}

	return ErrorServer{
		Message: err.Error(),
	}
}

func SendErrorTo(w http.ResponseWriter, err error, statusCode int, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if errEncode := json.NewEncoder(w).Encode(NewErrorServer(err)); errEncode != nil {
		logger.Error(errEncode)
	}
}
