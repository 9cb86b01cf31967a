package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/openimob/rentshare/internal/audit/domain"
	"github.com/openimob/rentshare/internal/authorization"
	importerdomain "github.com/openimob/rentshare/internal/importer/domain"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	ownergroupdomain "github.com/openimob/rentshare/internal/ownergroup/domain"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	rentdomain "github.com/openimob/rentshare/internal/rent/domain"
	transferdomain "github.com/openimob/rentshare/internal/transfer/domain"
	"github.com/openimob/rentshare/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not_found")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if code, ok := validationCode(err); ok {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationField(code),
					Code:    code,
					Message: validationMessage(err),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, authorization.ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden), errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case errors.Is(err, rentdomain.ErrNoParticipations):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "no_participations",
			Message: err.Error(),
		}
	default:
		// Unclassified errors never leak internals to the caller.
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var byValue ValidationErrors
	if errors.As(err, &byValue) {
		return &byValue
	}
	var byRef *ValidationErrors
	if errors.As(err, &byRef) {
		return byRef
	}
	return nil
}

// validationCode maps domain validation sentinels onto stable error
// codes surfaced in the response body.
func validationCode(err error) (string, bool) {
	for sentinel, code := range map[error]string{
		propertydomain.ErrInvalidID:              "invalid_id",
		propertydomain.ErrInvalidName:            "invalid_name",
		propertydomain.ErrInvalidAddress:         "invalid_address",
		ownerdomain.ErrInvalidID:                 "invalid_id",
		ownerdomain.ErrInvalidName:               "invalid_name",
		ownerdomain.ErrInvalidDocument:           "invalid_document",
		ownergroupdomain.ErrInvalidID:            "invalid_id",
		ownergroupdomain.ErrInvalidName:          "invalid_name",
		participationdomain.ErrInvalidPercentage: "invalid_percentage",
		participationdomain.ErrEmptyVersion:      "empty_version",
		rentdomain.ErrInvalidID:                  "invalid_id",
		rentdomain.ErrInvalidMonth:               "invalid_month",
		rentdomain.ErrInvalidYear:                "invalid_year",
		rentdomain.ErrInvalidAmount:              "invalid_amount",
		transferdomain.ErrInvalidID:              "invalid_id",
		transferdomain.ErrInvalidName:            "invalid_name",
		transferdomain.ErrInvalidDate:            "invalid_date",
		transferdomain.ErrInvalidAmount:          "invalid_amount",
		importerdomain.ErrInvalidID:              "invalid_id",
		importerdomain.ErrNoRows:                 "no_rows",
		auditdomain.ErrInvalidAction:             "invalid_action",
		auditdomain.ErrInvalidTimeRange:          "invalid_time_range",
	} {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return "", false
}

func validationField(code string) string {
	switch code {
	case "invalid_id":
		return "id"
	case "invalid_name":
		return "name"
	case "invalid_address":
		return "address"
	case "invalid_document":
		return "document"
	case "invalid_percentage":
		return "percentage"
	case "invalid_month":
		return "month"
	case "invalid_year":
		return "year"
	case "invalid_amount":
		return "amount"
	case "invalid_date":
		return "date"
	case "empty_version", "no_rows":
		return "items"
	case "invalid_action":
		return "action"
	case "invalid_time_range":
		return "start_at"
	default:
		return "request"
	}
}

func validationMessage(err error) string {
	return err.Error()
}

func isNotFoundError(err error) bool {
	for _, sentinel := range []error{
		ErrNotFound,
		propertydomain.ErrNotFound,
		ownerdomain.ErrNotFound,
		ownergroupdomain.ErrNotFound,
		ownergroupdomain.ErrMemberNotFound,
		participationdomain.ErrVersionNotFound,
		participationdomain.ErrPropertyNotFound,
		participationdomain.ErrOwnerNotFound,
		rentdomain.ErrNotFound,
		rentdomain.ErrPropertyNotFound,
		rentdomain.ErrOwnerNotFound,
		transferdomain.ErrNotFound,
		transferdomain.ErrOwnerNotFound,
		importerdomain.ErrNotFound,
		gorm.ErrRecordNotFound,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func isConflictError(err error) bool {
	for _, sentinel := range []error{
		ErrConflict,
		propertydomain.ErrDuplicateName,
		propertydomain.ErrHasRentRecords,
		propertydomain.ErrHasParticipations,
		ownerdomain.ErrDuplicateDocument,
		ownerdomain.ErrHasRentRecords,
		ownerdomain.ErrHasParticipations,
		ownergroupdomain.ErrDuplicateName,
		rentdomain.ErrDuplicatePeriod,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return db.IsDuplicateKeyErr(err)
}

func conflictMessage(err error) string {
	if db.IsDuplicateKeyErr(err) {
		return "conflict"
	}
	return err.Error()
}

// classifyErrorForLog tags request log lines with the mapped error
// type and a stable code, without leaking unclassified error text.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	if asValidationErrors(err) != nil {
		return "validation_error", "validation_error"
	}
	if code, ok := validationCode(err); ok {
		return "validation_error", code
	}
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, authorization.ErrUnauthorized):
		return "unauthorized", "unauthorized"
	case errors.Is(err, ErrForbidden), errors.Is(err, authorization.ErrForbidden):
		return "forbidden", "forbidden"
	case isConflictError(err):
		return "conflict", "conflict"
	case isNotFoundError(err):
		return "not_found", "not_found"
	case errors.Is(err, rentdomain.ErrNoParticipations):
		return "no_participations", "no_participations"
	default:
		return "internal_error", "internal_error"
	}
}
