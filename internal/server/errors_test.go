package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/openimob/rentshare/internal/authorization"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
	ownergroupdomain "github.com/openimob/rentshare/internal/ownergroup/domain"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	rentdomain "github.com/openimob/rentshare/internal/rent/domain"
	transferdomain "github.com/openimob/rentshare/internal/transfer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		typ    string
	}{
		{propertydomain.ErrInvalidName, http.StatusBadRequest, "validation_error"},
		{participationdomain.ErrInvalidPercentage, http.StatusBadRequest, "validation_error"},
		{rentdomain.ErrInvalidMonth, http.StatusBadRequest, "validation_error"},
		{authorization.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{authorization.ErrForbidden, http.StatusForbidden, "forbidden"},
		{propertydomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{participationdomain.ErrVersionNotFound, http.StatusNotFound, "not_found"},
		{gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{ownerdomain.ErrDuplicateDocument, http.StatusConflict, "conflict"},
		{rentdomain.ErrDuplicatePeriod, http.StatusConflict, "conflict"},
		{propertydomain.ErrHasRentRecords, http.StatusConflict, "conflict"},
		{ownergroupdomain.ErrDuplicateName, http.StatusConflict, "conflict"},
		{ownergroupdomain.ErrMemberNotFound, http.StatusNotFound, "not_found"},
		{transferdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{transferdomain.ErrInvalidDate, http.StatusBadRequest, "validation_error"},
		{rentdomain.ErrNoParticipations, http.StatusUnprocessableEntity, "no_participations"},
		{fmt.Errorf("dial tcp: connection refused"), http.StatusInternalServerError, "internal_error"},
	}
	for _, c := range cases {
		status, payload := mapError(c.err)
		assert.Equal(t, c.status, status, c.err.Error())
		assert.Equal(t, c.typ, payload.Type, c.err.Error())
	}
}

func TestMapErrorDriverDuplicateKey(t *testing.T) {
	for _, raw := range []string{
		"UNIQUE constraint failed: owners.document",
		`pq: duplicate key value violates unique constraint "ux_owner_document"`,
	} {
		status, payload := mapError(fmt.Errorf("create: %s", raw))
		assert.Equal(t, http.StatusConflict, status, raw)
		assert.Equal(t, "conflict", payload.Type, raw)
	}
}

func TestMapErrorWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("%w: 123", participationdomain.ErrPropertyNotFound)
	status, payload := mapError(wrapped)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", payload.Type)
	assert.Contains(t, payload.Message, "123")
}

func TestMapErrorNeverLeaksInternals(t *testing.T) {
	status, payload := mapError(fmt.Errorf("pq: password authentication failed for user"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", payload.Message)
}

func TestMapErrorValidationPayload(t *testing.T) {
	status, payload := mapError(newValidationError("percentage", "invalid_percentage", "percentage out of range"))
	require.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "percentage", payload.Errors[0].Field)
	assert.Equal(t, "invalid_percentage", payload.Errors[0].Code)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(rentdomain.ErrInvalidYear)
	assert.Equal(t, "validation_error", typ)
	assert.Equal(t, "invalid_year", code)

	typ, code = classifyErrorForLog(fmt.Errorf("boom"))
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, "internal_error", code)
}
