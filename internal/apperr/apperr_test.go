package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Status(BadRequest("bad")))
	assert.Equal(t, http.StatusUnauthorized, Status(Unauthorized("no")))
	assert.Equal(t, http.StatusForbidden, Status(Forbidden("no")))
	assert.Equal(t, http.StatusNotFound, Status(NotFound("gone")))
	assert.Equal(t, http.StatusConflict, Status(Conflict("dup")))
	assert.Equal(t, http.StatusGone, Status(Gone("expired")))
	assert.Equal(t, http.StatusInternalServerError, Status(Internal("boom")))
}

func TestStatus_UnknownErrorIs500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("pq: connection refused")))
	assert.Equal(t, http.StatusInternalServerError, Status(nil))
}

func TestStatus_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("fetch workspace: %w", NotFound("Workspace not found"))
	assert.Equal(t, http.StatusNotFound, Status(wrapped))
	assert.Equal(t, "Workspace not found", PublicMessage(wrapped))
}

func TestPublicMessage_HidesInternals(t *testing.T) {
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("dial tcp 10.0.0.3:5432: timeout")))
	assert.Equal(t, "dup", PublicMessage(Conflict("dup")))
}

func TestNewf(t *testing.T) {
	err := Newf(http.StatusBadRequest, "page %d does not exist", 7)
	assert.Equal(t, "page 7 does not exist", err.Error())
	assert.Equal(t, http.StatusBadRequest, Status(err))
}
