package apierror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorFormatting(t *testing.T) {
	err := NewAPIError(ErrNotFound, "Payout with ID 'pout_1' not found", nil)
	assert.Equal(t, "NOT_FOUND: Payout with ID 'pout_1' not found", err.Error())
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	cases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{ErrBadRequest, http.StatusBadRequest},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrInternalServer, http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.expected, MapErrorToHTTPStatus(NewAPIError(c.code, "msg", nil)))
	}

	assert.Equal(t, http.StatusInternalServerError, MapErrorToHTTPStatus(errors.New("plain")))
}
