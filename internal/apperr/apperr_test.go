package apperr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/glowupgrow/terrarium-api/internal/apperr"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{name: "validation", err: apperr.Validation("Error: Username and Password required"), wantStatus: http.StatusBadRequest, wantMessage: "Error: Username and Password required"},
		{name: "invalid keeps route message", err: apperr.Invalid(errors.New("missing property"), "Error: UserID is required"), wantStatus: http.StatusBadRequest, wantMessage: "Error: UserID is required"},
		{name: "validation without message", err: oops.Code(apperr.CodeValidation).Errorf("bad"), wantStatus: http.StatusBadRequest, wantMessage: "Error: invalid request"},
		{name: "not found", err: apperr.NotFound("Error: user not found"), wantStatus: http.StatusBadRequest, wantMessage: "Error: user not found"},
		{name: "username taken", err: apperr.UsernameTaken(), wantStatus: http.StatusForbidden, wantMessage: apperr.MsgUsernameTaken},
		{name: "unauthorized", err: apperr.Unauthorized("expired"), wantStatus: http.StatusForbidden, wantMessage: apperr.MsgNotLoggedIn},
		{name: "invalid credentials", err: apperr.InvalidCredentials(), wantStatus: http.StatusForbidden, wantMessage: apperr.MsgInvalidCredentials},
		{name: "internal", err: apperr.Internal(errors.New("connection refused"), "get user"), wantStatus: http.StatusInternalServerError, wantMessage: apperr.MsgInternal},
		{name: "hashing failure", err: oops.Code(apperr.CodeHashingFailed).Errorf("argon2 failed"), wantStatus: http.StatusInternalServerError, wantMessage: apperr.MsgInternal},
		{name: "plain error", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantMessage: apperr.MsgInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := apperr.Status(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestInternal_HidesCause(t *testing.T) {
	err := apperr.Internal(errors.New("password=hunter2 rejected"), "update user")

	_, message := apperr.Status(err)
	assert.NotContains(t, message, "hunter2")
	assert.Equal(t, apperr.CodeInternal, apperr.Code(err))
}

func TestCode_NonOops(t *testing.T) {
	assert.Empty(t, apperr.Code(errors.New("plain")))
	assert.Empty(t, apperr.Code(nil))
}
