package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowupgrow/terrarium-api/internal/apperr"
	"github.com/glowupgrow/terrarium-api/internal/auth"
	"github.com/glowupgrow/terrarium-api/internal/service"
	"github.com/glowupgrow/terrarium-api/internal/testutil"
)

type meResponse struct {
	User struct {
		ID           string `json:"_id"`
		Username     string `json:"Username"`
		EmailAddress string `json:"EmailAddress"`
	} `json:"user"`
}

func TestUserHandler_AliceScenario(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := ts.NewClient(t)

	resp := testutil.DoJSON(t, client, http.MethodPost, ts.APIURL("/users/register"), map[string]string{
		"Username":     "alice",
		"Password":     "pw123!",
		"EmailAddress": "a@x.com",
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	body := testutil.ReadBody(t, resp)
	testutil.AssertNoPassword(t, body)

	var session testutil.SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	assert.Equal(t, "alice", session.Username)
	assert.True(t, session.Success)
	require.NotEmpty(t, session.ID)

	stored, err := ts.Repos.User.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123!", stored.Password)
	assert.True(t, testutil.FastHasher().Verify(stored.Password, "pw123!"))

	resp = testutil.DoJSON(t, client, http.MethodGet, ts.APIURL("/users/"), nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	body = testutil.ReadBody(t, resp)
	testutil.AssertNoPassword(t, body)

	var me meResponse
	require.NoError(t, json.Unmarshal(body, &me))
	assert.Equal(t, session.ID, me.User.ID)
	assert.Equal(t, "alice", me.User.Username)
	assert.Equal(t, "a@x.com", me.User.EmailAddress)

	resp = testutil.DoJSON(t, client, http.MethodDelete, ts.APIURL("/users/"), nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = testutil.DoJSON(t, client, http.MethodGet, ts.APIURL("/users/"), nil)
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, apperr.MsgNotLoggedIn)
}

func TestUserHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)
	testutil.NewUserBuilder().WithUsername("taken").Build(t, ts.Repos.User)

	tests := []struct {
		name            string
		request         interface{}
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:           "successful registration",
			request:        map[string]string{"Username": "newuser", "Password": "pw", "EmailAddress": "n@x.com"},
			expectedStatus: http.StatusOK,
		},
		{
			name:            "missing email",
			request:         map[string]string{"Username": "u1", "Password": "pw"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: service.MsgRegisterFieldsRequired,
		},
		{
			name:            "empty password",
			request:         map[string]string{"Username": "u2", "Password": "", "EmailAddress": "e@x.com"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: service.MsgRegisterFieldsRequired,
		},
		{
			name:            "empty body",
			request:         nil,
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: service.MsgRegisterFieldsRequired,
		},
		{
			name:            "wrong field type",
			request:         map[string]interface{}{"Username": 7, "Password": "pw", "EmailAddress": "e@x.com"},
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: service.MsgRegisterFieldsRequired,
		},
		{
			name:            "duplicate username",
			request:         map[string]string{"Username": "taken", "Password": "pw", "EmailAddress": "t@x.com"},
			expectedStatus:  http.StatusForbidden,
			expectedMessage: apperr.MsgUsernameTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, ts.NewClient(t), http.MethodPost, ts.APIURL("/users/register"), tt.request)
			if tt.expectedStatus == http.StatusOK {
				testutil.AssertStatusCode(t, resp, http.StatusOK)
				assert.NotEmpty(t, sessionCookie(resp))
				resp.Body.Close()
				return
			}
			testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMessage)
			assert.Empty(t, sessionCookie(resp))
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, password := testutil.NewUserBuilder().WithUsername("bob").WithPassword("correct horse").Build(t, ts.Repos.User)

	t.Run("success sets cookie", func(t *testing.T) {
		client := ts.NewClient(t)
		resp := testutil.DoJSON(t, client, http.MethodPost, ts.APIURL("/users/login"), map[string]string{
			"Username": "bob",
			"Password": password,
		})
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		assert.NotEmpty(t, sessionCookie(resp))

		var session testutil.SessionResponse
		testutil.AssertJSONResponse(t, resp, &session)
		assert.Equal(t, "bob", session.Username)
		assert.True(t, session.Success)

		resp = testutil.DoJSON(t, client, http.MethodGet, ts.APIURL("/users/"), nil)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
		resp.Body.Close()
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		wrong := testutil.DoJSON(t, ts.NewClient(t), http.MethodPost, ts.APIURL("/users/login"), map[string]string{
			"Username": "bob",
			"Password": "wrong",
		})
		unknown := testutil.DoJSON(t, ts.NewClient(t), http.MethodPost, ts.APIURL("/users/login"), map[string]string{
			"Username": "nobody",
			"Password": "wrong",
		})

		assert.Equal(t, wrong.StatusCode, unknown.StatusCode)
		assert.Equal(t, testutil.ReadBody(t, wrong), testutil.ReadBody(t, unknown))
		assert.Equal(t, http.StatusForbidden, wrong.StatusCode)
		assert.Empty(t, sessionCookie(wrong))
		assert.Empty(t, sessionCookie(unknown))
	})

	t.Run("missing password", func(t *testing.T) {
		resp := testutil.DoJSON(t, ts.NewClient(t), http.MethodPost, ts.APIURL("/users/login"), map[string]string{
			"Username": "bob",
		})
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, service.MsgLoginFieldsRequired)
	})
}

func TestUserHandler_GateRejections(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, _ := testutil.NewUserBuilder().Build(t, ts.Repos.User)

	expired, _, err := auth.NewSessionManager(ts.Config.SessionSecret, time.Hour, false).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).
		Issue(user.ID)
	require.NoError(t, err)

	deleted, _, err := ts.Sessions.Issue(uuid.New())
	require.NoError(t, err)

	forged, _, err := auth.NewSessionManager("other-secret", time.Hour, false).Issue(user.ID)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no cookie"},
		{name: "expired cookie", token: expired},
		{name: "cookie for missing user", token: deleted},
		{name: "forged cookie", token: forged},
		{name: "garbage cookie", token: "garbage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodGet, ts.APIURL("/users/"), nil)
			require.NoError(t, err)
			if tt.token != "" {
				req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: tt.token})
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			testutil.AssertErrorResponse(t, resp, http.StatusForbidden, apperr.MsgNotLoggedIn)
		})
	}
}

func TestUserHandler_UpdateProfile(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := ts.NewClient(t)
	builder := testutil.NewUserBuilder().WithUsername("carol").WithPassword("old-pw")
	builder.Register(t, ts, client)

	resp := testutil.DoJSON(t, client, http.MethodPut, ts.APIURL("/users/"), map[string]string{
		"EmailAddress": "carol@new.com",
		"Password":     "new-pw",
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	body := testutil.ReadBody(t, resp)
	testutil.AssertNoPassword(t, body)

	resp = testutil.DoJSON(t, ts.NewClient(t), http.MethodPost, ts.APIURL("/users/login"), map[string]string{
		"Username": "carol",
		"Password": "new-pw",
	})
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	resp.Body.Close()

	resp = testutil.DoJSON(t, ts.NewClient(t), http.MethodPost, ts.APIURL("/users/login"), map[string]string{
		"Username": "carol",
		"Password": "old-pw",
	})
	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, apperr.MsgInvalidCredentials)

	resp = testutil.DoJSON(t, client, http.MethodPut, ts.APIURL("/users/"), map[string]string{})
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, service.MsgProfileFieldsRequired)
}

func TestUserHandler_Get(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, _ := testutil.NewUserBuilder().WithUsername("dave").Build(t, ts.Repos.User)

	resp := testutil.DoJSON(t, http.DefaultClient, http.MethodGet, ts.APIURL("/users/"+user.ID.String()), nil)
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	body := testutil.ReadBody(t, resp)
	testutil.AssertNoPassword(t, body)
	assert.Contains(t, string(body), `"Username":"dave"`)

	for _, id := range []string{uuid.New().String(), "not-a-uuid"} {
		resp := testutil.DoJSON(t, http.DefaultClient, http.MethodGet, ts.APIURL("/users/"+id), nil)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, service.MsgUserNotFound)
	}
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			return c.Value
		}
	}
	return ""
}

func TestUserHandler_RegisterHashFailure(t *testing.T) {
	ts := testutil.NewTestServerWithHasher(t, testutil.NewFailingHasher())
	client := ts.NewClient(t)

	resp := testutil.DoJSON(t, client, http.MethodPost, ts.APIURL("/users/register"), map[string]string{
		"Username":     "alice",
		"Password":     "pw123!",
		"EmailAddress": "a@x.com",
	})
	body := testutil.ReadBody(t, resp)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), testutil.HashFailureDetail)
	assert.Empty(t, resp.Cookies())

	var errBody struct {
		Message string
		Success bool
	}
	require.NoError(t, json.Unmarshal(body, &errBody))
	assert.Equal(t, apperr.MsgInternal, errBody.Message)
	assert.False(t, errBody.Success)

	_, err := ts.Repos.User.GetByUsername(context.Background(), "alice")
	assert.Error(t, err)
}
