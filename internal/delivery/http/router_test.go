package http

import (
	"bytes"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gdugdh24/geomatch-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/geomatch-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/geomatch-backend/internal/delivery/ws"
	"github.com/gdugdh24/geomatch-backend/internal/event"
	"github.com/gdugdh24/geomatch-backend/internal/event/eventtest"
	"github.com/gdugdh24/geomatch-backend/internal/repository/memory"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/auth"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/chat"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/connection"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/discovery"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/profile"
	"github.com/gdugdh24/geomatch-backend/internal/usecase/subscription"
)

type testApp struct {
	engine *gin.Engine
	events *eventtest.Recorder
}

func newTestApp() *testApp {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	users := memory.NewUserRepository()
	conns := memory.NewConnectionRepository()
	skips := memory.NewSkipRepository()
	events := &eventtest.Recorder{}
	hub := ws.NewHub(logger)

	authUseCase := auth.NewAuthUseCase(users, memory.NewTokenDenylist(), "0123456789abcdef0123456789abcdef", time.Hour, logger)
	chatUseCase := chat.NewChatUseCase(memory.NewMessageRepository(), conns, memory.NewPresenceRepository(), hub, events, logger)

	router := NewRouter(
		handler.NewAuthHandler(authUseCase),
		handler.NewProfileHandler(profile.NewProfileUseCase(users, logger)),
		handler.NewDiscoveryHandler(discovery.NewDiscoveryUseCase(users, conns, skips, logger)),
		handler.NewConnectionHandler(connection.NewConnectionUseCase(conns, skips, users, events, logger)),
		handler.NewChatHandler(chatUseCase),
		handler.NewSubscriptionHandler(subscription.NewSubscriptionUseCase(users, logger)),
		ws.NewHandler(hub, chatUseCase, nil, logger),
		middleware.NewAuthMiddleware(authUseCase),
		logger,
	)
	return &testApp{engine: router.Setup(), events: events}
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

type session struct {
	token string
	id    int64
}

func (a *testApp) signup(t *testing.T, contact, gender string, lat, lon float64) session {
	t.Helper()
	w := a.do(nethttp.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"contact":       contact,
		"password":      "long enough secret",
		"name":          contact,
		"gender":        gender,
		"date_of_birth": "1996-04-02",
		"interests":     []string{"chess"},
		"latitude":      lat,
		"longitude":     lon,
	})
	require.Equal(t, nethttp.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return session{token: resp.Token, id: resp.User.ID}
}

func candidateIDs(t *testing.T, w *httptest.ResponseRecorder) []int64 {
	t.Helper()
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Candidates []struct {
			ID int64 `json:"id"`
		} `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	ids := make([]int64, 0, len(resp.Candidates))
	for _, c := range resp.Candidates {
		ids = append(ids, c.ID)
	}
	return ids
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestHealth(t *testing.T) {
	app := newTestApp()
	assert.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodHead, "/health", "", nil).Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestApp()
	for _, p := range []string{"/api/v1/profile/me", "/api/v1/discover", "/api/v1/connections", "/api/v1/chat/online", "/api/v1/subscription"} {
		assert.Equal(t, nethttp.StatusUnauthorized, app.do(nethttp.MethodGet, p, "", nil).Code, p)
	}
}

func TestSignup_Validation(t *testing.T) {
	app := newTestApp()
	w := app.do(nethttp.MethodPost, "/api/v1/auth/signup", "", gin.H{"contact": "x"})
	require.Equal(t, nethttp.StatusBadRequest, w.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Fields, "password")
	assert.Contains(t, resp.Fields, "date_of_birth")
}

func TestDiscoveryFlow(t *testing.T) {
	app := newTestApp()
	alice := app.signup(t, "alice@example.com", "female", 55.75, 37.62)
	bob := app.signup(t, "bob@example.com", "male", 55.76, 37.63)
	carol := app.signup(t, "carol@example.com", "female", 59.93, 30.33)

	assert.Equal(t, []int64{bob.id, carol.id}, candidateIDs(t, app.do(nethttp.MethodGet, "/api/v1/discover", alice.token, nil)))
	assert.Equal(t, []int64{bob.id}, candidateIDs(t, app.do(nethttp.MethodGet, "/api/v1/discover?radius=0-50", alice.token, nil)))

	w := app.do(nethttp.MethodGet, "/api/v1/discover?age=abc", alice.token, nil)
	require.Equal(t, nethttp.StatusBadRequest, w.Code)
	var errResp handler.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Contains(t, errResp.Fields, "age")

	// connect alice and bob
	require.Equal(t, nethttp.StatusCreated, app.do(nethttp.MethodPost, "/api/v1/connections/"+itoa(bob.id), alice.token, nil).Code)
	assert.Equal(t, nethttp.StatusConflict, app.do(nethttp.MethodPost, "/api/v1/connections/"+itoa(bob.id), alice.token, nil).Code)

	w = app.do(nethttp.MethodGet, "/api/v1/connections/incoming", bob.token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	require.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodPost, "/api/v1/connections/"+itoa(alice.id)+"/accept", bob.token, nil).Code)

	// accepted pairs drop out of both feeds
	assert.Equal(t, []int64{carol.id}, candidateIDs(t, app.do(nethttp.MethodGet, "/api/v1/discover", alice.token, nil)))
	assert.Equal(t, []int64{carol.id}, candidateIDs(t, app.do(nethttp.MethodGet, "/api/v1/discover", bob.token, nil)))

	require.Equal(t, nethttp.StatusCreated, app.do(nethttp.MethodPost, "/api/v1/skips/"+itoa(carol.id), alice.token, nil).Code)
	assert.Empty(t, candidateIDs(t, app.do(nethttp.MethodGet, "/api/v1/discover", alice.token, nil)))
	assert.Equal(t, []int64{alice.id, bob.id}, candidateIDs(t, app.do(nethttp.MethodGet, "/api/v1/discover", carol.token, nil)))

	assert.Equal(t, []string{event.RoutingKeyConnectionRequested, event.RoutingKeyConnectionAccepted}, app.events.Keys())
}

func TestChatFlow(t *testing.T) {
	app := newTestApp()
	alice := app.signup(t, "alice@example.com", "female", 55.75, 37.62)
	bob := app.signup(t, "bob@example.com", "male", 55.76, 37.63)

	send := "/api/v1/chat/" + itoa(bob.id) + "/messages"
	assert.Equal(t, nethttp.StatusForbidden, app.do(nethttp.MethodPost, send, alice.token, gin.H{"body": "hi"}).Code)

	require.Equal(t, nethttp.StatusCreated, app.do(nethttp.MethodPost, "/api/v1/connections/"+itoa(bob.id), alice.token, nil).Code)
	require.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodPost, "/api/v1/connections/"+itoa(alice.id)+"/accept", bob.token, nil).Code)

	require.Equal(t, nethttp.StatusCreated, app.do(nethttp.MethodPost, send, alice.token, gin.H{"body": "hi"}).Code)

	w := app.do(nethttp.MethodGet, "/api/v1/chat/"+itoa(alice.id)+"/messages?limit=10", bob.token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	assert.Equal(t, nethttp.StatusBadRequest, app.do(nethttp.MethodGet, "/api/v1/chat/"+itoa(alice.id)+"/messages?before=yesterday", bob.token, nil).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	app := newTestApp()
	alice := app.signup(t, "alice@example.com", "female", 55.75, 37.62)

	require.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodGet, "/api/v1/profile/me", alice.token, nil).Code)
	require.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodPost, "/api/v1/auth/logout", alice.token, nil).Code)
	assert.Equal(t, nethttp.StatusUnauthorized, app.do(nethttp.MethodGet, "/api/v1/profile/me", alice.token, nil).Code)
}

func TestSubscriptionRoutes(t *testing.T) {
	app := newTestApp()
	alice := app.signup(t, "alice@example.com", "female", 55.75, 37.62)

	assert.Equal(t, nethttp.StatusBadRequest, app.do(nethttp.MethodPost, "/api/v1/subscription", alice.token, gin.H{"months": 13}).Code)

	w := app.do(nethttp.MethodPost, "/api/v1/subscription", alice.token, gin.H{"months": 1})
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":true`)

	w = app.do(nethttp.MethodGet, "/api/v1/subscription", alice.token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":true`)
}

func TestOtherUsersSeePublicFieldsOnly(t *testing.T) {
	app := newTestApp()
	alice := app.signup(t, "alice@example.com", "female", 55.75, 37.62)
	bob := app.signup(t, "bob@example.com", "male", 55.76, 37.63)
	require.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodPost, "/api/v1/subscription", bob.token, gin.H{"months": 1}).Code)

	private := []string{`"contact"`, `"latitude"`, `"longitude"`, `"date_of_birth"`, `"is_subscribed"`, `"subscription_expires_at"`, `"password_hash"`}
	assertPublic := func(w *httptest.ResponseRecorder) {
		t.Helper()
		require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
		for _, key := range private {
			assert.NotContains(t, w.Body.String(), key)
		}
	}

	w := app.do(nethttp.MethodGet, "/api/v1/discover", alice.token, nil)
	assertPublic(w)
	assert.Equal(t, []int64{bob.id}, candidateIDs(t, w))
	assert.Contains(t, w.Body.String(), `"distance_km"`)

	w = app.do(nethttp.MethodGet, "/api/v1/profile/"+itoa(bob.id), alice.token, nil)
	assertPublic(w)
	assert.Contains(t, w.Body.String(), `"name":"bob@example.com"`)

	require.Equal(t, nethttp.StatusCreated, app.do(nethttp.MethodPost, "/api/v1/connections/"+itoa(bob.id), alice.token, nil).Code)
	assertPublic(app.do(nethttp.MethodGet, "/api/v1/connections/incoming", bob.token, nil))
	require.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodPost, "/api/v1/connections/"+itoa(alice.id)+"/accept", bob.token, nil).Code)
	assertPublic(app.do(nethttp.MethodGet, "/api/v1/connections", alice.token, nil))

	// the owner still sees their own contact
	w = app.do(nethttp.MethodGet, "/api/v1/profile/me", bob.token, nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"contact":"bob@example.com"`)
}

func TestDeactivatedAccountLosesAccess(t *testing.T) {
	app := newTestApp()
	alice := app.signup(t, "alice@example.com", "female", 55.75, 37.62)
	bob := app.signup(t, "bob@example.com", "male", 55.76, 37.63)

	require.Equal(t, nethttp.StatusOK, app.do(nethttp.MethodDelete, "/api/v1/profile/me", alice.token, nil).Code)

	for _, p := range []string{"/api/v1/profile/me", "/api/v1/discover", "/api/v1/connections", "/api/v1/subscription"} {
		assert.Equal(t, nethttp.StatusUnauthorized, app.do(nethttp.MethodGet, p, alice.token, nil).Code, p)
	}
	assert.Equal(t, nethttp.StatusUnauthorized, app.do(nethttp.MethodPost, "/api/v1/connections/"+itoa(bob.id), alice.token, nil).Code)

	w := app.do(nethttp.MethodPost, "/api/v1/auth/login", "", gin.H{"contact": "alice@example.com", "password": "long enough secret"})
	assert.Equal(t, nethttp.StatusForbidden, w.Code, w.Body.String())

	assert.Empty(t, candidateIDs(t, app.do(nethttp.MethodGet, "/api/v1/discover", bob.token, nil)))
}
