package api

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/mailer"
	"alcyxob/gym-app/internal/repository/memory"
	"alcyxob/gym-app/internal/service"
	"alcyxob/gym-app/internal/session"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

type testRequestRateLimiter struct {
	// key to remaining requests
	Limits map[string]int
}

func (l *testRequestRateLimiter) Allow(_ context.Context, key string, _ redis_rate.Limit) (*redis_rate.Result, error) {
	res := &redis_rate.Result{RetryAfter: 30 * time.Second}
	if l.Limits[key] == 0 {
		return res, nil
	}
	res.Allowed = l.Limits[key]
	res.RetryAfter = 0
	l.Limits[key]--
	return res, nil
}

func newTestRouter(t *testing.T, limiter RequestRateLimiter) *gin.Engine {
	t.Helper()
	repos := memory.NewRepositories()
	auth := service.NewAuthService(repos.Profiles, session.NewMemoryStore(), mailer.NewLogMailer(), service.AuthConfig{
		JWTSecret: "test-secret",
		AppURL:    "http://localhost:3000",
	})
	router := gin.New()
	SetupRoutes(router, Services{
		Auth:        auth,
		Profiles:    service.NewProfileService(repos),
		Admin:       service.NewAdminService(repos),
		Roster:      service.NewRosterService(repos),
		Routines:    service.NewRoutineService(repos, nil),
		Assignments: service.NewAssignmentService(repos),
		Progress:    service.NewProgressService(repos),
		Comments:    service.NewCommentService(repos),
	}, RouteOptions{RateLimiter: limiter, AuthPerMinute: 10})
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

// signUpAndLogin registers an account and returns its access token and id.
func signUpAndLogin(t *testing.T, router http.Handler, email string, role domain.Role) (string, string) {
	t.Helper()
	rr := doJSON(t, router, http.MethodPost, "/api/v1/auth/signup", "", gin.H{
		"fullName": email, "email": email, "password": "long-enough", "role": role,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": "long-enough"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	sess := decode[SessionResponse](t, rr)
	return sess.AccessToken, sess.User.ID
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{domain.NewValidationError("bad"), http.StatusBadRequest},
		{domain.NewConflictError("dup"), http.StatusConflict},
		{domain.NewNotFoundError("routine"), http.StatusNotFound},
		{domain.NewAuthorizationError("no"), http.StatusForbidden},
		{domain.NewStoreError(errors.New("socket closed"), "list routines"), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
		{service.ErrAuthenticationFailed, http.StatusUnauthorized},
		{fmt.Errorf("refresh: %w", service.ErrInvalidToken), http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			writeError(c, tt.err)
			assert.Equal(t, tt.code, rr.Code)
			assert.True(t, c.IsAborted())
		})
	}

	// internals never leak
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(c, domain.NewStoreError(errors.New("mongo: secret host"), "op"))
	assert.NotContains(t, rr.Body.String(), "secret host")
}

func TestAuthMiddleware(t *testing.T) {
	router := newTestRouter(t, nil)
	token, id := signUpAndLogin(t, router, "coach@gym.test", domain.RoleTrainer)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tt.code, rr.Code, rr.Body.String())
		})
	}

	rr := doJSON(t, router, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, id, decode[ProfileResponse](t, rr).ID)
}

func TestRoleMiddleware(t *testing.T) {
	router := newTestRouter(t, nil)
	studentToken, _ := signUpAndLogin(t, router, "ana@gym.test", domain.RoleStudent)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/routines", studentToken, gin.H{"name": "x", "durationType": "week", "startDate": "2024-01-01"})
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = doJSON(t, router, http.MethodGet, "/api/v1/admin/users", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = doJSON(t, router, http.MethodGet, "/api/v1/trainer/students", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := &testRequestRateLimiter{Limits: map[string]int{"auth:192.0.2.1": 2}}
	router := newTestRouter(t, limiter)

	login := func() *httptest.ResponseRecorder {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(gin.H{"email": "nobody@gym.test", "password": "whatever"}))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", &buf)
		req.RemoteAddr = "192.0.2.1:51234"
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusUnauthorized, login().Code)
	assert.Equal(t, http.StatusUnauthorized, login().Code)
	rr := login()
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))

	// routes outside /auth are not limited
	rr = doJSON(t, router, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRoutineFlow(t *testing.T) {
	router := newTestRouter(t, nil)
	trainerToken, _ := signUpAndLogin(t, router, "coach@gym.test", domain.RoleTrainer)
	studentToken, studentID := signUpAndLogin(t, router, "ana@gym.test", domain.RoleStudent)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/trainer/students", trainerToken, gin.H{"studentEmail": "ana@gym.test"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, router, http.MethodPost, "/api/v1/routines", trainerToken, gin.H{
		"name":         "Strength - Beginners",
		"durationType": "month",
		"startDate":    "2024-01-01",
		"studentIds":   []string{studentID},
		"days": []gin.H{
			{"weekNumber": 1, "dayNumber": 1, "name": "Push", "exercises": []gin.H{
				{"name": "Bench press", "setConfigurations": []gin.H{{"sets": 3, "reps": "10", "weight": "40kg"}}},
				{"name": "Dips"},
			}},
			{"weekNumber": 1, "dayNumber": 2, "exercises": []gin.H{{"name": ""}}},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[service.RoutineDetail](t, rr)
	assert.Equal(t, "2024-01-28", created.EndDate.Format(dateLayout))
	require.Len(t, created.Days, 1, "a day with only blank exercises is a rest day")
	require.Len(t, created.Assignments, 1)
	routinePath := "/api/v1/routines/" + created.ID.Hex()

	rr = doJSON(t, router, http.MethodGet, routinePath+"/today?date=2024-01-01", studentToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	today := decode[service.TodayView](t, rr)
	require.NotNil(t, today.Day)
	assert.Equal(t, "Push", today.Day.Name)

	bench := created.Days[0].Exercises[0]
	rr = doJSON(t, router, http.MethodPost, "/api/v1/exercises/"+bench.ID.Hex()+"/completion", studentToken, gin.H{"actualSets": 3, "actualWeight": "42.5kg"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	// no body at all is accepted too
	rr = doJSON(t, router, http.MethodPost, "/api/v1/exercises/"+created.Days[0].Exercises[1].ID.Hex()+"/completion", studentToken, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = doJSON(t, router, http.MethodGet, "/api/v1/workout-days/"+created.Days[0].ID.Hex()+"/progress?studentId="+studentID, trainerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	dayProgress := decode[service.DayProgressView](t, rr)
	assert.Equal(t, 2, dayProgress.Completed)
	assert.Equal(t, 2, dayProgress.Total)

	// hidden routines disappear for the student
	rr = doJSON(t, router, http.MethodPost, "/api/v1/assignments/"+created.Assignments[0].ID.Hex()+"/visibility", trainerToken, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = doJSON(t, router, http.MethodGet, routinePath, studentToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/api/v1/routines/not-an-id", trainerToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, routinePath, trainerToken, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = doJSON(t, router, http.MethodGet, routinePath, trainerToken, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateRoutineValidation(t *testing.T) {
	router := newTestRouter(t, nil)
	trainerToken, _ := signUpAndLogin(t, router, "coach@gym.test", domain.RoleTrainer)

	tests := []struct {
		name string
		body gin.H
	}{
		{"unknown duration", gin.H{"name": "x", "durationType": "year", "startDate": "2024-01-01"}},
		{"missing start date", gin.H{"name": "x", "durationType": "week"}},
		{"bad date", gin.H{"name": "x", "durationType": "week", "startDate": "01/01/2024"}},
		{"day out of range", gin.H{"name": "x", "durationType": "week", "startDate": "2024-01-01",
			"days": []gin.H{{"weekNumber": 1, "dayNumber": 8, "exercises": []gin.H{{"name": "Row"}}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/api/v1/routines", trainerToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestCreateRoutineIgnoresEmptyPlaceholderDays(t *testing.T) {
	router := newTestRouter(t, nil)
	trainerToken, _ := signUpAndLogin(t, router, "coach@gym.test", domain.RoleTrainer)

	rr := doJSON(t, router, http.MethodPost, "/api/v1/routines", trainerToken, gin.H{
		"name":         "Mobility",
		"durationType": "week",
		"startDate":    "2024-01-01",
		"days": []gin.H{
			{"weekNumber": 1, "dayNumber": 1, "exercises": []gin.H{{"name": "Hip circles"}}},
			{"weekNumber": 0, "dayNumber": 0, "exercises": []gin.H{}},
			{"weekNumber": 3, "dayNumber": 9},
		},
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[service.RoutineDetail](t, rr)
	require.Len(t, created.Days, 1)
	assert.Equal(t, 1, created.Days[0].DayNumber)
}
