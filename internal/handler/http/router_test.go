package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-console/internal/config"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-console/internal/repository/memory"
	authService "github.com/cmlabs-hris/attendance-console/internal/service/auth"
	"github.com/cmlabs-hris/attendance-console/internal/service/console"
	"github.com/cmlabs-hris/attendance-console/internal/workflow"
)

const handlerTestSecret = "test-secret-key-for-jwt"

// fakeBackend is the attendance REST API as far as the employee panel needs it.
type fakeBackend struct {
	mu         sync.Mutex
	today      string
	flagged    bool
	authHeader string
	reasons    []*string
}

func (b *fakeBackend) router() chi.Router {
	r := chi.NewRouter()
	r.Get("/attendance/today", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.authHeader = r.Header.Get("Authorization")
		writeBackendJSON(w, http.StatusOK, `{"success":true,"data":`+b.today+`}`)
	})
	r.Get("/attendance/history", func(w http.ResponseWriter, r *http.Request) {
		writeBackendJSON(w, http.StatusOK, `{"success":true,"data":[],"pagination":{"page":1,"limit":10,"total":0,"pages":0}}`)
	})
	r.Get("/attendance/pre-check-fraud", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.flagged {
			writeBackendJSON(w, http.StatusOK, `{"success":true,"data":{"fraud":{"detected":true,"hasIpAlert":true,"hasDeviceAlert":false,"message":"IP mismatch"}}}`)
			return
		}
		writeBackendJSON(w, http.StatusOK, `{"success":true,"data":{"fraud":{"detected":false}}}`)
	})
	r.Post("/attendance/check-in", func(w http.ResponseWriter, r *http.Request) {
		var body attendance.SubmitRequest
		_ = json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.reasons = append(b.reasons, body.FraudReason)
		b.today = `{"_id":"a-1","status":"pending","hasIpAlert":true,"alertMessage":"IP mismatch",` +
			`"checkIn":{"type":"check-in","time":"2024-03-04T01:05:00Z","ipAddress":"10.0.0.9","deviceInfo":{}}}`
		writeBackendJSON(w, http.StatusCreated, `{"success":true,"message":"Check-in successful","data":`+b.today+`}`)
	})
	return r
}

func (b *fakeBackend) setToday(record string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.today = record
}

func (b *fakeBackend) setFlagged(flagged bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flagged = flagged
}

func (b *fakeBackend) lastAuthHeader() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.authHeader
}

func (b *fakeBackend) submittedReasons() []*string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*string(nil), b.reasons...)
}

func writeBackendJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// fakeLeaveService embeds LeaveService so only the methods under test exist.
type fakeLeaveService struct {
	LeaveService

	mu        sync.Mutex
	createErr error
}

func (f *fakeLeaveService) failCreate(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createErr = err
}

func (f *fakeLeaveService) Create(ctx context.Context, req leave.CreateRequest) (*leave.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &leave.Request{ID: "l-1", Status: leave.StatusPending}, nil
}

func (f *fakeLeaveService) Delete(ctx context.Context, id string) error {
	return leave.ErrLeaveRequestNotPending
}

type fakeAdminService struct {
	AdminService

	mu   sync.Mutex
	bulk attendance.BulkUpdateStatusRequest
}

func (f *fakeAdminService) lastBulk() attendance.BulkUpdateStatusRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bulk
}

func (f *fakeAdminService) BulkUpdateAttendanceStatus(ctx context.Context, req attendance.BulkUpdateStatusRequest) (attendance.BulkUpdateStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulk = req
	return attendance.BulkUpdateStatusResponse{Updated: req.IDs}, nil
}

// logBuffer collects request logs written from server goroutines.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *logBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.Write(p)
}

func (l *logBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

type testServer struct {
	srv     *httptest.Server
	logs    *logBuffer
	jwt     jwt.Service
	backend *fakeBackend
	leave   *fakeLeaveService
	admin   *fakeAdminService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	backend := &fakeBackend{today: "null"}
	backendSrv := httptest.NewServer(backend.router())
	t.Cleanup(backendSrv.Close)

	client := apiclient.NewClient(config.BackendConfig{BaseURL: backendSrv.URL, Timeout: 5 * time.Second})
	jwtService := jwt.NewJWTService(handlerTestSecret)
	hub := sse.NewHub()

	consoleService := console.NewService(console.Options{
		Gateway: client,
		Journal: memory.NewAttemptRepository(),
		Hub:     hub,
		Policy:  workflow.FailOpen,
	})

	ts := &testServer{
		logs:    &logBuffer{},
		jwt:     jwtService,
		backend: backend,
		leave:   &fakeLeaveService{},
		admin:   &fakeAdminService{},
	}

	router := NewRouter(jwtService, RouterOptions{
		AllowedOrigins: []string{"http://localhost:3000"},
		Env:            "test",
		Logger:         slog.New(slog.NewTextHandler(ts.logs, nil)),
	}, Handlers{
		Auth:       NewAuthHandler(authService.NewAuthService(client, jwtService)),
		Attendance: NewAttendanceHandler(consoleService),
		Leave:      NewLeaveHandler(ts.leave),
		Admin:      NewAdminHandler(ts.admin),
		Events:     NewEventsHandler(hub),
	})

	ts.srv = httptest.NewServer(router)
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) token(t *testing.T, role user.Role) string {
	t.Helper()
	token, err := ts.jwt.Encode(jwt.Identity{UserID: "u-" + string(role), Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (ts *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, ts.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// Test protected route - no token
func TestRouter_RequiresToken(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, http.MethodGet, "/api/v1/attendance", "", nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, resp.Success)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

// Test protected route - token signed with another secret
func TestRouter_RejectsForeignToken(t *testing.T) {
	ts := newTestServer(t)
	foreign, err := jwt.NewJWTService("another-secret").Encode(jwt.Identity{UserID: "u-1"}, time.Hour)
	require.NoError(t, err)

	status, _ := ts.do(t, http.MethodGet, "/api/v1/attendance", foreign, nil)

	assert.Equal(t, http.StatusUnauthorized, status)
}

// Test flagged check-in through the HTTP surface
func TestRouter_FlaggedCheckInFlow(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.setFlagged(true)
	token := ts.token(t, user.RoleEmployee)

	// Panel forwards the caller's token to the backend
	status, resp := ts.do(t, http.MethodGet, "/api/v1/attendance", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bearer "+token, ts.backend.lastAuthHeader())

	var view struct {
		State      string `json:"state"`
		CanCheckIn bool   `json:"canCheckIn"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "not_checked_in", view.State)
	assert.True(t, view.CanCheckIn)

	// Request opens the confirmation dialog
	status, resp = ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"confirm"`)

	// Confirm runs the pre-check and stops for a justification
	status, resp = ts.do(t, http.MethodPost, "/api/v1/attendance/intent/confirm", token, nil)
	require.Equal(t, http.StatusOK, status)
	var step struct {
		Outcome string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &step))
	assert.Equal(t, "awaiting_justification", step.Outcome)

	// Blank reason is rejected
	status, resp = ts.do(t, http.MethodPost, "/api/v1/attendance/justification/confirm", token, map[string]string{"reason": "   "})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Please enter a reason", resp.Error.Details["reason"])

	// A real reason submits
	status, resp = ts.do(t, http.MethodPost, "/api/v1/attendance/justification/confirm", token, map[string]string{"reason": "Working from client site"})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(resp.Data, &step))
	assert.Equal(t, "submitted", step.Outcome)

	reasons := ts.backend.submittedReasons()
	require.Len(t, reasons, 1)
	require.NotNil(t, reasons[0])
	assert.Equal(t, "Working from client site", *reasons[0])

	// The attempt was journaled
	status, resp = ts.do(t, http.MethodGet, "/api/v1/attendance/attempts", token, nil)
	require.Equal(t, http.StatusOK, status)
	var attempts []struct {
		Outcome string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &attempts))
	require.Len(t, attempts, 1)
	assert.Equal(t, "submitted", attempts[0].Outcome)
}

// Test workflow step out of order - Conflict
func TestRouter_StepWithoutAttempt(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, user.RoleEmployee)

	status, resp := ts.do(t, http.MethodPost, "/api/v1/attendance/intent/confirm", token, nil)

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", resp.Error.Code)
}

// Test unknown action - Bad Request
func TestRouter_InvalidAction(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, user.RoleEmployee)

	status, _ := ts.do(t, http.MethodPost, "/api/v1/attendance/lunch-break", token, nil)

	assert.Equal(t, http.StatusBadRequest, status)
}

// Test backend error - status and message are relayed
func TestRouter_UpstreamError(t *testing.T) {
	ts := newTestServer(t)
	ts.leave.failCreate(&apiclient.APIError{StatusCode: http.StatusBadRequest, Message: "You already requested leave on this date"})
	token := ts.token(t, user.RoleEmployee)

	status, resp := ts.do(t, http.MethodPost, "/api/v1/leave-requests", token, map[string]interface{}{
		"leaveDate": "2024-05-02",
		"leaveType": "full-day",
		"reason":    "Family event",
	})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You already requested leave on this date", resp.Error.Message)
}

// Test leave delete - not pending is a Conflict
func TestRouter_DeleteReviewedLeave(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, user.RoleEmployee)

	status, _ := ts.do(t, http.MethodDelete, "/api/v1/leave-requests/l-9", token, nil)

	assert.Equal(t, http.StatusConflict, status)
}

// Test admin routes - Forbidden for employees
func TestRouter_AdminOnly(t *testing.T) {
	ts := newTestServer(t)

	status, resp := ts.do(t, http.MethodPatch, "/api/v1/admin/attendances/bulk-status", ts.token(t, user.RoleEmployee), map[string]interface{}{
		"ids":    []string{"a-1"},
		"status": "completed",
	})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	status, resp = ts.do(t, http.MethodPatch, "/api/v1/admin/attendances/bulk-status", ts.token(t, user.RoleAdmin), map[string]interface{}{
		"ids":    []string{"a-1", "a-2"},
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"a-1", "a-2"}, ts.admin.lastBulk().IDs)
}

// Test malformed body - Bad Request
func TestRouter_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/v1/auth/login", bytes.NewBufferString("{not json"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Test query token - only the event stream accepts it, and it is never logged
func TestRouter_QueryTokenOnlyOnEventStream(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, user.RoleEmployee)

	req, err := http.NewRequest(http.MethodPost, ts.srv.URL+"/api/v1/attendance/check-in?token="+token, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, ts.srv.URL+"/api/v1/events?token="+token, nil)
	require.NoError(t, err)
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()

	require.Equal(t, http.StatusOK, stream.StatusCode)
	assert.Equal(t, "text/event-stream", stream.Header.Get("Content-Type"))
	line, err := bufio.NewReader(stream.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: connected\n", line)

	require.Eventually(t, func() bool {
		return strings.Contains(ts.logs.String(), "/api/v1/attendance/check-in")
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, ts.logs.String(), token)
}

// Test inconsistent backend record - check-out without check-in is refused
func TestRouter_InconsistentTodayRecord(t *testing.T) {
	ts := newTestServer(t)
	ts.backend.setToday(`{"_id":"a-1","status":"pending","checkOut":{"type":"check-out","time":"2024-03-04T10:00:00Z"}}`)
	token := ts.token(t, user.RoleEmployee)

	status, resp := ts.do(t, http.MethodGet, "/api/v1/attendance", token, nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "BAD_GATEWAY", resp.Error.Code)

	status, _ = ts.do(t, http.MethodPost, "/api/v1/attendance/check-in", token, nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Empty(t, ts.backend.submittedReasons())
}
