package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-console/internal/config"
	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/settings"
)

func newTestClient(t *testing.T, r chi.Router) *Client {
	t.Helper()
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// Test Today - populated record with _id and embedded user
func TestClient_Today_Populated(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/attendance/today", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{
			"_id":"att-1",
			"userId":{"_id":"u-1","name":"Lan","email":"lan@example.com","role":"employee"},
			"date":"2024-03-04T00:00:00Z",
			"checkIn":{"type":"check-in","time":"2024-03-04T01:02:03Z","ipAddress":"10.0.0.1","deviceInfo":{"browser":"Firefox"}},
			"status":"pending","hasDeviceAlert":false,"hasIpAlert":false
		}}`)
	})
	c := newTestClient(t, r)

	// Act
	record, err := c.Today(context.Background())

	// Assert
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "att-1", record.ID)
	assert.True(t, record.User.IsPopulated())
	assert.Equal(t, "u-1", record.User.ID())
	assert.Equal(t, "Lan", record.User.Name())
	require.NotNil(t, record.CheckIn)
	assert.Equal(t, "10.0.0.1", record.CheckIn.IPAddress)
	assert.False(t, record.CanCheckIn())
	assert.True(t, record.CanCheckOut())
}

// Test Today - empty data means no record yet
func TestClient_Today_Empty(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/attendance/today", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":null}`)
	})
	c := newTestClient(t, r)

	record, err := c.Today(context.Background())

	require.NoError(t, err)
	assert.Nil(t, record)
}

// Test Today/Submit - a check-out without a check-in is rejected
func TestClient_RejectsCheckOutWithoutCheckIn(t *testing.T) {
	broken := `{"success":true,"data":{"_id":"a-1","status":"pending","checkOut":{"type":"check-out","time":"2024-03-04T10:00:00Z"}}}`
	r := chi.NewRouter()
	r.Get("/attendance/today", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, broken)
	})
	r.Post("/attendance/check-out", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, broken)
	})
	r.Get("/admin/attendances/a-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, broken)
	})
	c := newTestClient(t, r)

	record, err := c.Today(context.Background())
	assert.Nil(t, record)
	assert.ErrorIs(t, err, attendance.ErrCheckOutWithoutCheckIn)

	record, err = c.Submit(context.Background(), attendance.ActionCheckOut, nil)
	assert.Nil(t, record)
	assert.ErrorIs(t, err, attendance.ErrCheckOutWithoutCheckIn)

	record, err = c.AdminGetAttendance(context.Background(), "a-1")
	assert.Nil(t, record)
	assert.ErrorIs(t, err, attendance.ErrCheckOutWithoutCheckIn)
}

func TestClient_PreCheck_VerdictLocations(t *testing.T) {
	tests := []struct {
		name string
		body string
		want attendance.FraudVerdict
	}{
		{
			name: "nested under data.fraud",
			body: `{"success":true,"data":{"fraud":{"detected":true,"hasIpAlert":true,"message":"IP mismatch"}}}`,
			want: attendance.FraudVerdict{Detected: true, HasIPAlert: true, Message: "IP mismatch"},
		},
		{
			name: "top-level fraud",
			body: `{"success":true,"fraud":{"detected":true,"hasDeviceAlert":true,"message":"New device"}}`,
			want: attendance.FraudVerdict{Detected: true, HasDeviceAlert: true, Message: "New device"},
		},
		{
			name: "data is the verdict",
			body: `{"success":true,"data":{"detected":false,"hasDeviceAlert":false,"hasIpAlert":false,"message":""}}`,
			want: attendance.FraudVerdict{},
		},
		{
			name: "no verdict at all",
			body: `{"success":true}`,
			want: attendance.FraudVerdict{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotType string
			r := chi.NewRouter()
			r.Get("/attendance/pre-check-fraud", func(w http.ResponseWriter, r *http.Request) {
				gotType = r.URL.Query().Get("type")
				writeJSON(w, http.StatusOK, tt.body)
			})
			c := newTestClient(t, r)

			verdict, err := c.PreCheck(context.Background(), attendance.ActionCheckOut)

			require.NoError(t, err)
			assert.Equal(t, tt.want, verdict)
			assert.Equal(t, "check-out", gotType)
		})
	}
}

// Test Submit - reason and bearer are forwarded
func TestClient_Submit_SendsReasonAndToken(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	r := chi.NewRouter()
	r.Post("/attendance/check-out", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"_id":"att-1","userId":"u-1","status":"pending",
			"checkIn":{"type":"check-in","time":"2024-03-04T01:00:00Z"},
			"checkOut":{"type":"check-out","time":"2024-03-04T10:00:00Z"},
			"hasIpAlert":true,"alertMessage":"IP mismatch","fraudReason":"working remotely"}}`)
	})
	c := newTestClient(t, r).WithToken("client-token")

	reason := "working remotely"
	ctx := ContextWithToken(context.Background(), "ctx-token")

	// Act
	record, err := c.Submit(ctx, attendance.ActionCheckOut, &reason)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Bearer ctx-token", gotAuth)
	assert.Equal(t, "working remotely", gotBody["fraudReason"])
	assert.Equal(t, "u-1", record.User.ID())
	assert.False(t, record.User.IsPopulated())
	assert.True(t, record.HasAlert())
	assert.Equal(t, "IP mismatch", record.AlertText())
}

// Test Submit - nil reason is omitted from the body
func TestClient_Submit_OmitsNilReason(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string

	r := chi.NewRouter()
	r.Post("/attendance/check-in", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusCreated, `{"success":true,"data":{"_id":"att-2","status":"pending","checkIn":{"type":"check-in","time":"2024-03-04T01:00:00Z"}}}`)
	})
	c := newTestClient(t, r).WithToken("client-token")

	_, err := c.Submit(context.Background(), attendance.ActionCheckIn, nil)

	require.NoError(t, err)
	assert.Equal(t, "Bearer client-token", gotAuth)
	_, present := gotBody["fraudReason"]
	assert.False(t, present)
}

func TestClient_APIErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message member", http.StatusBadRequest, `{"success":false,"message":"Already checked in today"}`, "Already checked in today"},
		{"string error member", http.StatusForbidden, `{"success":false,"error":"Fraud reason required"}`, "Fraud reason required"},
		{"no body", http.StatusBadGateway, ``, "request failed with status 502"},
		{"success false on 200", http.StatusOK, `{"success":false,"message":"Not allowed"}`, "Not allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Post("/attendance/check-in", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			c := newTestClient(t, r)

			_, err := c.CheckIn(context.Background(), nil)

			require.Error(t, err)
			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, apiErr.UserMessage())
			assert.False(t, IsTransport(err))
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second})

	_, err := c.PreCheck(context.Background(), attendance.ActionCheckIn)

	require.Error(t, err)
	assert.True(t, IsTransport(err))
	_, ok := AsAPIError(err)
	assert.False(t, ok)
}

func TestClient_InvalidActionNeverHitsNetwork(t *testing.T) {
	calls := 0
	r := chi.NewRouter()
	r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) { calls++ })
	c := newTestClient(t, r)

	_, err := c.Submit(context.Background(), attendance.Action("teleport"), nil)

	assert.True(t, errors.Is(err, attendance.ErrInvalidAction))
	assert.Equal(t, 0, calls)
}

func TestClient_History_Pagination(t *testing.T) {
	var gotLimit string
	r := chi.NewRouter()
	r.Get("/attendance/history", func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"_id":"a"},{"_id":"b"}],"pagination":{"page":1,"limit":10,"total":2,"pages":1}}`)
	})
	c := newTestClient(t, r)

	records, err := c.History(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, "10", gotLimit)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].ID)
}

func TestClient_MyLeaveRequests_PolymorphicRefs(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/leave-requests/my-requests", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{
			"_id":"lr-1","userId":"u-1","leaveDate":"2024-05-01T00:00:00Z","leaveType":"full-day","reason":"family",
			"supportingStaff":[{"_id":"u-2","name":"Minh"},"u-3"],
			"status":"rejected","rejectionReason":"busy week","reviewedBy":{"_id":"admin-1","name":"Boss"}
		}],"pagination":{"page":2,"limit":5,"total":6,"pages":2}}`)
	})
	c := newTestClient(t, r)

	page, err := c.MyLeaveRequests(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 2, Limit: 5, Total: 6, Pages: 2}, page.Pagination)
	require.Len(t, page.Items, 1)

	req := page.Items[0]
	assert.Equal(t, "lr-1", req.ID)
	assert.Equal(t, leave.TypeFullDay, req.LeaveType)
	assert.Equal(t, leave.StatusRejected, req.Status)
	assert.Equal(t, []string{"Minh"}, req.SupportingStaffNames())
	require.Len(t, req.SupportingStaff, 2)
	assert.Equal(t, "u-3", req.SupportingStaff[1].ID())
	assert.Equal(t, "Boss", req.ReviewedBy.Name())
}

func TestClient_AdminListNotifications_UnreadCount(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/admin/notifications", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") == "1" {
			writeJSON(w, http.StatusOK, `{"success":true,"data":[{"_id":"n1","isRead":false},{"_id":"n2","isRead":false}]}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"_id":"n1","isRead":false}],"unreadCount":7}`)
	})
	c := newTestClient(t, r)

	feed, err := c.AdminListNotifications(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 7, feed.UnreadCount)
	assert.Equal(t, "n1", feed.Notifications[0].ID)

	// Without unreadCount the client counts the page itself
	feed, err = c.AdminListNotifications(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, feed.UnreadCount)
}

func TestClient_AdminUpdateSettings(t *testing.T) {
	var gotBody settings.UpdateRequest
	r := chi.NewRouter()
	r.Put("/admin/settings", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"defaultCheckInTime":"08:30","allowedIPs":["10.0.0.0/24"]}}`)
	})
	c := newTestClient(t, r)

	s, err := c.AdminUpdateSettings(context.Background(), settings.UpdateRequest{
		DefaultCheckInTime: "08:30",
		AllowedIPs:         []string{"10.0.0.0/24"},
	})

	require.NoError(t, err)
	assert.Equal(t, "08:30", gotBody.DefaultCheckInTime)
	assert.Equal(t, []string{"10.0.0.0/24"}, s.AllowedIPs)
}

func TestClient_AdminListAttendances_Query(t *testing.T) {
	var gotQuery map[string]string
	r := chi.NewRouter()
	r.Get("/admin/attendances", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		writeJSON(w, http.StatusOK, `{"success":true,"data":[],"pagination":{"page":1,"limit":20,"total":0,"pages":0}}`)
	})
	c := newTestClient(t, r)

	userID := "u-9"
	status := "pending"
	month := 3
	hasAlert := true
	page, err := c.AdminListAttendances(context.Background(), attendance.AttendanceFilter{
		UserID:   &userID,
		Status:   &status,
		Month:    &month,
		HasAlert: &hasAlert,
		Page:     1,
		Limit:    20,
	})

	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, map[string]string{
		"page":     "1",
		"limit":    "20",
		"userId":   "u-9",
		"status":   "pending",
		"month":    "3",
		"hasAlert": "true",
	}, gotQuery)
}
