package admin

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-console/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/apiclient"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/validator"
)

// fakeBackend embeds Backend so tests only implement what they call.
type fakeBackend struct {
	Backend

	mu        sync.Mutex
	statusErr map[string]error
	updated   map[string]attendance.Status
	inFlight  int32
	maxFlight int32
	rejected  []leave.RejectRequest
	settings  []settings.UpdateRequest
}

func (f *fakeBackend) AdminUpdateAttendanceStatus(ctx context.Context, id string, status attendance.Status) (*attendance.Record, error) {
	n := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&f.maxFlight)
		if n <= peak || atomic.CompareAndSwapInt32(&f.maxFlight, peak, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.statusErr[id]; err != nil {
		return nil, err
	}
	if f.updated == nil {
		f.updated = make(map[string]attendance.Status)
	}
	f.updated[id] = status
	return &attendance.Record{ID: id, Status: status}, nil
}

func (f *fakeBackend) AdminRejectLeaveRequest(ctx context.Context, req leave.RejectRequest) (*leave.Request, error) {
	f.rejected = append(f.rejected, req)
	return &leave.Request{ID: req.ID, Status: leave.StatusRejected}, nil
}

func (f *fakeBackend) AdminUpdateSettings(ctx context.Context, req settings.UpdateRequest) (settings.Settings, error) {
	f.settings = append(f.settings, req)
	return settings.Settings{DefaultCheckInTime: req.DefaultCheckInTime}, nil
}

func (f *fakeBackend) AdminMarkNotificationRead(ctx context.Context, id string) error {
	if id == "gone" {
		return &apiclient.APIError{StatusCode: 404, Message: "Notification not found"}
	}
	return nil
}

func (f *fakeBackend) AdminGetAttendance(ctx context.Context, id string) (*attendance.Record, error) {
	switch id {
	case "gone":
		return nil, &apiclient.APIError{StatusCode: 404, Message: "Attendance not found"}
	case "broken":
		return nil, &apiclient.APIError{StatusCode: 500, Message: "Database error"}
	}
	return &attendance.Record{ID: id, Status: attendance.StatusPending}, nil
}

// Test BulkUpdateAttendanceStatus - partial failure and bounded concurrency
func TestAdminService_BulkUpdateAttendanceStatus(t *testing.T) {
	backend := &fakeBackend{statusErr: map[string]error{
		"a-3": &apiclient.APIError{StatusCode: 404, Message: "Attendance not found"},
		"a-5": errors.New("connection reset"),
	}}
	svc := NewAdminService(backend)

	ids := []string{"a-1", "a-2", "a-3", "a-4", "a-5", "a-6", "a-7", "a-8", "a-9"}

	// Act
	resp, err := svc.BulkUpdateAttendanceStatus(context.Background(), attendance.BulkUpdateStatusRequest{
		IDs:    ids,
		Status: attendance.StatusCompleted,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []string{"a-1", "a-2", "a-4", "a-6", "a-7", "a-8", "a-9"}, resp.Updated)
	assert.Equal(t, map[string]string{
		"a-3": "Attendance not found",
		"a-5": "connection reset",
	}, resp.Failed)
	assert.LessOrEqual(t, atomic.LoadInt32(&backend.maxFlight), int32(bulkConcurrency))
	assert.Len(t, backend.updated, 7)
}

func TestAdminService_BulkUpdateAttendanceStatus_Validation(t *testing.T) {
	svc := NewAdminService(&fakeBackend{})

	_, err := svc.BulkUpdateAttendanceStatus(context.Background(), attendance.BulkUpdateStatusRequest{
		IDs:    []string{"a-1", "a-1"},
		Status: attendance.StatusPending,
	})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	_, ok := verrs.Field("ids")
	assert.True(t, ok)
	_, ok = verrs.Field("status")
	assert.True(t, ok)
}

func TestAdminService_RejectLeaveRequest(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewAdminService(backend)

	_, err := svc.RejectLeaveRequest(context.Background(), leave.RejectRequest{ID: "l-1", RejectionReason: "   "})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Empty(t, backend.rejected)

	got, err := svc.RejectLeaveRequest(context.Background(), leave.RejectRequest{ID: "l-1", RejectionReason: " Short staffed "})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusRejected, got.Status)
	require.Len(t, backend.rejected, 1)
	assert.Equal(t, "Short staffed", backend.rejected[0].RejectionReason)
}

func TestAdminService_UpdateSettings_Validation(t *testing.T) {
	backend := &fakeBackend{}
	svc := NewAdminService(backend)

	_, err := svc.UpdateSettings(context.Background(), settings.UpdateRequest{
		DefaultCheckInTime:  "8:00",
		DefaultCheckOutTime: "17:00",
		AllowedIPs:          []string{"10.0.0.0/8", "not-an-ip"},
	})

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	_, ok := verrs.Field("defaultCheckInTime")
	assert.True(t, ok)
	assert.Empty(t, backend.settings)
}

func TestAdminService_IDGuards(t *testing.T) {
	svc := NewAdminService(&fakeBackend{})
	ctx := context.Background()

	assert.ErrorIs(t, svc.DeleteUser(ctx, " "), user.ErrUserIDRequired)
	assert.ErrorIs(t, svc.MarkNotificationRead(ctx, ""), notification.ErrNotificationIDRequired)
	require.NoError(t, svc.MarkNotificationRead(ctx, "n-1"))

	_, err := svc.GetAttendance(ctx, "")
	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestAdminService_NotFoundMapping(t *testing.T) {
	svc := NewAdminService(&fakeBackend{statusErr: map[string]error{
		"gone": &apiclient.APIError{StatusCode: 404, Message: "Attendance not found"},
	}})
	ctx := context.Background()

	record, err := svc.GetAttendance(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "a-1", record.ID)

	_, err = svc.GetAttendance(ctx, "gone")
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
	_, isAPIErr := apiclient.AsAPIError(err)
	assert.False(t, isAPIErr)

	_, err = svc.GetAttendance(ctx, "broken")
	apiErr, ok := apiclient.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 500, apiErr.StatusCode)

	_, err = svc.UpdateAttendanceStatus(ctx, attendance.UpdateStatusRequest{ID: "gone", Status: attendance.StatusCompleted})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	assert.ErrorIs(t, svc.MarkNotificationRead(ctx, "gone"), notification.ErrNotificationNotFound)
}
