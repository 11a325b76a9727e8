package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/cmlabs-hris/attendance-console/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-console/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-console/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-console/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
)

// ========================================
// ATTENDANCES
// ========================================

func (c *Client) AdminTodayAttendances(ctx context.Context) (attendance.TodayOverview, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/attendances/today", nil, nil)
	if err != nil {
		return attendance.TodayOverview{}, fmt.Errorf("failed to fetch today's overview: %w", err)
	}
	return decodeData[attendance.TodayOverview](env)
}

func (c *Client) AdminListAttendances(ctx context.Context, filter attendance.AttendanceFilter) (Page[attendance.Record], error) {
	q := pageQuery(filter.Page, filter.Limit)
	setIfNotEmpty(q, "userId", filter.UserID)
	setIfNotEmpty(q, "startDate", filter.StartDate)
	setIfNotEmpty(q, "endDate", filter.EndDate)
	setIfNotEmpty(q, "status", filter.Status)
	if filter.Month != nil {
		q.Set("month", strconv.Itoa(*filter.Month))
	}
	if filter.Year != nil {
		q.Set("year", strconv.Itoa(*filter.Year))
	}
	if filter.HasAlert != nil {
		q.Set("hasAlert", strconv.FormatBool(*filter.HasAlert))
	}

	env, err := c.do(ctx, http.MethodGet, "/admin/attendances", q, nil)
	if err != nil {
		return Page[attendance.Record]{}, fmt.Errorf("failed to list attendances: %w", err)
	}
	return decodePage[attendance.Record](env)
}

func (c *Client) AdminGetAttendance(ctx context.Context, id string) (*attendance.Record, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/attendances/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance: %w", err)
	}
	record, err := decodeData[attendance.Record](env)
	if err != nil {
		return nil, err
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("invalid attendance record %q: %w", record.ID, err)
	}
	return &record, nil
}

func (c *Client) AdminUpdateAttendanceStatus(ctx context.Context, id string, status attendance.Status) (*attendance.Record, error) {
	body := map[string]attendance.Status{"status": status}
	env, err := c.do(ctx, http.MethodPatch, "/admin/attendances/"+url.PathEscape(id)+"/status", nil, body)
	if err != nil {
		return nil, fmt.Errorf("failed to update attendance status: %w", err)
	}
	record, err := decodeData[attendance.Record](env)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ========================================
// USERS
// ========================================

func (c *Client) AdminListUsers(ctx context.Context, filter user.UserFilter) (Page[user.User], error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/users", pageQuery(filter.Page, filter.Limit), nil)
	if err != nil {
		return Page[user.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return decodePage[user.User](env)
}

func (c *Client) AdminCreateUser(ctx context.Context, req user.CreateUserRequest) (*user.User, error) {
	env, err := c.do(ctx, http.MethodPost, "/admin/users", nil, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	created, err := decodeData[user.User](env)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) AdminUpdateUser(ctx context.Context, req user.UpdateUserRequest) (*user.User, error) {
	env, err := c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(req.ID), nil, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	updated, err := decodeData[user.User](env)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) AdminDeleteUser(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ========================================
// SETTINGS
// ========================================

func (c *Client) AdminGetSettings(ctx context.Context) (settings.Settings, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/settings", nil, nil)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to fetch settings: %w", err)
	}
	s, err := decodeData[settings.Settings](env)
	if err != nil {
		return settings.Settings{}, err
	}
	if s.AllowedIPs == nil {
		s.AllowedIPs = []string{}
	}
	return s, nil
}

func (c *Client) AdminUpdateSettings(ctx context.Context, req settings.UpdateRequest) (settings.Settings, error) {
	env, err := c.do(ctx, http.MethodPut, "/admin/settings", nil, req)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("failed to update settings: %w", err)
	}
	return decodeData[settings.Settings](env)
}

// ========================================
// NOTIFICATIONS
// ========================================

func (c *Client) AdminListNotifications(ctx context.Context, limit int) (notification.Feed, error) {
	env, err := c.do(ctx, http.MethodGet, "/admin/notifications", pageQuery(0, limit), nil)
	if err != nil {
		return notification.Feed{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	items, err := decodeData[[]notification.Notification](env)
	if err != nil {
		return notification.Feed{}, err
	}

	feed := notification.Feed{Notifications: items}
	if feed.Notifications == nil {
		feed.Notifications = []notification.Notification{}
	}
	if env.UnreadCount != nil {
		feed.UnreadCount = *env.UnreadCount
	} else {
		for _, n := range feed.Notifications {
			if !n.IsRead {
				feed.UnreadCount++
			}
		}
	}
	return feed, nil
}

func (c *Client) AdminMarkNotificationRead(ctx context.Context, id string) error {
	if _, err := c.do(ctx, http.MethodPatch, "/admin/notifications/"+url.PathEscape(id)+"/read", nil, nil); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}
	return nil
}

func (c *Client) AdminMarkAllNotificationsRead(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPatch, "/admin/notifications/read-all", nil, nil); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

// ========================================
// LEAVE REQUESTS
// ========================================

func (c *Client) AdminListLeaveRequests(ctx context.Context, filter leave.ListFilter) (Page[leave.Request], error) {
	q := pageQuery(filter.Page, filter.Limit)
	setIfNotEmpty(q, "status", filter.Status)
	setIfNotEmpty(q, "startDate", filter.StartDate)
	setIfNotEmpty(q, "endDate", filter.EndDate)

	env, err := c.do(ctx, http.MethodGet, "/admin/leave-requests", q, nil)
	if err != nil {
		return Page[leave.Request]{}, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return decodePage[leave.Request](env)
}

func (c *Client) AdminApproveLeaveRequest(ctx context.Context, id string) (*leave.Request, error) {
	env, err := c.do(ctx, http.MethodPatch, "/admin/leave-requests/"+url.PathEscape(id)+"/approve", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to approve leave request: %w", err)
	}
	req, err := decodeData[leave.Request](env)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) AdminRejectLeaveRequest(ctx context.Context, req leave.RejectRequest) (*leave.Request, error) {
	env, err := c.do(ctx, http.MethodPatch, "/admin/leave-requests/"+url.PathEscape(req.ID)+"/reject", nil, req)
	if err != nil {
		return nil, fmt.Errorf("failed to reject leave request: %w", err)
	}
	rejected, err := decodeData[leave.Request](env)
	if err != nil {
		return nil, err
	}
	return &rejected, nil
}
