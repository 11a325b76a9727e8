package auth

import (
	"context"

	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
)

// AuthService forwards credentials to the attendance backend. The console keeps
// no session state of its own.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Me(ctx context.Context) (user.User, error)
}
