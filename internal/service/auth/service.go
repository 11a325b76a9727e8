package auth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/attendance-console/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
	"github.com/cmlabs-hris/attendance-console/internal/pkg/jwt"
)

// Backend performs the actual sign-in.
type Backend interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error)
	Me(ctx context.Context) (user.User, error)
}

type AuthServiceImpl struct {
	backend Backend
	jwt.Service
}

func NewAuthService(backend Backend, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		backend: backend,
		Service: jwtService,
	}
}

// Login implements auth.AuthService. The token returned by the backend must
// verify with the console's secret, otherwise every later request would be
// refused.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.LoginResponse{}, err
	}

	resp, err := a.backend.Login(ctx, req)
	if err != nil {
		return auth.LoginResponse{}, err
	}

	identity, err := a.Service.Verify(resp.Token)
	if err != nil {
		slog.Error("Backend token rejected by console", "error", err)
		return auth.LoginResponse{}, fmt.Errorf("%w: %v", auth.ErrInvalidToken, err)
	}
	if resp.User.ID == "" {
		resp.User.ID = identity.UserID
	}

	return resp, nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (user.User, error) {
	return a.backend.Me(ctx)
}
