package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cmlabs-hris/attendance-console/internal/domain/user"
)

var ErrMissingUserID = errors.New("token carries no user id")

// Identity is who a backend-issued token belongs to.
type Identity struct {
	UserID string
	Role   user.Role
	Email  string
}

func (i Identity) IsAdmin() bool {
	return i.Role == user.RoleAdmin
}

// Service verifies tokens issued by the attendance backend. The console
// shares the backend's signing secret but never issues session tokens itself.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	Verify(token string) (Identity, error)
	// Encode signs claims with the shared secret. Used by tests and local tooling.
	Encode(identity Identity, ttl time.Duration) (string, error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) Verify(tokenString string) (Identity, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Identity{}, err
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return Identity{}, err
	}
	return IdentityFromClaims(claims)
}

func (j *JWTService) Encode(identity Identity, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		"user_id": identity.UserID,
		"role":    string(identity.Role),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	if identity.Email != "" {
		claims["email"] = identity.Email
	}
	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, err
}

// IdentityFromClaims reads the user id from user_id, id, userId or sub, in
// that order.
func IdentityFromClaims(claims map[string]interface{}) (Identity, error) {
	var identity Identity
	for _, key := range []string{"user_id", "id", "userId", jwt.SubjectKey} {
		if v, ok := claims[key].(string); ok && v != "" {
			identity.UserID = v
			break
		}
	}
	if identity.UserID == "" {
		return Identity{}, ErrMissingUserID
	}

	if role, ok := claims["role"].(string); ok {
		identity.Role = user.Role(role)
	}
	if email, ok := claims["email"].(string); ok {
		identity.Email = email
	}
	return identity, nil
}
