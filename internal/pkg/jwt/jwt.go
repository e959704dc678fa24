package jwt

import (
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

type Service interface {
	GenerateAccessToken(principal user.Principal, email string) (token string, expiresAt int64, err error)
	GenerateSSEToken(userID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime time.Duration
	tokenAuth                 *jwtauth.JWTAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) *JWTService {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// GenerateAccessToken signs the claims the payroll API reads back through
// PrincipalFromClaims.
func (j *JWTService) GenerateAccessToken(principal user.Principal, email string) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id":     principal.UserID,
		"email":       email,
		"employee_id": valueOrNil(principal.EmployeeID),
		"role":        string(principal.Role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(userID string) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"type":    TokenTypeSSE,
		"exp":     expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns the user ID
func (j *JWTService) ValidateSSEToken(tokenString string) (userID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}
	if err := jwt.Validate(token, jwt.WithAcceptableSkew(30*time.Second)); err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TokenTypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	userIDVal, ok := token.Get("user_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}

	userID, ok = userIDVal.(string)
	if !ok || userID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return userID, nil
}

// PrincipalFromClaims builds the caller identity from access token claims.
func PrincipalFromClaims(claims map[string]interface{}) (user.Principal, error) {
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return user.Principal{}, user.ErrPrincipalMissing
	}

	role, _ := claims["role"].(string)
	if role == "" {
		return user.Principal{}, user.ErrPrincipalMissing
	}

	p := user.Principal{UserID: userID, Role: user.Role(role)}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		p.EmployeeID = &employeeID
	}
	return p, nil
}

func valueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
