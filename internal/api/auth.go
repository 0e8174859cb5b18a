package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// Authenticator establishes the caller's user id, either from a trusted
// header or from the sub claim of an HMAC-signed bearer token.
type Authenticator struct {
	mode   string
	header string
	secret []byte
}

func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	mode := cfg.Mode
	if mode == "" {
		mode = config.AuthModeHeader
	}
	header := cfg.UserHeader
	if header == "" {
		header = models.UserIDHeader
	}
	return &Authenticator{mode: mode, header: header, secret: []byte(cfg.JWTSecret)}
}

// UserID returns the caller id or an Unauthorized error.
func (a *Authenticator) UserID(r *http.Request) (int64, error) {
	if a.mode == config.AuthModeJWT {
		return a.fromToken(r)
	}
	return a.fromHeader(r)
}

func (a *Authenticator) fromHeader(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(a.header))
	if raw == "" {
		return 0, domain.Unauthorized("missing %s header", a.header)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Unauthorized("invalid %s header: %q", a.header, raw)
	}
	return id, nil
}

func (a *Authenticator) fromToken(r *http.Request) (int64, error) {
	authz := strings.TrimSpace(r.Header.Get("Authorization"))
	raw, ok := strings.CutPrefix(authz, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, domain.Unauthorized("missing bearer token")
	}

	token, err := jwt.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return 0, domain.Unauthorized("invalid token: %v", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return 0, domain.Unauthorized("token has no subject")
	}
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Unauthorized("token subject is not a user id")
	}
	return id, nil
}

// IssueToken signs a token for userID. Used by tests and the admin CLI.
func IssueToken(secret string, userID int64, claims jwt.RegisteredClaims) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	claims.Subject = strconv.FormatInt(userID, 10)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
