package httpserver

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"

	"github.com/fairyhunter13/agent-recruitment/internal/config"
	"github.com/fairyhunter13/agent-recruitment/internal/domain"
)

// Argon2Params defines parameters for Argon2id password hashing
type Argon2Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// DefaultArgon2Params are the parameters used for new password hashes.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024, // 64 MB
	Iterations:  3,
	Parallelism: 2,
	SaltLen:     16,
	KeyLen:      32,
}

// HashPassword creates an Argon2id hash of the password
func HashPassword(password string, params Argon2Params) (string, error) {
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, params.Iterations, params.Memory, params.Parallelism, params.KeyLen)

	// Format: argon2id$iterations$memory$parallelism$salt$hash (base64 encoded)
	encoded := fmt.Sprintf("argon2id$%d$%d$%d$%s$%s",
		params.Iterations,
		params.Memory,
		params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	)

	return encoded, nil
}

// VerifyPassword verifies a password against its Argon2id hash
func VerifyPassword(password, encodedHash string) bool {
	// Expected format: argon2id$iterations$memory$parallelism$salt$hash (base64 raw std for salt/hash)
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "argon2id" {
		return false
	}
	iters, err1 := parseUint32(parts[1])
	mem, err2 := parseUint32(parts[2])
	par64, err3 := parseUint32(parts[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	// Clamp parallelism to uint8 range to avoid overflow
	var par uint8
	if par64 > math.MaxUint8 {
		par = math.MaxUint8
	} else {
		par = uint8(par64)
	}
	keyLen := DefaultArgon2Params.KeyLen
	actualHash := argon2.IDKey([]byte(password), salt, iters, mem, par, keyLen)
	return subtle.ConstantTimeCompare(actualHash, expectedHash) == 1
}

// TokenData is the decoded content of a bearer token.
type TokenData struct {
	Username  string
	LoginTime time.Time
	ExpiresAt time.Time
}

// TokenManager issues and validates HMAC-signed bearer tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager from the configured secret.
func NewTokenManager(cfg config.Config) *TokenManager {
	return &TokenManager{secret: []byte(cfg.TokenSecret), ttl: cfg.TokenTTL}
}

// CreateToken issues a signed token for the user.
func (tm *TokenManager) CreateToken(username string) (string, error) {
	now := time.Now()
	expiresAt := now.Add(tm.ttl)

	// Payload: username:loginTime:expiresAt
	payload := fmt.Sprintf("%s:%d:%d", username, now.Unix(), expiresAt.Unix())

	mac := hmac.New(sha256.New, tm.secret)
	mac.Write([]byte(payload))
	signature := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	return payload + "." + signature, nil
}

// ValidateToken checks the signature and expiry of a token.
func (tm *TokenManager) ValidateToken(token string) (*TokenData, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}

	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid token format")
	}

	payload, signatureB64 := parts[0], parts[1]

	mac := hmac.New(sha256.New, tm.secret)
	mac.Write([]byte(payload))
	expectedSignature := mac.Sum(nil)

	actualSignature, err := base64.URLEncoding.DecodeString(signatureB64)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding")
	}

	if !hmac.Equal(expectedSignature, actualSignature) {
		return nil, fmt.Errorf("invalid token signature")
	}

	payloadParts := strings.Split(payload, ":")
	if len(payloadParts) != 3 {
		return nil, fmt.Errorf("invalid payload format")
	}

	username := payloadParts[0]
	loginTime := time.Unix(parseInt64(payloadParts[1]), 0)
	expiresAt := time.Unix(parseInt64(payloadParts[2]), 0)

	if time.Now().After(expiresAt) {
		return nil, fmt.Errorf("token expired")
	}

	return &TokenData{
		Username:  username,
		LoginTime: loginTime,
		ExpiresAt: expiresAt,
	}, nil
}

// userKey is an unexported context key type for the authenticated user.
type userKey struct{}

// UserFrom extracts the authenticated user from the request context.
func UserFrom(r *http.Request) (domain.User, bool) {
	if v := r.Context().Value(userKey{}); v != nil {
		if u, ok := v.(domain.User); ok {
			return u, true
		}
	}
	return domain.User{}, false
}

// bearerToken extracts the Bearer credential from the Authorization header.
func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}

// AuthRequired validates the bearer token, loads the user and rejects
// inactive accounts.
func (s *Server) AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, r, fmt.Errorf("missing bearer token: %w", domain.ErrUnauthorized), nil)
			return
		}
		data, err := s.Tokens.ValidateToken(token)
		if err != nil {
			writeError(w, r, fmt.Errorf("%v: %w", err, domain.ErrUnauthorized), nil)
			return
		}
		user, err := s.Users.Users.GetByUsername(r.Context(), data.Username)
		if err != nil {
			writeError(w, r, fmt.Errorf("unknown user: %w", domain.ErrUnauthorized), nil)
			return
		}
		if !user.IsActive {
			writeError(w, r, fmt.Errorf("account disabled: %w", domain.ErrForbidden), nil)
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminRequired rejects users without the HR_admin role. Must run after
// AuthRequired.
func (s *Server) AdminRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFrom(r)
		if !ok {
			writeError(w, r, fmt.Errorf("missing user: %w", domain.ErrUnauthorized), nil)
			return
		}
		if user.Role != domain.RoleHRAdmin {
			writeError(w, r, fmt.Errorf("admin role required: %w", domain.ErrForbidden), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AgentAuth guards the agent endpoints with the static agent token.
func (s *Server) AgentAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if s.cfg.AgentToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AgentToken)) != 1 {
			writeError(w, r, fmt.Errorf("invalid agent token: %w", domain.ErrUnauthorized), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// parseInt64 safely parses string to int64, returns 0 on error
func parseInt64(s string) int64 {
	x, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return x
}

// parseUint32 parses a decimal string into uint32; returns error on failure
func parseUint32(s string) (uint32, error) {
	x, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse")
	}
	if x > math.MaxUint32 {
		return 0, fmt.Errorf("parse")
	}
	return uint32(x), nil
}
