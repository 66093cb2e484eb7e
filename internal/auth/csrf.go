package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// CSRFTokenManager issues double-submit CSRF tokens bound to an account.
// Tokens are HMAC-signed so any instance can verify them without shared state.
type CSRFTokenManager struct {
	secret   []byte
	tokenTTL time.Duration
	now      func() time.Time
}

// AnonymousSubject binds CSRF tokens handed out before sign-in.
const AnonymousSubject = "anonymous"

// TTL is how long issued tokens stay valid.
func (m *CSRFTokenManager) TTL() time.Duration { return m.tokenTTL }

func NewCSRFTokenManager(secret string, ttl time.Duration) *CSRFTokenManager {
	return &CSRFTokenManager{
		secret:   []byte("csrf:" + secret),
		tokenTTL: ttl,
		now:      time.Now,
	}
}

// GenerateToken creates a new CSRF token for a specific user
func (m *CSRFTokenManager) GenerateToken(userID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	exp := strconv.FormatInt(m.now().Add(m.tokenTTL).Unix(), 10)
	n := hex.EncodeToString(nonce)
	return exp + "." + n + "." + m.mac(userID, exp, n), nil
}

// ValidateToken checks that token was issued to userID and has not expired.
func (m *CSRFTokenManager) ValidateToken(token, userID string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || userID == "" {
		return false
	}

	exp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || m.now().Unix() > exp {
		return false
	}

	want := m.mac(userID, parts[0], parts[1])
	return hmac.Equal([]byte(want), []byte(parts[2]))
}

func (m *CSRFTokenManager) mac(userID, exp, nonce string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(exp))
	h.Write([]byte{0})
	h.Write([]byte(nonce))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
