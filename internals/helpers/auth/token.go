// Package helper issues and verifies the access tokens shared by the auth
// service and the JWT middleware.
package helper

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Claims carried by an access token.
type Claims struct {
	UserID   uuid.UUID
	Role     string
	MemberID uuid.UUID
	Expires  time.Time
}

var ErrTokenExpired = errors.New("token expired")

// IssueAccessToken signs HS256 claims: id, role, member_id (when set), iat, exp.
func IssueAccessToken(secret string, c Claims, issuedAt time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is empty")
	}
	mc := jwt.MapClaims{
		"id":   c.UserID.String(),
		"role": c.Role,
		"iat":  issuedAt.Unix(),
		"exp":  c.Expires.Unix(),
	}
	if c.MemberID != uuid.Nil {
		mc["member_id"] = c.MemberID.String()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte(secret))
}

// ParseAccessToken verifies the signature and expiry (with skew tolerance) and extracts claims.
func ParseAccessToken(secret, raw string, now time.Time, skew time.Duration) (Claims, error) {
	mc := jwt.MapClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(raw, mc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("parse token: %w", err)
	}

	exp, ok := mc["exp"].(float64)
	if !ok {
		return Claims{}, errors.New("token has no exp")
	}
	expires := time.Unix(int64(exp), 0).UTC()
	if now.After(expires.Add(skew)) {
		return Claims{}, ErrTokenExpired
	}

	idRaw, _ := mc["id"].(string)
	userID, err := uuid.Parse(strings.TrimSpace(idRaw))
	if err != nil {
		return Claims{}, errors.New("invalid or missing user id")
	}
	out := Claims{UserID: userID, Expires: expires}
	out.Role, _ = mc["role"].(string)
	if s, ok := mc["member_id"].(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			out.MemberID = id
		}
	}
	return out, nil
}

// ExtractBearerToken reads "Authorization: Bearer <token>", falling back to the access_token cookie.
func ExtractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if auth == "" {
		if tok := c.Cookies("access_token"); tok != "" {
			auth = "Bearer " + tok
		}
	}
	if auth == "" {
		return "", errors.New("no token provided")
	}
	fields := strings.Fields(auth)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errors.New("invalid token format")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", errors.New("empty token")
	}
	return tok, nil
}

// BlacklistKey is the ttlstore key for a revoked token. Only an HMAC of the
// token is stored.
func BlacklistKey(raw, secret string) string {
	m := hmac.New(sha256.New, []byte(secret))
	_, _ = m.Write([]byte(raw))
	return "jwtbl:" + hex.EncodeToString(m.Sum(nil))
}
