package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie carrying the dashboard token for browser clients.
const SessionCookie = "sessionToken"

var secretKey []byte

func SetSecret(key string) {
	secretKey = []byte(key)
}

// sessionClaims is what the dashboard token carries. The shipping API token
// itself never leaves the server.
type sessionClaims struct {
	SessionID string `json:"sid"`
	AgencyID  string `json:"agence"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT signs a dashboard token for the given session.
func GenerateJWT(sessionID, userID, agencyID, role string, expiresAt time.Time) (string, error) {
	if len(secretKey) == 0 {
		return "", fmt.Errorf("jwt secret not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		SessionID: sessionID,
		AgencyID:  agencyID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	return token.SignedString(secretKey)
}

func ValidateJWT(tokenString string) (*Claims, error) {
	var c sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || c.SessionID == "" {
		return nil, fmt.Errorf("invalid token")
	}

	return &Claims{
		SessionID: c.SessionID,
		UserID:    c.Subject,
		AgencyID:  c.AgencyID,
		Role:      c.Role,
	}, nil
}

type Claims struct {
	SessionID string
	UserID    string
	AgencyID  string
	Role      string
}

var ErrNoToken = errors.New("no token found")

// ExtractClaims extracts JWT claims from the request header or cookie
func ExtractClaims(r *http.Request) (*Claims, error) {
	tokenString := ""
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = strings.TrimSpace(authHeader[7:])
	} else if cookie, err := r.Cookie(SessionCookie); err == nil {
		tokenString = cookie.Value
	}

	if tokenString == "" {
		return nil, ErrNoToken
	}

	return ValidateJWT(tokenString)
}
