// Package auth issues the short-lived tokens that bridge a successful
// password check to the edit form. The password check itself stays a plain
// comparison in the service layer; the token only proves that the check
// happened recently for this record.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/config"
)

var (
	ErrTokenExpired = errors.New("edit token has expired")
	ErrTokenInvalid = errors.New("edit token is invalid")
)

type editClaims struct {
	jwt.RegisteredClaims
	PatientID uint `json:"pid"`
}

type EditTokenManager struct {
	cfg config.EditTokenConfig
}

func NewEditTokenManager(cfg config.EditTokenConfig) *EditTokenManager {
	return &EditTokenManager{cfg: cfg}
}

// Issue signs a token granting edit access to one record until the TTL
// runs out.
func (m *EditTokenManager) Issue(patientID uint) (string, error) {
	now := time.Now()
	claims := editClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TTL)),
		},
		PatientID: patientID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing edit token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, and that the token was issued for the
// record being edited.
func (m *EditTokenManager) Verify(tokenString string, patientID uint) error {
	var claims editClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(m.cfg.Secret), nil
	}, jwt.WithIssuer(m.cfg.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}

	if !token.Valid || claims.PatientID != patientID {
		return ErrTokenInvalid
	}
	return nil
}
