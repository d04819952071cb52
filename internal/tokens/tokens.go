package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danabekov/techstore/internal/models"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const resetPurpose = "password-reset"

type AccessClaims struct {
	Role   string `json:"role"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	UserID uint   `json:"user_id"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	UserID    uint   `json:"user_id"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type ResetClaims struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issuer mints and verifies all three token kinds. Secrets and lifetimes come
// from process configuration and never change after construction.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	resetSecret   []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	resetTTL      time.Duration
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL, resetTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		// salting the signing key keeps reset tokens out of the access
		// token verification path entirely
		resetSecret: []byte(accessSecret + ":" + resetPurpose),
		accessTTL:   accessTTL,
		refreshTTL:  refreshTTL,
		resetTTL:    resetTTL,
	}
}

// AccessToken carries role/email/name so authorization is stateless; the
// subject is the stringified numeric id.
func newTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}

func (i *Issuer) AccessToken(u *models.User) (string, time.Time, error) {
	exp := time.Now().Add(i.accessTTL)
	claims := AccessClaims{
		Role:   u.Role,
		Email:  u.Email,
		Name:   u.Name,
		UserID: u.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (i *Issuer) RefreshToken(u *models.User) (string, time.Time, error) {
	exp := time.Now().Add(i.refreshTTL)
	claims := RefreshClaims{
		UserID:    u.ID,
		TokenType: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			// jti keeps tokens minted within the same second distinct,
			// otherwise a rapid re-login would replace the ledger row
			// with an identical string
			ID:        newTokenID(),
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ResetToken binds a purpose claim to the email so a reset token can never be
// replayed as an access or refresh token.
func (i *Issuer) ResetToken(email string) (string, error) {
	claims := ResetClaims{
		Email:   email,
		Purpose: resetPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.resetTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.resetSecret)
}

func (i *Issuer) ParseAccess(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := parse(raw, &claims, i.accessSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (i *Issuer) ParseRefresh(raw string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := parse(raw, &claims, i.refreshSecret); err != nil {
		return nil, err
	}
	if claims.TokenType != "refresh" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

// ParseReset returns the email the reset token was issued for.
func (i *Issuer) ParseReset(raw string) (string, error) {
	var claims ResetClaims
	if err := parse(raw, &claims, i.resetSecret); err != nil {
		return "", err
	}
	if claims.Purpose != resetPurpose {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

func parse(raw string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return ErrInvalidToken
	}
	return nil
}
