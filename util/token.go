package util

import (
	"sync"
	"time"

	"resapi/config"

	jwt "github.com/golang-jwt/jwt/v5"
)

type TokenConf struct {
	AccessTokenExpiryHour  int
	RefreshTokenExpiryHour int
	AccessTokenSecret      string
	RefreshTokenSecret     string
}

func NewTokenConf() *TokenConf {
	auth := config.GetConfig().Auth
	return &TokenConf{
		AccessTokenExpiryHour:  auth.AccessTokenExpiryHour,
		RefreshTokenExpiryHour: auth.RefreshTokenExpiryHour,
		AccessTokenSecret:      auth.AccessTokenSecret,
		RefreshTokenSecret:     auth.RefreshTokenSecret,
	}
}

type (
	JWTClaims struct {
		UserID  uint   `json:"ui"`
		Email   string `json:"em"`
		IsStaff bool   `json:"st"`
		jwt.RegisteredClaims
	}
	JWTMessage struct {
		UserID  uint   `json:"userID"`  // User ID
		Email   string `json:"email"`   // Login email
		IsStaff bool   `json:"isStaff"` // Elevated privileges
	}
)

type TokenManager struct {
	secretKey       string
	accessTokenTTL  int
	refreshTokenTTL int
}

var (
	once     sync.Once
	tokenMgr *TokenManager
)

func GetTokenMgr() *TokenManager {
	once.Do(func() {
		tokenConfig := NewTokenConf()
		tokenMgr = NewTokenManager(tokenConfig.AccessTokenSecret,
			tokenConfig.AccessTokenExpiryHour,
			tokenConfig.RefreshTokenExpiryHour,
		)
	})
	return tokenMgr
}

func NewTokenManager(secretKey string, accessTokenTTL, refreshTokenTTL int) *TokenManager {
	return &TokenManager{
		secretKey,
		accessTokenTTL,
		refreshTokenTTL,
	}
}

func (tm *TokenManager) createToken(msg *JWTMessage, ttl int) (string, error) {
	expiresAt := time.Now().Add(time.Hour * time.Duration(ttl))

	claims := &JWTClaims{
		UserID:  msg.UserID,
		Email:   msg.Email,
		IsStaff: msg.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secretKey))
}

// CreateTokens creates a new access token and a new refresh token
func (tm *TokenManager) CreateTokens(msg *JWTMessage) (
	accessToken string, refreshToken string, err error) {
	accessToken, err = tm.createToken(msg, tm.accessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = tm.createToken(msg, tm.refreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// CheckToken validates the token signature and expiry and returns the
// embedded identity.
func (tm *TokenManager) CheckToken(requestToken string) (JWTMessage, error) {
	claims := JWTClaims{}
	_, err := jwt.ParseWithClaims(requestToken, &claims, func(_ *jwt.Token) (any, error) {
		return []byte(tm.secretKey), nil
	})
	return JWTMessage{
		UserID:  claims.UserID,
		Email:   claims.Email,
		IsStaff: claims.IsStaff,
	}, err
}
