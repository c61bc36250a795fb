package auth

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"bountyhunter/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Wallet sessions: the client proves nothing beyond presenting an address
// (mirrors the original wallet-connect flow, which had no signature check
// either); the token binds all subsequent requests to that address.

var addressPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

type WalletAuth struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewWalletAuth(secret string, tokenTTL time.Duration) *WalletAuth {
	return &WalletAuth{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

type WalletUserData struct {
	UserID  int64
	Address string
}

type sessionClaims struct {
	UserID int64 `json:"uid"`
	jwt.RegisteredClaims
}

// NormalizeAddress lowercases an EVM address and rejects anything that is
// not 0x-prefixed 20-byte hex.
func NormalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	if !addressPattern.MatchString(address) {
		return "", fmt.Errorf("invalid wallet address: %q", address)
	}
	return address, nil
}

func (a *WalletAuth) IssueToken(userID int64, address string) (string, error) {
	now := time.Now().UTC()
	claims := sessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (a *WalletAuth) ParseToken(tokenString string) (*WalletUserData, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	return &WalletUserData{
		UserID:  claims.UserID,
		Address: claims.Subject,
	}, nil
}

func (a *WalletAuth) WalletAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		walletUser, err := a.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Info("invalid session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set("wallet_user", walletUser)
		c.Next()
	}
}

// CurrentUser pulls the session user set by WalletAuthMiddleware.
func CurrentUser(c *gin.Context) (*WalletUserData, bool) {
	userData, exists := c.Get("wallet_user")
	if !exists {
		return nil, false
	}
	walletUser, ok := userData.(*WalletUserData)
	return walletUser, ok
}
