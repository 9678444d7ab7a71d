package stubapi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const contextUserKey = "stubUserID"

// prehash keeps long passwords under bcrypt's 72 byte limit.
func prehash(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(hex.EncodeToString(sum[:]))
}

func (s *Server) hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword(prehash(password), s.opts.BcryptCost)
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, prehash(password)) == nil
}

func (s *Server) issueToken(userID string) (string, error) {
	issuedAt := s.opts.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.opts.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.opts.JWTSecret))
}

func (s *Server) parseToken(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithTimeFunc(s.opts.Now))
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Subject, nil
}

// requireUser resolves the bearer token to an existing user.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortDetail(c, 401, "未提供认证信息")
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortDetail(c, 401, "认证格式错误")
			return
		}
		userID, err := s.parseToken(parts[1])
		if err != nil {
			abortDetail(c, 401, "无效的认证信息")
			return
		}
		if _, ok := s.store.profile(userID); !ok {
			abortDetail(c, 401, "无效的认证信息")
			return
		}
		c.Set(contextUserKey, userID)
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(contextUserKey)
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
