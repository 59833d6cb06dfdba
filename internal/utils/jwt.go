package utils

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
)

// AccessTokenTTL is the lifetime of an access token; clients refresh through
// the refresh-token pair before it runs out.
const AccessTokenTTL = 15 * time.Minute

const devFallbackSecret = "test_secret_key_minimum_32_characters_long_for_testing_only"

var jwtKey []byte

func init() {
	if err := godotenv.Load(); err != nil {
		log.Default().Println("No .env file found")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = devFallbackSecret
	}

	jwtKey = []byte(secret)
}

// ValidateJWTSecret is the startup guard: production must configure its own
// secret, long enough and distinct from the dev fallback.
func ValidateJWTSecret() error {
	secret := os.Getenv("JWT_SECRET")

	if secret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if len(secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long (current: %d)", len(secret))
	}

	if secret == devFallbackSecret {
		return fmt.Errorf("cannot use default test secret in production")
	}

	return nil
}

type accessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateJWT issues a short-lived access token carrying the user id as
// subject and the role name as a custom claim.
func GenerateJWT(userID uint, roleName string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Role: roleName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtKey)
}

// ParseJWT validates an access token and returns the user id it was issued
// for. Tokens signed with anything but HMAC are rejected outright.
func ParseJWT(tokenStr string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &accessClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtKey, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, err
	}

	return uint(id), nil
}

func GetDefaultViewerRoleID() (uint, error) {
	var role models.Role
	if err := database.DB.Where("name = ?", "viewer").First(&role).Error; err != nil {
		return 0, err
	}
	if role.ID == 0 {
		return 0, fmt.Errorf("viewer role found but ID is 0")
	}
	return role.ID, nil
}
