package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"video-hub/internal/domain/dto"
	consts "video-hub/pkg/constants"
	"video-hub/pkg/errors"
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	ID       string `json:"_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// VerifyJWT authenticates the request from the accessToken cookie or a
// bearer header and stores the caller under consts.LocalsUser.
func VerifyJWT(secret string) fiber.Handler {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		raw := c.Cookies(consts.CookieAccessToken)
		if raw == "" {
			raw = strings.TrimSpace(strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "))
		}
		if raw == "" {
			return errors.Unauthorized("Unauthorized request")
		}

		var claims AccessClaims
		if _, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
			return key, nil
		}); err != nil {
			return errors.New(fiber.StatusUnauthorized, "Invalid Access Token", err)
		}
		if !primitive.IsValidObjectID(claims.ID) {
			return errors.Unauthorized("Invalid Access Token")
		}

		c.Locals(consts.LocalsUser, dto.AuthUser{
			ID:       claims.ID,
			Username: claims.Username,
			Email:    claims.Email,
		})
		return c.Next()
	}
}

// CurrentUser returns the caller stored by VerifyJWT.
func CurrentUser(c *fiber.Ctx) (dto.AuthUser, bool) {
	user, ok := c.Locals(consts.LocalsUser).(dto.AuthUser)
	return user, ok
}

// SignAccessToken issues an HS256 access token for user. Used by the client
// command and tests.
func SignAccessToken(secret string, user dto.AuthUser, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		RegisteredClaims: claims,
	})
	return token.SignedString([]byte(secret))
}
