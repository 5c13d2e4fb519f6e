package middleware

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserContext identifies the authenticated caller. Player IDs are chat
// platform identifiers, opaque strings rather than UUIDs.
type UserContext struct {
	PlayerID string
	IP       string
}

const USER_CONTEXT_KEY = "user_context"

func ForAuthentificatedUser(jwt_key func() (string, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		jwt_key, err := jwt_key()
		if err != nil {
			slog.Error(err.Error())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "cannot access jwt key",
			})
		}

		auth_header := c.Get("Authorization")
		if auth_header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		token_str := strings.TrimPrefix(auth_header, "Bearer ")
		if token_str == auth_header {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization header format",
			})
		}

		token, err := jwt.Parse(token_str, func(token *jwt.Token) (interface{}, error) {
			return []byte(jwt_key), nil
		})

		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}
		player_id, ok := claims["player_id"].(string)
		if !ok || player_id == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token claims",
			})
		}
		user_ctx := UserContext{
			PlayerID: player_id,
			IP:       c.IP(),
		}

		c.Locals(USER_CONTEXT_KEY, user_ctx)

		return c.Next()
	}
}

// GetPlayerID helper to get the caller's player ID from context
func GetPlayerID(c *fiber.Ctx) (string, error) {
	user_ctx, ok := c.Locals(USER_CONTEXT_KEY).(UserContext)
	if !ok {
		return "", errors.New("player ID not found in context")
	}
	return user_ctx.PlayerID, nil
}
