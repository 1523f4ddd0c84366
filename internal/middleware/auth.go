package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mammoth-reserve/reserve-backend/internal/config"
	"github.com/mammoth-reserve/reserve-backend/internal/dto"
	"github.com/mammoth-reserve/reserve-backend/internal/models"
)

func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Unauthorized: invalid or expired token",
			})
		},
	})
}

// Role extracts the role claim from the verified JWT in context.
func Role(c *fiber.Ctx) string {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	role, _ := claims["role"].(string)
	return role
}

// StaffRequired restricts a route to dining-hall staff sessions.
func StaffRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if Role(c) != models.RoleDiningHall {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error:   true,
				Message: "Staff access required",
			})
		}
		return c.Next()
	}
}
