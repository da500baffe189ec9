package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/booknest/booknest/internal/apperr"
	"github.com/booknest/booknest/internal/models"
)

// UserKey is the Locals key holding the resolved *models.User.
const UserKey = "user"

// reject writes an apperr in the same body shape the handlers use.
func reject(c *fiber.Ctx, err *apperr.Error) error {
	return c.Status(err.Status).JSON(fiber.Map{
		"message": err.Message,
		"status":  err.Status,
		"code":    err.Code,
	})
}

// Auth validates the bearer token and resolves it to a live user record.
// The user is looked up fresh on every request, never cached, so a
// just-blocked user is rejected on their very next call.
func Auth(users *mongo.Collection, jwtSecret string) fiber.Handler {
	secret := []byte(jwtSecret)

	return func(c *fiber.Ctx) error {
		// Get the Authorization header
		tokenString := c.Get("Authorization")
		if tokenString == "" {
			return reject(c, apperr.Unauthenticated("missing token"))
		}

		// Ensure it's a Bearer token
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
		if tokenString == "" {
			return reject(c, apperr.Unauthenticated("invalid token format"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return reject(c, apperr.Unauthenticated("invalid token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return reject(c, apperr.Unauthenticated("invalid token claims"))
		}

		userID, exists := claims["user_id"].(string)
		if !exists {
			return reject(c, apperr.Unauthenticated("invalid token payload"))
		}
		objID, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			return reject(c, apperr.Unauthenticated("invalid token payload"))
		}

		var user models.User
		if err := users.FindOne(c.Context(), bson.M{"_id": objID}).Decode(&user); err != nil {
			return reject(c, apperr.Unauthenticated("unknown user"))
		}
		if user.IsBlocked {
			return reject(c, apperr.Forbidden("account is blocked"))
		}

		c.Locals(UserKey, &user)
		return c.Next()
	}
}

// CurrentUser returns the user resolved by Auth, or nil if the route
// was not guarded.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}
