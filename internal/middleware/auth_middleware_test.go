package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/booknest/booknest/internal/services"
)

const testSecret = "test-secret"

func guardedApp(users *mongo.Collection) *fiber.App {
	app := fiber.New()
	app.Get("/guarded", Auth(users, testSecret), func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		return c.JSON(fiber.Map{"username": user.Username})
	})
	app.Get("/admin", Auth(users, testSecret), AdminOnly, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func userDoc(id primitive.ObjectID, admin, blocked bool) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "username", Value: "alice"},
		{Key: "email", Value: "alice@example.com"},
		{Key: "is_admin", Value: admin},
		{Key: "is_blocked", Value: blocked},
	}
}

func TestAuth(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("missing token is unauthorized", func(mt *mtest.T) {
		app := guardedApp(mt.Coll)
		resp, err := app.Test(httptest.NewRequest("GET", "/guarded", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var body struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Status  int    `json:"status"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "AUTHENTICATION_ERROR", body.Code)
		assert.Equal(t, fiber.StatusUnauthorized, body.Status)
	})

	mt.Run("garbage token is unauthorized", func(mt *mtest.T) {
		app := guardedApp(mt.Coll)
		req := httptest.NewRequest("GET", "/guarded", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	mt.Run("valid token resolves the live user", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		token, err := services.GenerateJWT([]byte(testSecret), id.Hex(), "alice@example.com")
		require.NoError(t, err)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "booknest.users", mtest.FirstBatch, userDoc(id, false, false)),
		)

		app := guardedApp(mt.Coll)
		req := httptest.NewRequest("GET", "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	mt.Run("token for a deleted user is unauthorized", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		token, err := services.GenerateJWT([]byte(testSecret), id.Hex(), "alice@example.com")
		require.NoError(t, err)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "booknest.users", mtest.FirstBatch),
		)

		app := guardedApp(mt.Coll)
		req := httptest.NewRequest("GET", "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	mt.Run("blocked user is forbidden with a still-valid token", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		token, err := services.GenerateJWT([]byte(testSecret), id.Hex(), "alice@example.com")
		require.NoError(t, err)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "booknest.users", mtest.FirstBatch, userDoc(id, false, true)),
		)

		app := guardedApp(mt.Coll)
		req := httptest.NewRequest("GET", "/guarded", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

		var body struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "AUTHORIZATION_ERROR", body.Code)
	})
}

func TestAdminOnly(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("non-admin is forbidden", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		token, err := services.GenerateJWT([]byte(testSecret), id.Hex(), "alice@example.com")
		require.NoError(t, err)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "booknest.users", mtest.FirstBatch, userDoc(id, false, false)),
		)

		app := guardedApp(mt.Coll)
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	mt.Run("admin passes", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		token, err := services.GenerateJWT([]byte(testSecret), id.Hex(), "alice@example.com")
		require.NoError(t, err)

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "booknest.users", mtest.FirstBatch, userDoc(id, true, false)),
		)

		app := guardedApp(mt.Coll)
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}
