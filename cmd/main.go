package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"

	"github.com/booknest/booknest/internal/db"
	"github.com/booknest/booknest/internal/handlers"
	"github.com/booknest/booknest/internal/middleware"
	"github.com/booknest/booknest/internal/services"
	"github.com/booknest/booknest/internal/storage"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017/booknest" // Default fallback
	}
	mongoName := os.Getenv("MONGO_DB")
	if mongoName == "" {
		mongoName = "booknest"
	}
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	mongo, err := db.Connect(context.Background(), mongoURI, mongoName)
	if err != nil {
		log.Fatalf("MongoDB connection failed: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		mongo.Close(ctx)
	}()
	log.Println("Connected to MongoDB")

	minioClient, err := storage.Connect()
	if err != nil {
		log.Fatalf("MinIO connection failed: %v", err)
	}
	log.Println("Connected to MinIO")

	authSvc := services.NewAuthService(mongo.Database, jwtSecret)
	bookSvc := services.NewBookService(mongo.Database)
	coverSvc := services.NewCoverService(minioClient, storage.CoverBucket, bookSvc)

	authHandler := handlers.NewAuthHandler(authSvc)
	userHandler := handlers.NewUserHandler(authSvc)
	bookHandler := handlers.NewBookHandler(bookSvc, coverSvc)

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())
	app.Use(requestid.New())

	authGuard := middleware.Auth(mongo.Database.Collection("users"), jwtSecret)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := mongo.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// User routes
	user := app.Group("/user")
	user.Post("/register", authHandler.Register)
	user.Post("/login", authHandler.Login)
	user.Get("/profile", authGuard, userHandler.Profile)
	user.Put("/profile", authGuard, userHandler.UpdateProfile)
	user.Get("/", authGuard, middleware.AdminOnly, userHandler.List)
	user.Put("/makeAdmin/:id", authGuard, middleware.AdminOnly, userHandler.MakeAdmin)
	user.Put("/block/:id", authGuard, middleware.AdminOnly, userHandler.Block)
	user.Put("/unblock/:id", authGuard, middleware.AdminOnly, userHandler.Unblock)
	user.Delete("/delete/:id", authGuard, middleware.AdminOnly, userHandler.Delete)

	// Book routes
	book := app.Group("/book", authGuard)
	book.Post("/publish", bookHandler.Publish)
	book.Get("/unpublished", middleware.AdminOnly, bookHandler.ListUnpublished)
	book.Get("/unpublished/:id", middleware.AdminOnly, bookHandler.Approve)
	book.Get("/unpublish/:id", bookHandler.Unpublish)
	book.Get("/myBooks", bookHandler.MyBooks)
	book.Get("/published", bookHandler.MyPublished)
	book.Get("/borrowed", bookHandler.CurrentBorrows)
	book.Post("/borrow/:id", bookHandler.Borrow)
	book.Post("/return/:id", bookHandler.Return)
	book.Get("/history/:id", bookHandler.History)
	book.Get("/user/history", bookHandler.UserHistory)
	book.Get("/user/current", bookHandler.CurrentBorrows)
	book.Post("/cover/:id", bookHandler.UploadCover)
	book.Get("/cover/:id", bookHandler.CoverURL)
	book.Get("/", bookHandler.List)
	book.Put("/:id", bookHandler.Update)
	book.Delete("/:id", bookHandler.Delete)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Default port
	}

	log.Fatal(app.Listen(":" + port))
}
