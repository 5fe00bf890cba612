package config

import (
	"os"
	"time"

	"foodshare/internal/api/handlers"
	"foodshare/internal/api/routes"
	"foodshare/internal/middleware"
	"foodshare/internal/utils"
	"foodshare/internal/utils/storage"
	"foodshare/pkg/catalog"
	"foodshare/pkg/jwt"
	"foodshare/pkg/notification"
	"foodshare/pkg/recipe"
	"foodshare/pkg/shopping"
	"foodshare/pkg/user"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// utils
	s3 := storage.NewAwsS3()
	tagCache := catalog.NewTagCache()
	publisher := notification.NewPublisher()

	// Repository
	userRepository := user.NewUserRepository(db)
	catalogRepository := catalog.NewCatalogRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)
	shoppingRepository := shopping.NewShoppingRepository(db)

	// Service
	jwtService := jwt.NewJWTService()
	userService := user.NewUserService(userRepository, jwtService)
	catalogService := catalog.NewCatalogService(catalogRepository, tagCache)
	recipeService := recipe.NewRecipeService(recipeRepository, catalogRepository, s3, publisher)
	shoppingService := shopping.NewShoppingService(shoppingRepository, shopping.NewInflector())

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator)
	shoppingHandler := handlers.NewShoppingHandler(shoppingService)

	// background follower notifications
	go notification.NewConsumer(userRepository).Start()

	// routes
	routesConfig := routes.Config{
		App:             app,
		UserHandler:     userHandler,
		CatalogHandler:  catalogHandler,
		RecipeHandler:   recipeHandler,
		ShoppingHandler: shoppingHandler,
		Middleware:      middlewares,
		JWTService:      jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
