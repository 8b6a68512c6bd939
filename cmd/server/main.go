package main

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"microblog/internal/auth"
	"microblog/internal/cache"
	"microblog/internal/config"
	"microblog/internal/db"
	"microblog/internal/handler"
	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/router"
	"microblog/internal/service"
)

// @title Microblog API
// @version 1.0
// @description Social blogging API with users, microposts, follow relationships and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := db.Migrate(gormDB,
		&model.User{},
		&model.Micropost{},
		&model.Relationship{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	micropostRepo := repository.NewMicropostRepository(gormDB)
	relationshipRepo := repository.NewRelationshipRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	userValidator := service.NewUserValidator(userRepo)
	userService := service.NewUserService(userRepo, userValidator, cacheClient)
	authService := service.NewAuthService(userService, jwtService, tokenStore)
	micropostService := service.NewMicropostService(micropostRepo)
	relationshipService := service.NewRelationshipService(relationshipRepo, userRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	micropostHandler := handler.NewMicropostHandler(micropostService, userService)
	relationshipHandler := handler.NewRelationshipHandler(relationshipService, userService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		userHandler,
		micropostHandler,
		relationshipHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
