package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"

	"microblog/internal/config"
	"microblog/internal/db"
	"microblog/internal/errors"
	"microblog/internal/model"
	"microblog/internal/repository"
	"microblog/internal/service"
)

const (
	seedPassword   = "password"
	secondaryUsers = 30
)

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := db.Migrate(gormDB,
		&model.User{},
		&model.Micropost{},
		&model.Relationship{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	micropostRepo := repository.NewMicropostRepository(gormDB)
	relationshipRepo := repository.NewRelationshipRepository(gormDB)

	userValidator := service.NewUserValidator(userRepo)
	userService := service.NewUserService(userRepo, userValidator, nil)
	micropostService := service.NewMicropostService(micropostRepo)
	relationshipService := service.NewRelationshipService(relationshipRepo, userRepo)

	ctx := context.Background()

	primary, err := seedUser(ctx, userService, "Example User", "example@example.com")
	if err != nil {
		log.Fatalf("Failed to seed primary user: %v", err)
	}
	if !primary.Admin {
		primary.Admin = true
		if err := userRepo.Update(ctx, primary); err != nil {
			log.Fatalf("Failed to promote primary user to admin: %v", err)
		}
	}

	others := make([]*model.User, 0, secondaryUsers)
	for n := 1; n <= secondaryUsers; n++ {
		user, err := seedUser(ctx, userService,
			fmt.Sprintf("Person %d", n),
			fmt.Sprintf("person%d@example.com", n))
		if err != nil {
			log.Fatalf("Failed to seed user %d: %v", n, err)
		}
		others = append(others, user)
	}
	log.Printf("Seeded %d users", 1+len(others))

	// Everyone follows the primary user and the primary user follows back.
	for _, user := range others {
		if err := relationshipService.Follow(ctx, user, primary.ID); err != nil {
			log.Fatalf("Failed to create follow edge: %v", err)
		}
		if err := relationshipService.Follow(ctx, primary, user.ID); err != nil {
			log.Fatalf("Failed to create follow edge: %v", err)
		}
	}
	log.Printf("Seeded %d mutual follow pairs", len(others))

	posts := 0
	for i, user := range append([]*model.User{primary}, others[:5]...) {
		for j := 1; j <= 3; j++ {
			content := fmt.Sprintf("Hello from %s, post %d", user.Name, j)
			if _, err := micropostService.AddPost(ctx, user, content, ""); err != nil {
				log.Fatalf("Failed to seed micropost %d for user %d: %v", j, i, err)
			}
			posts++
		}
	}
	log.Printf("Seeded %d microposts", posts)

	log.Println("Seed completed successfully!")
}

// seedUser registers and activates a user, skipping registration if the email
// is already present so the script stays re-runnable.
func seedUser(ctx context.Context, users service.UserService, name, email string) (*model.User, error) {
	user, activationToken, err := users.Register(ctx, name, email, seedPassword, seedPassword)
	if err != nil {
		var verrs errors.ValidationErrors
		if stderrors.As(err, &verrs) && verrs.Has("email", errors.CodeTaken) {
			log.Printf("User %s already exists, skipping", email)
			return findExisting(ctx, users, email)
		}
		return nil, err
	}

	if err := users.Activate(ctx, email, activationToken); err != nil {
		return nil, fmt.Errorf("activate %s: %w", email, err)
	}
	return user, nil
}

func findExisting(ctx context.Context, users service.UserService, email string) (*model.User, error) {
	user, err := users.Authenticate(ctx, email, seedPassword)
	if err != nil {
		return nil, fmt.Errorf("existing user %s has an unexpected password: %w", email, err)
	}
	return user, nil
}
