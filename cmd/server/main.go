package main

import (
	"log"

	"billiard_pos_backend/internal/config"
	"billiard_pos_backend/internal/database"
	"billiard_pos_backend/internal/handlers"
	"billiard_pos_backend/internal/repositories"
	"billiard_pos_backend/internal/router"
	"billiard_pos_backend/internal/services"
	"billiard_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)

	db, err := database.Open(cfg.DSN())
	if err != nil {
		utils.LogError(err, "Failed to connect to database")
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if cfg.DBAutoMigrate {
		if err := database.ApplySchema(db); err != nil {
			utils.LogError(err, "Failed to apply database schema")
			log.Fatalf("Failed to apply database schema: %v", err)
		}
	}

	if cfg.AdminPassword != "" {
		userService := services.NewUserService(repositories.NewUserRepository(db), db)
		created, err := userService.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			utils.LogError(err, "Failed to seed admin account")
			log.Fatalf("Failed to seed admin account: %v", err)
		}
		if created {
			utils.LogInfo("Seeded admin account", map[string]interface{}{"username": cfg.AdminUsername})
		}
	}

	handlers.RegisterValidatorTagNames()

	engine := gin.New()
	router.Setup(engine, router.BuildHandlers(db, cfg, nil), cfg)

	utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "timezone": cfg.Location.String()})
	if err := engine.Run(":" + cfg.Port); err != nil {
		utils.LogError(err, "Failed to start server")
		log.Fatalf("Failed to start server: %v", err)
	}
}
