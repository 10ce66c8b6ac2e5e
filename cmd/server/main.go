package main

import (
	"log"

	"github.com/labstack/echo/v4"

	"github.com/ulsoft/platform-auth/internal/cache"
	"github.com/ulsoft/platform-auth/internal/config"
	"github.com/ulsoft/platform-auth/internal/database"
	"github.com/ulsoft/platform-auth/internal/handler"
	"github.com/ulsoft/platform-auth/internal/queue"
	"github.com/ulsoft/platform-auth/internal/repository"
	"github.com/ulsoft/platform-auth/internal/router"
	"github.com/ulsoft/platform-auth/internal/service"
	"github.com/ulsoft/platform-auth/internal/storage"
	"github.com/ulsoft/platform-auth/internal/token"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Fatal("redis: connection failed")
	}
	defer rdb.Close()

	issuer, err := token.NewIssuer(cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		log.Fatalf("token issuer: %v", err)
	}

	files, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	adminRepo := repository.NewAdminRepo(db)
	userRepo := repository.NewUserRepo(db)
	platformRepo := repository.NewPlatformRepo(db)
	codes := cache.NewCodeCache(rdb)

	adminSvc := service.NewAdminService(adminRepo, issuer, cfg.BcryptCost)
	userSvc := service.NewUserService(userRepo, codes, files, issuer,
		queue.PublishOTPRequested, cfg.BcryptCost, cfg.OTPTTL, cfg.OTPEmailTTL, cfg.OTPFixed)
	platformSvc := service.NewPlatformService(platformRepo, files)

	// OTP delivery consumer; the HTTP server does not depend on it, so a
	// broker outage only delays notifications.
	go func() {
		if err := queue.StartOTPConsumer(); err != nil {
			log.Printf("otp consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e, issuer,
		handler.NewAdminHandler(adminSvc),
		handler.NewUserHandler(userSvc),
		handler.NewPlatformHandler(platformSvc))

	log.Printf("listening on :%s (%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
