package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/bitgalaxy-labs/galaxy_api/dto"
	"github.com/bitgalaxy-labs/galaxy_api/services/handlers"
	"github.com/bitgalaxy-labs/galaxy_api/shared"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type HttpService struct {
	context.DefaultService

	authSvc        *AuthService
	progressionSvc *ProgressionService
	leaderboardSvc *LeaderboardService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.authSvc = svc.Service(AUTH_SVC).(*AuthService)
	svc.progressionSvc = svc.Service(PROGRESSION_SVC).(*ProgressionService)
	svc.leaderboardSvc = svc.Service(LEADERBOARD_SVC).(*LeaderboardService)

	app := fiber.New(fiber.Config{
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(HTTPMetricsMiddleware())

	app.Get("/ping", svc.ping)

	authHandler := handlers.NewAuthHandler(svc.authSvc)
	checkinHandler := handlers.NewCheckinHandler(svc.progressionSvc)
	leaderboardHandler := handlers.NewLeaderboardHandler(svc.leaderboardSvc)
	playerHandler := handlers.NewPlayerHandler(svc.progressionSvc)

	auth := svc.authSvc.RequiredAuth()

	v1 := app.Group("/api/v1")
	v1.Get("/ping", svc.ping)

	v1.Post("/auth/register", authHandler.Register)
	v1.Post("/auth/login", authHandler.Login)

	v1.Post("/checkin", auth, checkinHandler.Checkin)
	v1.Post("/quests/:questId/complete", auth, checkinHandler.CompleteQuest)
	v1.Post("/referral", auth, checkinHandler.Referral)

	v1.Get("/leaderboard", leaderboardHandler.GetOrgLeaderboard)

	v1.Get("/player/progress", auth, playerHandler.GetProgress)
	v1.Get("/player/history", auth, playerHandler.GetHistory)

	svc.server = app
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set(fiber.HeaderCacheControl, "max-age=10")

	return shared.ResponseJSON(c, http.StatusOK, "Success", "pong")
}

// handleError maps domain errors to structured responses at the boundary;
// infrastructure details never reach the caller.
func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= 500 {
			log.WithError(err).Error("Request failed")
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return shared.ResponseJSON(c, http.StatusBadRequest, "Validation failed", dto.FormatValidationErrors(err))
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ResponseJSON(c, http.StatusNotFound, "Not Found", nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("Unhandled request error")
	return shared.ResponseJSON(c, http.StatusInternalServerError, "Internal Server Error", nil)
}
