package handlers

import (
	"strconv"

	"github.com/bitgalaxy-labs/galaxy_api/shared"
	"github.com/gofiber/fiber/v2"
)

type PlayerHandler struct {
	progressionSvc ProgressionServiceInterface
}

func NewPlayerHandler(progressionSvc ProgressionServiceInterface) *PlayerHandler {
	return &PlayerHandler{
		progressionSvc: progressionSvc,
	}
}

// @Summary Get player progression
// @Description Current XP, rank, level and weekly counters for the calling player
// @Tags player
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param org_id query string true "Organization ID"
// @Success 200 {object} shared.Response{data=dto.PlayerProgressResponse}
// @Router /api/v1/player/progress [get]
func (h *PlayerHandler) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	orgID := c.Query("org_id", c.Query("orgId"))
	if orgID == "" {
		return shared.NewBadRequestError(nil, "org_id is required")
	}

	progress, err := h.progressionSvc.GetPlayerProgress(orgID, userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", progress)
}

// @Summary Get player XP history
// @Description Append-only XP event log, newest first
// @Tags player
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param org_id query string true "Organization ID"
// @Param limit query int false "Limit results (default 50, max 200)"
// @Success 200 {object} shared.Response{data=dto.HistoryResponse}
// @Router /api/v1/player/history [get]
func (h *PlayerHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	orgID := c.Query("org_id", c.Query("orgId"))
	if orgID == "" {
		return shared.NewBadRequestError(nil, "org_id is required")
	}

	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	history, err := h.progressionSvc.GetPlayerHistory(orgID, userID, limit)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", history)
}
