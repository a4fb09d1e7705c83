package handlers

import (
	"strconv"

	"github.com/bitgalaxy-labs/galaxy_api/shared"
	"github.com/gofiber/fiber/v2"
)

type LeaderboardHandler struct {
	leaderboardSvc LeaderboardServiceInterface
}

func NewLeaderboardHandler(leaderboardSvc LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardSvc: leaderboardSvc,
	}
}

// @Summary Get organization leaderboard
// @Description Ranked players for an organization, all-time or current ISO week
// @Tags leaderboard
// @Accept json
// @Produce json
// @Param org_id query string true "Organization ID"
// @Param limit query int false "Limit results (default 50, max 100)"
// @Param scope query string false "allTime or weekly (default allTime)"
// @Success 200 {object} shared.Response{data=dto.LeaderboardResponse}
// @Router /api/v1/leaderboard [get]
func (h *LeaderboardHandler) GetOrgLeaderboard(c *fiber.Ctx) error {
	orgID := c.Query("org_id", c.Query("orgId"))
	if orgID == "" {
		return shared.NewBadRequestError(nil, "org_id is required")
	}

	limit := shared.LeaderboardDefaultLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > shared.LeaderboardMaxLimit {
		limit = shared.LeaderboardMaxLimit
	}

	scope := c.Query("scope")

	leaderboard, err := h.leaderboardSvc.GetOrgLeaderboard(orgID, limit, scope)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", leaderboard)
}
