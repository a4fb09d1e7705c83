package handlers

import (
	"github.com/bitgalaxy-labs/galaxy_api/dto"
	"github.com/bitgalaxy-labs/galaxy_api/shared"
	"github.com/gofiber/fiber/v2"
)

type CheckinHandler struct {
	progressionSvc ProgressionServiceInterface
}

func NewCheckinHandler(progressionSvc ProgressionServiceInterface) *CheckinHandler {
	return &CheckinHandler{
		progressionSvc: progressionSvc,
	}
}

// @Summary Daily check-in
// @Description Awards the daily check-in XP; at most once per UTC day per player
// @Tags progression
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param checkinRequest body dto.CheckinRequest true "Check-in request"
// @Success 200 {object} shared.Response{data=dto.CheckinResult}
// @Router /api/v1/checkin [post]
func (h *CheckinHandler) Checkin(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CheckinRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return err
	}

	result, err := h.progressionSvc.ProcessCheckin(req.OrgID, userID, req.Code)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Complete quest
// @Description Grants the quest XP reward once per quest per player
// @Tags progression
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param questId path string true "Quest ID"
// @Param questRequest body dto.QuestCompleteRequest true "Quest completion"
// @Success 200 {object} shared.Response{data=dto.QuestCompleteResult}
// @Router /api/v1/quests/{questId}/complete [post]
func (h *CheckinHandler) CompleteQuest(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)
	questID := c.Params("questId")

	var req dto.QuestCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return err
	}

	result, err := h.progressionSvc.CompleteQuest(req.OrgID, userID, questID, req.XPReward)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", result)
}

// @Summary Referral award
// @Description Grants the configured referral bonus to the calling player
// @Tags progression
// @Accept json
// @Produce json
// @Security Bearer
// @Param Authorization header string true "User Bearer Token" default(Bearer <user_token>)
// @Param referralRequest body dto.ReferralRequest true "Referral award"
// @Success 200 {object} shared.Response{data=dto.PlayerSnapshot}
// @Router /api/v1/referral [post]
func (h *CheckinHandler) Referral(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.ReferralRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := dto.GetValidator().Struct(req); err != nil {
		return err
	}

	snapshot, err := h.progressionSvc.AwardReferral(req.OrgID, userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", snapshot)
}
