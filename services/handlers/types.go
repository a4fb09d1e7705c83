package handlers

import (
	"github.com/bitgalaxy-labs/galaxy_api/dto"
	"github.com/gofiber/fiber/v2"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
	RequiredAuth() fiber.Handler
}

type ProgressionServiceInterface interface {
	ProcessCheckin(orgID, userID, code string) (*dto.CheckinResult, error)
	CompleteQuest(orgID, userID, questID string, xpReward int) (*dto.QuestCompleteResult, error)
	AwardReferral(orgID, userID string) (*dto.PlayerSnapshot, error)
	GetPlayerProgress(orgID, userID string) (*dto.PlayerProgressResponse, error)
	GetPlayerHistory(orgID, userID string, limit int) (*dto.HistoryResponse, error)
}

type LeaderboardServiceInterface interface {
	GetOrgLeaderboard(orgID string, limit int, scope string) (*dto.LeaderboardResponse, error)
}
