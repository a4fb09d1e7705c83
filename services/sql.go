package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/bitgalaxy-labs/galaxy_api/dto"
	"github.com/bitgalaxy-labs/galaxy_api/model"
	"github.com/bitgalaxy-labs/galaxy_api/services/repositories"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqlService owns the database connection for the whole process and
// exposes the repositories over it. DB_DRIVER selects sqlite (default) or
// postgres; everything above this service is driver-agnostic.
type SqlService struct {
	context.DefaultService
	db *gorm.DB

	driver   string
	database string

	playerRepo  *repositories.PlayerRepository
	historyRepo *repositories.HistoryRepository
	userRepo    *repositories.UserRepository
}

const SQL_SVC = "sql_svc"

// Id returns Service ID
func (ds SqlService) Id() string {
	return SQL_SVC
}

// Db Access to raw SqlService db
func (ds SqlService) Db() *gorm.DB {
	return ds.db
}

// Configure the service
func (ds *SqlService) Configure(ctx *context.Context) error {
	ds.driver = os.Getenv("DB_DRIVER")
	if ds.driver == "" {
		ds.driver = "sqlite"
	}

	switch ds.driver {
	case "sqlite":
		ds.database = os.Getenv("DB_DATABASE")
		if ds.database == "" {
			ds.database = "galaxy.db"
		}
	case "postgres":
		ds.database = ds.postgresDSN()
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", ds.driver)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *SqlService) postgresDSN() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}

	// Fallback to individual environment variables
	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	user := os.Getenv("DB_USER")
	if user == "" {
		user = "postgres"
	}
	password := os.Getenv("DB_PASSWORD")
	if password == "" {
		password = "postgres"
	}
	dbname := os.Getenv("DB_NAME")
	if dbname == "" {
		dbname = "galaxy_api"
	}
	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		host, port, user, password, dbname, sslmode)
}

// Start the service and open connection to the database
// Migrate any tables that have changed since last runtime
func (ds *SqlService) Start() (err error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	}

	switch ds.driver {
	case "postgres":
		ds.db, err = gorm.Open(postgres.Open(ds.database), gormCfg)
	default:
		ds.db, err = gorm.Open(sqlite.Open(ds.database), gormCfg)
	}
	if err != nil {
		return err
	}

	models := []interface{}{
		&model.User{},
		&model.PlayerProgress{},
		&model.XPHistory{},
	}

	if err = ds.db.AutoMigrate(models...); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	ds.initRepos()

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *SqlService) initRepos() {
	ds.playerRepo = repositories.NewPlayerRepository(ds.db)
	ds.historyRepo = repositories.NewHistoryRepository(ds.db)
	ds.userRepo = repositories.NewUserRepository(ds.db)
}

func (ds *SqlService) Shutdown() {
}

// ==================== PLAYER PROGRESSION ====================

func (ds *SqlService) GetPlayerProgress(orgID, userID string) (*model.PlayerProgress, error) {
	return ds.playerRepo.GetByOrgUser(orgID, userID)
}

func (ds *SqlService) CreatePlayerProgress(player *model.PlayerProgress) error {
	return ds.playerRepo.Create(player)
}

func (ds *SqlService) UpdatePlayerCheckinGuarded(player *model.PlayerProgress, prevCheckinAt *time.Time) (bool, error) {
	return ds.playerRepo.UpdateCheckinGuarded(player, prevCheckinAt)
}

func (ds *SqlService) UpdatePlayerGuarded(player *model.PlayerProgress, prevUpdatedAt time.Time) (bool, error) {
	return ds.playerRepo.UpdateGuarded(player, prevUpdatedAt)
}

func (ds *SqlService) GetAllTimeLeaderboard(orgID string, limit int) ([]model.PlayerProgress, error) {
	return ds.playerRepo.AllTimeTop(orgID, limit)
}

func (ds *SqlService) GetWeeklyLeaderboardCandidates(orgID string, fetch int) ([]model.PlayerProgress, error) {
	return ds.playerRepo.WeeklyCandidates(orgID, fetch)
}

// ==================== XP HISTORY ====================

func (ds *SqlService) CreateHistoryEntry(entry *model.XPHistory) error {
	return ds.historyRepo.Create(entry)
}

func (ds *SqlService) GetPlayerHistory(orgID, userID string, limit int) ([]model.XPHistory, error) {
	return ds.historyRepo.ListByPlayer(orgID, userID, limit)
}

func (ds *SqlService) GetOrgHistoryBetween(orgID string, from, to time.Time) ([]model.XPHistory, error) {
	return ds.historyRepo.ListByOrgBetween(orgID, from, to)
}

func (ds *SqlService) GetOrgsWithActivityBetween(from, to time.Time) ([]string, error) {
	return ds.historyRepo.OrgsWithActivityBetween(from, to)
}

// ==================== USERS ====================

func (ds *SqlService) GetUser(userID string) (*model.User, error) {
	return ds.userRepo.GetUser(userID)
}

func (ds *SqlService) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	return ds.userRepo.GetUserByEmailOrUsername(emailOrUsername)
}

func (ds *SqlService) CreateUser(req dto.RegisterRequest) (*model.User, error) {
	return ds.userRepo.CreateUser(req)
}

func (ds *SqlService) UpdateLastLogin(userID string) error {
	return ds.userRepo.UpdateLastLogin(userID)
}

// ==================== ERROR MAPPING ====================

func (ds *SqlService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}
