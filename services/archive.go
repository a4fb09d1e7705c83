package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/bitgalaxy-labs/galaxy_api/shared"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// ArchiveService exports each organization's XP history for the previous
// ISO week to object storage once the week closes. The job is entirely off
// the serving path; any failure is logged and retried the following week.
type ArchiveService struct {
	appContext.DefaultService

	sqlSvc *SqlService

	client     *minio.Client
	enabled    bool
	bucketName string
	endpoint   string
	accessKey  string
	secretKey  string
	useSSL     bool
}

const ARCHIVE_SVC = "archive_svc"

func (svc ArchiveService) Id() string {
	return ARCHIVE_SVC
}

func (svc *ArchiveService) Configure(ctx *appContext.Context) error {
	svc.enabled = os.Getenv("ARCHIVE_ENABLED") == "true"

	svc.endpoint = os.Getenv("MINIO_ENDPOINT")
	if svc.endpoint == "" {
		svc.endpoint = "localhost:9000"
	}
	svc.accessKey = os.Getenv("MINIO_ACCESS_KEY")
	svc.secretKey = os.Getenv("MINIO_SECRET_KEY")
	svc.useSSL = os.Getenv("MINIO_USE_SSL") == "true"
	svc.bucketName = os.Getenv("MINIO_BUCKET_NAME")
	if svc.bucketName == "" {
		svc.bucketName = "bitgalaxy-history"
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *ArchiveService) Start() error {
	svc.sqlSvc = svc.Service(SQL_SVC).(*SqlService)

	if !svc.enabled {
		log.Info("History archive disabled")
		return nil
	}

	client, err := minio.New(svc.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(svc.accessKey, svc.secretKey, ""),
		Secure: svc.useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}
	svc.client = client

	if err := svc.ensureBucket(); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %v", err)
	}

	go svc.startArchiveScheduler()

	log.Printf("History archive started with endpoint: %s", svc.endpoint)
	return nil
}

func (svc *ArchiveService) ensureBucket() error {
	ctx := context.Background()

	exists, err := svc.client.BucketExists(ctx, svc.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		return svc.client.MakeBucket(ctx, svc.bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

// startArchiveScheduler wakes shortly after every ISO week boundary
// (Monday 00:15 UTC) and exports the week that just closed.
func (svc *ArchiveService) startArchiveScheduler() {
	for {
		now := time.Now().UTC()
		nextRun := shared.WeekStart(now).AddDate(0, 0, 7).Add(15 * time.Minute)
		if !nextRun.After(now) {
			nextRun = nextRun.AddDate(0, 0, 7)
		}

		timer := time.NewTimer(nextRun.Sub(now))
		<-timer.C

		if err := svc.ArchivePreviousWeek(time.Now().UTC()); err != nil {
			log.WithError(err).Error("Weekly history archive failed")
		}
	}
}

// ArchivePreviousWeek exports the ISO week preceding the one containing t.
func (svc *ArchiveService) ArchivePreviousWeek(t time.Time) error {
	weekEnd := shared.WeekStart(t)
	weekStart := weekEnd.AddDate(0, 0, -7)
	weekKey := shared.WeekKey(weekStart)

	orgs, err := svc.sqlSvc.GetOrgsWithActivityBetween(weekStart, weekEnd)
	if err != nil {
		return err
	}

	for _, orgID := range orgs {
		if err := svc.archiveOrgWeek(orgID, weekKey, weekStart, weekEnd); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"org_id":   orgID,
				"week_key": weekKey,
			}).Error("Failed to archive org history")
		}
	}

	return nil
}

func (svc *ArchiveService) archiveOrgWeek(orgID, weekKey string, from, to time.Time) error {
	entries, err := svc.sqlSvc.GetOrgHistoryBetween(orgID, from, to)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	objectName := fmt.Sprintf("history/%s/%s.json", orgID, weekKey)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = svc.client.PutObject(ctx, svc.bucketName, objectName,
		bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"org_id":   orgID,
		"week_key": weekKey,
		"entries":  len(entries),
	}).Info("Archived weekly history")
	return nil
}
