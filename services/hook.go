package services

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// IntegrationEvent is emitted after a progression write commits. Delivery
// is best-effort: the serving path never waits on it and never sees its
// failures.
type IntegrationEvent struct {
	OrgID      string                 `json:"org_id"`
	UserID     string                 `json:"user_id"`
	EventType  string                 `json:"event_type"`
	XPChange   int                    `json:"xp_change"`
	OccurredAt time.Time              `json:"occurred_at"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

type HookService struct {
	context.DefaultService

	webhookURL string
	events     chan IntegrationEvent
	quit       chan struct{}
	client     *http.Client
}

const HOOK_SVC = "hook_svc"

func (svc HookService) Id() string {
	return HOOK_SVC
}

func (svc *HookService) Configure(ctx *context.Context) error {
	svc.webhookURL = os.Getenv("INTEGRATION_WEBHOOK_URL")
	svc.events = make(chan IntegrationEvent, 256)
	svc.quit = make(chan struct{})
	svc.client = &http.Client{Timeout: 5 * time.Second}
	return svc.DefaultService.Configure(ctx)
}

func (svc *HookService) Start() error {
	go svc.worker()
	return nil
}

func (svc *HookService) Shutdown() {
	close(svc.quit)
}

// Publish never blocks; when the buffer is full the event is dropped with
// a warning rather than stalling a check-in.
func (svc *HookService) Publish(event IntegrationEvent) {
	select {
	case svc.events <- event:
	default:
		log.WithFields(log.Fields{
			"org_id":     event.OrgID,
			"event_type": event.EventType,
		}).Warn("Integration event buffer full, dropping event")
	}
}

func (svc *HookService) worker() {
	for {
		select {
		case event := <-svc.events:
			svc.deliver(event)
		case <-svc.quit:
			return
		}
	}
}

func (svc *HookService) deliver(event IntegrationEvent) {
	if svc.webhookURL == "" {
		log.WithFields(log.Fields{
			"org_id":     event.OrgID,
			"user_id":    event.UserID,
			"event_type": event.EventType,
			"xp_change":  event.XPChange,
		}).Debug("Integration event")
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.WithError(err).Warn("Failed to marshal integration event")
		return
	}

	resp, err := svc.client.Post(svc.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.WithError(err).Warn("Integration webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.WithField("status", resp.StatusCode).Warn("Integration webhook rejected event")
	}
}
