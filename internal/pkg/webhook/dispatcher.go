package webhook

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/env"
)

// Dispatcher fans a domain event out to the organization's matching
// subscriptions: one pending delivery record per match, then one delivery
// job per record. The triggering request never waits on a delivery.
type Dispatcher struct {
	repo  repository.WebhookRepository
	queue *Queue
}

// NewDispatcher creates a dispatcher over the given repository and queue
func NewDispatcher(repo repository.WebhookRepository, queue *Queue) *Dispatcher {
	return &Dispatcher{repo: repo, queue: queue}
}

// Dispatch matches the event against the organization's active subscriptions
// and schedules one delivery per match. Per-subscription failures are logged
// and never abort processing of the other subscriptions. The returned error
// reflects only a matcher failure; callers treat dispatch as fire-and-forget.
func (d *Dispatcher) Dispatch(orgID uint, eventType string, payload map[string]any) error {
	body, err := CanonicalPayload(payload)
	if err != nil {
		log.Errorf("[Webhook] Could not serialize %s payload: %v", eventType, err)
		return err
	}

	subs, err := d.repo.MatchActive(orgID, eventType)
	if err != nil {
		log.Errorf("[Webhook] Matching %s for org %d failed: %v", eventType, orgID, err)
		return err
	}
	if len(subs) == 0 {
		return nil
	}

	for _, sub := range subs {
		event := &models.WebhookEvent{
			SubscriptionID: sub.ID,
			EventType:      eventType,
			Payload:        models.JSON(body),
			Status:         models.EVENT_STATUS_PENDING,
		}
		if err := d.repo.CreateEvent(event); err != nil {
			log.Errorf("[Webhook] Could not record %s delivery for subscription %d: %v", eventType, sub.ID, err)
			continue
		}

		job := DeliveryJob{
			EventID:   event.ID,
			URL:       sub.URL,
			Secret:    sub.Secret,
			EventType: eventType,
			Payload:   body,
		}
		if err := d.queue.Enqueue(job); err != nil {
			// Backpressure: the record exists but no worker will pick it up,
			// so close it out as failed with no response.
			log.Warnf("[Webhook] Delivery queue full, dropping event %d: %v", event.ID, err)
			if uerr := d.repo.UpdateEventOutcome(event.ID, models.EVENT_STATUS_FAILED, models.ResponseCodeNone); uerr != nil {
				log.Warnf("[Webhook] Could not record outcome for event %d: %v", event.ID, uerr)
			}
		}
	}

	return nil
}

// Queue returns the managed delivery queue
func (d *Dispatcher) Queue() *Queue {
	return d.queue
}

var (
	globalDispatcher *Dispatcher
	dispatcherOnce   sync.Once
)

// GetDispatcher returns the global dispatcher (singleton), configured from
// the environment and bound to the global repository factory.
func GetDispatcher() *Dispatcher {
	dispatcherOnce.Do(func() {
		workers := envInt("WEBHOOK_WORKERS", DefaultWorkers)
		queueSize := envInt("WEBHOOK_QUEUE_SIZE", DefaultQueueSize)
		timeout := time.Duration(envInt("WEBHOOK_TIMEOUT_SECONDS", int(DefaultTimeout/time.Second))) * time.Second

		repo := repository.GetGlobalFactory().GetWebhookRepository()
		globalDispatcher = NewDispatcher(repo, NewQueue(repo, workers, queueSize, timeout))
	})
	return globalDispatcher
}

// ResetDispatcher drops the global dispatcher so the next call rebinds to the
// current repository factory (used by tests).
func ResetDispatcher() {
	dispatcherOnce = sync.Once{}
	globalDispatcher = nil
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(env.GetEnv(key, "")); err == nil && v > 0 {
		return v
	}
	return def
}
