package webhook

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/aifoundry/foundry/app/models"
	"github.com/aifoundry/foundry/app/repository"
	"github.com/aifoundry/foundry/internal/pkg/metrics/counter"
)

const (
	// DefaultWorkers bounds concurrent outbound calls.
	DefaultWorkers = 5
	// DefaultQueueSize bounds jobs waiting for a worker; enqueue on a full
	// queue is rejected rather than blocking the dispatch path.
	DefaultQueueSize = 100
	// DefaultTimeout bounds a single outbound call.
	DefaultTimeout = 10 * time.Second
)

// Queue runs the bounded delivery worker pool. Each worker owns exactly one
// delivery record at a time and is the sole writer of its outcome, so no
// coordination between workers is needed.
type Queue struct {
	repo    repository.WebhookRepository
	client  *http.Client
	jobs    chan DeliveryJob
	workers int
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewQueue creates a new delivery queue
func NewQueue(repo repository.WebhookRepository, workers, queueSize int, timeout time.Duration) *Queue {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Queue{
		repo:    repo,
		client:  &http.Client{Timeout: timeout},
		jobs:    make(chan DeliveryJob, queueSize),
		workers: workers,
		stopCh:  make(chan struct{}),
	}
}

// Start starts the delivery workers
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}

	q.running = true
	q.stopCh = make(chan struct{})
	log.Infof("[Webhook] Starting %d delivery workers", q.workers)

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Stop stops the delivery workers. In-flight deliveries run to completion.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.running {
		return
	}

	log.Info("[Webhook] Stopping delivery workers...")
	close(q.stopCh)
	q.running = false
	q.wg.Wait()
	log.Info("[Webhook] All delivery workers stopped")
}

// Enqueue schedules a delivery without blocking. Returns ErrQueueFull when
// the queue is at capacity.
func (q *Queue) Enqueue(job DeliveryJob) error {
	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of deliveries waiting for a worker.
func (q *Queue) Pending() int {
	return len(q.jobs)
}

// worker processes delivery jobs until the queue stops
func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log.Infof("[Webhook] Worker %d started", id)

	for {
		select {
		case <-q.stopCh:
			log.Infof("[Webhook] Worker %d stopping", id)
			return
		case job := <-q.jobs:
			q.deliver(job)
		}
	}
}

// deliver performs the single outbound call for one delivery record and
// writes the terminal outcome. Nothing here may propagate an error: a failed
// delivery is a recorded outcome, not an exception.
func (q *Queue) deliver(job DeliveryJob) {
	status, code := q.post(job)

	if err := q.repo.UpdateEventOutcome(job.EventID, status, code); err != nil {
		// Record may have vanished; never escalate from the delivery path.
		log.Warnf("[Webhook] Could not record outcome for event %d: %v", job.EventID, err)
		return
	}

	if status == models.EVENT_STATUS_SUCCESS {
		counter.AddDeliverySuccess()
	} else {
		counter.AddDeliveryFailure()
	}
}

// post issues the signed POST and maps the result to a delivery status and
// response code. Transport failures map to failed with code 0.
func (q *Queue) post(job DeliveryJob) (string, int) {
	req, err := http.NewRequest(http.MethodPost, job.URL, bytes.NewReader(job.Payload))
	if err != nil {
		log.Errorf("[Webhook] Invalid delivery request for event %d: %v", job.EventID, err)
		return models.EVENT_STATUS_FAILED, models.ResponseCodeNone
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSignature, SignatureHeader(job.Payload, job.Secret))
	req.Header.Set(HeaderEventType, job.EventType)

	resp, err := q.client.Do(req)
	if err != nil {
		log.Errorf("[Webhook] Delivery failed for event %d: %v", job.EventID, err)
		return models.EVENT_STATUS_FAILED, models.ResponseCodeNone
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return models.EVENT_STATUS_SUCCESS, resp.StatusCode
	}
	return models.EVENT_STATUS_FAILED, resp.StatusCode
}
