package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/opratem/schoolems/internal/api/metrics"
	"github.com/opratem/schoolems/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// MailDispatcher routes outbound mail to a fixed set of workers using
// consistent hashing on the recipient, so messages to one address are
// delivered in order. Delivery is best-effort: failures are logged and
// counted, never propagated to the caller.
type MailDispatcher struct {
	workers []chan ports.MailMessage
	mailer  ports.Mailer
	log     zerolog.Logger
}

// NewMailDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewMailDispatcher(numWorkers int, mailer ports.Mailer, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &MailDispatcher{
		workers: make([]chan ports.MailMessage, numWorkers),
		mailer:  mailer,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.MailMessage, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a message to the worker responsible for its recipient. When
// that worker's buffer is full the message is dropped with a log entry —
// callers have already persisted whatever state the mail refers to.
func (d *MailDispatcher) Enqueue(msg ports.MailMessage) {
	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().Str("subject", msg.Subject).Int("worker_id", idx).Msg("mail queue full, message dropped")
		metrics.MailDeliveriesTotal.WithLabelValues("dropped").Inc()
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32()) % len(d.workers)
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.MailMessage) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			metrics.MailQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.mailer.Send(ctx, msg); err != nil {
				d.log.Error().Err(err).
					Str("subject", msg.Subject).
					Int("worker_id", id).
					Msg("mail delivery failed")
				metrics.MailDeliveriesTotal.WithLabelValues("failure").Inc()
				continue
			}
			metrics.MailDeliveriesTotal.WithLabelValues("success").Inc()
		}
	}
}
