package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/helios/session-gateway/internal/api/metrics"
	"github.com/helios/session-gateway/internal/core/domain"
	"github.com/helios/session-gateway/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher routes session events to a fixed set of workers using consistent
// hashing on the device ID, so events from one device are recorded in order.
type Dispatcher struct {
	workers []chan domain.SessionEvent
	service ports.EventService
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.EventService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.SessionEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.SessionEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain their queue and stop
// when ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Publish hands event to the worker responsible for its device. It never
// blocks: when that worker's queue is full the event is dropped and counted.
func (d *Dispatcher) Publish(event domain.SessionEvent) {
	idx := d.shardIndex(event.DeviceID)
	select {
	case d.workers[idx] <- event:
		metrics.EventsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.EventsDroppedTotal.Inc()
		d.log.Warn().
			Str("kind", string(event.Kind)).
			Str("device_id", event.DeviceID).
			Int("worker_id", idx).
			Msg("session event queue full, dropping event")
	}
}

// shardIndex maps a device ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(deviceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(deviceID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.SessionEvent) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, label, ch)
			return
		case event := <-ch:
			metrics.EventsQueueDepth.WithLabelValues(label).Dec()
			d.record(context.WithoutCancel(ctx), id, event)
		}
	}
}

// drain records whatever is still queued after shutdown was requested.
func (d *Dispatcher) drain(id int, label string, ch <-chan domain.SessionEvent) {
	for {
		select {
		case event := <-ch:
			metrics.EventsQueueDepth.WithLabelValues(label).Dec()
			d.record(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, event domain.SessionEvent) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	start := time.Now()
	err := d.service.Record(ctx, event)
	metrics.EventRecordDuration.WithLabelValues(string(event.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EventsErrorsTotal.WithLabelValues(string(event.Kind)).Inc()
		d.log.Error().Err(err).
			Str("kind", string(event.Kind)).
			Str("device_id", event.DeviceID).
			Int("worker_id", id).
			Msg("session event recording failed")
		return
	}
	metrics.EventsRecordedTotal.WithLabelValues(string(event.Kind)).Inc()
}
