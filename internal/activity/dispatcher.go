package activity

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Observer interface {
	Update(ctx context.Context, event Event) error
	Name() string
}

// Publisher is what services depend on. Publishing never fails the caller.
type Publisher interface {
	Publish(event Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// Dispatcher fans events out to observers from a bounded worker pool.
type Dispatcher struct {
	observers    map[string]Observer
	eventChannel chan Event
	workerPool   int
	logger       *zap.Logger
	mu           sync.RWMutex
	wg           sync.WaitGroup
	closeOnce    sync.Once
	closed       chan struct{}
}

func NewDispatcher(workerPoolSize, bufferSize int, logger *zap.Logger) *Dispatcher {
	if workerPoolSize <= 0 {
		workerPoolSize = 1
	}
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	d := &Dispatcher{
		observers:    make(map[string]Observer),
		eventChannel: make(chan Event, bufferSize),
		workerPool:   workerPoolSize,
		logger:       logger,
		closed:       make(chan struct{}),
	}

	for i := 0; i < workerPoolSize; i++ {
		d.wg.Add(1)
		go d.processEvents()
	}

	return d
}

func (d *Dispatcher) Subscribe(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers[observer.Name()] = observer
	d.logger.Info("activity observer subscribed", zap.String("observer", observer.Name()))
}

func (d *Dispatcher) Unsubscribe(observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.observers, observer.Name())
	d.logger.Info("activity observer unsubscribed", zap.String("observer", observer.Name()))
}

// Notify delivers synchronously to every observer.
func (d *Dispatcher) Notify(ctx context.Context, event Event) {
	d.mu.RLock()
	observers := make([]Observer, 0, len(d.observers))
	for _, obs := range d.observers {
		observers = append(observers, obs)
	}
	d.mu.RUnlock()

	for _, observer := range observers {
		if err := observer.Update(ctx, event); err != nil {
			d.logger.Warn("activity observer failed",
				zap.String("observer", observer.Name()),
				zap.String("event", string(event.Type)),
				zap.Error(err))
		}
	}
}

// Publish queues the event; it is dropped when the queue is full or the
// dispatcher is shut down.
func (d *Dispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	select {
	case <-d.closed:
		return
	default:
	}

	select {
	case d.eventChannel <- event:
	default:
		d.logger.Warn("activity channel full, dropping event", zap.String("event", string(event.Type)))
	}
}

func (d *Dispatcher) processEvents() {
	defer d.wg.Done()
	for event := range d.eventChannel {
		d.Notify(context.Background(), event)
	}
}

// Shutdown stops intake and waits for queued events to drain or ctx to end.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		close(d.closed)
		close(d.eventChannel)
		d.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("activity dispatcher shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
