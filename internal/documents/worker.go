package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentledger/internal/blob"
	"rentledger/internal/core"
)

// ExportStatus describes the lifecycle stage of an export job.
type ExportStatus string

const (
	ExportStatusQueued    ExportStatus = "queued"
	ExportStatusRunning   ExportStatus = "running"
	ExportStatusSucceeded ExportStatus = "succeeded"
	ExportStatusFailed    ExportStatus = "failed"
)

// Kind names the document type of an export.
type Kind string

const (
	KindContract Kind = "contract"
	KindInvoice  Kind = "invoice"
)

const (
	contentTypePDF   = "application/pdf"
	defaultQueueSize = 64
)

var (
	// ErrQueueFull is returned when the worker cannot accept more jobs.
	ErrQueueFull = errors.New("export queue full")
	// ErrWorkerStopped is returned for jobs offered after Stop.
	ErrWorkerStopped = errors.New("export worker stopped")
)

// ExportRecord tracks one document export.
type ExportRecord struct {
	ID          string       `json:"id"`
	Kind        Kind         `json:"kind"`
	EntityID    string       `json:"entity_id"`
	Key         string       `json:"key"`
	Status      ExportStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	Document    *blob.Info   `json:"document,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func (r ExportRecord) copy() ExportRecord {
	out := r
	if r.Document != nil {
		doc := *r.Document
		doc.Metadata = cloneMetadata(doc.Metadata)
		out.Document = &doc
	}
	if r.CompletedAt != nil {
		t := *r.CompletedAt
		out.CompletedAt = &t
	}
	return out
}

type exportTask struct {
	id      string
	kind    Kind
	entity  string
	key     string
	replace bool
	render  func() ([]byte, error)
}

// WorkerOption customises a Worker.
type WorkerOption func(*Worker)

// WithQueueSize bounds the number of pending jobs.
func WithQueueSize(n int) WorkerOption {
	return func(w *Worker) {
		if n > 0 {
			w.queueSize = n
		}
	}
}

// WithLogger sets the worker logger.
func WithLogger(l core.Logger) WorkerOption {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(c core.Clock) WorkerOption {
	return func(w *Worker) {
		if c != nil {
			w.clock = c
		}
	}
}

// Worker renders documents and stores them in a blob store on a single
// background goroutine. Failures are recorded on the job and logged.
type Worker struct {
	store     blob.Store
	logger    core.Logger
	clock     core.Clock
	queueSize int

	queue   chan exportTask
	mu      sync.RWMutex
	jobs    map[string]*ExportRecord
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs a worker storing into store.
func NewWorker(store blob.Store, opts ...WorkerOption) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	w := &Worker{
		store:     store,
		logger:    nopLogger{},
		clock:     core.ClockFunc(nil),
		queueSize: defaultQueueSize,
		jobs:      make(map[string]*ExportRecord),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.queue = make(chan exportTask, w.queueSize)
	return w
}

// Start begins processing jobs.
func (w *Worker) Start() {
	w.wg.Add(1)
	go w.loop()
}

// Stop halts the worker and waits for it to exit or for ctx to expire.
// Jobs still queued are marked failed.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.cancel()
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	for {
		select {
		case task := <-w.queue:
			w.fail(task.id, "worker stopped")
		default:
			return nil
		}
	}
}

func (w *Worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case task := <-w.queue:
			w.process(task)
		}
	}
}

// Subscribe registers the worker on bus so admissions and invoice changes
// produce documents.
func (w *Worker) Subscribe(bus *core.EventBus) {
	bus.Subscribe(w.Handle)
}

// Handle maps a committed event to an export job. It never blocks the caller.
func (w *Worker) Handle(ctx context.Context, evt core.Event) {
	var err error
	switch evt.Kind {
	case core.EventTenantAdmitted:
		_, err = w.EnqueueContract(ctx, ContractFromRecords(evt.Building, evt.Unit, evt.Tenant, w.clock.Now()))
	case core.EventInvoiceIssued:
		_, err = w.EnqueueInvoice(ctx, InvoiceFromRecord(evt.Invoice, w.clock.Now()), false)
	case core.EventInvoicePaid:
		_, err = w.EnqueueInvoice(ctx, InvoiceFromRecord(evt.Invoice, w.clock.Now()), true)
	default:
		return
	}
	if err != nil {
		w.logger.Warn("document export not scheduled", "event", string(evt.Kind), "error", err)
	}
}

// EnqueueContract schedules a contract PDF export.
func (w *Worker) EnqueueContract(ctx context.Context, s ContractSnapshot) (ExportRecord, error) {
	return w.enqueue(ctx, exportTask{
		kind:   KindContract,
		entity: s.TenantID,
		key:    ContractKey(s),
		render: func() ([]byte, error) { return RenderContract(s) },
	})
}

// EnqueueInvoice schedules an invoice PDF export. With replace set an
// existing document under the same key is overwritten.
func (w *Worker) EnqueueInvoice(ctx context.Context, s InvoiceSnapshot, replace bool) (ExportRecord, error) {
	return w.enqueue(ctx, exportTask{
		kind:    KindInvoice,
		entity:  s.UnitID,
		key:     InvoiceKey(s),
		replace: replace,
		render:  func() ([]byte, error) { return RenderInvoice(s) },
	})
}

func (w *Worker) enqueue(_ context.Context, task exportTask) (ExportRecord, error) {
	if err := blob.ValidateKey(task.key); err != nil {
		return ExportRecord{}, err
	}
	task.id = uuid.NewString()
	now := w.clock.Now()
	record := &ExportRecord{
		ID:        task.id,
		Kind:      task.kind,
		EntityID:  task.entity,
		Key:       task.key,
		Status:    ExportStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// Sending under the lock orders every accepted job before the drain in Stop.
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return ExportRecord{}, ErrWorkerStopped
	}
	w.jobs[task.id] = record
	queued := record.copy()
	accepted := true
	select {
	case w.queue <- task:
	default:
		accepted = false
	}
	w.mu.Unlock()

	if !accepted {
		w.fail(task.id, ErrQueueFull.Error())
		return ExportRecord{}, ErrQueueFull
	}
	return queued, nil
}

// Get returns a snapshot of the export record.
func (w *Worker) Get(id string) (ExportRecord, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	record, ok := w.jobs[id]
	if !ok {
		return ExportRecord{}, false
	}
	return record.copy(), true
}

// List returns every known export, oldest first.
func (w *Worker) List() []ExportRecord {
	w.mu.RLock()
	out := make([]ExportRecord, 0, len(w.jobs))
	for _, record := range w.jobs {
		out = append(out, record.copy())
	}
	w.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (w *Worker) process(task exportTask) {
	w.update(task.id, func(r *ExportRecord) { r.Status = ExportStatusRunning })

	payload, err := task.render()
	if err != nil {
		w.fail(task.id, fmt.Sprintf("render %s: %v", task.kind, err))
		return
	}
	if w.store == nil {
		w.fail(task.id, "blob store not configured")
		return
	}
	if task.replace {
		if _, err := w.store.Delete(w.ctx, task.key); err != nil {
			w.fail(task.id, fmt.Sprintf("replace %s: %v", task.key, err))
			return
		}
	}
	info, err := w.store.Put(w.ctx, task.key, bytes.NewReader(payload), blob.PutOptions{
		ContentType: contentTypePDF,
		Metadata:    map[string]string{"kind": string(task.kind), "entity_id": task.entity},
	})
	if err != nil {
		w.fail(task.id, fmt.Sprintf("store %s: %v", task.key, err))
		return
	}
	w.update(task.id, func(r *ExportRecord) {
		r.Status = ExportStatusSucceeded
		r.Error = ""
		r.Document = &info
		completed := r.UpdatedAt
		r.CompletedAt = &completed
	})
	w.logger.Info("document exported", "export_id", task.id, "kind", string(task.kind), "key", task.key, "size_bytes", info.Size)
}

func (w *Worker) fail(id, reason string) {
	var kind Kind
	var key string
	w.update(id, func(r *ExportRecord) {
		r.Status = ExportStatusFailed
		r.Error = reason
		completed := r.UpdatedAt
		r.CompletedAt = &completed
		kind, key = r.Kind, r.Key
	})
	w.logger.Error("document export failed", "export_id", id, "kind", string(kind), "key", key, "error", reason)
}

func (w *Worker) update(id string, fn func(*ExportRecord)) {
	now := w.clock.Now()
	w.mu.Lock()
	defer w.mu.Unlock()
	if record, ok := w.jobs[id]; ok {
		record.UpdatedAt = now
		fn(record)
	}
}

func cloneMetadata(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
