package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/octobees/sift-profiler/internal/agent"
	"github.com/octobees/sift-profiler/internal/entity"
	"github.com/octobees/sift-profiler/internal/repository"
)

const (
	defaultMaxConcurrentRuns = 8
	defaultStreamTimeout     = 10 * time.Minute
)

// EventKind classifies stream events.
type EventKind string

const (
	EventStart    EventKind = "start"
	EventProgress EventKind = "progress"
	EventSaving   EventKind = "saving"
	EventDone     EventKind = "done"
	EventError    EventKind = "error"
)

// StreamEvent is one message of a streaming run.
type StreamEvent struct {
	Kind      EventKind
	Message   string
	ProfileID uuid.UUID
}

// Terminal reports whether no further events follow.
func (e StreamEvent) Terminal() bool {
	return e.Kind == EventDone || e.Kind == EventError
}

// Data renders the event payload: "DONE|<id>", "ERROR|<message>" or the message.
func (e StreamEvent) Data() string {
	switch e.Kind {
	case EventDone:
		return "DONE|" + e.ProfileID.String()
	case EventError:
		return "ERROR|" + e.Message
	default:
		return e.Message
	}
}

// ProfileInvoker runs the automation for one company.
type ProfileInvoker interface {
	Invoke(ctx context.Context, companyName string, stepBudget int) (*entity.CompanyProfile, error)
}

// OrchestratorConfig tunes the run pipeline.
type OrchestratorConfig struct {
	StepBudget        int
	Attempts          int
	MaxConcurrentRuns int
	StreamTimeout     time.Duration
}

// ProfileOrchestrator runs automation, enrichment and persistence for one company.
type ProfileOrchestrator struct {
	invoker   ProfileInvoker
	enricher  Enricher
	profiles  repository.ProfilesRepository
	sanitizer *ProfileSanitizer
	narrator  Narrator
	slots     *semaphore.Weighted
	cfg       OrchestratorConfig
	logger    *zap.Logger
}

// NewProfileOrchestrator wires the pipeline. Runs from both modes share the
// same concurrency ceiling.
func NewProfileOrchestrator(
	invoker ProfileInvoker,
	enricher Enricher,
	profiles repository.ProfilesRepository,
	sanitizer *ProfileSanitizer,
	narrator Narrator,
	cfg OrchestratorConfig,
	logger *zap.Logger,
) *ProfileOrchestrator {
	if cfg.MaxConcurrentRuns <= 0 {
		cfg.MaxConcurrentRuns = defaultMaxConcurrentRuns
	}
	if cfg.Attempts <= 0 {
		cfg.Attempts = 1
	}
	if cfg.StreamTimeout <= 0 {
		cfg.StreamTimeout = defaultStreamTimeout
	}
	if sanitizer == nil {
		sanitizer = NewProfileSanitizer(defaultPhoneRegion)
	}
	if narrator == nil {
		narrator = NewHeartbeatNarrator(defaultHeartbeatInterval)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileOrchestrator{
		invoker:   invoker,
		enricher:  enricher,
		profiles:  profiles,
		sanitizer: sanitizer,
		narrator:  narrator,
		slots:     semaphore.NewWeighted(int64(cfg.MaxConcurrentRuns)),
		cfg:       cfg,
		logger:    logger.Named("orchestrator"),
	}
}

// Generate runs the automation only and returns the sanitized profile
// without enrichment or persistence.
func (o *ProfileOrchestrator) Generate(ctx context.Context, companyName string) (*entity.CompanyProfile, error) {
	name, err := o.companyName(companyName)
	if err != nil {
		return nil, err
	}
	if !o.slots.TryAcquire(1) {
		return nil, ErrCapacityExhausted
	}
	defer o.slots.Release(1)

	profile, err := o.invoke(ctx, name)
	if err != nil {
		return nil, err
	}
	clean := o.sanitizer.Sanitize(*profile)
	return &clean, nil
}

// Create runs the whole pipeline and stores exactly one record on success.
func (o *ProfileOrchestrator) Create(ctx context.Context, userID uuid.UUID, companyName string) (*entity.ProfileRecord, error) {
	name, err := o.companyName(companyName)
	if err != nil {
		return nil, err
	}
	if !o.slots.TryAcquire(1) {
		return nil, ErrCapacityExhausted
	}
	defer o.slots.Release(1)

	rec, err := o.build(ctx, userID, name, func(string) {})
	if err != nil {
		return nil, err
	}
	return o.persist(ctx, rec)
}

// CreateStreaming runs the pipeline and reports progress on the returned
// channel. The channel carries a start event, progress events, a saving event
// on success and exactly one terminal event, then closes. Sends stop when ctx
// is done, so the consumer must read until close or cancel ctx.
func (o *ProfileOrchestrator) CreateStreaming(ctx context.Context, userID uuid.UUID, companyName string) <-chan StreamEvent {
	out := make(chan StreamEvent)
	go o.stream(ctx, userID, companyName, out)
	return out
}

type buildResult struct {
	rec *entity.ProfileRecord
	err error
}

func (o *ProfileOrchestrator) stream(ctx context.Context, userID uuid.UUID, companyName string, out chan<- StreamEvent) {
	defer close(out)

	emit := func(ev StreamEvent) bool {
		select {
		case out <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error) {
		o.logger.Warn("streaming run failed", zap.String("company", companyName), zap.Error(err))
		emit(StreamEvent{Kind: EventError, Message: streamErrorMessage(err, o.cfg.StreamTimeout)})
	}

	name, err := o.companyName(companyName)
	if err != nil {
		fail(err)
		return
	}
	if !emit(StreamEvent{Kind: EventStart, Message: fmt.Sprintf("🚀 Starting profile generation for %s...", name)}) {
		return
	}
	if !o.slots.TryAcquire(1) {
		fail(ErrCapacityExhausted)
		return
	}
	defer o.slots.Release(1)

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.StreamTimeout)
	defer cancel()

	narrateCtx, stopNarration := context.WithCancel(runCtx)
	defer stopNarration()
	narration := o.narrator.Narrate(narrateCtx, name)

	checkpoints := make(chan string, 8)
	done := make(chan buildResult, 1)
	finished := make(chan struct{})
	defer func() {
		cancel()
		<-finished
	}()
	go func() {
		defer close(finished)
		rec, err := o.build(runCtx, userID, name, func(msg string) {
			select {
			case checkpoints <- msg:
			default:
			}
		})
		done <- buildResult{rec: rec, err: err}
	}()

	var result buildResult
wait:
	for {
		select {
		case msg := <-checkpoints:
			if !emit(StreamEvent{Kind: EventProgress, Message: msg}) {
				return
			}
		case msg, ok := <-narration:
			if !ok {
				narration = nil
				continue
			}
			if !emit(StreamEvent{Kind: EventProgress, Message: msg}) {
				return
			}
		case result = <-done:
			break wait
		case <-ctx.Done():
			return
		}
	}
	stopNarration()

	for drained := false; !drained; {
		select {
		case msg := <-checkpoints:
			if !emit(StreamEvent{Kind: EventProgress, Message: msg}) {
				return
			}
		default:
			drained = true
		}
	}

	if result.err != nil {
		fail(result.err)
		return
	}
	if !emit(StreamEvent{Kind: EventSaving, Message: "💾 Saving profile to database..."}) {
		return
	}

	saved, err := o.persist(runCtx, result.rec)
	if err != nil {
		fail(err)
		return
	}
	emit(StreamEvent{Kind: EventDone, ProfileID: saved.ID})
}

// build runs automation and enrichment and returns an unsaved record.
func (o *ProfileOrchestrator) build(ctx context.Context, userID uuid.UUID, name string, checkpoint func(string)) (*entity.ProfileRecord, error) {
	start := time.Now()
	checkpoint("🔍 Running AI agent to gather company intelligence...")
	profile, err := o.invoke(ctx, name)
	if err != nil {
		return nil, err
	}
	checkpoint("✅ Agent completed! Processing data...")

	clean := o.sanitizer.Sanitize(*profile)
	// Records are keyed on the requested company, whatever label the agent used.
	clean.CompanyName = name

	checkpoint("🧠 Generating AI intelligence (executive summary, pain points, opening lines)...")
	intel := o.enricher.Enrich(ctx, clean)
	checkpoint("✅ AI intelligence generated!")

	o.logger.Info("profile built",
		zap.String("company", name),
		zap.Int("tech", len(clean.TechStack)),
		zap.Int("news", len(clean.RecentNewsSignals)),
		zap.Int("contacts", len(clean.KeyContacts)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return entity.NewProfileRecord(userID, clean, intel), nil
}

// invoke retries only when the automation produced no output at all.
func (o *ProfileOrchestrator) invoke(ctx context.Context, name string) (*entity.CompanyProfile, error) {
	var lastErr error
	for attempt := 1; attempt <= o.cfg.Attempts; attempt++ {
		profile, err := o.invoker.Invoke(ctx, name, o.cfg.StepBudget)
		if err == nil {
			return profile, nil
		}
		lastErr = err
		if !errors.Is(err, agent.ErrAutomationIncomplete) || ctx.Err() != nil {
			break
		}
		o.logger.Warn("automation incomplete, retrying", zap.String("company", name), zap.Int("attempt", attempt))
	}
	return nil, lastErr
}

func (o *ProfileOrchestrator) persist(ctx context.Context, rec *entity.ProfileRecord) (*entity.ProfileRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	saved, err := o.profiles.Insert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}
	o.logger.Info("profile saved", zap.String("profile_id", saved.ID.String()), zap.String("company", saved.CompanyName))
	return saved, nil
}

func (o *ProfileOrchestrator) companyName(raw string) (string, error) {
	name := o.sanitizer.SanitizeName(raw)
	if name == "" {
		return "", validationErrorf("company_name is required")
	}
	return name, nil
}

func streamErrorMessage(err error, timeout time.Duration) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("profile generation timed out after %s", timeout)
	case errors.Is(err, context.Canceled):
		return "profile generation cancelled"
	}
	return strings.TrimSpace(err.Error())
}
