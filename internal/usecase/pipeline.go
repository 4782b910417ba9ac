package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"MuralNotifier/internal/domain"
	"MuralNotifier/internal/matching"
	"MuralNotifier/internal/ports"
	"MuralNotifier/pkg/apperrors"
)

const defaultWorkers = 8

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source       ports.PublicationSource
	Store        ports.PublicationStore
	Preferences  ports.PreferenceRepository
	Dispatcher   ports.Dispatcher
	Workers      int
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// Pipeline implements the ingest-match-notify workflow. One bad record
// or one bad subscriber never blocks the others; only an incomplete
// preference fetch aborts a matching sweep.
type Pipeline struct {
	source       ports.PublicationSource
	store        ports.PublicationStore
	preferences  ports.PreferenceRepository
	dispatcher   ports.Dispatcher
	workers      int
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	workers := deps.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	fetchTimeout := deps.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Pipeline{
		source:       deps.Source,
		store:        deps.Store,
		preferences:  deps.Preferences,
		dispatcher:   deps.Dispatcher,
		workers:      workers,
		fetchTimeout: fetchTimeout,
		logger:       deps.Logger,
	}
}

// ProcessSweep pulls the latest publications from the portals and runs
// each one through ingest and, for fresh inserts, the matching sweep.
func (p *Pipeline) ProcessSweep(ctx context.Context, trigger time.Time) error {
	if p.source == nil {
		return nil
	}

	log := p.log().With("run_id", uuid.NewString())
	log.Info("sweep started", "trigger", trigger.Format(time.RFC3339))

	pubs, err := p.source.FetchLatest(ctx)
	if err != nil {
		log.Error("fetch latest publications", "error", err)
		return fmt.Errorf("fetch latest publications: %w", err)
	}

	var inserted, duplicates, skipped, failed int
	for _, pub := range pubs {
		outcome, err := p.ingest(ctx, log, pub)
		switch {
		case err != nil:
			// Already logged at item scope; siblings keep going.
			failed++
		case outcome == domain.OutcomeInserted:
			inserted++
			if err := p.notifyMatches(ctx, log, pub); err != nil {
				log.Error("matching sweep aborted", "publication", pub.Number, "error", err)
			}
		case outcome == domain.OutcomeAlreadyExists:
			duplicates++
		case outcome == domain.OutcomeSkipped:
			skipped++
		}
	}

	log.Info("sweep finished",
		"publications", len(pubs),
		"inserted", inserted,
		"duplicates", duplicates,
		"skipped", skipped,
		"failed", failed,
	)
	return nil
}

// HandleChangeEvents processes externally delivered record-change
// notifications: insert events trigger a matching sweep over the
// already-persisted record, everything else is ignored.
func (p *Pipeline) HandleChangeEvents(ctx context.Context, events []domain.ChangeEvent) error {
	log := p.log().With("run_id", uuid.NewString())

	for _, event := range events {
		if event.Kind != domain.ChangeInsert {
			log.Debug("ignoring change event", "kind", event.Kind)
			continue
		}
		if err := p.notifyMatches(ctx, log, event.Record); err != nil {
			log.Error("matching sweep aborted", "publication", event.Record.Number, "error", err)
			return err
		}
	}
	return nil
}

// ingest validates and conditionally stores one publication. Errors
// are logged here at item scope and returned only so the caller can
// count them.
func (p *Pipeline) ingest(ctx context.Context, log *slog.Logger, pub domain.Publication) (domain.IngestOutcome, error) {
	if pub.Number <= 0 {
		log.Warn("skipping publication without number", "external_id", pub.ID)
		return domain.OutcomeSkipped, nil
	}
	if p.store == nil {
		return domain.OutcomeSkipped, nil
	}

	outcome, err := p.store.PutIfAbsent(ctx, pub)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeValidation) {
			log.Warn("publication rejected by store", "publication", pub.Number, "error", err)
			return domain.OutcomeSkipped, nil
		}
		log.Error("store publication", "publication", pub.Number, "error", err)
		return outcome, err
	}

	if outcome == domain.OutcomeAlreadyExists {
		log.Debug("publication already stored", "publication", pub.Number)
	} else {
		log.Info("publication stored", "publication", pub.Number)
	}
	return outcome, nil
}

// notifyMatches fans the freshly inserted publication out over every
// subscriber. The preference fetch must complete before any matching
// begins; its failure aborts this sweep. Subscriber evaluation and
// dispatch are independent and commutative, so they run on a bounded
// worker pool.
func (p *Pipeline) notifyMatches(ctx context.Context, log *slog.Logger, pub domain.Publication) error {
	if p.preferences == nil || p.dispatcher == nil {
		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, p.fetchTimeout)
	subscribers, err := p.preferences.FetchAll(fetchCtx)
	cancel()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodePagination, "pipeline.notify", "fetch subscriber preferences")
	}

	log.Debug("matching sweep", "publication", pub.Number, "subscribers", len(subscribers))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)

	for _, prefs := range subscribers {
		prefs := prefs
		group.Go(func() error {
			result := matching.Evaluate(pub, prefs)
			if !result.Found() {
				return nil
			}
			// Dispatch owns its own failure handling; a bad
			// subscriber never fails the group.
			p.dispatcher.Dispatch(groupCtx, prefs, pub, result.MatchedFields)
			return nil
		})
	}

	return group.Wait()
}

func (p *Pipeline) log() *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return slog.Default()
}
