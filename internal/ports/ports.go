package ports

import (
	"context"
	"time"

	"MuralNotifier/internal/domain"
)

// PublicationSource pulls freshly published records from court portals.
// Malformed items are dropped with a logged reason, never surfaced.
type PublicationSource interface {
	FetchLatest(ctx context.Context) ([]domain.Publication, error)
}

// PublicationStore persists publications with at-most-once semantics
// per publication number. The insert must be a single conditional
// operation against the store, not a read-then-write.
type PublicationStore interface {
	PutIfAbsent(ctx context.Context, pub domain.Publication) (domain.IngestOutcome, error)
}

// PreferenceRepository returns the complete subscriber-preference set.
// Implementations paginate exhaustively; a paging failure is a hard
// error, never a silently truncated result.
type PreferenceRepository interface {
	FetchAll(ctx context.Context) ([]domain.SubscriberPreferences, error)
}

// SMSGateway delivers a plain-text message to a phone number.
type SMSGateway interface {
	SendSMS(ctx context.Context, phoneNumber, text string) error
}

// EmailGateway delivers a message with text and HTML bodies.
type EmailGateway interface {
	SendEmail(ctx context.Context, address, subject, textBody, htmlBody string) error
}

// NotificationLog records dispatch outcomes for audit. Best effort: a
// write failure is logged by the caller and never fails the dispatch.
type NotificationLog interface {
	Record(ctx context.Context, rec domain.NotificationRecord) error
}

// Dispatcher formats and sends one notification to one subscriber.
type Dispatcher interface {
	Dispatch(ctx context.Context, prefs domain.SubscriberPreferences, pub domain.Publication, matchedFields []string) domain.DispatchResult
}

// Scheduler controls when sweeps execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
