// Package storage persists publications, subscriber preferences and
// the notification audit log in Postgres.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"MuralNotifier/internal/domain"
	"MuralNotifier/internal/ports"
	"MuralNotifier/pkg/apperrors"
)

// uniqueViolation is the Postgres error code for duplicate keys.
const uniqueViolation = "23505"

// Postgres implements the store-side ports on a shared *sql.DB.
type Postgres struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.PublicationStore = (*Postgres)(nil)
var _ ports.NotificationLog = (*Postgres)(nil)

// NewPostgres wires a sql.DB implementation.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// PutIfAbsent inserts the publication unless its number already exists.
// The condition rides on the unique index, one statement, so two
// near-simultaneous ingestions of the same number resolve to exactly
// one OutcomeInserted.
func (p *Postgres) PutIfAbsent(ctx context.Context, pub domain.Publication) (domain.IngestOutcome, error) {
	if pub.Number <= 0 {
		return domain.OutcomeSkipped, apperrors.New(apperrors.CodeValidation, "store.put", "publication number is missing")
	}

	parties, err := json.Marshal(pub.Parties)
	if err != nil {
		return domain.OutcomeSkipped, apperrors.Wrap(err, apperrors.CodeStore, "store.put", "encode parties")
	}

	query := p.sb.Insert("publications").
		Columns(
			"external_id",
			"publication_number",
			"publication_date",
			"body_text",
			"court_acronym",
			"decision_type",
			"parties",
			"decision",
			"source",
		).
		Values(
			pub.ID,
			pub.Number,
			pub.Date,
			pub.BodyText,
			nullable(pub.CourtAcronym),
			nullable(pub.DecisionType),
			parties,
			rawOrNull(pub.Decision),
			rawOrNull(pub.Source),
		).
		Suffix("ON CONFLICT (publication_number) DO NOTHING")

	res, err := query.RunWith(p.db).ExecContext(ctx)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return domain.OutcomeAlreadyExists, nil
		}
		return domain.OutcomeSkipped, apperrors.Wrap(err, apperrors.CodeStore, "store.put", fmt.Sprintf("insert publication %d", pub.Number))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.OutcomeSkipped, apperrors.Wrap(err, apperrors.CodeStore, "store.put", "rows affected")
	}
	if affected == 0 {
		return domain.OutcomeAlreadyExists, nil
	}
	return domain.OutcomeInserted, nil
}

// Record appends one dispatch outcome to the notification log.
func (p *Postgres) Record(ctx context.Context, rec domain.NotificationRecord) error {
	query := p.sb.Insert("notification_log").
		Columns("subscriber_id", "publication_number", "channel", "status", "detail").
		Values(rec.SubscriberID, rec.PublicationNumber, string(rec.Channel), string(rec.Status), rec.Detail)

	if _, err := query.RunWith(p.db).ExecContext(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.CodeStore, "store.record", "insert notification record")
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func rawOrNull(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
