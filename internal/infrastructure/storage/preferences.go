package storage

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"MuralNotifier/internal/domain"
	"MuralNotifier/internal/ports"
	"MuralNotifier/pkg/apperrors"
)

const preferencePageSize = 100

// PreferenceRepository reads the subscriber-preference table with
// exhaustive keyset pagination on subscriber_id.
type PreferenceRepository struct {
	db       *sql.DB
	sb       sq.StatementBuilderType
	pageSize uint64
}

var _ ports.PreferenceRepository = (*PreferenceRepository)(nil)

// NewPreferenceRepository wires the repository onto a shared sql.DB.
func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{
		db:       db,
		sb:       sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		pageSize: preferencePageSize,
	}
}

// FetchAll pages through every subscriber. Any page failure aborts the
// whole fetch; an incomplete set would silently drop subscribers.
func (r *PreferenceRepository) FetchAll(ctx context.Context) ([]domain.SubscriberPreferences, error) {
	var all []domain.SubscriberPreferences

	token := ""
	for {
		page, next, err := r.scanPage(ctx, token)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodePagination, "preferences.fetch_all", "scan preference page")
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		token = next
	}
}

// scanPage returns one page ordered by subscriber_id plus the
// continuation token, empty when the table is exhausted.
func (r *PreferenceRepository) scanPage(ctx context.Context, token string) ([]domain.SubscriberPreferences, string, error) {
	query := r.sb.Select(
		"subscriber_id",
		"display_name",
		"keywords",
		"client_names",
		"lawyer_names",
		"decision_types",
		"contact_method",
		"phone_number",
		"email_address",
		"timezone",
	).
		From("subscriber_preferences").
		OrderBy("subscriber_id").
		Limit(r.pageSize)

	if token != "" {
		query = query.Where(sq.Gt{"subscriber_id": token})
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var page []domain.SubscriberPreferences
	for rows.Next() {
		prefs, err := scanPreferenceRow(rows)
		if err != nil {
			return nil, "", err
		}
		page = append(page, prefs)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	if uint64(len(page)) < r.pageSize {
		return page, "", nil
	}
	return page, page[len(page)-1].SubscriberID, nil
}

func scanPreferenceRow(rows *sql.Rows) (domain.SubscriberPreferences, error) {
	var (
		prefs         domain.SubscriberPreferences
		displayName   sql.NullString
		keywords      pq.StringArray
		clientNames   pq.StringArray
		lawyerNames   pq.StringArray
		decisionTypes pq.StringArray
		contactMethod string
		phoneNumber   sql.NullString
		emailAddress  sql.NullString
		timezone      sql.NullString
	)

	err := rows.Scan(
		&prefs.SubscriberID,
		&displayName,
		&keywords,
		&clientNames,
		&lawyerNames,
		&decisionTypes,
		&contactMethod,
		&phoneNumber,
		&emailAddress,
		&timezone,
	)
	if err != nil {
		return domain.SubscriberPreferences{}, err
	}

	prefs.DisplayName = fromNull(displayName)
	prefs.Keywords = keywords
	prefs.ClientNames = clientNames
	prefs.LawyerNames = lawyerNames
	prefs.DecisionTypes = decisionTypes
	prefs.ContactMethod = domain.ContactMethod(contactMethod)
	prefs.PhoneNumber = fromNull(phoneNumber)
	prefs.EmailAddress = fromNull(emailAddress)
	prefs.Timezone = fromNull(timezone)
	return prefs, nil
}

func fromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
