package domain

// ContactMethod selects the outbound notification channel.
type ContactMethod string

const (
	ContactSMS   ContactMethod = "sms"
	ContactEmail ContactMethod = "email"
)

// SubscriberPreferences is one subscriber's stored matching rules and
// contact data. Preference slices may be empty; an empty dimension
// imposes no constraint. All preference terms are stored lowercased.
type SubscriberPreferences struct {
	SubscriberID  string
	DisplayName   *string
	Keywords      []string
	ClientNames   []string
	LawyerNames   []string
	DecisionTypes []string
	ContactMethod ContactMethod
	PhoneNumber   *string
	EmailAddress  *string
	Timezone      *string
}

// Name returns the display name or a neutral placeholder.
func (s SubscriberPreferences) Name() string {
	if s.DisplayName != nil && *s.DisplayName != "" {
		return *s.DisplayName
	}
	return "Subscriber"
}

// MatchResult lists the matched-dimension descriptions for one
// (publication, subscriber) pair. Dimension evaluation order defines
// the display order; an empty list means no notification is due.
type MatchResult struct {
	MatchedFields []string
}

// Found reports whether the pair produced a dispatchable match.
func (m MatchResult) Found() bool {
	return len(m.MatchedFields) > 0
}

// DispatchStatus is the terminal state of one notification attempt.
type DispatchStatus string

const (
	DispatchSent    DispatchStatus = "sent"
	DispatchSkipped DispatchStatus = "skipped"
	DispatchFailed  DispatchStatus = "failed"
)

// DispatchResult captures the outcome of a single dispatch, including
// the skip reason or transport error when the message did not go out.
type DispatchResult struct {
	Status DispatchStatus
	Reason string
	Err    error
}

// NotificationRecord is the audit row written after each dispatch.
type NotificationRecord struct {
	SubscriberID      string
	PublicationNumber int64
	Channel           ContactMethod
	Status            DispatchStatus
	Detail            string
}
