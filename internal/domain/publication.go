package domain

import "encoding/json"

// Publication is a legal-decision record discovered on a court portal.
// Optional nested fields are pointers so readers can distinguish an
// absent value from an empty one; they are persisted as explicit NULLs.
type Publication struct {
	ID           int64
	Number       int64 // business identifier, dedup key
	Date         string
	BodyText     string
	CourtAcronym *string
	DecisionType *string
	Parties      []Party
	Decision     json.RawMessage
	Source       json.RawMessage
}

// Party is one litigant named in the decision, with its counsel.
type Party struct {
	Name    *string  `json:"name"`
	Lawyers []Lawyer `json:"lawyers"`
}

// Lawyer identifies a single attorney attached to a party.
type Lawyer struct {
	Name          *string `json:"name"`
	LicenseNumber *string `json:"licenseNumber"`
	StateAcronym  *string `json:"stateAcronym"`
}

// IngestOutcome reports how the store resolved a conditional insert.
type IngestOutcome int

const (
	// OutcomeInserted means the record was stored for the first time.
	OutcomeInserted IngestOutcome = iota
	// OutcomeAlreadyExists means the dedup key was already present; the
	// stored record is untouched.
	OutcomeAlreadyExists
	// OutcomeSkipped means the record carried no dedup key and was
	// never handed to the store.
	OutcomeSkipped
)

func (o IngestOutcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeAlreadyExists:
		return "already_exists"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ChangeEventKind tags an incoming store change notification.
type ChangeEventKind string

const (
	ChangeInsert ChangeEventKind = "insert"
	ChangeOther  ChangeEventKind = "other"
)

// ChangeEvent is one record-change notification. For inserts the Record
// carries the fields exactly as persisted, explicit absents included.
type ChangeEvent struct {
	Kind   ChangeEventKind
	Record Publication
}
