package parser

import (
	"encoding/json"
	"fmt"
	"strconv"

	"MuralNotifier/internal/domain"
	"MuralNotifier/internal/normalize"
)

// DecodePublication turns one raw portal item into a typed Publication.
// The value is sanitized (diacritics stripped) before extraction, same
// treatment the record gets on the way to storage. A missing
// publication number is not a decode failure; ingestion skips those
// with its own report. Structural problems are errors.
func DecodePublication(raw map[string]any) (domain.Publication, error) {
	if raw == nil {
		return domain.Publication{}, fmt.Errorf("nil publication payload")
	}

	sanitized, ok := normalize.Value(raw).(map[string]any)
	if !ok {
		return domain.Publication{}, fmt.Errorf("publication payload is not an object")
	}

	pub := domain.Publication{
		ID:       asInt64(sanitized["id"]),
		Number:   asInt64(sanitized["numeroPublicacao"]),
		Date:     asString(sanitized["dataPublicacao"]),
		BodyText: asString(sanitized["textoPublicacao"]),
	}

	decision, hasDecision := sanitized["decisao"].(map[string]any)
	if hasDecision {
		rawDecision, err := json.Marshal(decision)
		if err != nil {
			return domain.Publication{}, fmt.Errorf("encode decision: %w", err)
		}
		pub.Decision = rawDecision
		pub.DecisionType = nestedString(decision, "tipoDecisao", "nome")
		pub.CourtAcronym = nestedString(decision, "usuario", "instancia", "tribunal", "sigla")
		pub.Parties = decodeParties(decision["partes"])
	}

	if source, ok := sanitized["fontePublicacao"].(map[string]any); ok {
		rawSource, err := json.Marshal(source)
		if err != nil {
			return domain.Publication{}, fmt.Errorf("encode source: %w", err)
		}
		pub.Source = rawSource
	}

	return pub, nil
}

// decodeParties tolerates missing or oddly shaped party lists; absent
// member fields stay nil so the store writes explicit NULLs.
func decodeParties(v any) []domain.Party {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	parties := make([]domain.Party, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		party := domain.Party{Name: optString(entry["nome"])}
		if lawyers, ok := entry["advogados"].([]any); ok {
			party.Lawyers = make([]domain.Lawyer, 0, len(lawyers))
			for _, rawLawyer := range lawyers {
				lawyer, ok := rawLawyer.(map[string]any)
				if !ok {
					continue
				}
				party.Lawyers = append(party.Lawyers, domain.Lawyer{
					Name:          optString(lawyer["nome"]),
					LicenseNumber: optString(lawyer["numero"]),
					StateAcronym:  nestedString(lawyer, "uf", "sigla"),
				})
			}
		}
		parties = append(parties, party)
	}
	return parties
}

func nestedString(m map[string]any, path ...string) *string {
	current := m
	for i, key := range path {
		if i == len(path)-1 {
			return optString(current[key])
		}
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch value := v.(type) {
	case float64:
		return int64(value)
	case int64:
		return value
	case json.Number:
		n, _ := value.Int64()
		return n
	case string:
		n, _ := strconv.ParseInt(value, 10, 64)
		return n
	default:
		return 0
	}
}
