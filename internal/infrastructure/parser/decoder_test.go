package parser

import (
	"encoding/json"
	"testing"
)

func rawItem(t *testing.T, payload string) map[string]any {
	t.Helper()
	var item map[string]any
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("unmarshal fixture: %v", err)
	}
	return item
}

func TestDecodePublication(t *testing.T) {
	t.Parallel()

	item := rawItem(t, `{
		"id": 77,
		"numeroPublicacao": 123,
		"dataPublicacao": "2026-08-30",
		"textoPublicacao": "Processo julgado: sentença publicada",
		"decisao": {
			"tipoDecisao": {"nome": "Sentença"},
			"usuario": {"instancia": {"tribunal": {"sigla": "TSE"}}},
			"partes": [
				{
					"nome": "João Silva Neto",
					"advogados": [
						{"nome": "Maria Antônia", "numero": "12345", "uf": {"sigla": "SP"}}
					]
				},
				{"nome": "Empresa Ré"}
			]
		},
		"fontePublicacao": {"diario": "DJE", "página": 4}
	}`)

	pub, err := DecodePublication(item)
	if err != nil {
		t.Fatalf("DecodePublication error: %v", err)
	}

	if pub.ID != 77 || pub.Number != 123 {
		t.Fatalf("unexpected identifiers: id=%d number=%d", pub.ID, pub.Number)
	}
	if pub.BodyText != "Processo julgado: sentenca publicada" {
		t.Fatalf("body not sanitized: %q", pub.BodyText)
	}
	if pub.DecisionType == nil || *pub.DecisionType != "Sentenca" {
		t.Fatalf("decision type = %v", pub.DecisionType)
	}
	if pub.CourtAcronym == nil || *pub.CourtAcronym != "TSE" {
		t.Fatalf("court acronym = %v", pub.CourtAcronym)
	}

	if len(pub.Parties) != 2 {
		t.Fatalf("expected 2 parties, got %d", len(pub.Parties))
	}
	first := pub.Parties[0]
	if first.Name == nil || *first.Name != "Joao Silva Neto" {
		t.Fatalf("party name = %v", first.Name)
	}
	if len(first.Lawyers) != 1 {
		t.Fatalf("expected 1 lawyer, got %d", len(first.Lawyers))
	}
	lawyer := first.Lawyers[0]
	if lawyer.Name == nil || *lawyer.Name != "Maria Antonia" {
		t.Fatalf("lawyer name = %v", lawyer.Name)
	}
	if lawyer.LicenseNumber == nil || *lawyer.LicenseNumber != "12345" {
		t.Fatalf("license = %v", lawyer.LicenseNumber)
	}
	if lawyer.StateAcronym == nil || *lawyer.StateAcronym != "SP" {
		t.Fatalf("state = %v", lawyer.StateAcronym)
	}

	// Second party has no lawyers; the list stays empty, not invented.
	if len(pub.Parties[1].Lawyers) != 0 {
		t.Fatalf("unexpected lawyers: %v", pub.Parties[1].Lawyers)
	}

	if len(pub.Decision) == 0 || len(pub.Source) == 0 {
		t.Fatal("raw decision/source payloads must be preserved")
	}
}

func TestDecodePublicationAbsentFields(t *testing.T) {
	t.Parallel()

	item := rawItem(t, `{
		"id": 5,
		"numeroPublicacao": 9,
		"textoPublicacao": "despacho",
		"decisao": {"partes": [{"advogados": [{"numero": "1"}]}]}
	}`)

	pub, err := DecodePublication(item)
	if err != nil {
		t.Fatalf("DecodePublication error: %v", err)
	}

	if pub.DecisionType != nil || pub.CourtAcronym != nil {
		t.Fatal("absent nested fields must decode to nil")
	}
	if pub.Parties[0].Name != nil {
		t.Fatal("absent party name must stay nil")
	}
	lawyer := pub.Parties[0].Lawyers[0]
	if lawyer.Name != nil || lawyer.StateAcronym != nil {
		t.Fatal("absent lawyer fields must stay nil")
	}
	if lawyer.LicenseNumber == nil || *lawyer.LicenseNumber != "1" {
		t.Fatalf("license = %v", lawyer.LicenseNumber)
	}
}

func TestDecodePublicationMissingNumber(t *testing.T) {
	t.Parallel()

	item := rawItem(t, `{"id": 5, "textoPublicacao": "sem identificador"}`)

	pub, err := DecodePublication(item)
	if err != nil {
		t.Fatalf("missing number is not a decode failure: %v", err)
	}
	if pub.Number != 0 {
		t.Fatalf("number = %d, want 0", pub.Number)
	}
}

func TestDecodePublicationNil(t *testing.T) {
	t.Parallel()

	if _, err := DecodePublication(nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
}
