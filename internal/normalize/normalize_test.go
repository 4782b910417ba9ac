package normalize

import (
	"reflect"
	"testing"
)

func TestString(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"João da Silva":   "Joao da Silva",
		"Sentença":        "Sentenca",
		"ACÓRDÃO":         "ACORDAO",
		"plain ascii":     "plain ascii",
		"":                "",
		"décision finale": "decision finale",
	}

	for in, want := range cases {
		if got := String(in); got != want {
			t.Fatalf("String(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStringFixedPoint(t *testing.T) {
	t.Parallel()

	inputs := []string{"João", "Sentença", "Ação Rescisória", "já normalizado", "ascii"}
	for _, in := range inputs {
		once := String(in)
		if twice := String(once); twice != once {
			t.Fatalf("String is not a fixed point for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestFold(t *testing.T) {
	t.Parallel()

	if got := Fold("ACÓRDÃO"); got != "acordao" {
		t.Fatalf("Fold = %q, want acordao", got)
	}
}

func TestValueRecursion(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"decisão": map[string]any{
			"partes": []any{
				map[string]any{"nome": "José Araújo", "idade": float64(41)},
			},
		},
		"ok": true,
	}

	want := map[string]any{
		"decisao": map[string]any{
			"partes": []any{
				map[string]any{"nome": "Jose Araujo", "idade": float64(41)},
			},
		},
		"ok": true,
	}

	if got := Value(in); !reflect.DeepEqual(got, want) {
		t.Fatalf("Value mismatch:\n got %#v\nwant %#v", got, want)
	}
}

func TestValueScalarPassthrough(t *testing.T) {
	t.Parallel()

	if got := Value(float64(123)); got != float64(123) {
		t.Fatalf("numeric scalar changed: %v", got)
	}
	if got := Value(nil); got != nil {
		t.Fatalf("nil changed: %v", got)
	}
}
