package transport

import (
	"encoding/json"
	"testing"

	"github.com/fastygo/planner/domain"
)

func TestParseDate(t *testing.T) {
	for _, in := range []string{"2024-03-05", " 2024-03-05 ", "2024-03-05T22:30:00Z", "2024-03-05T01:00:00+09:00"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if s := *formatDate(&got); s != "2024-03-05" {
			t.Fatalf("%q: expected 2024-03-05, got %s", in, s)
		}
	}

	for _, in := range []string{"", "05/03/2024", "2024-13-01", "2024-02-30",
		"2024-01-01Tgarbage", "2024-01-01T25:00:00Z", "2024-01-01 extra"} {
		if _, err := ParseDate(in); !domain.IsDomainError(err, domain.ErrCodeInvalidDate) {
			t.Fatalf("%q: expected INVALID_DATE, got %v", in, err)
		}
	}
}

func TestNullableDateTriState(t *testing.T) {
	var absent UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"title":"x"}`), &absent); err != nil {
		t.Fatal(err)
	}
	if absent.Date.Set {
		t.Fatal("absent date must not be set")
	}

	var cleared UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"date":null}`), &cleared); err != nil {
		t.Fatal(err)
	}
	if p := cleared.Patch(); !p.DateSet || p.Date != nil {
		t.Fatalf("null date must clear: %+v", p)
	}

	var dated UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"date":"2024-03-09"}`), &dated); err != nil {
		t.Fatal(err)
	}
	if !dated.Date.Set || *formatDate(dated.Date.Value) != "2024-03-09" {
		t.Fatalf("unexpected date %+v", dated.Date)
	}

	var bad UpdateTaskRequest
	err := json.Unmarshal([]byte(`{"date":"tomorrow"}`), &bad)
	if !domain.IsDomainError(err, domain.ErrCodeInvalidDate) {
		t.Fatalf("expected INVALID_DATE, got %v", err)
	}
}
