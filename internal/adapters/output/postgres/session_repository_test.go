package postgres

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"claritas/internal/domain"

	"gorm.io/gorm/schema"
)

// TestSessionRowRoundTrip tests the mapping between the domain session and the table row
func TestSessionRowRoundTrip(t *testing.T) {
	session := domain.Session{
		ID:        "0d6f2b8e-6f5e-4a5a-9c1e-3f7d2b9a8c11",
		Date:      time.Date(2025, time.May, 3, 10, 0, 0, 0, time.UTC),
		TaskType:  domain.TaskTypeSentenceReading,
		Caregiver: "Rina",
		Patient:   "Budi",
		Scores:    domain.Scores{SpeechFluency: 70, LexicalScore: 71.5, CoherenceScore: 69},
		RiskBand:  domain.RiskBandGood,
		Summary:   "stable",
		Technical: json.RawMessage(`{"confidence":91}`),
	}

	got := newSessionRow(session).toDomain()

	if got.ID != session.ID || got.TaskType != session.TaskType || got.RiskBand != session.RiskBand {
		t.Errorf("expected identity fields to survive, got %+v", got)
	}
	if !got.Date.Equal(session.Date) {
		t.Errorf("expected date %v, got %v", session.Date, got.Date)
	}
	if got.Scores != session.Scores {
		t.Errorf("expected scores %+v, got %+v", session.Scores, got.Scores)
	}
	if string(got.Technical) != string(session.Technical) {
		t.Errorf("expected technical %s, got %s", session.Technical, got.Technical)
	}
}

// TestSessionRowWithoutTechnical tests that an absent technical payload stays absent
func TestSessionRowWithoutTechnical(t *testing.T) {
	row := newSessionRow(domain.Session{ID: "x"})
	if row.Technical != nil {
		t.Errorf("expected nil technical column, got %v", *row.Technical)
	}
	if got := row.toDomain(); got.Technical != nil {
		t.Errorf("expected nil technical payload, got %s", got.Technical)
	}
}

// TestSessionRowKeepsStoredPrecision tests a sub-microsecond date and formatted technical JSON
func TestSessionRowKeepsStoredPrecision(t *testing.T) {
	technical := json.RawMessage("{\"a\":1,  \"b\": [2, 3]}")
	session := domain.Session{
		ID:        "0d6f2b8e-6f5e-4a5a-9c1e-3f7d2b9a8c12",
		Date:      time.Date(2025, time.May, 3, 10, 0, 0, 123456789, time.UTC),
		TaskType:  domain.TaskTypePictureDescription,
		Technical: technical,
	}

	row := newSessionRow(session)
	if row.Date.Nanosecond()%1000 != 0 {
		t.Errorf("expected a microsecond date for timestamptz, got %v", row.Date)
	}
	got := row.toDomain()
	if string(got.Technical) != string(technical) {
		t.Errorf("expected technical bytes %s, got %s", technical, got.Technical)
	}
}

// TestSessionRowColumnTypes tests that technical is stored as text so its bytes are not reformatted
func TestSessionRowColumnTypes(t *testing.T) {
	s, err := schema.Parse(&sessionRow{}, &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	cases := map[string]string{
		"technical": "text",
		"date":      "timestamptz",
	}
	for column, want := range cases {
		field := s.LookUpField(column)
		if field == nil {
			t.Fatalf("expected column %s", column)
		}
		if got := field.TagSettings["TYPE"]; got != want {
			t.Errorf("expected %s column type %s, got %s", column, want, got)
		}
	}
	if s.Table != "assessment_sessions" {
		t.Errorf("expected table assessment_sessions, got %s", s.Table)
	}
}
