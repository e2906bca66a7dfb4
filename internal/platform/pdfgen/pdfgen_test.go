package pdfgen

import (
	"bytes"
	"testing"
	"time"
)

func samplePatient() Patient {
	return Patient{
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Gender:      "female",
		BloodType:   "O+",
		Phone:       "555-0100",
		Email:       "jane@example.com",
		Allergies:   []Allergy{{Name: "Penicillin", Severity: "severe", Reaction: "anaphylaxis"}},
		Conditions:  []string{"Asthma"},
	}
}

func sampleRecord() Record {
	return Record{
		Title:      "Annual checkup",
		Type:       "visit_note",
		CreatedAt:  time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		Provider:   "Dr. Smith",
		Subjective: "Patient reports feeling well.",
		Objective:  "BP normal, lungs clear.",
		Assessment: "Healthy adult.",
		Plan:       "Continue current management.",
		Vitals:     map[string]float64{"heartRate": 68, "temperature": 36.6},
		Diagnoses:  []string{"Z00.0"},
	}
}

func assertPDF(t *testing.T, data []byte) {
	t.Helper()
	if len(data) == 0 {
		t.Fatal("expected non-empty PDF output")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("expected PDF magic header, got %q", data[:8])
	}
}

func TestRenderPatientSummary(t *testing.T) {
	data, err := RenderPatientSummary(samplePatient(), []Record{sampleRecord(), sampleRecord()})
	if err != nil {
		t.Fatalf("RenderPatientSummary: %v", err)
	}
	assertPDF(t, data)
}

func TestRenderPatientSummary_NoRecords(t *testing.T) {
	data, err := RenderPatientSummary(samplePatient(), nil)
	if err != nil {
		t.Fatalf("RenderPatientSummary: %v", err)
	}
	assertPDF(t, data)
}

func TestRenderMedicalRecord(t *testing.T) {
	data, err := RenderMedicalRecord(samplePatient(), sampleRecord())
	if err != nil {
		t.Fatalf("RenderMedicalRecord: %v", err)
	}
	assertPDF(t, data)
}

func TestRenderMedicalRecord_SparseFields(t *testing.T) {
	r := Record{Type: "lab_result", CreatedAt: time.Now()}
	data, err := RenderMedicalRecord(samplePatient(), r)
	if err != nil {
		t.Fatalf("RenderMedicalRecord: %v", err)
	}
	assertPDF(t, data)
}

func TestFullName(t *testing.T) {
	p := Patient{FirstName: "Jane", LastName: "Doe"}
	if got := p.FullName(); got != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got %q", got)
	}
}
