package patient

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_UnmarshalJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"1990-01-01"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Year() != 1990 || d.Month() != time.January || d.Day() != 1 {
		t.Errorf("unexpected date: %v", d.Time)
	}
}

func TestDate_UnmarshalJSON_Timestamp(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"1990-01-01T12:30:00Z"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Year() != 1990 || d.Month() != time.January || d.Day() != 1 {
		t.Errorf("unexpected date: %v", d.Time)
	}
}

func TestDate_UnmarshalJSON_Invalid(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"01/01/1990"`), &d); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}

func TestDate_MarshalJSON(t *testing.T) {
	d := NewDate(1990, time.January, 1)
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"1990-01-01"` {
		t.Errorf(`expected "1990-01-01", got %s`, out)
	}
}

func TestPatient_FullName(t *testing.T) {
	p := &Patient{FirstName: "Jane", LastName: "Doe"}
	if p.FullName() != "Jane Doe" {
		t.Errorf("expected 'Jane Doe', got %q", p.FullName())
	}
}
