// Package pdfgen renders patient summaries and individual clinical notes to
// PDF. Renderers are pure: inputs in, bytes out, no I/O.
package pdfgen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// Patient carries the demographics printed in the document header.
type Patient struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string
	BloodType   string
	Phone       string
	Email       string
	Allergies   []Allergy
	Conditions  []string
}

type Allergy struct {
	Name     string
	Severity string
	Reaction string
}

// Record is one clinical note to render.
type Record struct {
	Title      string
	Type       string
	CreatedAt  time.Time
	Provider   string
	Subjective string
	Objective  string
	Assessment string
	Plan       string
	Vitals     map[string]float64
	Diagnoses  []string
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// RenderPatientSummary produces a summary PDF: demographics header followed
// by every supplied record, newest expected first.
func RenderPatientSummary(p Patient, records []Record) ([]byte, error) {
	doc := newDoc()
	writeTitle(doc, "Patient Summary")
	writeDemographics(doc, p)

	if len(records) == 0 {
		doc.SetFont("Helvetica", "I", 10)
		doc.CellFormat(0, 6, "No medical records on file.", "", 1, "L", false, 0, "")
	}
	for i, r := range records {
		if i > 0 {
			doc.Ln(2)
		}
		writeRecord(doc, r)
	}

	return output(doc)
}

// RenderMedicalRecord produces a single-note PDF with the owning patient's
// demographics on top.
func RenderMedicalRecord(p Patient, r Record) ([]byte, error) {
	doc := newDoc()
	writeTitle(doc, r.Title)
	writeDemographics(doc, p)
	writeRecord(doc, r)
	return output(doc)
}

func newDoc() *fpdf.Fpdf {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()
	return doc
}

func output(doc *fpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTitle(doc *fpdf.Fpdf, title string) {
	doc.SetFont("Helvetica", "B", 16)
	doc.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	doc.SetDrawColor(180, 180, 180)
	x, y := doc.GetX(), doc.GetY()
	doc.Line(x, y, 195, y)
	doc.Ln(3)
}

func writeDemographics(doc *fpdf.Fpdf, p Patient) {
	doc.SetFont("Helvetica", "B", 12)
	doc.CellFormat(0, 7, p.FullName(), "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	line := fmt.Sprintf("DOB: %s    Gender: %s", p.DateOfBirth.Format("2 Jan 2006"), p.Gender)
	if p.BloodType != "" {
		line += "    Blood type: " + p.BloodType
	}
	doc.CellFormat(0, 5, line, "", 1, "L", false, 0, "")

	if p.Phone != "" || p.Email != "" {
		contact := strings.TrimSpace(strings.Join(nonEmpty(p.Phone, p.Email), "    "))
		doc.CellFormat(0, 5, contact, "", 1, "L", false, 0, "")
	}

	if len(p.Allergies) > 0 {
		parts := make([]string, 0, len(p.Allergies))
		for _, a := range p.Allergies {
			s := a.Name
			if a.Severity != "" {
				s += " (" + a.Severity + ")"
			}
			parts = append(parts, s)
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.SetTextColor(180, 30, 30)
		doc.CellFormat(0, 5, "Allergies: "+strings.Join(parts, ", "), "", 1, "L", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	}

	if len(p.Conditions) > 0 {
		doc.SetFont("Helvetica", "", 10)
		doc.CellFormat(0, 5, "Conditions: "+strings.Join(p.Conditions, ", "), "", 1, "L", false, 0, "")
	}

	doc.Ln(4)
}

func writeRecord(doc *fpdf.Fpdf, r Record) {
	doc.SetFont("Helvetica", "B", 11)
	heading := r.Title
	if heading == "" {
		heading = strings.ReplaceAll(r.Type, "_", " ")
	}
	doc.CellFormat(0, 6, heading, "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 9)
	meta := r.CreatedAt.Format("2 Jan 2006 15:04")
	if r.Provider != "" {
		meta += "    " + r.Provider
	}
	doc.SetTextColor(110, 110, 110)
	doc.CellFormat(0, 5, meta, "", 1, "L", false, 0, "")
	doc.SetTextColor(0, 0, 0)

	writeSection(doc, "Subjective", r.Subjective)
	writeSection(doc, "Objective", r.Objective)
	writeSection(doc, "Assessment", r.Assessment)
	writeSection(doc, "Plan", r.Plan)

	if len(r.Vitals) > 0 {
		keys := make([]string, 0, len(r.Vitals))
		for k := range r.Vitals {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %g", k, r.Vitals[k]))
		}
		writeSection(doc, "Vitals", strings.Join(parts, "    "))
	}

	if len(r.Diagnoses) > 0 {
		writeSection(doc, "Diagnoses", strings.Join(r.Diagnoses, ", "))
	}
	doc.Ln(2)
}

func writeSection(doc *fpdf.Fpdf, label, body string) {
	if body == "" {
		return
	}
	doc.SetFont("Helvetica", "B", 10)
	doc.CellFormat(0, 5, label, "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, body, "", "L", false)
	doc.Ln(1)
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
