// Package dashboard aggregates the numbers shown on the practice home screen.
package dashboard

import (
	"context"
	"time"

	"github.com/docnotes/docnotes/internal/domain/appointment"
	"github.com/docnotes/docnotes/internal/domain/medicalrecord"
	"github.com/docnotes/docnotes/internal/domain/patient"
)

// scheduleLimit caps how much of today's schedule the dashboard shows.
const scheduleLimit = 10

type Stats struct {
	TotalPatients      int                        `json:"totalPatients"`
	TodaysAppointments int                        `json:"todaysAppointments"`
	RecordsThisWeek    int                        `json:"recordsThisWeek"`
	TodaysSchedule     []*appointment.Appointment `json:"todaysSchedule"`
}

type Service struct {
	patients     patient.Repository
	records      medicalrecord.Repository
	appointments appointment.Repository
	now          func() time.Time
}

func NewService(patients patient.Repository, records medicalrecord.Repository, appointments appointment.Repository) *Service {
	return &Service{patients: patients, records: records, appointments: appointments, now: time.Now}
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	totalPatients, err := s.patients.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	todays, err := s.appointments.CountBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	recordsThisWeek, err := s.records.CountSince(ctx, weekStart(now))
	if err != nil {
		return nil, err
	}
	schedule, err := s.appointments.ListBetween(ctx, dayStart, dayEnd, scheduleLimit)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		schedule = []*appointment.Appointment{}
	}

	return &Stats{
		TotalPatients:      totalPatients,
		TodaysAppointments: todays,
		RecordsThisWeek:    recordsThisWeek,
		TodaysSchedule:     schedule,
	}, nil
}

// weekStart returns midnight of the Monday of now's week.
func weekStart(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
