package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harentsoaR/clinic-api/internal/apperr"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

const (
	AttendanceOnTime = "On Time"
	AttendanceLate   = "Late"
	AttendanceLeave  = "Leave"

	noTime         = "00:00:00"
	timestampStyle = "2006-01-02 15:04:05"
	clockStyle     = "15:04:05"
)

// AttendanceEntry is one reconstructed day of a receptionist's month.
type AttendanceEntry struct {
	Date         string `json:"date"`
	CheckInTime  string `json:"checkInTime"`
	CheckOutTime string `json:"checkOutTime"`
	Status       string `json:"status"`
}

type AttendanceStats struct {
	TotalAttendance int                  `json:"totalAttendance"`
	AvgCheckInTime  *string              `json:"avgCheckInTime"`
	AvgCheckOutTime *string              `json:"avgCheckOutTime"`
	Receptionist    *models.Receptionist `json:"receptionist"`
}

type AttendanceService struct {
	*base
}

func (s *AttendanceService) CheckIn(ctx context.Context, p *models.Principal) (*models.Attendance, error) {
	if err := requireReceptionist(p); err != nil {
		return nil, err
	}
	now := s.clock()
	_, err := s.store.Attendance().GetForDay(ctx, p.ID, now)
	switch {
	case err == nil:
		return nil, apperr.Conflict("Already checked in today")
	case !errors.Is(err, store.ErrNotFound):
		return nil, fromStore(err, "Attendance")
	}

	att := &models.Attendance{
		ReceptionistID: p.ID,
		Date:           startOfDay(now),
		CheckInTime:    now,
	}
	if err := s.store.Attendance().Create(ctx, att); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict("Already checked in today")
		}
		return nil, fromStore(err, "Attendance")
	}
	return att, nil
}

func (s *AttendanceService) CheckOut(ctx context.Context, p *models.Principal) (*models.Attendance, error) {
	if err := requireReceptionist(p); err != nil {
		return nil, err
	}
	now := s.clock()
	att, err := s.store.Attendance().GetForDay(ctx, p.ID, now)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("Check-in not found for today")
	}
	if err != nil {
		return nil, fromStore(err, "Attendance")
	}
	if att.CheckOutTime != nil {
		return nil, apperr.Conflict("Already checked out today")
	}
	att.CheckOutTime = &now
	if err := s.store.Attendance().Save(ctx, att); err != nil {
		return nil, fromStore(err, "Attendance")
	}
	return att, nil
}

// receptionistOf loads a receptionist of the caller's clinic.
func (s *AttendanceService) receptionistOf(ctx context.Context, p *models.Principal, id uint) (*models.Receptionist, error) {
	rec, err := s.store.Receptionists().Get(ctx, id)
	if err != nil {
		return nil, fromStore(err, "Receptionist")
	}
	if rec.DoctorID != p.TenantID {
		return nil, apperr.NotFound("Receptionist not found")
	}
	return rec, nil
}

// History rebuilds every day of the month up to yesterday, latest first.
// Days without a check-in become "Leave". statusFilter matches the status
// case-insensitively.
func (s *AttendanceService) History(ctx context.Context, p *models.Principal, receptionistID uint, monthStr, yearStr, statusFilter string) ([]AttendanceEntry, error) {
	if err := requireDoctor(p); err != nil {
		return nil, err
	}
	if _, err := s.receptionistOf(ctx, p, receptionistID); err != nil {
		return nil, err
	}
	month, year, err := s.parseMonthYear(monthStr, yearStr)
	if err != nil {
		return nil, err
	}
	doctor, err := s.tenantDoctor(ctx, p.TenantID)
	if err != nil {
		return nil, err
	}

	rng, ok := s.historyRange(year, month)
	if !ok {
		return []AttendanceEntry{}, nil
	}
	records, err := s.store.Attendance().ListCheckIns(ctx, receptionistID, rng)
	if err != nil {
		return nil, fromStore(err, "Attendance")
	}

	entries := Reconstruct(rng, records, doctor.ExpectedCheckIn(), s.loc)
	if statusFilter = strings.TrimSpace(statusFilter); statusFilter != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if strings.EqualFold(e.Status, statusFilter) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	return entries, nil
}

// historyRange clips the month so it ends yesterday at the latest. ok is
// false when nothing of the month has elapsed yet.
func (s *AttendanceService) historyRange(year int, month time.Month) (store.DayRange, bool) {
	rng := monthOf(year, month, s.loc)
	today := startOfDay(s.clock())
	if !rng.To.Before(today) {
		rng.To = today.Add(-time.Millisecond)
	}
	return rng, !rng.To.Before(rng.From)
}

// Reconstruct builds one entry per calendar day of rng, newest first.
func Reconstruct(rng store.DayRange, records []models.Attendance, expectedCheckIn string, loc *time.Location) []AttendanceEntry {
	byDay := make(map[string]models.Attendance, len(records))
	for _, r := range records {
		byDay[r.CheckInTime.In(loc).Format(models.DateLayout)] = r
	}
	expected := normalizeClock(expectedCheckIn)

	var entries []AttendanceEntry
	for day := startOfDay(rng.From.In(loc)); !day.After(rng.To); day = day.AddDate(0, 0, 1) {
		key := day.Format(models.DateLayout)
		rec, ok := byDay[key]
		if !ok {
			entries = append(entries, AttendanceEntry{
				Date:         key,
				CheckInTime:  noTime,
				CheckOutTime: noTime,
				Status:       AttendanceLeave,
			})
			continue
		}
		checkIn := rec.CheckInTime.In(loc)
		entry := AttendanceEntry{
			Date:         key,
			CheckInTime:  checkIn.Format(timestampStyle),
			CheckOutTime: noTime,
			Status:       AttendanceOnTime,
		}
		if rec.CheckOutTime != nil {
			entry.CheckOutTime = rec.CheckOutTime.In(loc).Format(timestampStyle)
		}
		if threshold, err := time.ParseInLocation(timestampStyle, key+" "+expected, loc); err == nil && checkIn.After(threshold) {
			entry.Status = AttendanceLate
		}
		entries = append(entries, entry)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if entries == nil {
		entries = []AttendanceEntry{}
	}
	return entries
}

// normalizeClock turns "9:00" or "09:00" into "09:00:00".
func normalizeClock(v string) string {
	v = strings.TrimSpace(v)
	for _, layout := range []string{clockStyle, "15:04", "3:04", "15:4"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(clockStyle)
		}
	}
	return models.DefaultCheckInTime
}

// Stats is available to the clinic's doctor and to the receptionist
// themselves.
func (s *AttendanceService) Stats(ctx context.Context, p *models.Principal, receptionistID uint) (*AttendanceStats, error) {
	if err := requirePrincipal(p); err != nil {
		return nil, err
	}
	if p.IsReceptionist() && p.ID != receptionistID {
		return nil, apperr.Unauthorized("Receptionists can only view their own attendance")
	}
	rec, err := s.receptionistOf(ctx, p, receptionistID)
	if err != nil {
		return nil, err
	}
	records, err := s.store.Attendance().ListAll(ctx, receptionistID)
	if err != nil {
		return nil, fromStore(err, "Attendance")
	}

	stats := &AttendanceStats{TotalAttendance: len(records), Receptionist: rec}
	var inSum, outSum time.Duration
	var outCount int
	for _, r := range records {
		inSum += sinceMidnight(r.CheckInTime.In(s.loc))
		if r.CheckOutTime != nil {
			outSum += sinceMidnight(r.CheckOutTime.In(s.loc))
			outCount++
		}
	}
	if len(records) > 0 {
		v := formatClock(inSum / time.Duration(len(records)))
		stats.AvgCheckInTime = &v
	}
	if outCount > 0 {
		v := formatClock(outSum / time.Duration(outCount))
		stats.AvgCheckOutTime = &v
	}
	return stats, nil
}

func sinceMidnight(t time.Time) time.Duration {
	return t.Sub(startOfDay(t))
}

func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}
