package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/xuri/excelize/v2"
)

const attendanceSheet = "Attendance"

var attendanceHeaders = []string{"Date", "Check In", "Check Out", "Status"}

// AttendanceExport is a rendered .xlsx workbook.
type AttendanceExport struct {
	FileName string
	Data     []byte
}

// Export renders the month's history as a workbook, one row per day.
func (s *AttendanceService) Export(ctx context.Context, p *models.Principal, receptionistID uint, monthStr, yearStr string) (*AttendanceExport, error) {
	entries, err := s.History(ctx, p, receptionistID, monthStr, yearStr, "")
	if err != nil {
		return nil, err
	}
	rec, err := s.receptionistOf(ctx, p, receptionistID)
	if err != nil {
		return nil, err
	}
	month, year, err := s.parseMonthYear(monthStr, yearStr)
	if err != nil {
		return nil, err
	}

	data, err := renderAttendance(rec, entries)
	if err != nil {
		return nil, fmt.Errorf("render attendance workbook: %w", err)
	}
	return &AttendanceExport{
		FileName: fmt.Sprintf("attendance-%s-%04d-%02d.xlsx", rec.Code, year, int(month)),
		Data:     data,
	}, nil
}

func renderAttendance(rec *models.Receptionist, entries []AttendanceEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(attendanceSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellValue(attendanceSheet, "A1", fmt.Sprintf("%s (%s)", rec.Name, rec.Code)); err != nil {
		return nil, err
	}
	for col, header := range attendanceHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(attendanceSheet, cell, header); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(attendanceSheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(attendanceSheet, "A", "D", 22); err != nil {
		return nil, err
	}

	for i, e := range entries {
		row := i + 3
		for col, value := range []string{e.Date, e.CheckInTime, e.CheckOutTime, e.Status} {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(attendanceSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	if err := f.SetPanes(attendanceSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      2,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
