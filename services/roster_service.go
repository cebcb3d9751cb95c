package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/officesports/matchday/models"
	"github.com/officesports/matchday/repositories"
	"github.com/officesports/matchday/storage"
)

// ColumnMapping maps participant fields to spreadsheet column headers, so
// callers can import workbooks with arbitrary layouts. emp_id, name, email
// and category are required; the rest are optional.
type ColumnMapping struct {
	EmpID        string `json:"emp_id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Category     string `json:"category"`
	Location     string `json:"location,omitempty"`
	SubLocation  string `json:"sub_location,omitempty"`
	Game         string `json:"game,omitempty"`
	Slot         string `json:"slot,omitempty"`
	PartnerEmpID string `json:"partner_emp_id,omitempty"`
	Gender       string `json:"gender,omitempty"`
}

// RowError is one failed import row; the batch continues past it.
type RowError struct {
	Row    int    `json:"row"`
	EmpID  string `json:"emp_id,omitempty"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	Imported            int        `json:"imported"`
	Skipped             int        `json:"skipped"`
	PlaceholderPartners int        `json:"placeholder_partners"`
	Errors              []RowError `json:"errors,omitempty"`
}

// ExportResult points at a produced workbook; URL is set when the workbook
// was uploaded to object storage.
type ExportResult struct {
	Filename string `json:"filename"`
	URL      string `json:"url,omitempty"`
	Rows     int    `json:"rows"`
}

type RosterService interface {
	Import(ctx context.Context, workbook io.Reader, mapping ColumnMapping, defaultGame string) (*ImportResult, error)
	ExportFixtures(ctx context.Context, category *string, upload bool) (*ExportResult, []byte, error)
	ExportParticipants(ctx context.Context, filter repositories.ParticipantFilter, upload bool) (*ExportResult, []byte, error)
}

type rosterService struct {
	participants ParticipantService
	fixtureRepo  repositories.FixtureRepository
	uploader     storage.FileUploader
	logger       *slog.Logger
}

func NewRosterService(
	participants ParticipantService,
	fixtureRepo repositories.FixtureRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) RosterService {
	return &rosterService{
		participants: participants,
		fixtureRepo:  fixtureRepo,
		uploader:     uploader,
		logger:       logger,
	}
}

// Import reads the first sheet of an xlsx workbook, resolves columns through
// the mapping, and creates participants row by row. Duplicate employee ids
// and invalid rows are reported and skipped without aborting the batch. For
// doubles rows with a declared partner a placeholder partner is created when
// the partner is not yet registered.
func (s *rosterService) Import(ctx context.Context, workbook io.Reader, mapping ColumnMapping, defaultGame string) (*ImportResult, error) {
	if mapping.EmpID == "" || mapping.Name == "" || mapping.Email == "" || mapping.Category == "" {
		return nil, fmt.Errorf("%w: column mapping must cover emp_id, name, email and category", ErrValidationFailed)
	}

	f, err := excelize.OpenReader(workbook)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read workbook: %v", ErrValidationFailed, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrValidationFailed)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: workbook has no data rows", ErrValidationFailed)
	}

	columns := headerIndex(rows[0])
	required := map[string]string{
		"emp_id": mapping.EmpID, "name": mapping.Name,
		"email": mapping.Email, "category": mapping.Category,
	}
	for field, header := range required {
		if _, ok := columns[strings.ToLower(header)]; !ok {
			return nil, fmt.Errorf("%w: mapped column %q for %s not found in header row", ErrValidationFailed, header, field)
		}
	}

	cell := func(row []string, header string) string {
		if header == "" {
			return ""
		}
		idx, ok := columns[strings.ToLower(header)]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	result := &ImportResult{}
	for i, row := range rows[1:] {
		rowNumber := i + 2 // 1-based, after the header

		input := CreateParticipantInput{
			EmpID:        cell(row, mapping.EmpID),
			Name:         cell(row, mapping.Name),
			Game:         defaultGame,
			Category:     cell(row, mapping.Category),
			Email:        optionalCell(cell(row, mapping.Email)),
			Location:     optionalCell(cell(row, mapping.Location)),
			SubLocation:  optionalCell(cell(row, mapping.SubLocation)),
			Slot:         optionalCell(cell(row, mapping.Slot)),
			PartnerEmpID: optionalCell(cell(row, mapping.PartnerEmpID)),
			Gender:       optionalCell(cell(row, mapping.Gender)),
		}
		if game := cell(row, mapping.Game); game != "" {
			input.Game = game
		}

		if _, err := s.participants.Create(ctx, input); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, RowError{
				Row:    rowNumber,
				EmpID:  input.EmpID,
				Reason: err.Error(),
			})
			continue
		}
		result.Imported++

		if input.PartnerEmpID != nil {
			created, err := s.participants.EnsurePartner(ctx, input)
			if err != nil {
				result.Errors = append(result.Errors, RowError{
					Row:    rowNumber,
					EmpID:  *input.PartnerEmpID,
					Reason: fmt.Sprintf("placeholder partner: %v", err),
				})
				continue
			}
			if created {
				result.PlaceholderPartners++
			}
		}
	}

	s.logger.Info("roster import finished",
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("placeholders", result.PlaceholderPartners),
	)
	return result, nil
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

func optionalCell(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

// ExportFixtures writes the fixture schedule to a workbook; with upload set
// the workbook is also pushed to object storage and its public URL returned.
func (s *rosterService) ExportFixtures(ctx context.Context, category *string, upload bool) (*ExportResult, []byte, error) {
	fixtures, err := s.fixtureRepo.List(ctx, category)
	if err != nil {
		return nil, nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"ID", "Category", "Round", "Time Slot", "Court", "Location", "Player/Team", "Status", "Emails Sent"}
	for i, h := range headers {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cellName, h)
	}

	for r, fixture := range fixtures {
		values := []interface{}{
			fixture.ID,
			fixture.Category,
			fixture.RoundNumber,
			fixture.TimeSlot,
			fixture.CourtNumber,
			deref(fixture.Location),
			fixtureSideLabel(fixture),
			string(fixture.Status),
			fixture.EmailsSent,
		}
		for c, v := range values {
			cellName, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cellName, v)
		}
	}

	return s.finishExport(ctx, f, "fixtures", len(fixtures), upload)
}

func (s *rosterService) ExportParticipants(ctx context.Context, filter repositories.ParticipantFilter, upload bool) (*ExportResult, []byte, error) {
	participants, err := s.participants.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"Emp ID", "Name", "Email", "Game", "Category", "Slot", "Partner Emp ID", "Present"}
	for i, h := range headers {
		cellName, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cellName, h)
	}
	for r, p := range participants {
		values := []interface{}{
			p.EmpID, p.Name, deref(p.Email), p.Game, p.Category,
			deref(p.Slot), deref(p.PartnerEmpID), p.Present,
		}
		for c, v := range values {
			cellName, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cellName, v)
		}
	}

	return s.finishExport(ctx, f, "participants", len(participants), upload)
}

func (s *rosterService) finishExport(ctx context.Context, f *excelize.File, kind string, rows int, upload bool) (*ExportResult, []byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, nil, fmt.Errorf("failed to serialize %s workbook: %w", kind, err)
	}

	result := &ExportResult{
		Filename: fmt.Sprintf("%s-%s.xlsx", kind, uuid.NewString()[:8]),
		Rows:     rows,
	}

	if upload {
		if s.uploader == nil {
			return nil, nil, errors.New("export upload requested but no uploader configured")
		}
		key := "exports/" + result.Filename
		uploaded, err := s.uploader.Upload(ctx, key,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to upload %s export: %w", kind, err)
		}
		result.URL = uploaded.Location
	}

	return result, buf.Bytes(), nil
}

func fixtureSideLabel(f *models.Fixture) string {
	if f.Player1Name != nil {
		return *f.Player1Name
	}
	if f.Team1Player1Name != nil {
		label := *f.Team1Player1Name
		if f.Team1Player2Name != nil {
			label += " / " + *f.Team1Player2Name
		}
		return label
	}
	return "TBD"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
