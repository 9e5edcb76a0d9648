package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/terraincognita07/mindful/internal/logger"
	"github.com/terraincognita07/mindful/internal/models"
)

const (
	exportHistoryLimit   = 10
	csvBadgeSectionTitle = "BADGES EARNED"
)

var ExportCSVHeaders = []string{
	"Date",
	"Morning Completed",
	"Morning Intention",
	"Action Completed",
	"Evening Completed",
	"Reflection",
	"Rating",
	"Stars Earned",
	"Tip Title",
	"Quick Action",
}

var exportCSVBadgeHeaders = []string{"Badge Name", "Description", "Earned At"}

var (
	ErrExportLoadFailed   = errors.New("load export data failed")
	ErrExportRenderFailed = errors.New("render export failed")
	ErrExportHistory      = errors.New("load export history failed")
	ErrCSVHeaderMismatch  = errors.New("unexpected csv header")
	ErrCSVRowInvalid      = errors.New("invalid csv row")
)

type ExportEntryReader interface {
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyEntry, error)
}

type ExportBadgeReader interface {
	ListUserBadges(userID uint) ([]models.UserBadge, error)
}

type ExportRecordRepository interface {
	Create(record *models.DataExport) error
	ListRecentByUser(userID uint, limit int) ([]models.DataExport, error)
}

type ExportService struct {
	entries ExportEntryReader
	badges  ExportBadgeReader
	records ExportRecordRepository
	awards  DayBadgeEvaluator
}

type ExportDocument struct {
	Filename    string
	ContentType string
	Body        []byte
	Record      models.DataExport
	NewBadges   []models.Badge
}

type ExportSummary struct {
	TotalDays     int
	CompletedDays int
	TotalStars    int
	BadgeCount    int
	CurrentStreak int
	LongestStreak int
	AverageRating float64
}

// ExportCSVRow is one entry line of the CSV export.
type ExportCSVRow struct {
	Date             string
	MorningCompleted bool
	MorningIntention string
	ActionCompleted  models.ActionStatus
	EveningCompleted bool
	Reflection       string
	Rating           *int
	StarsEarned      int
	TipTitle         string
	QuickAction      string
}

func NewExportService(entries ExportEntryReader, badges ExportBadgeReader, records ExportRecordRepository, awards DayBadgeEvaluator) *ExportService {
	return &ExportService{
		entries: entries,
		badges:  badges,
		records: records,
		awards:  awards,
	}
}

func (service *ExportService) ExportCSV(user *models.User, from *time.Time, to *time.Time, now time.Time) (ExportDocument, error) {
	if err := RequireFeature(user, FeatureDataExport, now); err != nil {
		return ExportDocument{}, err
	}
	entries, awards, err := service.load(user.ID, from, to)
	if err != nil {
		return ExportDocument{}, err
	}

	var buffer bytes.Buffer
	if err := WriteCSVExport(&buffer, entries, awards); err != nil {
		return ExportDocument{}, fmt.Errorf("%w: %v", ErrExportRenderFailed, err)
	}

	return service.finish(user, models.ExportTypeCSV, from, to, len(entries), now, ExportDocument{
		Filename:    exportFilename(now, "csv"),
		ContentType: "text/csv; charset=utf-8",
		Body:        buffer.Bytes(),
	}), nil
}

func (service *ExportService) ExportPDF(user *models.User, from *time.Time, to *time.Time, now time.Time) (ExportDocument, error) {
	if err := RequireFeature(user, FeatureDataExport, now); err != nil {
		return ExportDocument{}, err
	}
	entries, awards, err := service.load(user.ID, from, to)
	if err != nil {
		return ExportDocument{}, err
	}

	var buffer bytes.Buffer
	if err := WritePDFExport(&buffer, user, entries, awards, now); err != nil {
		return ExportDocument{}, fmt.Errorf("%w: %v", ErrExportRenderFailed, err)
	}

	return service.finish(user, models.ExportTypePDF, from, to, len(entries), now, ExportDocument{
		Filename:    exportFilename(now, "pdf"),
		ContentType: "application/pdf",
		Body:        buffer.Bytes(),
	}), nil
}

func (service *ExportService) History(user *models.User) ([]models.DataExport, error) {
	records, err := service.records.ListRecentByUser(user.ID, exportHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportHistory, err)
	}
	return records, nil
}

func (service *ExportService) load(userID uint, from *time.Time, to *time.Time) ([]models.DailyEntry, []models.UserBadge, error) {
	var fromStart *time.Time
	var toEnd *time.Time
	if from != nil {
		start, _ := CalendarDayRange(*from)
		fromStart = &start
	}
	if to != nil {
		_, end := CalendarDayRange(*to)
		toEnd = &end
	}

	entries, err := service.entries.ListByUserRange(userID, fromStart, toEnd)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrExportLoadFailed, err)
	}
	awards, err := service.badges.ListUserBadges(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrExportLoadFailed, err)
	}
	return sortedEntries(entries, true), awards, nil
}

// finish records the export and runs a badge pass. A failed record insert
// does not withhold the rendered document.
func (service *ExportService) finish(user *models.User, exportType string, from *time.Time, to *time.Time, entryCount int, now time.Time, document ExportDocument) ExportDocument {
	record := models.DataExport{
		Token:          uuid.NewString(),
		UserID:         user.ID,
		ExportType:     exportType,
		DateRangeStart: from,
		DateRangeEnd:   to,
		EntryCount:     entryCount,
	}
	document.NewBadges = []models.Badge{}
	if err := service.records.Create(&record); err != nil {
		logger.Warn("record export failed", "user_id", user.ID, "type", exportType, "err", err)
		document.Record = record
		return document
	}
	document.Record = record

	if service.awards != nil {
		document.NewBadges = service.awards.Evaluate(user.ID, now)
	}
	return document
}

func exportFilename(now time.Time, extension string) string {
	return fmt.Sprintf("mindful-export-%s.%s", now.UTC().Format(calendarDateLayout), extension)
}

func BuildExportSummary(entries []models.DailyEntry, badgeCount int) ExportSummary {
	return ExportSummary{
		TotalDays:     len(entries),
		CompletedDays: TotalCompletions(entries),
		TotalStars:    TotalStars(entries),
		BadgeCount:    badgeCount,
		CurrentStreak: CurrentStreak(entries),
		LongestStreak: LongestStreak(entries),
		AverageRating: AverageRating(entries),
	}
}

func NewExportCSVRow(entry models.DailyEntry) ExportCSVRow {
	return ExportCSVRow{
		Date:             FormatCalendarDate(entry.EntryDate),
		MorningCompleted: entry.MorningCompleted,
		MorningIntention: entry.MorningIntention,
		ActionCompleted:  entry.ActionCompleted,
		EveningCompleted: entry.EveningCompleted,
		Reflection:       entry.ReflectionText,
		Rating:           entry.Rating,
		StarsEarned:      entry.StarsEarned,
		TipTitle:         entry.TipTitle,
		QuickAction:      entry.QuickActionText,
	}
}

func (row ExportCSVRow) Columns() []string {
	rating := ""
	if row.Rating != nil {
		rating = strconv.Itoa(*row.Rating)
	}
	return []string{
		row.Date,
		csvYesNo(row.MorningCompleted),
		row.MorningIntention,
		csvActionStatus(row.ActionCompleted),
		csvYesNo(row.EveningCompleted),
		row.Reflection,
		rating,
		strconv.Itoa(row.StarsEarned),
		row.TipTitle,
		row.QuickAction,
	}
}

// WriteCSVExport writes the entry table, a blank line and the badge section.
// Every field is quoted so spreadsheet tools never reinterpret free text.
func WriteCSVExport(writer io.Writer, entries []models.DailyEntry, awards []models.UserBadge) error {
	var builder strings.Builder
	builder.WriteString(strings.Join(ExportCSVHeaders, ","))
	builder.WriteString("\n")
	for _, entry := range entries {
		writeQuotedCSVLine(&builder, NewExportCSVRow(entry).Columns())
	}

	builder.WriteString("\n")
	builder.WriteString(csvBadgeSectionTitle)
	builder.WriteString("\n")
	builder.WriteString(strings.Join(exportCSVBadgeHeaders, ","))
	builder.WriteString("\n")
	for _, award := range awards {
		if award.Badge.ID == 0 && award.Badge.Name == "" {
			continue
		}
		writeQuotedCSVLine(&builder, []string{
			award.Badge.Name,
			award.Badge.Description,
			award.EarnedAt.UTC().Format(time.RFC3339),
		})
	}

	_, err := io.WriteString(writer, builder.String())
	return err
}

func writeQuotedCSVLine(builder *strings.Builder, fields []string) {
	for index, field := range fields {
		if index > 0 {
			builder.WriteByte(',')
		}
		builder.WriteByte('"')
		builder.WriteString(strings.ReplaceAll(field, `"`, `""`))
		builder.WriteByte('"')
	}
	builder.WriteByte('\n')
}

// ParseCSVEntries reads the entry section of a CSV export back into rows.
func ParseCSVEntries(reader io.Reader) ([]ExportCSVRow, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCSVHeaderMismatch, err)
	}
	if len(header) != len(ExportCSVHeaders) {
		return nil, ErrCSVHeaderMismatch
	}
	for index, name := range ExportCSVHeaders {
		if header[index] != name {
			return nil, ErrCSVHeaderMismatch
		}
	}

	rows := make([]ExportCSVRow, 0)
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCSVRowInvalid, err)
		}
		if len(record) == 1 && record[0] == csvBadgeSectionTitle {
			return rows, nil
		}
		row, err := parseCSVRow(record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

func parseCSVRow(record []string) (ExportCSVRow, error) {
	if len(record) != len(ExportCSVHeaders) {
		return ExportCSVRow{}, fmt.Errorf("%w: expected %d fields, got %d", ErrCSVRowInvalid, len(ExportCSVHeaders), len(record))
	}
	stars, err := strconv.Atoi(record[7])
	if err != nil {
		return ExportCSVRow{}, fmt.Errorf("%w: stars %q", ErrCSVRowInvalid, record[7])
	}

	row := ExportCSVRow{
		Date:             record[0],
		MorningCompleted: record[1] == "Yes",
		MorningIntention: record[2],
		ActionCompleted:  parseCSVActionStatus(record[3]),
		EveningCompleted: record[4] == "Yes",
		Reflection:       record[5],
		StarsEarned:      stars,
		TipTitle:         record[8],
		QuickAction:      record[9],
	}
	if record[6] != "" {
		rating, err := strconv.Atoi(record[6])
		if err != nil {
			return ExportCSVRow{}, fmt.Errorf("%w: rating %q", ErrCSVRowInvalid, record[6])
		}
		row.Rating = &rating
	}
	return row, nil
}

func csvYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

// csvActionStatus leaves the cell blank when no outcome was recorded.
func csvActionStatus(status models.ActionStatus) string {
	switch status {
	case models.ActionSucceeded:
		return "Yes"
	case models.ActionFailed:
		return "No"
	default:
		return ""
	}
}

func parseCSVActionStatus(value string) models.ActionStatus {
	switch value {
	case "Yes":
		return models.ActionSucceeded
	case "No":
		return models.ActionFailed
	default:
		return models.ActionUncommitted
	}
}

// WritePDFExport renders the summary block followed by one section per entry.
func WritePDFExport(writer io.Writer, user *models.User, entries []models.DailyEntry, awards []models.UserBadge, now time.Time) error {
	summary := BuildExportSummary(entries, len(awards))

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Mindful Money export", true)
	pdf.SetCreator("mindful", true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "Mindful Money Journal", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	name := strings.TrimSpace(user.DisplayName)
	if name == "" {
		name = user.Email
	}
	pdf.CellFormat(0, 6, translate(fmt.Sprintf("%s - exported %s", name, now.UTC().Format(calendarDateLayout))), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Summary", "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	summaryRows := [][2]string{
		{"Total days", strconv.Itoa(summary.TotalDays)},
		{"Completed days", strconv.Itoa(summary.CompletedDays)},
		{"Total stars", strconv.Itoa(summary.TotalStars)},
		{"Badges earned", strconv.Itoa(summary.BadgeCount)},
		{"Current streak", strconv.Itoa(summary.CurrentStreak)},
		{"Longest streak", strconv.Itoa(summary.LongestStreak)},
		{"Average rating", strconv.FormatFloat(summary.AverageRating, 'f', 1, 64)},
	}
	for _, row := range summaryRows {
		pdf.CellFormat(60, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	if len(awards) > 0 {
		pdf.SetFont("Helvetica", "B", 13)
		pdf.CellFormat(0, 8, "Badges", "B", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		sorted := make([]models.UserBadge, len(awards))
		copy(sorted, awards)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EarnedAt.Before(sorted[j].EarnedAt) })
		for _, award := range sorted {
			line := fmt.Sprintf("%s (%s): %s", award.Badge.Name, award.EarnedAt.UTC().Format(calendarDateLayout), award.Badge.Description)
			pdf.MultiCell(0, 6, translate(line), "", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "Entries", "B", 1, "L", false, 0, "")
	for _, entry := range entries {
		row := NewExportCSVRow(entry)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s  -  %d stars", row.Date, row.StarsEarned), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, detail := range pdfEntryDetails(row) {
			pdf.MultiCell(0, 5, translate(detail), "", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(writer)
}

func pdfEntryDetails(row ExportCSVRow) []string {
	details := make([]string, 0, 5)
	if row.MorningIntention != "" {
		details = append(details, "Intention: "+row.MorningIntention)
	}
	if row.QuickAction != "" {
		outcome := row.ActionCompleted.String()
		details = append(details, fmt.Sprintf("Action: %s (%s)", row.QuickAction, outcome))
	}
	if row.Reflection != "" {
		details = append(details, "Reflection: "+row.Reflection)
	}
	if row.Rating != nil {
		details = append(details, fmt.Sprintf("Rating: %d/5", *row.Rating))
	}
	if len(details) == 0 {
		details = append(details, "No notes recorded.")
	}
	return details
}
