package services

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/SAP-F-2025/form-service/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	AnonymousLabel     = "Anónimo"
	ExportTimeLayout   = "2006-01-02 15:04:05"
	ChoiceSeparator    = ", "
	exportSheetName    = "Respuestas"
	exportFileSuffix   = "_respuestas"
	defaultExportTitle = "formulario"
)

// ExportTable is the flattened form/response grid shared by the CSV and Excel writers.
type ExportTable struct {
	Headers []string
	Rows    [][]string
}

// BuildExportTable flattens responses into identity columns followed by one column per
// question in order. Missing answers become empty cells.
func BuildExportTable(form *models.Form, responses []models.Response) *ExportTable {
	questions := make([]*models.Question, len(form.Questions))
	for i := range form.Questions {
		questions[i] = &form.Questions[i]
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].OrderIndex < questions[j].OrderIndex })

	headers := []string{"ID", "Fecha", "Encuestado", "Email"}
	for _, q := range questions {
		headers = append(headers, q.QuestionText)
	}

	rows := make([][]string, 0, len(responses))
	for i := range responses {
		r := &responses[i]
		row := make([]string, 0, len(headers))
		row = append(row,
			strconv.FormatUint(uint64(r.ID), 10),
			r.SubmittedAt.UTC().Format(ExportTimeLayout),
			RespondentLabel(r),
			respondentEmail(r),
		)
		for _, q := range questions {
			if answer, ok := r.AnswerFor(q.ID); ok {
				row = append(row, DisplayAnswer(q, answer))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	return &ExportTable{Headers: headers, Rows: rows}
}

// RespondentLabel is the anonymous marker, the respondent's name, or their email.
func RespondentLabel(r *models.Response) string {
	if r.IsAnonymous {
		return AnonymousLabel
	}
	if r.RespondentName != nil && strings.TrimSpace(*r.RespondentName) != "" {
		return *r.RespondentName
	}
	return respondentEmail(r)
}

func respondentEmail(r *models.Response) string {
	if r.IsAnonymous || r.RespondentEmail == nil {
		return ""
	}
	return *r.RespondentEmail
}

// DisplayAnswer renders an answer as a single cell. The payload matching the question's
// current type wins; answers recorded under an older type fall back to any stored payload.
func DisplayAnswer(q *models.Question, a *models.Answer) string {
	if s, ok := renderPayload(a, q.Requirements().Payload); ok {
		return s
	}
	for _, field := range []models.PayloadField{models.PayloadText, models.PayloadNumber, models.PayloadBoolean, models.PayloadOptions} {
		if s, ok := renderPayload(a, field); ok {
			return s
		}
	}
	return ""
}

func renderPayload(a *models.Answer, field models.PayloadField) (string, bool) {
	if !a.HasPayload(field) {
		return "", false
	}
	switch field {
	case models.PayloadText:
		return *a.TextAnswer, true
	case models.PayloadNumber:
		return strconv.FormatFloat(*a.NumberAnswer, 'f', -1, 64), true
	case models.PayloadBoolean:
		return strconv.FormatBool(*a.BooleanAnswer), true
	case models.PayloadOptions:
		return strings.Join(a.SelectedOptions, ChoiceSeparator), true
	}
	return "", false
}

// ===== WRITERS =====

// WriteCSV writes the table with every field quoted and embedded quotes doubled.
func WriteCSV(w io.Writer, table *ExportTable) error {
	bw := bufio.NewWriter(w)

	if err := writeQuotedRecord(bw, table.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range table.Rows {
		if err := writeQuotedRecord(bw, row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}
	return nil
}

func writeQuotedRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\r\n")
	return err
}

// WriteExcel renders the table into a single-sheet workbook.
func WriteExcel(table *ExportTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := setExcelRow(f, 1, table.Headers); err != nil {
		return nil, err
	}
	if len(table.Headers) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(table.Headers), 1)
		if err := f.SetCellStyle(exportSheetName, "A1", last, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, row := range table.Rows {
		if err := setExcelRow(f, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func setExcelRow(f *excelize.File, rowNumber int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to write Excel row %d: %w", rowNumber, err)
	}
	return nil
}

// ExportFileName builds "<title>_respuestas.<ext>" with path and whitespace characters replaced.
func ExportFileName(title, ext string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.TrimSpace(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '.':
			b.WriteRune(r)
			lastUnderscore = false
		case !lastUnderscore:
			b.WriteRune('_')
			lastUnderscore = true
		}
	}

	name := strings.Trim(b.String(), "_.")
	if name == "" {
		name = defaultExportTitle
	}
	return name + exportFileSuffix + "." + ext
}

// CSVBytes is a convenience for callers that need the whole file in memory.
func CSVBytes(table *ExportTable) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
