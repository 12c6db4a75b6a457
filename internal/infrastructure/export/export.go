// Package export renders referral snapshots as CSV or XLSX downloads.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

var Headers = []string{
	"ID", "Client Name", "Referrer", "Date Submitted", "Status",
	"Expected Commission", "Reminder Date", "Reminder Note",
}

const sheetName = "Referrals"

// Filename returns referrals-export-YYYY-MM-DD.<ext> for the UTC date of now.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("referrals-export-%s.%s", now.UTC().Format("2006-01-02"), ext)
}

func row(r *domain.Referral) []string {
	reminderDate, reminderNote := "", ""
	if r.ReminderDate != nil {
		reminderDate = r.ReminderDate.Format(time.RFC3339)
	}
	if r.ReminderNote != nil {
		reminderNote = *r.ReminderNote
	}
	return []string{
		r.ID,
		r.ClientName,
		r.ReferrerName,
		r.DateSubmitted.Format(time.RFC3339),
		string(r.Status),
		strconv.FormatFloat(r.ExpectedCommission, 'f', -1, 64),
		reminderDate,
		reminderNote,
	}
}

// CSV quotes fields containing commas, quotes or newlines.
func CSV(referrals []*domain.Referral) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Headers); err != nil {
		return nil, err
	}
	for _, r := range referrals {
		if err := w.Write(row(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX writes one sheet; commission stays numeric so spreadsheets can sum it.
func XLSX(referrals []*domain.Referral) ([]byte, error) {
	file := excelize.NewFile()
	file.SetSheetName("Sheet1", sheetName)

	for i, h := range Headers {
		file.SetCellValue(sheetName, axis(i, 1), h)
	}
	for i, r := range referrals {
		values := row(r)
		rowNum := i + 2
		for col, v := range values {
			if col == 5 {
				file.SetCellValue(sheetName, axis(col, rowNum), r.ExpectedCommission)
				continue
			}
			file.SetCellValue(sheetName, axis(col, rowNum), v)
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// axis converts a zero-based column and a row number into "A1" notation; eight columns never pass Z.
func axis(col, row int) string {
	return fmt.Sprintf("%c%d", 'A'+col, row)
}
