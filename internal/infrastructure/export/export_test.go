package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []*domain.Referral {
	due := time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)
	note := "call back, \"urgent\"\nbefore noon"
	return []*domain.Referral{
		{
			ID: "r1", ClientName: "Acme, Inc.", ReferrerName: "Ravi",
			DateSubmitted: time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC),
			Status:        domain.StatusWorkInProgress, ExpectedCommission: 5000.5,
			ReminderDate: &due, ReminderNote: &note,
		},
		{
			ID: "r2", ClientName: "Globex", ReferrerName: "Anonymous",
			DateSubmitted: time.Date(2025, 1, 16, 8, 0, 0, 0, time.UTC),
			Status:        domain.StatusLeadReceived,
		},
	}
}

func TestCSV(t *testing.T) {
	data, err := CSV(sample())
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "ID,Client Name,Referrer,Date Submitted,Status,Expected Commission,Reminder Date,Reminder Note\n"))
	assert.Contains(t, text, `"Acme, Inc."`)
	assert.Contains(t, text, `"call back, ""urgent""`)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{
		"r1", "Acme, Inc.", "Ravi", "2025-01-15T12:00:00Z", "Work in Progress",
		"5000.5", "2025-02-01T09:30:00Z", "call back, \"urgent\"\nbefore noon",
	}, records[1])
	assert.Equal(t, []string{
		"r2", "Globex", "Anonymous", "2025-01-16T08:00:00Z", "Lead Received", "0", "", "",
	}, records[2])
}

func TestCSVEmpty(t *testing.T) {
	data, err := CSV(nil)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(Headers, ",")+"\n", string(data))
}

func TestXLSX(t *testing.T) {
	data, err := XLSX(sample())
	require.NoError(t, err)

	file, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "ID", file.GetCellValue(sheetName, "A1"))
	assert.Equal(t, "Reminder Note", file.GetCellValue(sheetName, "H1"))
	assert.Equal(t, "Acme, Inc.", file.GetCellValue(sheetName, "B2"))
	assert.Equal(t, "5000.5", file.GetCellValue(sheetName, "F2"))
	assert.Equal(t, "Globex", file.GetCellValue(sheetName, "B3"))
}

func TestFilename(t *testing.T) {
	now := time.Date(2025, 3, 9, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	assert.Equal(t, "referrals-export-2025-03-09.csv", Filename(now, "csv"))
	assert.Equal(t, "referrals-export-2025-03-09.xlsx", Filename(now.Add(time.Hour), "xlsx"))
}
