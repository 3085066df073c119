package sheetsclient

import (
	"fmt"
	"time"

	"google.golang.org/api/sheets/v4"
)

// ScheduleRow is a single shift in a published schedule
type ScheduleRow struct {
	ShiftID   string
	Date      string // "2006-01-02"
	StartTime string
	EndTime   string
	Site      string
	Guard     string // guard name, empty when unassigned
	Status    string
}

// PublishedSchedule is every shift dated From..To inclusive
type PublishedSchedule struct {
	From string
	To   string
	Rows []ScheduleRow
}

var scheduleHeader = []interface{}{"Shift", "Date", "Start", "End", "Site", "Guard", "Status", "Notes"}

const notesColumn = 7

// PublishSchedule writes the schedule to a tab titled after its date range, e.g.
// "Mon Jun 17 2024 - Sun Jun 23 2024". A new tab is created when none exists. An existing
// tab is rewritten, keeping the Notes supervisors typed against each shift id.
func (c *Client) PublishSchedule(spreadsheetID string, schedule *PublishedSchedule) error {
	title, err := tabTitle(schedule.From, schedule.To)
	if err != nil {
		return fmt.Errorf("failed to generate tab title: %w", err)
	}

	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	exists := false
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == title {
			exists = true
			break
		}
	}

	notes := map[string]string{}
	if exists {
		existing, err := c.GetValues(spreadsheetID, fmt.Sprintf("%s!A1:ZZ", title))
		if err != nil {
			return fmt.Errorf("failed to read existing tab data: %w", err)
		}
		notes = existingNotes(existing)

		_, err = c.service.Spreadsheets.Values.Clear(spreadsheetID, fmt.Sprintf("%s!A1:ZZ", title), &sheets.ClearValuesRequest{}).Do()
		if err != nil {
			return fmt.Errorf("failed to clear existing tab: %w", err)
		}
	} else {
		if _, err := c.CreateSheet(spreadsheetID, title); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	valueRange := &sheets.ValueRange{
		Values: scheduleValues(schedule, notes),
	}

	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		fmt.Sprintf("%s!A1", title),
		valueRange,
	).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to write schedule: %w", err)
	}

	return nil
}

// tabTitle formats the date range as "Mon Jan 02 2006 - Mon Jan 02 2006"
func tabTitle(from, to string) (string, error) {
	start, err := time.Parse("2006-01-02", from)
	if err != nil {
		return "", fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse("2006-01-02", to)
	if err != nil {
		return "", fmt.Errorf("invalid end date: %w", err)
	}

	return fmt.Sprintf("%s - %s",
		start.Format("Mon Jan 02 2006"),
		end.Format("Mon Jan 02 2006"),
	), nil
}

// scheduleValues builds the header and one row per shift
func scheduleValues(schedule *PublishedSchedule, notes map[string]string) [][]interface{} {
	values := make([][]interface{}, 0, len(schedule.Rows)+1)
	values = append(values, scheduleHeader)

	for _, row := range schedule.Rows {
		date, err := time.Parse("2006-01-02", row.Date)
		displayDate := row.Date
		if err == nil {
			displayDate = date.Format("Mon Jan 02 2006")
		}

		guard := row.Guard
		if guard == "" {
			guard = "UNFILLED"
		}

		values = append(values, []interface{}{
			row.ShiftID, displayDate, row.StartTime, row.EndTime, row.Site, guard, row.Status, notes[row.ShiftID],
		})
	}

	return values
}

// existingNotes maps shift id to the Notes cell of a previously published tab
func existingNotes(values [][]interface{}) map[string]string {
	notes := make(map[string]string)
	if len(values) < 2 {
		return notes
	}

	for _, row := range values[1:] {
		if len(row) <= notesColumn {
			continue
		}
		shiftID, ok := row[0].(string)
		if !ok || shiftID == "" {
			continue
		}
		if note, ok := row[notesColumn].(string); ok && note != "" {
			notes[shiftID] = note
		}
	}

	return notes
}
