package duration

import (
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// durationColumn is the zero-indexed spreadsheet column carrying the
// running video length (column E of the editors' sheets).
const durationColumn = 4

// Timecodes are HH:MM:SS with an optional frame suffix that is ignored.
var timecodeRe = regexp.MustCompile(`^(\d{1,3}):([0-5]?\d):([0-5]?\d)(?::\d{1,3})?$`)

// parseTimecode converts a timecode to whole minutes, rounding 30 seconds
// and above up to the next minute.
func parseTimecode(s string) (int, bool) {
	m := timecodeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	secs, _ := strconv.Atoi(m[3])
	total := hours*60 + mins
	if secs >= 30 {
		total++
	}
	return total, true
}

var errNoTimecode = errors.New("no timecode in duration column")

// minutesFromCSV scans every row of a sheet export and keeps the last
// non-empty value in the duration column: the editors append rows, so
// the bottom-most entry is the canonical total.
func minutesFromCSV(r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var last string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		if len(record) <= durationColumn {
			continue
		}
		if v := strings.TrimSpace(record[durationColumn]); v != "" {
			last = v
		}
	}
	if last == "" {
		return 0, errNoTimecode
	}
	minutes, ok := parseTimecode(last)
	if !ok {
		return 0, errors.New("duration column value " + strconv.Quote(last) + " is not a timecode")
	}
	return minutes, nil
}
