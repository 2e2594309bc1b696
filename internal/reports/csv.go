package reports

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

var csvHeader = []string{
	"ec_number", "name", "date", "check_in_time", "check_out_time",
	"total_hours", "is_late", "check_in_verified", "check_out_verified",
}

// WriteDailyCSV writes the daily report as CSV. With sjis the output is
// Shift_JIS (Excel の ANSI 相当); unmappable runes become '?'.
func WriteDailyCSV(dst io.Writer, rep DailyResponse, loc *time.Location, sjis bool) error {
	var out io.Writer = dst
	var tw *transform.Writer
	if sjis {
		tw = transform.NewWriter(dst, encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder()))
		out = tw
	}
	if loc == nil {
		loc = time.UTC
	}

	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rep.Records {
		rec := []string{
			r.ECNumber,
			r.Name,
			r.Date,
			r.CheckInTime.In(loc).Format(time.DateTime),
			"",
			"",
			strconv.FormatBool(r.IsLate),
			strconv.FormatBool(r.CheckInVerified),
			"",
		}
		if r.CheckOutTime != nil {
			rec[4] = r.CheckOutTime.In(loc).Format(time.DateTime)
		}
		if r.TotalHours != nil {
			rec[5] = strconv.FormatFloat(*r.TotalHours, 'f', 2, 64)
		}
		if r.CheckOutVerified != nil {
			rec[8] = strconv.FormatBool(*r.CheckOutVerified)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}
