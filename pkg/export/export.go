// Package export renders audit log records for operators: JSON for tooling,
// CSV for spreadsheets and incident reports.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/gridsentry/upswatch/core/monitor/logging"
)

// WriteJSON writes the records to w as a JSON array.
func WriteJSON(w io.Writer, records []logging.Record) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteCSV writes the records to w as CSV, one row per record. Prediction
// rows carry the probability, alert rows the severity.
func WriteCSV(w io.Writer, records []logging.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "kind", "unit_id", "status", "failure_probability", "severity", "detail"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.Format(time.RFC3339),
			string(r.Kind),
			r.UnitID,
			string(r.Status),
			"",
			"",
			"",
		}
		if r.Prediction != nil {
			row[4] = strconv.FormatFloat(r.Prediction.FailureProbability, 'f', -1, 64)
			row[6] = r.Prediction.LeadingReason()
		}
		if r.Alert != nil {
			row[5] = string(r.Alert.Severity)
			row[6] = r.Alert.Message
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
