package convlog

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"
	"time"
)

// csvHeader matches the export layout downstream tooling consumes.
var csvHeader = []string{
	"timestamp", "speaker", "message", "intent", "dialogue_state",
	"slots", "previous_slots", "missing_slots", "updated_slots",
	"required_slots", "optional_slots", "correction_slot",
}

// ExportCSV writes a conversation's events as CSV.
func ExportCSV(w io.Writer, events []Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, ev := range events {
		if err := cw.Write(csvRow(ev)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(ev Event) []string {
	row := []string{
		ev.TS.UTC().Format(time.RFC3339),
		ev.Speaker,
		ev.Message,
		string(ev.Intent),
		string(ev.DialogueState),
		"", "", "", "", "", "", "",
	}
	if ev.Snapshot == nil {
		return row
	}
	snap := ev.Snapshot
	row[5] = marshalJSON(snap.State)
	row[6] = marshalJSON(snap.PreviousState)
	row[7] = joinSlots(snap.MissingSlots)
	row[8] = joinSlots(snap.UpdatedSlots)
	row[9] = joinSlots(snap.RequiredSlots)
	row[10] = joinSlots(snap.OptionalSlots)
	row[11] = string(snap.CorrectionTarget)
	return row
}

func marshalJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func joinSlots[S ~string](slots []S) string {
	parts := make([]string, len(slots))
	for i, s := range slots {
		parts[i] = string(s)
	}
	return strings.Join(parts, ";")
}
