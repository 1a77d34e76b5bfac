// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package interactions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Column layout of the session log. The file has no header row.
const (
	colUserID = iota
	colSessionID
	colStreamer
	colTimeStart
	colTimeEnd
	numColumns
)

var columnNames = [numColumns]string{"uid", "session_id", "streamer_name", "time_start", "time_end"}

// ReadCSV parses session records from r.
//
// Malformed lines are returned in rejected as *ValidationError values and
// skipped. err is non-nil only for I/O failures.
func ReadCSV(r io.Reader) (records []RawInteraction, rejected []error, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	line := 0
	for {
		fields, readErr := cr.Read()
		if readErr == io.EOF {
			break
		}
		line++

		if readErr != nil {
			var perr *csv.ParseError
			if errors.As(readErr, &perr) {
				rejected = append(rejected, &ValidationError{Line: perr.Line, Field: "csv", Reason: perr.Err.Error()})
				continue
			}
			return records, rejected, fmt.Errorf("read csv line %d: %w", line, readErr)
		}

		rec, vErr := parseRecord(fields)
		if vErr != nil {
			vErr.Line = line
			rejected = append(rejected, vErr)
			continue
		}
		records = append(records, rec)
	}

	return records, rejected, nil
}

// ReadFile opens path and parses it with ReadCSV.
func ReadFile(path string) ([]RawInteraction, []error, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, nil, fmt.Errorf("open interactions file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

func parseRecord(fields []string) (RawInteraction, *ValidationError) {
	if len(fields) != numColumns {
		return RawInteraction{}, &ValidationError{
			Field:  "record",
			Reason: fmt.Sprintf("expected %d fields, got %d", numColumns, len(fields)),
		}
	}

	var ints [numColumns]int64
	for _, col := range []int{colUserID, colSessionID, colTimeStart, colTimeEnd} {
		v, err := strconv.ParseInt(strings.TrimSpace(fields[col]), 10, 64)
		if err != nil {
			return RawInteraction{}, &ValidationError{
				Field:  columnNames[col],
				Reason: fmt.Sprintf("not an integer: %q", fields[col]),
			}
		}
		ints[col] = v
	}

	return RawInteraction{
		UserID:    ints[colUserID],
		SessionID: ints[colSessionID],
		Streamer:  strings.TrimSpace(fields[colStreamer]),
		TimeStart: ints[colTimeStart],
		TimeEnd:   ints[colTimeEnd],
	}, nil
}
