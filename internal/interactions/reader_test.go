// StreamRec - Live-Streaming Recommendations via Implicit-Feedback ALS
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/CzSadykov/RecSys-streaming-platform

package interactions

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantRecords  int
		wantRejected int
		wantFirst    RawInteraction
	}{
		{
			name:        "well formed",
			input:       "1,18766,shroud,5,7\n2,18767,ninja,1,9\n",
			wantRecords: 2,
			wantFirst:   RawInteraction{UserID: 1, SessionID: 18766, Streamer: "shroud", TimeStart: 5, TimeEnd: 7},
		},
		{
			name:         "wrong field count rejected",
			input:        "1,18766,shroud,5\n2,18767,ninja,1,9\n",
			wantRecords:  1,
			wantRejected: 1,
			wantFirst:    RawInteraction{UserID: 2, SessionID: 18767, Streamer: "ninja", TimeStart: 1, TimeEnd: 9},
		},
		{
			name:         "non integer rejected",
			input:        "x,1,shroud,5,7\n3,1,shroud,5,oops\n4,1,shroud,5,7\n",
			wantRecords:  1,
			wantRejected: 2,
			wantFirst:    RawInteraction{UserID: 4, SessionID: 1, Streamer: "shroud", TimeStart: 5, TimeEnd: 7},
		},
		{
			name:        "spaces trimmed",
			input:       "1, 2, pokimane , 3, 4\n",
			wantRecords: 1,
			wantFirst:   RawInteraction{UserID: 1, SessionID: 2, Streamer: "pokimane", TimeStart: 3, TimeEnd: 4},
		},
		{
			name:  "empty input",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, rejected, err := ReadCSV(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadCSV() error = %v", err)
			}
			if len(records) != tt.wantRecords {
				t.Errorf("records = %d, want %d", len(records), tt.wantRecords)
			}
			if len(rejected) != tt.wantRejected {
				t.Errorf("rejected = %d, want %d (%v)", len(rejected), tt.wantRejected, rejected)
			}
			for _, r := range rejected {
				var ve *ValidationError
				if !errors.As(r, &ve) {
					t.Errorf("rejected %v is not *ValidationError", r)
				}
			}
			if tt.wantRecords > 0 && records[0] != tt.wantFirst {
				t.Errorf("records[0] = %+v, want %+v", records[0], tt.wantFirst)
			}
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "100k_a.csv")
	if err := os.WriteFile(path, []byte("1,1,a,0,3\n1,2,b,3,4\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	records, rejected, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(records) != 2 || len(rejected) != 0 {
		t.Errorf("ReadFile() = %d records, %d rejected; want 2, 0", len(records), len(rejected))
	}

	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("ReadFile() on missing file should fail")
	}
}
