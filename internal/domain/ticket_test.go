package domain

import (
	"strings"
	"testing"
)

func TestParseTicketStatus(t *testing.T) {
	cases := []struct {
		raw     string
		want    TicketStatus
		wantErr bool
	}{
		{raw: "new", want: TicketStatusNew},
		{raw: "in_progress", want: TicketStatusInProgress},
		{raw: "done", want: TicketStatusDone},
		{raw: "archived", wantErr: true},
		{raw: "NEW", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseTicketStatus(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseTicketStatus(%q) = %q, want error", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTicketStatus(%q) returned error: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("ParseTicketStatus(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestParseTicketStatusErrorNamesAllowedSet(t *testing.T) {
	_, err := ParseTicketStatus("archived")
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	for _, status := range TicketStatuses {
		if !strings.Contains(err.Error(), string(status)) {
			t.Errorf("error %q does not name allowed status %q", err, status)
		}
	}
}

func TestTicketStatusValid(t *testing.T) {
	if !TicketStatusInProgress.Valid() {
		t.Error("in_progress should be valid")
	}
	if TicketStatus("closed").Valid() {
		t.Error("closed should not be valid")
	}
}
