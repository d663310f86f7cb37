package bot

import (
	"strings"
	"testing"

	"github.com/spec-kit/grievance-service/internal/domain"
)

func TestEncodeStatusCallback(t *testing.T) {
	got := EncodeStatusCallback(domain.StatusInProgress, "SG25-1234")
	if got != "status:in-progress:SG25-1234" {
		t.Errorf("EncodeStatusCallback() = %q", got)
	}
}

func TestParseStatusCallback(t *testing.T) {
	cases := []struct {
		data   string
		want   StatusCallback
		wantOK bool
	}{
		{"status:completed:SG25-1234", StatusCallback{"SG25-1234", domain.StatusCompleted}, true},
		{"status:in-progress:sg25-1234", StatusCallback{"SG25-1234", domain.StatusInProgress}, true},
		{"status:rejected:SG24-999", StatusCallback{"SG24-999", domain.StatusRejected}, true},
		{"status:done:SG25-1234", StatusCallback{}, false},
		{"assign:completed:SG25-1234", StatusCallback{}, false},
		{"status:completed", StatusCallback{}, false},
		{"status:completed: ", StatusCallback{}, false},
		{"", StatusCallback{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseStatusCallback(tc.data)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseStatusCallback(%q) = (%+v, %v), want (%+v, %v)", tc.data, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	for _, status := range domain.AllStatuses {
		data := EncodeStatusCallback(status, "SG25-4321")
		parsed, ok := ParseStatusCallback(data)
		if !ok || parsed.Target != status || parsed.TicketNumber != "SG25-4321" {
			t.Errorf("round trip for %q failed: %+v, %v", status, parsed, ok)
		}
	}
}

func TestStatusKeyboardOmitsCurrent(t *testing.T) {
	keyboard := StatusKeyboard(domain.StatusInProgress, "SG25-1234")
	if keyboard == nil {
		t.Fatal("StatusKeyboard() = nil")
	}
	if len(keyboard.InlineKeyboard) != len(domain.AllStatuses)-1 {
		t.Fatalf("keyboard has %d rows, want %d", len(keyboard.InlineKeyboard), len(domain.AllStatuses)-1)
	}
	for _, row := range keyboard.InlineKeyboard {
		if len(row) != 1 {
			t.Fatalf("row has %d buttons, want 1", len(row))
		}
		button := row[0]
		if !strings.HasPrefix(button.Text, "Mark as ") {
			t.Errorf("button text = %q", button.Text)
		}
		parsed, ok := ParseStatusCallback(button.CallbackData)
		if !ok {
			t.Fatalf("button data %q does not parse", button.CallbackData)
		}
		if parsed.Target == domain.StatusInProgress {
			t.Error("keyboard must not offer the current status")
		}
		if len(button.CallbackData) > 64 {
			t.Errorf("callback data %q exceeds 64 bytes", button.CallbackData)
		}
	}
}
