package telegram

import (
	"strings"
	"testing"

	"github.com/tokoquant/idxradar/internal/models"
)

func TestNewClient_InvalidChatID(t *testing.T) {
	_, err := NewClient("123456:token", "not-a-number", nil)
	if err == nil {
		t.Fatal("Expected an error for a non-numeric chat ID")
	}
	if !strings.Contains(err.Error(), "invalid chat ID") {
		t.Errorf("Expected chat ID error, got: %v", err)
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello world", "hello world"},
		{"dots and dashes", "v1.2-rc", "v1\\.2\\-rc"},
		{"pair with underscore", "btc_idr", "btc\\_idr"},
		{"brackets and parens", "[x](y)", "\\[x\\]\\(y\\)"},
		{"percent untouched", "33.3%", "33\\.3%"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeMarkdownV2(tt.input); got != tt.want {
				t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{101, "101"},
		{104.535, "104.535"},
		{100.192, "100.192"},
		{165, "165"},
	}
	for _, tt := range tests {
		if got := formatPrice(tt.in); got != tt.want {
			t.Errorf("formatPrice(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSignal(t *testing.T) {
	sig := models.Signal{
		ID:         "abc",
		Mode:       models.ModeScalper,
		Pair:       "btcidr",
		Time:       "12:30:45",
		Entry:      101,
		TakeProfit: 104.535,
		StopLoss:   100.192,
		Priority:   10.5,
		Imbalance:  33.3,
		News:       true,
	}

	msg := formatSignal(sig)

	for _, want := range []string{
		"*SCALPER*",
		"*BTCIDR*",
		"12:30:45 UTC",
		"Entry: 101",
		"TP: 104\\.535",
		"SL: 100\\.192",
		"Priority: 10\\.5",
		"Imbalance: \\+33\\.3%",
		"News catalyst",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected message to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestFormatSignal_QuietSignal(t *testing.T) {
	sig := models.Signal{
		Mode:     models.ModeBreakout,
		Pair:     "ethidr",
		Time:     "01:02:03",
		Entry:    103,
		Priority: 8,
	}

	msg := formatSignal(sig)

	if strings.Contains(msg, "Imbalance") {
		t.Error("Expected no imbalance line for a zero imbalance")
	}
	if strings.Contains(msg, "News") {
		t.Error("Expected no news line when the flag is unset")
	}
	if !strings.Contains(msg, "*BREAKOUT*") {
		t.Errorf("Expected mode header, got:\n%s", msg)
	}
}
