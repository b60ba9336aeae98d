package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	slackgo "github.com/slack-go/slack"
)

func TestSlackNotifier_PostsTitledMessage(t *testing.T) {
	var gotChannel, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotChannel = r.Form.Get("channel")
		gotText = r.Form.Get("text")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "channel": "C123", "ts": "1234.5678"}`))
	}))
	defer server.Close()

	n, err := NewSlackNotifier("xoxb-test", "#reports",
		slackgo.OptionAPIURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewSlackNotifier: %v", err)
	}

	if err := n.Notify(context.Background(), "Council Report", "the answer"); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotChannel != "#reports" {
		t.Errorf("channel = %q", gotChannel)
	}
	if !strings.Contains(gotText, "*Council Report*") || !strings.Contains(gotText, "the answer") {
		t.Errorf("text = %q", gotText)
	}
}

func TestSlackNotifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	}))
	defer server.Close()

	n, err := NewSlackNotifier("xoxb-test", "#missing",
		slackgo.OptionAPIURL(server.URL+"/"))
	if err != nil {
		t.Fatalf("NewSlackNotifier: %v", err)
	}
	if err := n.Notify(context.Background(), "t", "b"); err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Errorf("expected API error, got %v", err)
	}
}

func TestSlackNotifier_RequiresConfig(t *testing.T) {
	if _, err := NewSlackNotifier("", "#c"); err == nil {
		t.Error("expected error for missing token")
	}
	if _, err := NewSlackNotifier("tok", ""); err == nil {
		t.Error("expected error for missing channel")
	}
}

func TestNopNotifier(t *testing.T) {
	if err := (NopNotifier{}).Notify(context.Background(), "t", "b"); err != nil {
		t.Errorf("NopNotifier must never fail: %v", err)
	}
}
