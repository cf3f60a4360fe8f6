package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	var entry LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestSensitiveFieldsAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Config{ServiceName: "review-service"}, &buf)

	l.Info(EventReviewLiked, "like toggled", Fields(
		"review_id", "r-1",
		"token", "eyJhbGciOi",
		"Authorization", "Bearer abc",
	))

	entry := decodeEntry(t, &buf)
	if entry.Details["token"] != "[REDACTED]" {
		t.Fatalf("expected token redacted, got %v", entry.Details["token"])
	}
	if entry.Details["Authorization"] != "[REDACTED]" {
		t.Fatalf("expected authorization redacted, got %v", entry.Details["Authorization"])
	}
	if entry.Details["review_id"] != "r-1" {
		t.Fatalf("expected review_id kept, got %v", entry.Details["review_id"])
	}
}

func TestEmailsAreMasked(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Config{ServiceName: "user-service"}, &buf)

	l.Warn(EventLoginFailure, "login failed for alice@example.com", nil)

	entry := decodeEntry(t, &buf)
	if strings.Contains(entry.Message, "alice@example.com") {
		t.Fatalf("email leaked into message: %q", entry.Message)
	}
	if !strings.Contains(entry.Message, "al***@example.com") {
		t.Fatalf("expected masked email, got %q", entry.Message)
	}
}

func TestEntriesAreSigned(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Config{ServiceName: "review-service", HMACKey: "k1"}, &buf)

	l.Security(EventAccessDenied, "not the author", nil)
	entry := decodeEntry(t, &buf)

	if !l.Verify(entry) {
		t.Fatal("expected signature to verify")
	}
	entry.Message = "tampered"
	if l.Verify(entry) {
		t.Fatal("expected tampered entry to fail verification")
	}
}

func TestStackTracesRemovedInProduction(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Config{ServiceName: "x", Environment: "production"}, &buf)

	l.Error(EventGeneral, "boom\ngoroutine 1 [running]:\n\truntime/debug.Stack()", nil)
	entry := decodeEntry(t, &buf)
	if strings.Contains(entry.Message, "goroutine") {
		t.Fatalf("stack trace kept: %q", entry.Message)
	}
}

func TestFieldsSkipsNonStringKeys(t *testing.T) {
	f := Fields("a", 1, 2, "b", "c")
	if len(f) != 1 || f["a"] != 1 {
		t.Fatalf("unexpected fields: %v", f)
	}
}

func TestNestedDetailsAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(Config{ServiceName: "review-service"}, &buf)

	l.Info(EventGeneral, "upstream call", Fields("request", map[string]interface{}{
		"api_key": "k",
		"owner":   "bob@example.com",
	}))

	nested, ok := decodeEntry(t, &buf).Details["request"].(map[string]interface{})
	if !ok {
		t.Fatal("expected nested details to survive")
	}
	if nested["api_key"] != "[REDACTED]" || nested["owner"] != "bo***@example.com" {
		t.Fatalf("unexpected nested details: %v", nested)
	}
}

func TestFileOnlySinkSkipsStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "cli.log")
	l := NewLogger(Config{ServiceName: "profilecli", LogFilePath: path, FileOnly: true})

	l.Info(EventGeneral, "written to file", nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Fatalf("entry missing from file: %q", data)
	}
}
