package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

type fakeLogger struct{}

func (*fakeLogger) Debug(string, ...any) {}
func (*fakeLogger) Info(string, ...any)  {}
func (*fakeLogger) Warn(string, ...any)  {}
func (*fakeLogger) Error(string, ...any) {}

func TestOrNopHandlesTypedNilPointers(t *testing.T) {
	var typed *fakeLogger
	var logger Logger = typed
	if !IsNil(logger) {
		t.Fatalf("expected typed nil pointer to be detected")
	}
	safe := OrNop(logger)
	if IsNil(safe) {
		t.Fatalf("expected OrNop to return a usable logger")
	}
	safe.Info("hello %s", "world") // should not panic
}

func TestFromSlogFormatsMessages(t *testing.T) {
	buf := &bytes.Buffer{}
	base := slog.New(slog.NewTextHandler(buf, nil))

	logger := FromSlog(base, "test")
	logger.Info("hello %s", "world")

	if !strings.Contains(buf.String(), "hello world") {
		t.Fatalf("expected formatted message in output, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "component=test") {
		t.Fatalf("expected component attribute, got %q", buf.String())
	}
}

func TestSetupHonorsLevelAndFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	Setup(Config{Level: "warn", Format: "json", Output: buf})
	t.Cleanup(func() { Setup(Config{}) })

	logger := NewComponentLogger("Upload")
	logger.Info("dropped")
	logger.Warn("kept %d", 1)

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("expected info line to be filtered, got %q", out)
	}
	if !strings.Contains(out, `"msg":"kept 1"`) {
		t.Fatalf("expected json warn line, got %q", out)
	}
}

func TestRedactMasksSecrets(t *testing.T) {
	cases := map[string]string{
		"Authorization: Bearer abc.def.ghi":  "Authorization: Bearer " + Placeholder,
		"sent bearer eyJhbGciOi.payload.sig": "sent bearer " + Placeholder,
		"jwt_secret=hunter2 port=8091":       "jwt_secret=" + Placeholder + " port=8091",
		"video abc uploaded":                 "video abc uploaded",
	}
	for input, want := range cases {
		if got := Redact(input); got != want {
			t.Errorf("Redact(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFromContextPrefixesRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	base := FromSlog(slog.New(slog.NewTextHandler(buf, nil)), "")

	ctx := ContextWithRequestID(context.Background(), "req-7")
	logger := FromContext(ctx, base)
	logger.Info("stored %s", "a.png")
	if !strings.Contains(buf.String(), "request_id=req-7 stored a.png") {
		t.Fatalf("expected request id prefix, got %q", buf.String())
	}

	retagged := WithRequestID(logger, "req-8")
	retagged.Warn("again")
	if strings.Contains(buf.String(), "request_id=req-7 request_id=req-8") {
		t.Fatalf("expected retagging to replace the id, got %q", buf.String())
	}

	if FromContext(context.Background(), base) != base {
		t.Fatalf("expected untagged context to return the logger unchanged")
	}
}
