package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"debug":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"warn":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		" bogus ": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLogFileReceivesOnlyErrors(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "EPG.log")

	logger, closer, err := New(Options{Level: "debug", Console: &console, LogFile: path, NoColor: true, RunID: "run-1"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info().Str("url", "http://a/guide.xml").Msg("fetching source")
	logger.Warn().Msg("no records")
	logger.Error().Err(errors.New("boom")).Str("url", "http://b/guide.xml").Msg("source skipped")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one log line, got %d: %q", len(lines), data)
	}
	line := lines[0]
	if !regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] \[ERROR\] source skipped`).MatchString(line) {
		t.Fatalf("unexpected log line format: %q", line)
	}
	if !strings.Contains(line, "boom") || !strings.Contains(line, "http://b/guide.xml") {
		t.Fatalf("expected error and url in line: %q", line)
	}
	if strings.Contains(line, "run-1") {
		t.Fatalf("run id should not be written to the log file: %q", line)
	}

	out := console.String()
	for _, want := range []string{"fetching source", "no records", "source skipped", "run-1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected console output to contain %q, got %q", want, out)
		}
	}
}

func TestLogFileIsAppended(t *testing.T) {
	path := filepath.Join(t.TempDir(), "EPG.log")
	if err := os.WriteFile(path, []byte("[2020-01-01 00:00:00] [ERROR] earlier run\n"), 0o644); err != nil {
		t.Fatalf("seed log: %v", err)
	}

	logger, closer, err := New(Options{Console: &bytes.Buffer{}, LogFile: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Error().Msg("later run")
	_ = closer.Close()

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "[2020-01-01 00:00:00] [ERROR] earlier run\n") {
		t.Fatalf("existing log content was not preserved: %q", data)
	}
	if strings.Count(string(data), "\n") != 2 {
		t.Fatalf("expected two lines, got %q", data)
	}
}

func TestJSONConsoleFormat(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := New(Options{Format: "json", Console: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()
	logger.Info().Msg("hello")
	if !strings.Contains(console.String(), `"message":"hello"`) {
		t.Fatalf("expected json line, got %q", console.String())
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
