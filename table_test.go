package main

import (
	"errors"
	"strings"
	"testing"

	"epgmerge/epg"
)

func TestRenderReportRowsAndTotals(t *testing.T) {
	longURL := "https://guides.example.com/" + strings.Repeat("x", 80) + ".xml.gz"
	report := &epg.Report{
		Sources: []epg.SourceReport{
			{Index: 0, URL: "https://a.example.com/a.xml", Channels: 2, Programmes: 3, TimestampErrors: 1},
			{Index: 1, URL: longURL, Err: errors.New("download: 404 Not Found")},
		},
		Channels:   2,
		Programmes: 3,
		Offset:     "+0000",
		OutputPath: "/tmp/EPG.xml",
	}

	out := renderReport(report)
	if !strings.Contains(out, "https://a.example.com/a.xml") {
		t.Fatalf("expected first source URL in table:\n%s", out)
	}
	if strings.Contains(out, longURL) {
		t.Fatalf("expected long URL to be truncated:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Fatalf("expected truncation marker:\n%s", out)
	}
	if !strings.Contains(out, "skipped: download: 404 Not Found") {
		t.Fatalf("expected failure status:\n%s", out)
	}
	if !strings.HasSuffix(out, "/tmp/EPG.xml: 2 channels, 3 programmes, 1/2 sources skipped, offset +0000") {
		t.Fatalf("unexpected totals line:\n%s", out)
	}
}
