package epg

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Accumulator collects records across sources. Channels and programmes are
// kept apart so the output lists every channel before any programme.
type Accumulator struct {
	channels   []string
	programmes []string
}

// Add appends one source's records after those already collected.
func (a *Accumulator) Add(ex *Extraction) {
	if ex == nil {
		return
	}
	a.channels = append(a.channels, ex.Channels...)
	a.programmes = append(a.programmes, ex.Programmes...)
}

func (a *Accumulator) Channels() int   { return len(a.channels) }
func (a *Accumulator) Programmes() int { return len(a.programmes) }
func (a *Accumulator) Len() int        { return len(a.channels) + len(a.programmes) }

// GeneratorInfo builds the generator-info-name value, e.g. "EPG 15/10/2026 06:00".
func GeneratorInfo(name, layout string, at time.Time) string {
	return name + " " + at.Format(layout)
}

// WriteFile writes the merged guide to path via a temporary file and rename.
func WriteFile(path, generatorInfo string, acc *Accumulator) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	tempFile := path + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}
	if err := writeGuide(file, generatorInfo, acc); err != nil {
		file.Close()
		os.Remove(tempFile)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return err
	}
	return nil
}

func writeGuide(file *os.File, generatorInfo string, acc *Accumulator) error {
	w := bufio.NewWriter(file)
	w.WriteString(xml.Header)
	w.WriteString(`<tv generator-info-name="`)
	w.WriteString(escapeAttr(generatorInfo))
	w.WriteString("\">\n")
	for _, rec := range acc.channels {
		w.WriteString(rec)
		w.WriteByte('\n')
	}
	for _, rec := range acc.programmes {
		w.WriteString(rec)
		w.WriteByte('\n')
	}
	w.WriteString("</tv>\n")
	return w.Flush()
}

func escapeAttr(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
