// Package epg merges XMLTV guides from several sources into one document.
//
// A Generator reads the source list, fetches each source in order, extracts
// its channel and programme records while normalizing programme timestamps,
// and writes every channel followed by every programme under a single <tv>
// root. Per-source failures are logged and skipped; only a missing source
// list stops the run early.
package epg

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"epgmerge/config"
	"epgmerge/source"
)

// Fetcher retrieves one source into a temporary artifact.
type Fetcher interface {
	Fetch(ctx context.Context, index int, rawURL string) (*source.Artifact, error)
}

// SourceReport summarizes one source of a run.
type SourceReport struct {
	Index           int
	URL             string
	Bytes           int64
	Channels        int
	Programmes      int
	TimestampErrors int
	Err             error
}

// OK reports whether the source contributed to the output.
func (s SourceReport) OK() bool { return s.Err == nil }

// Report summarizes a run.
type Report struct {
	Sources       []SourceReport
	Channels      int
	Programmes    int
	Offset        string
	OutputPath    string
	GeneratorInfo string
	ValidationErr error
}

// Failed returns the number of sources that were skipped.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Sources {
		if !s.OK() {
			n++
		}
	}
	return n
}

// Option customizes a Generator.
type Option func(*Generator)

// WithClock replaces time.Now, used for the regional offset and the
// generator-info timestamp.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator runs the merge pipeline.
type Generator struct {
	cfg     *config.Config
	fetcher Fetcher
	logger  zerolog.Logger
	now     func() time.Time
}

func NewGenerator(cfg *config.Config, fetcher Fetcher, logger zerolog.Logger, opts ...Option) *Generator {
	g := &Generator{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run processes every source sequentially and writes the merged guide.
//
// It returns *source.MissingInputError when the list is absent, ctx.Err()
// when interrupted between sources, and an error when the output cannot be
// written. Source failures and a failed validation are only recorded in the
// report.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	urls, err := source.LoadList(g.cfg.Paths.Input)
	if err != nil {
		g.logger.Error().Err(err).Str("input", g.cfg.Paths.Input).Msg("cannot read source list")
		return nil, err
	}

	norm, err := NewNormalizer(Policy(g.cfg.Timezone.Policy), g.cfg.Timezone.Region, g.now())
	if err != nil {
		g.logger.Error().Err(err).Msg("cannot resolve timezone policy")
		return nil, err
	}
	g.logger.Info().
		Int("sources", len(urls)).
		Str("policy", string(norm.Policy())).
		Str("offset", norm.Offset()).
		Msg("starting EPG merge")

	extractor := NewExtractor(norm)
	acc := &Accumulator{}
	report := &Report{OutputPath: g.cfg.Paths.Output, Offset: norm.Offset()}
	for i, rawURL := range urls {
		if err := ctx.Err(); err != nil {
			g.logger.Error().Err(err).Int("remaining", len(urls)-i).Msg("run interrupted, output not written")
			return report, err
		}
		report.Sources = append(report.Sources, g.processSource(ctx, extractor, acc, i, rawURL))
	}
	if err := ctx.Err(); err != nil {
		g.logger.Error().Err(err).Msg("run interrupted, output not written")
		return report, err
	}
	report.Channels = acc.Channels()
	report.Programmes = acc.Programmes()

	if acc.Len() == 0 {
		g.logger.Warn().Msg("no records extracted, writing an empty guide")
	}

	report.GeneratorInfo = GeneratorInfo(g.cfg.Output.GeneratorName, g.cfg.Output.GeneratorTimeFormat, g.now())
	if err := WriteFile(g.cfg.Paths.Output, report.GeneratorInfo, acc); err != nil {
		g.logger.Error().Err(err).Str("output", g.cfg.Paths.Output).Msg("cannot write EPG")
		return report, fmt.Errorf("write output: %w", err)
	}

	if _, err := ValidateFile(g.cfg.Paths.Output); err != nil {
		report.ValidationErr = err
		g.logger.Error().Err(err).Str("output", g.cfg.Paths.Output).Msg("merged EPG is not valid XML")
	}

	g.logger.Info().
		Str("output", g.cfg.Paths.Output).
		Int("channels", report.Channels).
		Int("programmes", report.Programmes).
		Int("failed_sources", report.Failed()).
		Msg("EPG generated")
	return report, nil
}

func (g *Generator) processSource(ctx context.Context, extractor *Extractor, acc *Accumulator, index int, rawURL string) SourceReport {
	rep := SourceReport{Index: index, URL: rawURL}
	log := g.logger.With().Int("index", index).Str("url", rawURL).Logger()

	log.Info().Msg("fetching source")
	art, err := g.fetcher.Fetch(ctx, index, rawURL)
	if err != nil {
		rep.Err = err
		log.Error().Err(err).Msg("source skipped")
		return rep
	}
	defer func() {
		if err := art.Release(); err != nil {
			log.Error().Err(err).Str("path", art.Path).Msg("cannot remove temporary file")
		}
	}()
	rep.Bytes = art.Size

	ex, err := extractArtifact(extractor, art)
	if err != nil {
		rep.Err = &ExtractionError{URL: rawURL, Err: err}
		log.Error().Err(rep.Err).Msg("source skipped")
		return rep
	}

	for _, terr := range ex.TimestampErrors {
		log.Error().Err(terr).Str("attr", terr.Attr).Str("value", terr.Value).Msg("timestamp left unchanged")
	}
	acc.Add(ex)

	rep.Channels = len(ex.Channels)
	rep.Programmes = len(ex.Programmes)
	rep.TimestampErrors = len(ex.TimestampErrors)
	log.Info().
		Int("channels", rep.Channels).
		Int("programmes", rep.Programmes).
		Bool("gzip", art.Compressed).
		Msg("source processed")
	return rep
}

func extractArtifact(extractor *Extractor, art *source.Artifact) (*Extraction, error) {
	file, err := art.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return extractor.Extract(file)
}
