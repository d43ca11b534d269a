// Package source loads the source list and retrieves guide documents.
package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"epgmerge/config"
)

// Artifact is a downloaded guide spooled to a temporary file. Callers must
// Release it once the document has been read.
type Artifact struct {
	URL        string
	Path       string
	Size       int64
	Compressed bool

	released bool
}

// Open opens the spooled document for reading.
func (a *Artifact) Open() (*os.File, error) {
	return os.Open(a.Path)
}

// Release removes the temporary file. It is safe to call more than once.
func (a *Artifact) Release() error {
	if a == nil || a.released {
		return nil
	}
	a.released = true
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Fetcher downloads sources into the work directory, one at a time.
type Fetcher struct {
	client    *http.Client
	userAgent string
	workDir   string
}

// NewFetcher builds a fetcher from the http and paths settings. file:// URLs
// are served from the local filesystem.
func NewFetcher(cfg *config.Config) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.RegisterProtocol("file", http.NewFileTransport(http.Dir("/")))
	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.HTTPTimeout(),
			Transport: transport,
		},
		userAgent: cfg.HTTP.UserAgent,
		workDir:   cfg.Paths.WorkDir,
	}
}

func fetchUrl(ctx context.Context, client *http.Client, rawURL, userAgent string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatusCode, res.Status)
	}
	return res, nil
}

// Fetch retrieves one source. Gzip payloads (".gz" URL path or gzip magic
// bytes) are fully decompressed before returning. Every failure is a
// *FetchError and leaves no temporary files behind.
func (f *Fetcher) Fetch(ctx context.Context, index int, rawURL string) (*Artifact, error) {
	download, err := f.download(ctx, index, rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Op: "download", Err: err}
	}

	compressed, err := isGzip(rawURL, download.Path)
	if err != nil {
		_ = download.Release()
		return nil, &FetchError{URL: rawURL, Op: "download", Err: err}
	}
	if !compressed {
		return download, nil
	}
	defer download.Release()

	doc, err := f.decompress(index, download)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Op: "decompress", Err: err}
	}
	return doc, nil
}

func (f *Fetcher) download(ctx context.Context, index int, rawURL string) (*Artifact, error) {
	res, err := fetchUrl(ctx, f.client, rawURL, f.userAgent, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return f.spool(fmt.Sprintf("epg-%d-*.download", index), rawURL, res.Body)
}

func (f *Fetcher) decompress(index int, download *Artifact) (*Artifact, error) {
	in, err := download.Open()
	if err != nil {
		return nil, err
	}
	defer in.Close()

	zr, err := gzip.NewReader(bufio.NewReader(in))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	doc, err := f.spool(fmt.Sprintf("epg-%d-*.xml", index), download.URL, zr)
	if err != nil {
		return nil, err
	}
	doc.Compressed = true
	return doc, nil
}

func (f *Fetcher) spool(pattern, rawURL string, r io.Reader) (*Artifact, error) {
	if err := os.MkdirAll(f.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	out, err := os.CreateTemp(f.workDir, pattern)
	if err != nil {
		return nil, err
	}
	art := &Artifact{URL: rawURL, Path: out.Name()}

	n, err := io.Copy(out, r)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = art.Release()
		return nil, err
	}
	art.Size = n
	return art, nil
}

func isGzip(rawURL, path string) (bool, error) {
	if u, err := url.Parse(rawURL); err == nil && strings.HasSuffix(strings.ToLower(u.Path), ".gz") {
		return true, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()
	magic := make([]byte, 2)
	if _, err := io.ReadFull(file, magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return magic[0] == 0x1f && magic[1] == 0x8b, nil
}
