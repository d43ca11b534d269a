package source

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var guideSuffixes = []string{".xml", ".xml.gz"}

// Discover scrapes an HTML index page for links to XMLTV guides and returns
// them as absolute URLs in page order, without duplicates.
func (f *Fetcher) Discover(ctx context.Context, indexURL string) ([]string, error) {
	res, err := fetchUrl(ctx, f.client, indexURL, f.userAgent, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	base := res.Request.URL
	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, err
	}

	var guides []string
	seen := map[string]struct{}{}
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		link := base.ResolveReference(ref)
		if !isGuidePath(link.Path) {
			return
		}
		link.Fragment = ""
		abs := link.String()
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		guides = append(guides, abs)
	})
	return guides, nil
}

func isGuidePath(p string) bool {
	p = strings.ToLower(p)
	for _, suffix := range guideSuffixes {
		if strings.HasSuffix(p, suffix) {
			return true
		}
	}
	return false
}
