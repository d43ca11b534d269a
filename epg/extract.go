package epg

import (
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
)

var timestampAttrs = []string{"start", "stop"}

// Extraction holds the serialized records of one source document, in
// document order.
type Extraction struct {
	Channels        []string
	Programmes      []string
	TimestampErrors []*TimestampError
}

// Extractor pulls channel and programme records out of XMLTV documents.
type Extractor struct {
	norm *Normalizer
}

// NewExtractor returns an extractor that rewrites programme timestamps with norm.
func NewExtractor(norm *Normalizer) *Extractor {
	return &Extractor{norm: norm}
}

// Extract parses r and returns the direct channel and programme children of
// the root element. Timestamp failures are collected, not returned as errors.
func (x *Extractor) Extract(r io.Reader) (*Extraction, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charset.NewReaderLabel
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, err
	}
	root, err := documentRoot(doc)
	if err != nil {
		return nil, err
	}

	ex := &Extraction{}
	for _, child := range root.ChildElements() {
		if child.Space != "" || child.NamespaceURI() != "" {
			continue
		}
		switch child.Tag {
		case "channel":
			rec, err := serialize(child)
			if err != nil {
				return nil, err
			}
			ex.Channels = append(ex.Channels, rec)
		case "programme":
			ex.TimestampErrors = append(ex.TimestampErrors, x.normalizeProgramme(child)...)
			rec, err := serialize(child)
			if err != nil {
				return nil, err
			}
			ex.Programmes = append(ex.Programmes, rec)
		}
	}
	return ex, nil
}

func (x *Extractor) normalizeProgramme(programme *etree.Element) []*TimestampError {
	var failures []*TimestampError
	for _, key := range timestampAttrs {
		attr := programme.SelectAttr(key)
		if attr == nil {
			continue
		}
		value, err := x.norm.Normalize(attr.Value)
		if err != nil {
			failures = append(failures, &TimestampError{Attr: key, Value: attr.Value, Err: err})
			continue
		}
		programme.CreateAttr(key, value)
	}
	return failures
}

// documentRoot returns the single root element of doc. Only whitespace,
// comments, processing instructions and directives may surround it.
func documentRoot(doc *etree.Document) (*etree.Element, error) {
	var root *etree.Element
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			if root != nil {
				return nil, errMultipleRoots
			}
			root = t
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return nil, errTextOutsideRoot
			}
		}
	}
	if root == nil {
		return nil, errNoRoot
	}
	return root, nil
}

// serialize renders e as a standalone fragment, redeclaring the namespace
// prefixes it inherits from its ancestors.
func serialize(e *etree.Element) (string, error) {
	cp := e.Copy()
	used := map[string]bool{}
	collectPrefixes(e, used)
	for anc := e.Parent(); anc != nil; anc = anc.Parent() {
		for _, a := range anc.Attr {
			if a.Space != "xmlns" || !used[a.Key] {
				continue
			}
			if cp.SelectAttr("xmlns:"+a.Key) == nil {
				cp.CreateAttr("xmlns:"+a.Key, a.Value)
			}
		}
	}

	doc := etree.NewDocument()
	doc.SetRoot(cp)
	return doc.WriteToString()
}

func collectPrefixes(e *etree.Element, used map[string]bool) {
	if e.Space != "" && e.Space != "xml" {
		used[e.Space] = true
	}
	for _, a := range e.Attr {
		if a.Space != "" && a.Space != "xml" && a.Space != "xmlns" {
			used[a.Space] = true
		}
	}
	for _, child := range e.ChildElements() {
		collectPrefixes(child, used)
	}
}
