package epg

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/net/html/charset"
)

// Guide is the merged XMLTV document as read back for validation.
type Guide struct {
	XMLName           xml.Name     `xml:"tv"`
	GeneratorInfoName string       `xml:"generator-info-name,attr"`
	Channels          []*Channel   `xml:"channel"`
	Programmes        []*Programme `xml:"programme"`
}

type Channel struct {
	XMLName     xml.Name `xml:"channel"`
	ID          string   `xml:"id,attr"`
	DisplayName string   `xml:"display-name"`
}

type Programme struct {
	XMLName xml.Name `xml:"programme"`
	Channel string   `xml:"channel,attr"`
	Start   string   `xml:"start,attr"`
	Stop    string   `xml:"stop,attr"`
	Title   string   `xml:"title"`
	Desc    string   `xml:"desc"`
}

// ValidateFile re-reads a written guide and checks that it is well-formed
// with exactly one <tv> root element.
func ValidateFile(path string) (*Guide, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Path: path, Err: err}
	}
	defer file.Close()

	guide, err := decodeGuide(bufio.NewReader(file))
	if err != nil {
		return nil, &ValidationError{Path: path, Err: err}
	}
	return guide, nil
}

func decodeGuide(r io.Reader) (*Guide, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var guide *Guide
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if guide != nil {
				return nil, errMultipleRoots
			}
			if t.Name.Local != "tv" {
				return nil, fmt.Errorf("unexpected root element <%s>", t.Name.Local)
			}
			g := &Guide{}
			if err := dec.DecodeElement(g, &t); err != nil {
				return nil, err
			}
			guide = g
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, errTextOutsideRoot
			}
		}
	}
	if guide == nil {
		return nil, errNoRoot
	}
	return guide, nil
}
