// Package narrative extracts paragraph text from .docx documents for display
// alongside a report. Nothing here feeds into scoring.
package narrative

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const documentPart = "word/document.xml"

// ReadParagraphs returns up to limit non-empty paragraphs from the document
// body in order. A limit <= 0 returns all of them.
func ReadParagraphs(path string, limit int) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in %s: %w", documentPart, path, err)
		}
		defer rc.Close()
		return paragraphs(rc, limit)
	}
	return nil, fmt.Errorf("%s: missing %s", path, documentPart)
}

// paragraphs walks WordprocessingML, joining the text runs of each <w:p>.
// Tabs and breaks inside a paragraph become whitespace.
func paragraphs(r io.Reader, limit int) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		out    []string
		cur    strings.Builder
		inPara bool
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inPara = true
				cur.Reset()
			case "t":
				inText = inPara
			case "tab":
				if inPara {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				if inPara {
					cur.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				inPara = false
				if text := strings.TrimSpace(cur.String()); text != "" {
					out = append(out, text)
					if limit > 0 && len(out) == limit {
						return out, nil
					}
				}
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return out, nil
}
