package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/poiesic/docuchat/core"
)

// DocxAdapter extracts text from Word documents. A .docx file is a zip
// archive whose word/document.xml holds the text runs, so no external
// parser is needed.
type DocxAdapter struct{}

var _ Adapter = (*DocxAdapter)(nil)

// NewDocxAdapter creates a Word document adapter.
func NewDocxAdapter() *DocxAdapter {
	return &DocxAdapter{}
}

// Extract returns the document body as a single segment, one line per
// paragraph.
func (a *DocxAdapter) Extract(ctx context.Context, path string) ([]core.Segment, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, extractionError("failed to open document archive", err)
	}
	defer archive.Close()

	var body io.ReadCloser
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			body, err = f.Open()
			if err != nil {
				return nil, extractionError("failed to open document body", err)
			}
			break
		}
	}
	if body == nil {
		return nil, extractionError("document has no word/document.xml, not a .docx file", nil)
	}
	defer body.Close()

	text, err := docxBodyText(body)
	if err != nil {
		return nil, extractionError("failed to parse document body", err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return []core.Segment{{Text: text}}, nil
}

// docxBodyText walks the WordprocessingML stream, collecting text runs
// (w:t) and inserting a newline at each paragraph end (w:p).
func docxBodyText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
