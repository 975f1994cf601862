package export

import (
	"bytes"
	"strings"

	"github.com/gomutex/godocx"
)

// renderDOCX builds the document on the default godocx template, which carries
// the Title, Heading and List Bullet styles.
func renderDOCX(blocks []block) ([]byte, error) {
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, err
	}
	for _, b := range blocks {
		switch b.kind {
		case title:
			if _, err := doc.AddHeading(b.text, 0); err != nil {
				return nil, err
			}
		case heading:
			if _, err := doc.AddHeading(b.text, 1); err != nil {
				return nil, err
			}
		case bullet:
			doc.AddParagraph(b.text).Style("List Bullet")
		default:
			// one paragraph per line; run text cannot carry newlines
			for _, line := range strings.Split(b.text, "\n") {
				doc.AddParagraph(line)
			}
		}
	}

	var buf bytes.Buffer
	if err := doc.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
