// Package export renders transcriptions as meeting-minutes documents.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/and161185/minuteminds/internal/errs"
	"github.com/and161185/minuteminds/internal/model"
)

// Format is a document type.
type Format string

// Supported formats.
const (
	DOCX Format = "docx"
	PDF  Format = "pdf"
)

// ParseFormat validates s; empty selects DOCX.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", DOCX:
		return DOCX, nil
	case PDF:
		return PDF, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q (use pdf or docx)", errs.ErrValidation, s)
	}
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == PDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Filename returns minutes_YYYYMMDD_HHMMSS.<ext>.
func (f Format) Filename(at time.Time) string {
	return "minutes_" + at.Format("20060102_150405") + "." + string(f)
}

// Render builds the document bytes.
func Render(f Format, t *model.Transcription) ([]byte, error) {
	blocks := layout(t)
	switch f {
	case DOCX:
		return renderDOCX(blocks)
	case PDF:
		return renderPDF(blocks)
	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", errs.ErrValidation, f)
	}
}

type blockKind int

const (
	title blockKind = iota
	heading
	paragraph
	bullet
)

type block struct {
	kind blockKind
	text string
}

// layout is the shared section order of both renderers.
func layout(t *model.Transcription) []block {
	b := []block{
		{title, "Meeting Minutes"},
		{paragraph, "Meeting: " + t.Filename},
		{paragraph, "Date: " + t.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	if t.Summary != nil && *t.Summary != "" {
		b = append(b, block{heading, "Summary"}, block{paragraph, *t.Summary})
	}
	b = append(b, block{heading, "Full Transcription"}, block{paragraph, t.Text})
	if len(t.Segments) > 0 {
		b = append(b, block{heading, "Segments with Timestamps"})
		for _, s := range t.Segments {
			b = append(b, block{paragraph, SegmentLine(s)})
		}
	}
	if len(t.BulletPoints) > 0 {
		b = append(b, block{heading, "Key Points"})
		for _, p := range t.BulletPoints {
			b = append(b, block{bullet, p})
		}
	}
	if len(t.KeyItems) > 0 {
		b = append(b, block{heading, "Decisions & Action Items"})
		for _, it := range t.KeyItems {
			b = append(b, block{bullet, ItemLine(it)})
		}
	}
	return b
}

// SegmentLine formats a segment as "[start - end] text" with seconds.
func SegmentLine(s model.Segment) string {
	return fmt.Sprintf("[%.2fs - %.2fs] %s", s.Start, s.End, s.Text)
}

// ItemLine formats a key item as "[status] assignee: text", omitting an absent assignee.
func ItemLine(it model.KeyItem) string {
	status := it.Status
	if status == "" {
		status = model.KeyItemStatusOpen
	}
	if it.Assignee != nil && *it.Assignee != "" {
		return fmt.Sprintf("[%s] %s: %s", status, *it.Assignee, it.Text)
	}
	return fmt.Sprintf("[%s] %s", status, it.Text)
}
