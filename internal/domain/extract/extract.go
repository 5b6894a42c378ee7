// Package extract pulls the citation count and h-index out of a profile page.
package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/hiscores/internal/domain/model"
)

// Positional contract of the summary statistics table.
const (
	statsTableSelector = "table#gsc_rsb_st"
	minRows            = 3 // header + citations + h-index
	citationsRow       = 1
	hIndexRow          = 2
	valueCell          = 1 // "All" column; cell 0 is the row label
)

// Row labels used by label lookup.
const (
	citationsLabel = "citations"
	hIndexLabel    = "h-index"
)

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithLabelLookup finds the citations and h-index rows by their label cell
// instead of by position. Cell and failure semantics stay the same.
func WithLabelLookup() Option {
	return func(e *Extractor) {
		e.byLabel = true
	}
}

// Extractor turns raw profile HTML into a metric record.
type Extractor struct {
	byLabel bool
}

// New creates an Extractor. The zero-option Extractor reads rows by position.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses page and returns the subject's record.
//
// On any failure the returned record is model.Failed() and err says why:
// structural problems wrap ErrStructure, unparsable values wrap
// ErrMalformedNumber. Callers decide whether either is fatal.
func (e *Extractor) Extract(page, name string, group model.Group) (model.Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return model.Failed(), fmt.Errorf("%w: %w", ErrStructure, err)
	}

	table := doc.Find(statsTableSelector).First()
	if table.Length() == 0 {
		return model.Failed(), ErrTableNotFound
	}

	rows := table.Find("tr")
	if rows.Length() < minRows {
		return model.Failed(), fmt.Errorf("%w: got %d", ErrTooFewRows, rows.Length())
	}

	citationsSel, hIndexSel := rows.Eq(citationsRow), rows.Eq(hIndexRow)
	if e.byLabel {
		citationsSel, hIndexSel = findRow(rows, citationsLabel), findRow(rows, hIndexLabel)
	}

	citationsText, err := cellText(citationsSel)
	if err != nil {
		return model.Failed(), fmt.Errorf("citations: %w", err)
	}
	hIndexText, err := cellText(hIndexSel)
	if err != nil {
		return model.Failed(), fmt.Errorf("h-index: %w", err)
	}

	citations, err := parseCount(citationsText)
	if err != nil {
		return model.Failed(), fmt.Errorf("citations: %w", err)
	}
	hIndex, err := parseCount(hIndexText)
	if err != nil {
		return model.Failed(), fmt.Errorf("h-index: %w", err)
	}

	return model.Record{
		Name:      model.CleanName(name),
		HIndex:    hIndex,
		Citations: citations,
		Group:     group,
	}, nil
}

// findRow returns the first row whose label cell mentions label,
// or an empty selection.
func findRow(rows *goquery.Selection, label string) *goquery.Selection {
	return rows.FilterFunction(func(_ int, row *goquery.Selection) bool {
		text := strings.ToLower(strings.TrimSpace(row.Find("td").First().Text()))
		return strings.HasPrefix(text, label)
	}).First()
}

func cellText(row *goquery.Selection) (string, error) {
	cells := row.Find("td")
	if cells.Length() <= valueCell {
		return "", ErrMissingCell
	}
	return cells.Eq(valueCell).Text(), nil
}

// parseCount accepts a plain non-negative integer, optionally padded by whitespace.
func parseCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, text)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative value %q", ErrMalformedNumber, text)
	}
	return n, nil
}
