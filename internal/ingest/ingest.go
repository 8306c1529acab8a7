// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest reads the four tabular inputs into typed record batches.
// Columns are mapped by position, never by header text. Identifier fields
// are normalized to a canonical string form and list cells are reduced to
// the ordered digit runs they contain.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Column counts of the positional schemas.
const (
	authorColumns      = 4
	topicColumns       = 2
	publicationColumns = 5
)

var (
	digitRun = regexp.MustCompile(`[0-9]+`)

	// integralDecimal matches "12.0" and "12.00" but not exponent forms.
	integralDecimal = regexp.MustCompile(`^([0-9]+)\.0+$`)
)

// ParseError reports a row that could not be converted. Ingestion stops at
// the first one.
type ParseError struct {
	File   string
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("%s:%d: column %s %q: %v", e.File, e.Line, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var (
	// ErrNotInteger is wrapped by ParseError when an integer cell has no
	// integral value.
	ErrNotInteger = errors.New("not an integer")

	// ErrNotNumber is wrapped by ParseError when a numeric cell is not a
	// finite number.
	ErrNotNumber = errors.New("not a number")
)

// Options controls how one input is read.
type Options struct {
	// Name labels errors, usually the file path.
	Name string

	Format Format

	// Delimiter is the CSV field separator. Zero means ','.
	Delimiter rune

	// Header skips the first row.
	Header bool
}

// ReadAuthors parses the authors input: author_id, full_name, h_index,
// research_sector.
func ReadAuthors(r io.Reader, opts Options) ([]types.Author, error) {
	rows, err := readRows(r, opts, authorColumns)
	if err != nil {
		return nil, err
	}
	authors := make([]types.Author, 0, len(rows))
	for _, row := range rows {
		h, err := parseNumber(row.fields[2])
		if err != nil {
			return nil, row.errorf(opts.Name, "h_index", err)
		}
		authors = append(authors, types.Author{
			AuthorID:       NormalizeID(row.fields[0]),
			FullName:       row.fields[1],
			HIndex:         h,
			ResearchSector: NormalizeID(row.fields[3]),
		})
	}
	return authors, nil
}

// ReadTopics parses the topics input: topic_id, name. An empty name becomes
// types.TopicNameNotAvailable.
func ReadTopics(r io.Reader, opts Options) ([]types.Topic, error) {
	rows, err := readRows(r, opts, topicColumns)
	if err != nil {
		return nil, err
	}
	topics := make([]types.Topic, 0, len(rows))
	for _, row := range rows {
		name := row.fields[1]
		if strings.TrimSpace(name) == "" {
			name = types.TopicNameNotAvailable
		}
		topics = append(topics, types.Topic{
			TopicID: NormalizeID(row.fields[0]),
			Name:    name,
		})
	}
	return topics, nil
}

// ReadPublications parses a publications or incoming publications input:
// publication_id, author_list, topic_list, publication_year, doi.
func ReadPublications(r io.Reader, opts Options) ([]types.Publication, error) {
	rows, err := readRows(r, opts, publicationColumns)
	if err != nil {
		return nil, err
	}
	pubs := make([]types.Publication, 0, len(rows))
	for _, row := range rows {
		year, err := parseInteger(row.fields[3])
		if err != nil {
			return nil, row.errorf(opts.Name, "publication_year", err)
		}
		pubs = append(pubs, types.Publication{
			PublicationID:   NormalizeID(row.fields[0]),
			AuthorList:      ExtractIDs(row.fields[1]),
			TopicList:       ExtractIDs(row.fields[2]),
			PublicationYear: year,
			DOI:             strings.TrimSpace(row.fields[4]),
		})
	}
	return pubs, nil
}

// ExtractIDs returns every maximal run of decimal digits in cell, left to
// right. A cell with no digits yields an empty, non-nil slice.
func ExtractIDs(cell string) []string {
	ids := digitRun.FindAllString(cell, -1)
	if ids == nil {
		return []string{}
	}
	return ids
}

// NormalizeID trims raw and drops an all-zero fraction ("12.0" becomes
// "12"), so ids that a spreadsheet stored as numbers compare equal as
// strings. Any other text, exponent forms included, is kept as written.
func NormalizeID(raw string) string {
	s := strings.TrimSpace(raw)
	if m := integralDecimal.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// parseNumber accepts any finite decimal or float rendering.
func parseNumber(raw string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotNumber
	}
	return f, nil
}

// parseInteger accepts plain integers and integral float renderings.
func parseInteger(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, ErrNotInteger
	}
	return int64(f), nil
}

// LoadDataset reads all four inputs named by cfg. The first failure aborts
// the load.
func LoadDataset(cfg types.InputConfig) (types.Dataset, error) {
	var ds types.Dataset

	if err := readFile(cfg, cfg.Authors, func(r io.Reader, opts Options) error {
		var err error
		ds.Authors, err = ReadAuthors(r, opts)
		return err
	}); err != nil {
		return types.Dataset{}, err
	}

	if err := readFile(cfg, cfg.Topics, func(r io.Reader, opts Options) error {
		var err error
		ds.Topics, err = ReadTopics(r, opts)
		return err
	}); err != nil {
		return types.Dataset{}, err
	}

	if err := readFile(cfg, cfg.Publications, func(r io.Reader, opts Options) error {
		var err error
		ds.Publications, err = ReadPublications(r, opts)
		return err
	}); err != nil {
		return types.Dataset{}, err
	}

	if err := readFile(cfg, cfg.IncomingPublications, func(r io.Reader, opts Options) error {
		var err error
		ds.IncomingPublications, err = ReadPublications(r, opts)
		return err
	}); err != nil {
		return types.Dataset{}, err
	}

	return ds, nil
}

// ResolvePath joins name to cfg.Dir unless name is absolute.
func ResolvePath(cfg types.InputConfig, name string) string {
	if filepath.IsAbs(name) || cfg.Dir == "" {
		return name
	}
	return filepath.Join(cfg.Dir, name)
}

func readFile(cfg types.InputConfig, name string, read func(io.Reader, Options) error) error {
	if name == "" {
		return fmt.Errorf("input file name not configured")
	}
	path := ResolvePath(cfg, name)

	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	delim, err := parseDelimiter(cfg.Delimiter)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	defer f.Close()

	return read(f, Options{
		Name:      path,
		Format:    format,
		Delimiter: delim,
		Header:    cfg.Header,
	})
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", s)
	}
	return runes[0], nil
}
