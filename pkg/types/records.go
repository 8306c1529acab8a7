// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-graph pipeline.
// Implements: record batches (Author, Topic, Publication) threaded between
// ingestion, reconciliation, topic filtering, and the graph loader;
//
//	pipeline configuration (config.go).
package types

// TopicNameNotAvailable replaces a missing topic name at ingestion time.
const TopicNameNotAvailable = "Not Available"

// PublishedStatus is the status literal stored on every Publication node.
// Incoming publications carry the same value.
const PublishedStatus = "published"

// BatchKind names one of the four record batches.
type BatchKind string

const (
	BatchAuthors              BatchKind = "authors"
	BatchTopics               BatchKind = "topics"
	BatchPublications         BatchKind = "publications"
	BatchIncomingPublications BatchKind = "incoming_publications"
)

// Batches returns the batch kinds in load order.
func Batches() []BatchKind {
	return []BatchKind{
		BatchAuthors,
		BatchTopics,
		BatchPublications,
		BatchIncomingPublications,
	}
}

// Author is one row of the authors input.
type Author struct {
	// AuthorID is unique per input row. After reconciliation it may be
	// referenced by publications that originally pointed at a duplicate.
	AuthorID string `json:"author_id" yaml:"author_id"`

	// FullName is the reconciliation key.
	FullName string `json:"full_name" yaml:"full_name"`

	// HIndex decides which duplicate survives. Fractional values are kept.
	HIndex float64 `json:"h_index" yaml:"h_index"`

	// ResearchSector is an identifier, kept as a string.
	ResearchSector string `json:"research_sector" yaml:"research_sector"`
}

// Topic is one row of the topics input.
type Topic struct {
	TopicID string `json:"topic_id" yaml:"topic_id"`

	// Name is TopicNameNotAvailable when the input cell was empty.
	Name string `json:"name" yaml:"name"`
}

// Publication is one row of the publications or incoming publications
// input. Both batches share this shape and differ only in provenance.
type Publication struct {
	PublicationID string `json:"publication_id" yaml:"publication_id"`

	// AuthorList holds author ids in the order they appear in the source cell.
	AuthorList []string `json:"author_list" yaml:"author_list"`

	// TopicList holds topic ids in the order they appear in the source cell.
	TopicList []string `json:"topic_list" yaml:"topic_list"`

	PublicationYear int64  `json:"publication_year" yaml:"publication_year"`
	DOI             string `json:"doi" yaml:"doi"`
}

// Dataset groups the four batches produced by ingestion.
type Dataset struct {
	Authors              []Author      `json:"authors" yaml:"authors"`
	Topics               []Topic       `json:"topics" yaml:"topics"`
	Publications         []Publication `json:"publications" yaml:"publications"`
	IncomingPublications []Publication `json:"incoming_publications" yaml:"incoming_publications"`
}

// Len returns the number of records in the named batch.
func (d Dataset) Len(kind BatchKind) int {
	switch kind {
	case BatchAuthors:
		return len(d.Authors)
	case BatchTopics:
		return len(d.Topics)
	case BatchPublications:
		return len(d.Publications)
	case BatchIncomingPublications:
		return len(d.IncomingPublications)
	}
	return 0
}

// ClonePublications returns a deep copy of pubs so that list rewrites do
// not alias the caller's slices.
func ClonePublications(pubs []Publication) []Publication {
	if pubs == nil {
		return nil
	}
	out := make([]Publication, len(pubs))
	for i, p := range pubs {
		out[i] = p
		out[i].AuthorList = cloneIDs(p.AuthorList)
		out[i].TopicList = cloneIDs(p.TopicList)
	}
	return out
}

// cloneIDs copies ids, keeping nil and empty lists distinct.
func cloneIDs(ids []string) []string {
	if ids == nil {
		return nil
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
