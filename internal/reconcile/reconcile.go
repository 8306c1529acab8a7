// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile merges authors recorded under the same full name and
// rewrites publication author lists to the surviving identifier.
//
// One pass handles every colliding name independently:
//
//   - the canonical record has the highest h-index; ties go to the record
//     that appears first in ingestion order;
//   - the removal target has the lowest h-index; ties go to the record that
//     appears last in ingestion order;
//   - exactly one record is removed per name, so a name shared by three or
//     more records needs further passes (see Converge);
//   - every author_list element equal to the removed id becomes the
//     canonical id, in both publication batches.
//
// Inputs are never modified; results are fresh slices.
package reconcile

import (
	"github.com/pdiddy/scholar-graph/pkg/types"
)

// Decision records one merge.
type Decision struct {
	Pass            int     `json:"pass" yaml:"pass"`
	FullName        string  `json:"full_name" yaml:"full_name"`
	CanonicalID     string  `json:"canonical_id" yaml:"canonical_id"`
	CanonicalHIndex float64 `json:"canonical_h_index" yaml:"canonical_h_index"`
	RemovedID       string  `json:"removed_id" yaml:"removed_id"`
	RemovedHIndex   float64 `json:"removed_h_index" yaml:"removed_h_index"`

	// RewrittenRefs counts author_list elements replaced across both
	// publication batches.
	RewrittenRefs int `json:"rewritten_refs" yaml:"rewritten_refs"`
}

// Result holds the reconciled batches and the merges that produced them.
type Result struct {
	Authors              []types.Author      `json:"authors" yaml:"authors"`
	Publications         []types.Publication `json:"publications" yaml:"publications"`
	IncomingPublications []types.Publication `json:"incoming_publications" yaml:"incoming_publications"`
	Decisions            []Decision          `json:"decisions" yaml:"decisions"`
	Passes               int                 `json:"passes" yaml:"passes"`
}

// Unresolved returns the names that still have more than one record.
func (r Result) Unresolved() []string {
	groups := collisionGroups(r.Authors)
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.name
	}
	return names
}

// Reconcile runs a single pass.
func Reconcile(authors []types.Author, pubs, incoming []types.Publication) Result {
	res := Result{
		Authors:              append([]types.Author(nil), authors...),
		Publications:         types.ClonePublications(pubs),
		IncomingPublications: types.ClonePublications(incoming),
	}
	res.Decisions = runPass(&res, 1)
	res.Passes = 1
	return res
}

// Converge repeats passes until no two authors share a full name. The loop
// is bounded by the author count because every productive pass removes at
// least one record.
func Converge(authors []types.Author, pubs, incoming []types.Publication) Result {
	res := Result{
		Authors:              append([]types.Author(nil), authors...),
		Publications:         types.ClonePublications(pubs),
		IncomingPublications: types.ClonePublications(incoming),
	}
	for pass := 1; pass <= len(authors); pass++ {
		decisions := runPass(&res, pass)
		if len(decisions) == 0 {
			break
		}
		res.Decisions = append(res.Decisions, decisions...)
		res.Passes = pass
	}
	if res.Passes == 0 {
		res.Passes = 1
	}
	return res
}

// group lists the positions of records sharing a full name, in ingestion order.
type group struct {
	name string
	idx  []int
}

// collisionGroups returns names with two or more records, ordered by the
// first appearance of each name.
func collisionGroups(authors []types.Author) []group {
	byName := make(map[string]int)
	var all []group
	for i, a := range authors {
		if gi, ok := byName[a.FullName]; ok {
			all[gi].idx = append(all[gi].idx, i)
			continue
		}
		byName[a.FullName] = len(all)
		all = append(all, group{name: a.FullName, idx: []int{i}})
	}

	var colliding []group
	for _, g := range all {
		if len(g.idx) > 1 {
			colliding = append(colliding, g)
		}
	}
	return colliding
}

// pickCanonical returns the position of the first record with the maximum h-index.
func pickCanonical(authors []types.Author, g group) int {
	best := g.idx[0]
	for _, i := range g.idx[1:] {
		if authors[i].HIndex > authors[best].HIndex {
			best = i
		}
	}
	return best
}

// pickRemoval scans the group backwards and returns the first record with
// the minimum h-index, i.e. the last-appearing one among ties.
func pickRemoval(authors []types.Author, g group) int {
	worst := g.idx[len(g.idx)-1]
	for k := len(g.idx) - 2; k >= 0; k-- {
		if i := g.idx[k]; authors[i].HIndex < authors[worst].HIndex {
			worst = i
		}
	}
	return worst
}

// runPass removes one record per colliding name from res.Authors and
// rewrites both publication batches in place.
func runPass(res *Result, pass int) []Decision {
	groups := collisionGroups(res.Authors)
	if len(groups) == 0 {
		return nil
	}

	removed := make(map[int]bool, len(groups))
	renames := make(map[string]string, len(groups))
	decisions := make([]Decision, 0, len(groups))

	for _, g := range groups {
		keep := pickCanonical(res.Authors, g)
		drop := pickRemoval(res.Authors, g)

		removed[drop] = true
		renames[res.Authors[drop].AuthorID] = res.Authors[keep].AuthorID
		decisions = append(decisions, Decision{
			Pass:            pass,
			FullName:        g.name,
			CanonicalID:     res.Authors[keep].AuthorID,
			CanonicalHIndex: res.Authors[keep].HIndex,
			RemovedID:       res.Authors[drop].AuthorID,
			RemovedHIndex:   res.Authors[drop].HIndex,
		})
	}

	survivors := make([]types.Author, 0, len(res.Authors)-len(removed))
	for i, a := range res.Authors {
		if !removed[i] {
			survivors = append(survivors, a)
		}
	}
	res.Authors = survivors

	counts := make(map[string]int, len(renames))
	rewrite(res.Publications, renames, counts)
	rewrite(res.IncomingPublications, renames, counts)
	for i := range decisions {
		decisions[i].RewrittenRefs = counts[decisions[i].RemovedID]
	}
	return decisions
}

// rewrite replaces author_list elements found in renames. Matching is on
// the whole element, so removing "1" leaves "12" untouched.
func rewrite(pubs []types.Publication, renames map[string]string, counts map[string]int) {
	for i := range pubs {
		list := pubs[i].AuthorList
		for j, id := range list {
			if to, ok := renames[id]; ok && to != id {
				list[j] = to
				counts[id]++
			}
		}
	}
}
