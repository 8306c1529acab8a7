// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-graph/pkg/types"
)

func author(id, name string, h float64, sector string) types.Author {
	return types.Author{AuthorID: id, FullName: name, HIndex: h, ResearchSector: sector}
}

func pub(id string, authors ...string) types.Publication {
	return types.Publication{
		PublicationID:   id,
		AuthorList:      authors,
		TopicList:       []string{},
		PublicationYear: 2020,
		DOI:             "10.1/" + id,
	}
}

func authorIDs(authors []types.Author) []string {
	ids := make([]string, len(authors))
	for i, a := range authors {
		ids[i] = a.AuthorID
	}
	return ids
}

func TestReconcileTwoWayCollision(t *testing.T) {
	authors := []types.Author{
		author("1", "Alice", 5, "A"),
		author("2", "Alice", 9, "A"),
		author("3", "Bob", 3, "B"),
	}
	pubs := []types.Publication{pub("p1", "1", "3")}

	res := Reconcile(authors, pubs, nil)

	assert.Equal(t, []types.Author{
		author("2", "Alice", 9, "A"),
		author("3", "Bob", 3, "B"),
	}, res.Authors)
	assert.Equal(t, []string{"2", "3"}, res.Publications[0].AuthorList)

	require.Len(t, res.Decisions, 1)
	assert.Equal(t, Decision{
		Pass: 1, FullName: "Alice",
		CanonicalID: "2", CanonicalHIndex: 9,
		RemovedID: "1", RemovedHIndex: 5,
		RewrittenRefs: 1,
	}, res.Decisions[0])
}

func TestReconcileThreeWaySinglePass(t *testing.T) {
	authors := []types.Author{
		author("1", "X", 5, "S"),
		author("2", "X", 9, "S"),
		author("3", "X", 1, "S"),
	}
	pubs := []types.Publication{pub("p1", "3", "1")}

	res := Reconcile(authors, pubs, nil)

	// Only the lowest h-index record goes; "1" survives this pass.
	assert.Equal(t, []string{"1", "2"}, authorIDs(res.Authors))
	assert.Equal(t, []string{"2", "1"}, res.Publications[0].AuthorList)
	assert.Equal(t, []string{"X"}, res.Unresolved())
	assert.Equal(t, 1, res.Passes)
}

func TestConvergeResolvesThreeWay(t *testing.T) {
	authors := []types.Author{
		author("1", "X", 5, "S"),
		author("2", "X", 9, "S"),
		author("3", "X", 1, "S"),
	}
	pubs := []types.Publication{pub("p1", "3", "1")}
	incoming := []types.Publication{pub("i1", "1")}

	res := Converge(authors, pubs, incoming)

	assert.Equal(t, []string{"2"}, authorIDs(res.Authors))
	assert.Equal(t, []string{"2", "2"}, res.Publications[0].AuthorList)
	assert.Equal(t, []string{"2"}, res.IncomingPublications[0].AuthorList)
	assert.Empty(t, res.Unresolved())
	assert.Equal(t, 2, res.Passes)

	require.Len(t, res.Decisions, 2)
	assert.Equal(t, "3", res.Decisions[0].RemovedID)
	assert.Equal(t, 1, res.Decisions[0].Pass)
	assert.Equal(t, "1", res.Decisions[1].RemovedID)
	assert.Equal(t, 2, res.Decisions[1].Pass)
	// Pass 2 sees "1" in both batches.
	assert.Equal(t, 2, res.Decisions[1].RewrittenRefs)
}

func TestTieBreaks(t *testing.T) {
	tests := []struct {
		name        string
		authors     []types.Author
		wantKeep    string
		wantRemoved string
	}{
		{
			name:        "all tied keeps first removes last",
			authors:     []types.Author{author("a", "N", 4, ""), author("b", "N", 4, "")},
			wantKeep:    "a",
			wantRemoved: "b",
		},
		{
			name:        "three tied keeps first removes last",
			authors:     []types.Author{author("a", "N", 4, ""), author("b", "N", 4, ""), author("c", "N", 4, "")},
			wantKeep:    "a",
			wantRemoved: "c",
		},
		{
			name:        "max tie goes to first",
			authors:     []types.Author{author("a", "N", 1, ""), author("b", "N", 8, ""), author("c", "N", 8, "")},
			wantKeep:    "b",
			wantRemoved: "a",
		},
		{
			name:        "min tie goes to last",
			authors:     []types.Author{author("a", "N", 9, ""), author("b", "N", 2, ""), author("c", "N", 2, "")},
			wantKeep:    "a",
			wantRemoved: "c",
		},
		{
			name:        "fractional values are compared exactly",
			authors:     []types.Author{author("a", "N", 4.5, ""), author("b", "N", 4.25, ""), author("c", "N", 4.75, "")},
			wantKeep:    "c",
			wantRemoved: "b",
		},
		{
			name:        "fractional above integral",
			authors:     []types.Author{author("a", "N", 4, ""), author("b", "N", 4.1, "")},
			wantKeep:    "b",
			wantRemoved: "a",
		},
		{
			name: "interleaved with other names",
			authors: []types.Author{
				author("a", "N", 2, ""), author("z", "Other", 1, ""),
				author("b", "N", 2, ""), author("c", "N", 7, ""),
			},
			wantKeep:    "c",
			wantRemoved: "b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Reconcile(tt.authors, nil, nil)
			require.Len(t, res.Decisions, 1)
			assert.Equal(t, tt.wantKeep, res.Decisions[0].CanonicalID)
			assert.Equal(t, tt.wantRemoved, res.Decisions[0].RemovedID)
			assert.NotContains(t, authorIDs(res.Authors), tt.wantRemoved)
			assert.Contains(t, authorIDs(res.Authors), tt.wantKeep)
		})
	}
}

func TestReconcileRecordsFractionalHIndex(t *testing.T) {
	authors := []types.Author{author("1", "Alice", 4.25, "A"), author("2", "Alice", 4.5, "A")}

	res := Reconcile(authors, nil, nil)

	require.Len(t, res.Decisions, 1)
	assert.Equal(t, 4.5, res.Decisions[0].CanonicalHIndex)
	assert.Equal(t, 4.25, res.Decisions[0].RemovedHIndex)
	assert.Equal(t, []types.Author{author("2", "Alice", 4.5, "A")}, res.Authors)
}

func TestReconcileNoCollisionsIsNoop(t *testing.T) {
	authors := []types.Author{author("1", "A", 1, "s"), author("2", "B", 2, "s")}
	pubs := []types.Publication{pub("p1", "1", "2", "99")}
	incoming := []types.Publication{pub("i1", "2")}

	res := Reconcile(authors, pubs, incoming)

	assert.Equal(t, authors, res.Authors)
	assert.Equal(t, pubs, res.Publications)
	assert.Equal(t, incoming, res.IncomingPublications)
	assert.Empty(t, res.Decisions)
}

func TestRewriteMatchesWholeIDs(t *testing.T) {
	authors := []types.Author{
		author("1", "Dup", 1, ""),
		author("5", "Dup", 3, ""),
		author("12", "Other", 2, ""),
	}
	pubs := []types.Publication{pub("p1", "12", "1", "21", "1")}

	res := Reconcile(authors, pubs, nil)

	assert.Equal(t, []string{"12", "5", "21", "5"}, res.Publications[0].AuthorList)
	assert.Equal(t, 2, res.Decisions[0].RewrittenRefs)
}

func TestReconcileRewritesIncoming(t *testing.T) {
	authors := []types.Author{author("7", "Kim", 10, ""), author("8", "Kim", 2, "")}
	incoming := []types.Publication{pub("i1", "8"), pub("i2", "9", "8")}

	res := Reconcile(authors, nil, incoming)

	assert.Equal(t, []string{"7"}, res.IncomingPublications[0].AuthorList)
	assert.Equal(t, []string{"9", "7"}, res.IncomingPublications[1].AuthorList)
	assert.Nil(t, res.Publications)
}

func TestReconcileDoesNotMutateInputs(t *testing.T) {
	authors := []types.Author{author("1", "A", 1, ""), author("2", "A", 2, "")}
	pubs := []types.Publication{pub("p1", "1")}

	_ = Reconcile(authors, pubs, nil)

	assert.Len(t, authors, 2)
	assert.Equal(t, []string{"1"}, pubs[0].AuthorList)
}

func TestIndependentGroups(t *testing.T) {
	authors := []types.Author{
		author("1", "A", 1, ""), author("2", "B", 5, ""),
		author("3", "A", 4, ""), author("4", "B", 2, ""),
	}
	pubs := []types.Publication{pub("p1", "1", "4")}

	res := Reconcile(authors, pubs, nil)

	assert.Equal(t, []string{"2", "3"}, authorIDs(res.Authors))
	assert.Equal(t, []string{"3", "2"}, res.Publications[0].AuthorList)
	require.Len(t, res.Decisions, 2)
	assert.Equal(t, "A", res.Decisions[0].FullName)
	assert.Equal(t, "B", res.Decisions[1].FullName)
}

// TestConvergeInvariants checks, on generated data, that a converged run
// leaves unique names, keeps list lengths, and only references surviving
// authors when every original reference was valid.
func TestConvergeInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"Ada", "Bo", "Cy", "Di", "Ed"}

	for round := 0; round < 50; round++ {
		var authors []types.Author
		n := 1 + rng.Intn(12)
		for i := 0; i < n; i++ {
			authors = append(authors, author(
				fmt.Sprintf("%d", i+1),
				names[rng.Intn(len(names))],
				float64(rng.Intn(4)),
				"s",
			))
		}
		var pubs []types.Publication
		for p := 0; p < 5; p++ {
			var list []string
			for k := rng.Intn(4); k > 0; k-- {
				list = append(list, authors[rng.Intn(len(authors))].AuthorID)
			}
			pubs = append(pubs, pub(fmt.Sprintf("p%d", p), list...))
		}

		res := Converge(authors, pubs, nil)

		seen := map[string]bool{}
		ids := map[string]bool{}
		for _, a := range res.Authors {
			require.False(t, seen[a.FullName], "round %d: duplicate name %s", round, a.FullName)
			seen[a.FullName] = true
			ids[a.AuthorID] = true
		}
		assert.Len(t, res.Authors, len(seen))
		for i, p := range res.Publications {
			require.Len(t, p.AuthorList, len(pubs[i].AuthorList))
			for _, id := range p.AuthorList {
				require.True(t, ids[id], "round %d: dangling author id %s", round, id)
			}
		}
	}
}
