// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package topicfilter restricts the topic batch to topics that at least one
// publication or incoming publication references.
package topicfilter

import "github.com/pdiddy/scholar-graph/pkg/types"

// Referenced returns the set of topic ids found in any topic_list of the
// given batches.
func Referenced(batches ...[]types.Publication) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, pubs := range batches {
		for _, p := range pubs {
			for _, id := range p.TopicList {
				ids[id] = struct{}{}
			}
		}
	}
	return ids
}

// Filter returns the topics, in input order, whose id appears in pubs or
// incoming. Topic records are copied unchanged.
func Filter(topics []types.Topic, pubs, incoming []types.Publication) []types.Topic {
	ref := Referenced(pubs, incoming)
	kept := make([]types.Topic, 0, len(topics))
	for _, t := range topics {
		if _, ok := ref[t.TopicID]; ok {
			kept = append(kept, t)
		}
	}
	return kept
}
