// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package graphdb

// Node MERGE patterns list every attribute, so a record whose attributes
// changed since a previous load creates a second node instead of updating
// the first.

const authorStatement = `
UNWIND $rows AS row
MERGE (a:Author {
	author_id: row.author_id,
	full_name: row.full_name,
	h_index: row.h_index,
	research_sector: row.research_sector
})
RETURN count(DISTINCT a) AS total
`

const topicStatement = `
UNWIND $rows AS row
MERGE (t:Topic {
	topic_id: row.topic_id,
	name: row.name
})
RETURN count(DISTINCT t) AS total
`

// publicationStatement serves both publication batches. Edge creation runs
// in aggregating subqueries so that a row whose authors are all unknown
// still gets its IS_ABOUT edges and is still counted. MATCH skips ids with
// no existing node.
const publicationStatement = `
UNWIND $rows AS row
MERGE (p:Publication {
	publication_id: row.publication_id,
	publication_year: row.publication_year,
	doi: row.doi,
	status: $status
})
WITH row, p
CALL {
	WITH row, p
	UNWIND row.author_list AS a_id
	MATCH (a:Author {author_id: a_id})
	MERGE (a)-[:WRITES]->(p)
	RETURN count(*) AS writes
}
CALL {
	WITH row, p
	UNWIND row.topic_list AS t_id
	MATCH (t:Topic {topic_id: t_id})
	MERGE (p)-[:IS_ABOUT]->(t)
	RETURN count(*) AS about
}
RETURN count(DISTINCT p) AS total, sum(writes) AS writes, sum(about) AS about
`

// indexStatements speed up the id lookups in publicationStatement. They are
// plain indexes: full-attribute MERGE can legitimately produce two nodes
// with one id, which a uniqueness constraint would reject.
var indexStatements = []string{
	`CREATE INDEX author_id_idx IF NOT EXISTS FOR (a:Author) ON (a.author_id)`,
	`CREATE INDEX topic_id_idx IF NOT EXISTS FOR (t:Topic) ON (t.topic_id)`,
	`CREATE INDEX publication_id_idx IF NOT EXISTS FOR (p:Publication) ON (p.publication_id)`,
}
