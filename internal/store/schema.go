package store

import "fmt"

// Two collections, dimensioned at startup and never after: the ANN
// indexes bake the vector length in. Inner-product ops match the metric
// the search side queries with.
func schemaStatements(dim int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS calls_metadata (
			call_id BIGINT PRIMARY KEY,
			metadata JSONB NOT NULL,
			file_name_vector vector(%d) NOT NULL
		)`, dim),
		`CREATE INDEX IF NOT EXISTS calls_metadata_file_name_vector_idx
			ON calls_metadata USING ivfflat (file_name_vector vector_ip_ops) WITH (lists = 1024)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS call_transcripts (
			id BIGSERIAL PRIMARY KEY,
			call_id BIGINT NOT NULL,
			text VARCHAR(2048) NOT NULL,
			speaker VARCHAR(64) NOT NULL,
			start_time REAL NOT NULL,
			end_time REAL NOT NULL,
			embedding vector(%d) NOT NULL
		)`, dim),
		`CREATE INDEX IF NOT EXISTS call_transcripts_call_id_idx
			ON call_transcripts (call_id)`,
		`CREATE INDEX IF NOT EXISTS call_transcripts_embedding_idx
			ON call_transcripts USING ivfflat (embedding vector_ip_ops) WITH (lists = 1024)`,
	}
}
