package nvstore

// Document is the caller-visible view of a stored record. All three slices
// reference arena memory owned by the store: they stay valid until Close
// and must not be modified.
type Document struct {
	ID           []byte // stable unique identifier
	Text         []byte // searchable payload
	MetadataJSON []byte // raw metadata sub-document, retained verbatim
}

// Entry is one store row: a document plus its embedding. The embedding
// slice references dim contiguous floats inside the same arena allocation
// as the document bytes.
type Entry struct {
	Doc       Document
	Embedding []float32
}

// SearchResult is one ranked match.
type SearchResult struct {
	Score float32 // raw dot product; cosine similarity for unit vectors
	Index int     // entry index, usable with GetEntry
	Doc   Document
}
