// Package nvstore is an in-memory exact-match vector similarity search
// engine for dense float32 embeddings attached to small text documents.
//
// A store lives in two phases. During LOADING, any number of goroutines
// may call AddDocument concurrently; every record is packed into a single
// arena allocation so an embedding sits cache-adjacent to its text.
// Finalize L2-normalizes all embeddings and flips the store to SERVING,
// after which Search runs a parallel brute-force dot-product scan and
// returns the k best matches by cosine similarity.
//
//	store, err := nvstore.New(1536)
//	if err != nil { ... }
//	defer store.Close()
//
//	_ = store.AddDocument([]byte(`{"id":"a","text":"hello","metadata":{"embedding":[...]}}`))
//	store.Finalize()
//
//	results, err := store.Search(query, 10)
//
// The loader package feeds a store from a directory of JSON files (or an
// object store) through a bounded producer/consumer pipeline.
package nvstore
