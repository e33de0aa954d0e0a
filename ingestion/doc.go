// Package ingestion turns raw conversation transcripts into persisted
// conversations with embedded chunks.
//
// The Chunker groups ordered messages into bounded text segments with
// provenance; the Processor composes the Chunker with an embedder to produce
// chunks-with-embeddings; the Pipeline persists the processed conversation
// through the storage layer in a single transaction.
//
// Embedding failures never fail an ingestion (the embedder's fallback policy
// substitutes zero vectors); validation failures are returned synchronously
// to the caller and are not retried.
package ingestion
