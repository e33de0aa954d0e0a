// Package reembed refreshes the embedding vectors of stored conversation
// chunks, batch by batch, after an embedding model or dimensionality
// change. It also repairs chunks left with all-zero fallback vectors by an
// embedding outage during ingestion.
//
// Unlike the ingestion path, reembedding wants embedding errors surfaced:
// wire it with an error-returning embedder so transient failures hit the
// retry logic instead of silently writing zero vectors over good ones.
package reembed
