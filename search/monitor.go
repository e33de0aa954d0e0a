package search

import (
	"github.com/poiesic/recollect/core"
	"github.com/poiesic/recollect/storage"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	AfterRanking(rows []*storage.RankedChunk)
	Finish(hits []*core.SearchHit)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)       {}
func (n *noopMonitor) AfterRanking(_ []*storage.RankedChunk) {}
func (n *noopMonitor) Finish(_ []*core.SearchHit)            {}
