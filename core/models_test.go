package core

import (
	"testing"
	"time"
)

func TestIDFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "same content produces same ID", content: "test content"},
		{name: "empty string", content: ""},
		{name: "long content", content: "This is a much longer piece of content that should still hash consistently"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := IDFromContent(tt.content)
			id2 := IDFromContent(tt.content)

			if id1 != id2 {
				t.Errorf("IDFromContent() produced different IDs for same content: %d vs %d", id1, id2)
			}
		})
	}
}

func TestIDFromContent_Different(t *testing.T) {
	id1 := IDFromContent("content1")
	id2 := IDFromContent("content2")

	if id1 == id2 {
		t.Errorf("IDFromContent() produced same ID for different content")
	}
}

func TestChunkID(t *testing.T) {
	id1 := ChunkID(1, 0, "hello")
	id2 := ChunkID(1, 0, "hello")
	if id1 != id2 {
		t.Errorf("ChunkID() not deterministic: %d vs %d", id1, id2)
	}

	if ChunkID(1, 0, "hello") == ChunkID(1, 1, "hello") {
		t.Errorf("ChunkID() ignored order index")
	}
	if ChunkID(1, 0, "hello") == ChunkID(2, 0, "hello") {
		t.Errorf("ChunkID() ignored conversation ID")
	}
}

func TestConversation_Ref(t *testing.T) {
	conv := Conversation{
		Id:            42,
		ScenarioTitle: "support thread",
		OriginalTitle: "general 2024-01-01",
		URL:           "https://example.com/c/42",
		CreatedAt:     time.Now(),
		Chunks:        []*Chunk{{OrderIndex: 0, Text: "a: b"}},
	}

	ref := conv.Ref()
	if ref.Id != conv.Id {
		t.Errorf("Ref().Id = %d, want %d", ref.Id, conv.Id)
	}
	if ref.ScenarioTitle != conv.ScenarioTitle {
		t.Errorf("Ref().ScenarioTitle = %q, want %q", ref.ScenarioTitle, conv.ScenarioTitle)
	}
	if ref.OriginalTitle != conv.OriginalTitle {
		t.Errorf("Ref().OriginalTitle = %q, want %q", ref.OriginalTitle, conv.OriginalTitle)
	}
	if ref.URL != conv.URL {
		t.Errorf("Ref().URL = %q, want %q", ref.URL, conv.URL)
	}
}

func TestSearchHit_Relevance(t *testing.T) {
	tests := []struct {
		name     string
		distance float32
		want     float32
	}{
		{name: "zero distance is full relevance", distance: 0.0, want: 1.0},
		{name: "half distance", distance: 0.5, want: 0.5},
		{name: "distance above one goes negative", distance: 1.25, want: -0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := SearchHit{Distance: tt.distance}
			if got := hit.Relevance(); got != tt.want {
				t.Errorf("Relevance() = %f, want %f", got, tt.want)
			}
		})
	}
}
