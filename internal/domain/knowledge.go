package domain

import "time"

// KnowledgeBase is the client-side view of a server-managed contract.
// Read-mostly: the service owns the record; the client caches it.
type KnowledgeBase struct {
	ID             string
	Name           string
	Category       string
	Description    string
	EmbeddingModel string
	CreatedAt      time.Time
}
