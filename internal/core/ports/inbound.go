package ports

import (
	"context"

	"github.com/clipsense/retrieval/internal/core/domain"
)

// QuestionAnswerer is the inbound contract for transcript Q&A.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, documentID, transcript, question string, history []domain.ChatMessage) (domain.Answer, error)
}

// CachePurger drops every cached artifact for a document, used when a
// transcript is re-acquired upstream.
type CachePurger interface {
	Purge(ctx context.Context, documentID string) error
}
