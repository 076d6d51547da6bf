package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChatCitation records one retrieved chunk used to ground an assistant
// message, in retrieval order.
type ChatCitation struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	DocumentTitle string
	ChunkIndex    int
	Score         float64
	Position      int
	CreatedAt     time.Time
}
