package models

import (
	"time"

	"github.com/google/uuid"
)

type Conversation struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ParticipantOneID uuid.UUID  `json:"participant_one_id" gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair"`
	ParticipantTwoID uuid.UUID  `json:"participant_two_id" gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair;index"`
	LastMessage      string     `json:"last_message" gorm:"type:text"`
	LastMessageAt    *time.Time `json:"last_message_at,omitempty" gorm:"index"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// CanonicalPair orders two participants so that a pair maps to exactly one conversation row.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() < b.String() {
		return a, b
	}
	return b, a
}

func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantOneID == userID || c.ParticipantTwoID == userID
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID uuid.UUID) uuid.UUID {
	if c.ParticipantOneID == userID {
		return c.ParticipantTwoID
	}
	return c.ParticipantOneID
}

type Message struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID  `json:"conversation_id" gorm:"type:uuid;not null;index:idx_message_conversation_created,priority:1"`
	SenderID       uuid.UUID  `json:"sender_id" gorm:"type:uuid;not null"`
	Content        string     `json:"content" gorm:"type:text;not null"`
	Read           bool       `json:"read" gorm:"not null;default:false"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index:idx_message_conversation_created,priority:2"`
}
