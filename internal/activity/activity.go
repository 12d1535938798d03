package activity

import (
	"time"

	"github.com/google/uuid"
)

// Activity types the bot handles.
const (
	TypeMessage            = "message"
	TypeConversationUpdate = "conversationUpdate"
)

// Account identifies a conversation participant: a user, the bot, or the
// conversation itself.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Attachment is a media item carried alongside a message.
type Attachment struct {
	ContentType string `json:"contentType"`
	ContentURL  string `json:"contentUrl"`
	Name        string `json:"name,omitempty"`
}

// Activity is a single inbound or outbound conversation event. Channels
// translate their native payloads into this shape before anything else
// touches them.
type Activity struct {
	Type         string       `json:"type" validate:"required,oneof=message conversationUpdate"`
	ID           string       `json:"id,omitempty"`
	Timestamp    time.Time    `json:"timestamp,omitempty"`
	ChannelID    string       `json:"channelId"`
	ServiceURL   string       `json:"serviceUrl,omitempty"`
	Conversation Account      `json:"conversation" validate:"required"`
	From         Account      `json:"from"`
	Recipient    Account      `json:"recipient"`
	Text         string       `json:"text,omitempty"`
	Locale       string       `json:"locale,omitempty"`
	MembersAdded []Account    `json:"membersAdded,omitempty"`
	Attachments  []Attachment `json:"attachments,omitempty"`
	ReplyToID    string       `json:"replyToId,omitempty"`
}

// Reply builds a message activity addressed back to the sender of a,
// keeping the conversation and channel routing intact.
func (a *Activity) Reply(text string) *Activity {
	return &Activity{
		Type:         TypeMessage,
		ID:           uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		ChannelID:    a.ChannelID,
		ServiceURL:   a.ServiceURL,
		Conversation: a.Conversation,
		From:         a.Recipient,
		Recipient:    a.From,
		Locale:       a.Locale,
		ReplyToID:    a.ID,
		Text:         text,
	}
}
