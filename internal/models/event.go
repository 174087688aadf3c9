package models

// Account is a lightweight reference to a chat-platform account as seen in a
// message event (the author, a mentioned member, or a reply parent's author).
type Account struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Bot      bool   `json:"bot"`
}

// MessageEvent is one inbound message as delivered by the platform gateway.
// The engine treats it as an independent unit of work.
type MessageEvent struct {
	GuildID       string   `json:"guild_id"`
	ChannelID     string   `json:"channel_id"`
	MessageID     string   `json:"message_id"`
	Author        Account  `json:"author"`
	AuthorRoleIDs []string `json:"author_role_ids,omitempty"`
	Content       string   `json:"content"`

	// ReplyTo is the resolved author of the message being replied to, if the
	// gateway could resolve the reference.
	ReplyTo  *Account  `json:"reply_to,omitempty"`
	Mentions []Account `json:"mentions,omitempty"`
}

// Validate checks the fields the pipeline cannot work without.
func (e *MessageEvent) Validate() map[string]string {
	errors := make(map[string]string)

	if e.GuildID == "" {
		errors["guild_id"] = "Guild ID is required"
	}
	if e.MessageID == "" {
		errors["message_id"] = "Message ID is required"
	}
	if e.Author.ID == "" {
		errors["author"] = "Author ID is required"
	}

	return errors
}
