package models

import "time"

// FlagRecord is an append-only snapshot of a flagged message. Records live
// until the owning profile is deleted, then they go with it.
type FlagRecord struct {
	ID        string    `json:"id" bson:"_id"`
	UserKey   string    `json:"user_key" bson:"user_key"`
	GuildID   string    `json:"guild_id" bson:"guild_id"`
	ChannelID string    `json:"channel_id" bson:"channel_id"`
	MessageID string    `json:"message_id" bson:"message_id"`
	AuthorID  string    `json:"author_id" bson:"author_id"`
	Content   string    `json:"content" bson:"content"`
	Reasons   []string  `json:"reasons" bson:"reasons"`
	Timestamp time.Time `json:"ts" bson:"ts"`
}
