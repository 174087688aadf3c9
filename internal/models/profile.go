package models

import (
	"fmt"
	"time"
)

// UserProfile is the per-guild reputation record for a member. The document
// key is "<guildID>:<userID>" so the same account can hold independent hearts
// in different guilds.
type UserProfile struct {
	UserKey        string    `json:"user_key" bson:"user_key"`
	GuildID        string    `json:"guild_id" bson:"guild_id"`
	UserID         string    `json:"user_id" bson:"user_id"`
	Username       string    `json:"username" bson:"username"`
	Hearts         int       `json:"hearts" bson:"hearts"`
	FlaggedCount   int       `json:"flagged_count" bson:"flagged_count"`
	LastDailyBonus string    `json:"last_daily_bonus,omitempty" bson:"last_daily_bonus,omitempty"` // ISO date "YYYY-MM-DD"
	Tier           string    `json:"tier,omitempty" bson:"tier,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// UserKey builds the guild-scoped ledger key for a member.
func UserKey(guildID, userID string) string {
	return fmt.Sprintf("%s:%s", guildID, userID)
}
