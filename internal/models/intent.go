package models

// Intent is a deferred side effect emitted by the engine for the outer layer
// to execute. Intents are independent: executing one is never a precondition
// for another, and a failed intent never rolls back committed ledger state.
type Intent interface {
	Kind() string
}

const (
	IntentKindNotifyFlag   = "notify_flag"
	IntentKindNotifyReward = "notify_reward"
	IntentKindSyncRole     = "sync_role"
	IntentKindRemoveMember = "remove_member"
	IntentKindGrantRoles   = "grant_roles"
)

// NotifyFlagIntent asks the gateway to warn the author that their message was
// flagged and hearts were deducted.
type NotifyFlagIntent struct {
	GuildID   string   `json:"guild_id"`
	ChannelID string   `json:"channel_id"`
	MessageID string   `json:"message_id"`
	UserID    string   `json:"user_id"`
	Reasons   []string `json:"reasons"`
	Deducted  int      `json:"deducted"`
	HeartsNow int      `json:"hearts_now"`
}

func (NotifyFlagIntent) Kind() string { return IntentKindNotifyFlag }

// NotifyRewardIntent asks the gateway to tell a member they earned hearts.
// Reaction is a hint for an emoji acknowledgement on the triggering message.
type NotifyRewardIntent struct {
	GuildID     string `json:"guild_id"`
	ChannelID   string `json:"channel_id"`
	MessageID   string `json:"message_id"`
	UserID      string `json:"user_id"`
	Amount      int    `json:"amount"`
	Reason      string `json:"reason"`
	HeartsAfter int    `json:"hearts_after"`
	Reaction    string `json:"reaction,omitempty"`
}

func (NotifyRewardIntent) Kind() string { return IntentKindNotifyReward }

// SyncRoleIntent asks the gateway to make the member's platform role match
// the resolved tier. Idempotent and self-healing: the next event for the
// member emits it again.
type SyncRoleIntent struct {
	GuildID     string   `json:"guild_id"`
	UserID      string   `json:"user_id"`
	Tier        string   `json:"tier"`
	TierColor   int      `json:"tier_color"`
	RemoveTiers []string `json:"remove_tiers,omitempty"`
}

func (SyncRoleIntent) Kind() string { return IntentKindSyncRole }

// RemoveMemberIntent asks the gateway to remove the member from the guild.
// Ledger cleanup happens only after the gateway confirms success.
type RemoveMemberIntent struct {
	GuildID string `json:"guild_id"`
	UserID  string `json:"user_id"`
	UserKey string `json:"user_key"`
	Reason  string `json:"reason"`
}

func (RemoveMemberIntent) Kind() string { return IntentKindRemoveMember }

// GrantRolesIntent asks the gateway to hand out configured roles, used by
// exemption reconciliation.
type GrantRolesIntent struct {
	GuildID string   `json:"guild_id"`
	UserID  string   `json:"user_id"`
	Roles   []string `json:"roles"`
}

func (GrantRolesIntent) Kind() string { return IntentKindGrantRoles }
