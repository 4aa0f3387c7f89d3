package models

import (
	"os"
	"strconv"
)

// SetActivityArgs are the args of SET_ACTIVITY. A nil Activity clears the
// presence.
type SetActivityArgs struct {
	PID      int       `json:"pid"`
	Activity *Activity `json:"activity,omitempty"`
}

// NewSetActivityArgs wraps a normalized copy of a for the current process.
func NewSetActivityArgs(a Activity) SetActivityArgs {
	n := a.Normalize()
	return SetActivityArgs{PID: os.Getpid(), Activity: &n}
}

// ClearActivityArgs returns the args that clear the presence.
func ClearActivityArgs() SetActivityArgs {
	return SetActivityArgs{PID: os.Getpid()}
}

// SendActivityJoinInviteArgs identifies the user to invite. Discord expects
// the snowflake as a string.
type SendActivityJoinInviteArgs struct {
	UserID string `json:"user_id"`
}

func NewSendActivityJoinInviteArgs(userID uint64) SendActivityJoinInviteArgs {
	return SendActivityJoinInviteArgs{UserID: strconv.FormatUint(userID, 10)}
}

// CloseActivityRequestArgs has the same shape as SendActivityJoinInviteArgs.
type CloseActivityRequestArgs = SendActivityJoinInviteArgs

func NewCloseActivityRequestArgs(userID uint64) CloseActivityRequestArgs {
	return NewSendActivityJoinInviteArgs(userID)
}

// SubscriptionArgs scope a SUBSCRIBE or UNSUBSCRIBE command.
type SubscriptionArgs struct {
	GuildID   string `json:"guild_id,omitempty"`
	ChannelID string `json:"channel_id,omitempty"`
}

// Subscription is the reply to SUBSCRIBE and UNSUBSCRIBE.
type Subscription struct {
	Evt Event `json:"evt"`
}
