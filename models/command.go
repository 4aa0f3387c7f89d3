package models

// Command is the cmd field of an envelope.
type Command string

const (
	CommandDispatch               Command = "DISPATCH"
	CommandAuthorize              Command = "AUTHORIZE"
	CommandSubscribe              Command = "SUBSCRIBE"
	CommandUnsubscribe            Command = "UNSUBSCRIBE"
	CommandSetActivity            Command = "SET_ACTIVITY"
	CommandSendActivityJoinInvite Command = "SEND_ACTIVITY_JOIN_INVITE"
	CommandCloseActivityRequest   Command = "CLOSE_ACTIVITY_REQUEST"
)
