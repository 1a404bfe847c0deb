package domain

// NotificationKind selects message copy
type NotificationKind string

const (
	KindReceived           NotificationKind = "received"
	KindApproved           NotificationKind = "approved"
	KindRejected           NotificationKind = "rejected"
	KindRejectedByConflict NotificationKind = "rejected_by_conflict"
	KindCancelled          NotificationKind = "cancelled"
	KindSlotNowAvailable   NotificationKind = "slot_now_available"
	KindInstantApproval    NotificationKind = "instant_approval"
)

// Channel is where a notification goes
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelBroadcast Channel = "broadcast"
)
