package fsm

const (
	StateAwaitingLocation = "awaiting_location"
	StateAwaitingBonus    = "awaiting_bonus"
	StateAwaitingComment  = "awaiting_comment"
)
