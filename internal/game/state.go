package game

// SessionStatus represents the lifecycle of a hosted session
type SessionStatus string

const (
	StatusActive  SessionStatus = "ACTIVE"
	StatusEnded   SessionStatus = "ENDED"
	StatusExpired SessionStatus = "EXPIRED"
)
