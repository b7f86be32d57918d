package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// GolfSession is one hosted course sequence
type GolfSession struct {
	ID             int          `db:"id" json:"id"`
	Token          string       `db:"token" json:"token"`
	Seed           int64        `db:"seed" json:"seed"`
	Status         string       `db:"status" json:"status"`
	Shots          int          `db:"shots" json:"shots"`
	HolesCompleted int          `db:"holes_completed" json:"holes_completed"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	EndedAt        sql.NullTime `db:"ended_at" json:"ended_at,omitempty"`
}

// CompletedHole records a holed ball
type CompletedHole struct {
	ID           int       `db:"id" json:"id"`
	SessionToken string    `db:"session_token" json:"session_token"`
	HoleNumber   int       `db:"hole_number" json:"hole_number"`
	Shots        int       `db:"shots" json:"shots"`
	TotalShots   int       `db:"total_shots" json:"total_shots"`
	CompletedAt  time.Time `db:"completed_at" json:"completed_at"`
}

// LeaderboardEntry aggregates completed holes per session
type LeaderboardEntry struct {
	SessionToken string  `db:"session_token" json:"session_token"`
	Holes        int     `db:"holes" json:"holes"`
	Shots        int     `db:"shots" json:"shots"`
	ShotsPerHole float64 `db:"shots_per_hole" json:"shots_per_hole"`
}

// AdminAccount represents an operator allowed to manage sessions
type AdminAccount struct {
	Username    string         `db:"username" json:"username"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAuditEntry is one row of the admin audit log
type AdminAuditEntry struct {
	ID            int             `db:"id" json:"id"`
	AdminUsername string          `db:"admin_username" json:"admin_username"`
	IP            string          `db:"ip" json:"ip"`
	Route         string          `db:"route" json:"route"`
	Action        string          `db:"action" json:"action"`
	Details       json.RawMessage `db:"details" json:"details"`
	Success       bool            `db:"success" json:"success"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}
