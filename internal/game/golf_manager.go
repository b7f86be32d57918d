package game

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/playmatatu/minigolf/internal/config"
	"github.com/playmatatu/minigolf/internal/logger"
	"github.com/playmatatu/minigolf/internal/models"
	"github.com/redis/go-redis/v9"
)

// IdleSetKey is the Redis sorted set of session tokens scored by last
// activity (unix seconds).
const IdleSetKey = "session_idle"

func snapshotKey(token string) string {
	return "session:" + token + ":state"
}

// SessionInfo is the admin listing view of a session.
type SessionInfo struct {
	ID           string        `json:"id"`
	Token        string        `json:"token"`
	Seed         int64         `json:"seed"`
	Status       SessionStatus `json:"status"`
	Shots        int           `json:"shots"`
	Completed    int           `json:"completed"`
	CreatedAt    time.Time     `json:"created_at"`
	LastActivity time.Time     `json:"last_activity"`
}

// SessionManager owns all hosted sessions. Redis and the database are
// optional: a nil client disables that storage.
type SessionManager struct {
	sessions    map[string]*Session // keyed by session token
	params      Params
	rdb         *redis.Client
	db          *sqlx.DB
	config      *config.Config
	broadcaster Broadcaster
	ctx         context.Context
	mu          sync.RWMutex
}

// NewSessionManager creates a manager whose sessions run until ctx ends.
func NewSessionManager(ctx context.Context, db *sqlx.DB, rdb *redis.Client, cfg *config.Config, params Params) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		params:   params,
		rdb:      rdb,
		db:       db,
		config:   cfg,
		ctx:      ctx,
	}
}

// SetBroadcaster wires the realtime transport. Sessions created afterwards
// publish to it.
func (m *SessionManager) SetBroadcaster(b Broadcaster) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broadcaster = b
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func generateSessionID() string {
	return "golf_" + generateToken(8)
}

func randomSeed() int64 {
	var b [8]byte
	rand.Read(b[:])
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

func (m *SessionManager) tickInterval() time.Duration {
	hz := 60
	if m.config != nil && m.config.TickRateHz > 0 {
		hz = m.config.TickRateHz
	}
	return time.Second / time.Duration(hz)
}

// CreateSession starts a new hosted course. A nil seed picks a random one.
func (m *SessionManager) CreateSession(seed *int64) (*Session, error) {
	courseSeed := randomSeed()
	if seed != nil {
		courseSeed = *seed
	}

	queueSize := 64
	if m.config != nil && m.config.InputQueueSize > 0 {
		queueSize = m.config.InputQueueSize
	}

	session, err := NewSession(generateSessionID(), generateToken(16), courseSeed, m.params, queueSize)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.onEvents = m.handleEvents

	m.mu.Lock()
	session.broadcaster = m.broadcaster
	m.sessions[session.Token] = session
	m.mu.Unlock()

	m.recordSessionStart(session)
	m.touch(session.Token, session.CreatedAt)
	if err := m.saveSnapshotToRedis(session.Token, session.Snapshot()); err != nil {
		log := logger.For("session")
		log.Warn().Str("session", session.Token).Err(err).Msg("snapshot cache failed")
	}

	go session.Run(m.ctx, m.tickInterval())

	log := logger.For("session")
	log.Info().Str("session", session.Token).Int64("seed", courseSeed).Msg("session created")
	return session, nil
}

// GetSession returns a live session.
func (m *SessionManager) GetSession(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Submit forwards an input to a session and records the activity.
func (m *SessionManager) Submit(token string, in Input) error {
	s, err := m.GetSession(token)
	if err != nil {
		return err
	}
	if err := s.Submit(in); err != nil {
		return err
	}
	m.touch(token, time.Now())
	return nil
}

// CachedSnapshot reads the last snapshot stored in Redis, for sessions no
// longer held in memory.
func (m *SessionManager) CachedSnapshot(ctx context.Context, token string) (*Snapshot, error) {
	if m.rdb == nil {
		return nil, ErrSessionNotFound
	}
	data, err := m.rdb.Get(ctx, snapshotKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// EndSession stops a session and removes it from memory.
func (m *SessionManager) EndSession(token string, status SessionStatus) error {
	m.mu.Lock()
	s, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.Stop(status)
	snap := s.Snapshot()
	m.recordSessionEnd(s, snap, status)
	if err := m.saveSnapshotToRedis(token, snap); err != nil {
		log := logger.For("session")
		log.Warn().Str("session", token).Err(err).Msg("snapshot cache failed")
	}
	if m.rdb != nil {
		m.rdb.ZRem(context.Background(), IdleSetKey, token)
	}

	log := logger.For("session")
	log.Info().Str("session", token).Str("status", string(status)).Int("shots", snap.Shots).Int("completed", snap.Completed).Msg("session ended")
	return nil
}

// ListSessions returns live sessions, oldest first.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]SessionInfo, 0, len(m.sessions))
	for _, s := range m.sessions {
		snap := s.Snapshot()
		out = append(out, SessionInfo{
			ID:           s.ID,
			Token:        s.Token,
			Seed:         s.Seed,
			Status:       s.Status(),
			Shots:        snap.Shots,
			Completed:    snap.Completed,
			CreatedAt:    s.CreatedAt,
			LastActivity: s.LastActivity(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ActiveSessionCount returns the number of live sessions.
func (m *SessionManager) ActiveSessionCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// ExpireIdle ends every session inactive since before cutoff. It is the
// in-memory fallback of the Redis idle worker.
func (m *SessionManager) ExpireIdle(cutoff time.Time) []string {
	m.mu.RLock()
	var idle []string
	for token, s := range m.sessions {
		if s.LastActivity().Before(cutoff) {
			idle = append(idle, token)
		}
	}
	m.mu.RUnlock()

	expired := make([]string, 0, len(idle))
	for _, token := range idle {
		if err := m.EndSession(token, StatusExpired); err == nil {
			expired = append(expired, token)
		}
	}
	return expired
}

// handleEvents runs on the session goroutine after every published tick.
// Storage writes are handed to their own goroutine so ticks never wait on I/O.
func (m *SessionManager) handleEvents(s *Session, events []CollisionEvent) {
	for _, ev := range events {
		if ev.Type != EventHoleCompleted {
			continue
		}
		token, snap := s.Token, s.Snapshot()
		log := logger.For("session")
		log.Info().Str("session", token).Int("hole", ev.Hole).Int("shots", ev.Shots).Msg("hole completed")

		go func(ev CollisionEvent) {
			m.RecordCompletedHole(token, ev.Hole, ev.Shots, snap.Shots)
			if err := m.saveSnapshotToRedis(token, snap); err != nil {
				log := logger.For("session")
				log.Warn().Str("session", token).Err(err).Msg("snapshot cache failed")
			}
		}(ev)
	}
}

// touch schedules the idle check for a session.
func (m *SessionManager) touch(token string, at time.Time) {
	if m.rdb == nil {
		return
	}
	if err := m.rdb.ZAdd(context.Background(), IdleSetKey, redis.Z{Score: float64(at.Unix()), Member: token}).Err(); err != nil {
		log := logger.For("session")
		log.Warn().Str("session", token).Err(err).Msg("idle schedule failed")
	}
}

// saveSnapshotToRedis caches the latest snapshot of a session.
func (m *SessionManager) saveSnapshotToRedis(token string, snap Snapshot) error {
	if m.rdb == nil {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	ttl := time.Hour
	if m.config != nil && m.config.SnapshotTTLSeconds > 0 {
		ttl = time.Duration(m.config.SnapshotTTLSeconds) * time.Second
	}
	return m.rdb.SetEx(context.Background(), snapshotKey(token), data, ttl).Err()
}

func (m *SessionManager) recordSessionStart(s *Session) {
	if m.db == nil {
		return
	}
	_, err := m.db.Exec(
		`INSERT INTO golf_sessions (token, seed, status, shots, holes_completed, created_at) VALUES ($1,$2,$3,0,0,$4)`,
		s.Token, s.Seed, string(StatusActive), s.CreatedAt,
	)
	if err != nil {
		log := logger.For("session")
		log.Error().Str("session", s.Token).Err(err).Msg("record session start failed")
	}
}

func (m *SessionManager) recordSessionEnd(s *Session, snap Snapshot, status SessionStatus) {
	if m.db == nil {
		return
	}
	_, err := m.db.Exec(
		`UPDATE golf_sessions SET status=$1, shots=$2, holes_completed=$3, ended_at=NOW() WHERE token=$4`,
		string(status), snap.Shots, snap.Completed, s.Token,
	)
	if err != nil {
		log := logger.For("session")
		log.Error().Str("session", s.Token).Err(err).Msg("record session end failed")
	}
}

// RecordCompletedHole stores a holed ball.
func (m *SessionManager) RecordCompletedHole(token string, hole, shots, totalShots int) {
	if m.db == nil {
		return
	}
	_, err := m.db.Exec(
		`INSERT INTO completed_holes (session_token, hole_number, shots, total_shots, completed_at) VALUES ($1,$2,$3,$4,NOW())`,
		token, hole, shots, totalShots,
	)
	if err != nil {
		log := logger.For("session")
		log.Error().Str("session", token).Int("hole", hole).Err(err).Msg("record completed hole failed")
		return
	}
	if _, err := m.db.Exec(`UPDATE golf_sessions SET shots=$1, holes_completed=$2 WHERE token=$3`, totalShots, hole, token); err != nil {
		log := logger.For("session")
		log.Error().Str("session", token).Err(err).Msg("update session totals failed")
	}
}

// Leaderboard returns sessions ranked by average shots per hole.
func (m *SessionManager) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if m.db == nil {
		return []models.LeaderboardEntry{}, nil
	}
	entries := []models.LeaderboardEntry{}
	err := m.db.Select(&entries, `
		SELECT session_token,
		       COUNT(*) AS holes,
		       SUM(shots) AS shots,
		       SUM(shots)::float8 / COUNT(*) AS shots_per_hole
		FROM completed_holes
		GROUP BY session_token
		ORDER BY shots_per_hole ASC, holes DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SessionHistory returns the completed holes of one session.
func (m *SessionManager) SessionHistory(token string) ([]models.CompletedHole, error) {
	if m.db == nil {
		return []models.CompletedHole{}, nil
	}
	holes := []models.CompletedHole{}
	err := m.db.Select(&holes, `
		SELECT id, session_token, hole_number, shots, total_shots, completed_at
		FROM completed_holes WHERE session_token=$1 ORDER BY hole_number`, token)
	if err != nil {
		return nil, err
	}
	return holes, nil
}

// RecentSessions returns the most recently created session records,
// finished ones included.
func (m *SessionManager) RecentSessions(limit int) ([]models.GolfSession, error) {
	if m.db == nil {
		return []models.GolfSession{}, nil
	}
	sessions := []models.GolfSession{}
	err := m.db.Select(&sessions, `
		SELECT id, token, seed, status, shots, holes_completed, created_at, ended_at
		FROM golf_sessions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
