package store

import (
	"context"
	"sort"
	"time"
)

// Session is a heartbeat entry for a visitor
type Session struct {
	IP       string    `json:"ip"`
	Email    string    `json:"email,omitempty"`
	Name     string    `json:"name,omitempty"`
	LastSeen time.Time `json:"lastSeen"`
	Device   string    `json:"device,omitempty"`
}

// Heartbeat records activity for ip: the previous entry for that ip is
// replaced by a fresh one stamped now, entries idle for longer than the
// session TTL are dropped, and the list is persisted.
// Cost is O(n) in the number of distinct IPs seen within the TTL.
func (s *Store) Heartbeat(ctx context.Context, ip, email, name, device string) (Session, error) {
	var sessions []Session
	if _, err := s.load(ctx, KeySessions, &sessions); err != nil {
		return Session{}, err
	}

	now := s.Now()
	entry := Session{IP: ip, Email: email, Name: name, LastSeen: now, Device: device}

	kept := make([]Session, 0, len(sessions)+1)
	for _, sess := range sessions {
		if sess.IP == ip {
			continue
		}
		kept = append(kept, sess)
	}
	kept = append(kept, entry)
	kept = s.prune(kept, now)

	if err := s.save(ctx, KeySessions, kept); err != nil {
		return Session{}, err
	}
	return entry, nil
}

// ListSessions returns live sessions, most recently seen first
func (s *Store) ListSessions(ctx context.Context) ([]Session, error) {
	var sessions []Session
	if _, err := s.load(ctx, KeySessions, &sessions); err != nil {
		return nil, err
	}
	sessions = s.prune(sessions, s.Now())
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].LastSeen.After(sessions[j].LastSeen) })
	return sessions, nil
}

// PruneSessions drops expired sessions and returns how many were removed
func (s *Store) PruneSessions(ctx context.Context) (int, error) {
	var sessions []Session
	found, err := s.load(ctx, KeySessions, &sessions)
	if err != nil || !found {
		return 0, err
	}

	kept := s.prune(sessions, s.Now())
	removed := len(sessions) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(ctx, KeySessions, kept)
}

func (s *Store) prune(sessions []Session, now time.Time) []Session {
	cutoff := now.Add(-s.sessionTTL)
	kept := sessions[:0]
	for _, sess := range sessions {
		if sess.LastSeen.Before(cutoff) {
			continue
		}
		kept = append(kept, sess)
	}
	return kept
}
