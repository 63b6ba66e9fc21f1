package store

import (
	"context"
	"strings"
)

// Ban adds ip to the ban list. Banning an already banned ip is a no-op.
func (s *Store) Ban(ctx context.Context, ip string) error {
	ip = normalizeIP(ip)
	bans, err := s.ListBanned(ctx)
	if err != nil {
		return err
	}
	for _, banned := range bans {
		if banned == ip {
			return nil
		}
	}
	return s.save(ctx, KeyBans, append(bans, ip))
}

// Unban removes ip from the ban list
func (s *Store) Unban(ctx context.Context, ip string) error {
	ip = normalizeIP(ip)
	bans, err := s.ListBanned(ctx)
	if err != nil {
		return err
	}
	kept := bans[:0]
	for _, banned := range bans {
		if banned != ip {
			kept = append(kept, banned)
		}
	}
	return s.save(ctx, KeyBans, kept)
}

// IsBanned reports whether ip is on the ban list
func (s *Store) IsBanned(ctx context.Context, ip string) (bool, error) {
	ip = normalizeIP(ip)
	bans, err := s.ListBanned(ctx)
	if err != nil {
		return false, err
	}
	for _, banned := range bans {
		if banned == ip {
			return true, nil
		}
	}
	return false, nil
}

// ListBanned returns the banned IPs
func (s *Store) ListBanned(ctx context.Context) ([]string, error) {
	bans := []string{}
	if _, err := s.load(ctx, KeyBans, &bans); err != nil {
		return nil, err
	}
	return bans, nil
}

func normalizeIP(ip string) string {
	return strings.TrimSpace(ip)
}
