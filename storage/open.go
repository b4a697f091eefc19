package storage

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"flyer-deals/utils"
)

// Options tune the backend Open picks.
type Options struct {
	ConnectAttempts int
	HTTPTimeout     time.Duration
	Logger          *utils.Logger
}

// Open returns the DealStore for endpoint, chosen by URL scheme:
//
//	https://project.supabase.co   PostgREST (Supabase)
//	postgres://user@host/db       PostgreSQL; credential is the password if the URL has none
//	sqlite:///path/to/deals.db    SQLite file, sqlite://:memory: for a throwaway database
func Open(endpoint, credential string, opts Options) (DealStore, error) {
	scheme, _, ok := strings.Cut(endpoint, "://")
	if !ok {
		return nil, fmt.Errorf("storage: endpoint %q has no scheme", endpoint)
	}

	switch strings.ToLower(scheme) {
	case "http", "https":
		timeout := opts.HTTPTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		return NewRESTStore(endpoint, credential, timeout, opts.Logger), nil
	case "postgres", "postgresql":
		dsn, err := postgresDSN(endpoint, credential)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(dsn, opts.ConnectAttempts, opts.Logger)
	case "sqlite":
		return NewSQLiteStore(strings.TrimPrefix(endpoint, scheme+"://"), opts.Logger)
	default:
		return nil, fmt.Errorf("storage: unsupported endpoint scheme %q", scheme)
	}
}

func postgresDSN(endpoint, credential string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("storage: parse postgres url: %w", err)
	}
	if u.User == nil {
		u.User = url.UserPassword("postgres", credential)
	} else if _, has := u.User.Password(); !has {
		u.User = url.UserPassword(u.User.Username(), credential)
	}
	return u.String(), nil
}
