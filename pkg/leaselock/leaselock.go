// Package leaselock provides a database-backed lease so that only one
// process at a time performs a full-corpus replace. Leases expire on
// their own, so a crashed holder never blocks the next run for good.
package leaselock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// ErrBusy is returned when another holder owns an unexpired lease.
var ErrBusy = errors.New("lease lock busy")

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Client struct {
	db dbConn
}

type Lease struct {
	Key   string
	Token string

	client   *Client
	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(pool *pgxpool.Pool) *Client {
	return &Client{db: pool}
}

// WithLease runs fn while holding the lease on key, releasing it afterwards.
func (c *Client) WithLease(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lease, err := c.Acquire(ctx, key, ttl)
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()
	return fn(ctx)
}

// Acquire takes the lease on key for ttl, renewing it in the background
// until released. Returns ErrBusy when another holder owns the key.
func (c *Client) Acquire(ctx context.Context, key string, ttl time.Duration) (*Lease, error) {
	if key == "" {
		return nil, errors.New("lease lock key is empty")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	token, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	var returnedKey string
	err = c.db.QueryRow(ctx, tryAcquireSQL, key, token, ttl.Milliseconds()).Scan(&returnedKey)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, err
	}

	lease := &Lease{
		Key:    key,
		Token:  token,
		client: c,
		stopCh: make(chan struct{}),
	}

	go lease.renewLoop(ctx, ttl)

	return lease, nil
}

// Release deletes the lease row. Safe to call more than once.
func (l *Lease) Release(ctx context.Context) error {
	l.stopOnce.Do(func() {
		close(l.stopCh)
	})

	_, err := l.client.db.Exec(ctx, releaseSQL, l.Key, l.Token)
	return err
}

func (l *Lease) renewLoop(ctx context.Context, ttl time.Duration) {
	renewEvery := max(ttl/2, time.Second)
	t := time.NewTicker(renewEvery)
	defer t.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ctx.Done():
			return
		case <-t.C:
			renewCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			var returnedKey string
			err := l.client.db.QueryRow(renewCtx, renewSQL, l.Key, l.Token, ttl.Milliseconds()).Scan(&returnedKey)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

const tryAcquireSQL = `
INSERT INTO app_locks (lock_key, locked_by, expires_at)
VALUES ($1, $2, now() + ($3::bigint * interval '1 millisecond'))
ON CONFLICT (lock_key) DO UPDATE
SET locked_by  = EXCLUDED.locked_by,
    expires_at = EXCLUDED.expires_at
WHERE app_locks.expires_at < now()
   OR app_locks.locked_by = EXCLUDED.locked_by
RETURNING lock_key;
`

const renewSQL = `
UPDATE app_locks
SET expires_at = now() + ($3::bigint * interval '1 millisecond')
WHERE lock_key = $1 AND locked_by = $2
RETURNING lock_key;
`

const releaseSQL = `
DELETE FROM app_locks
WHERE lock_key = $1 AND locked_by = $2;
`
