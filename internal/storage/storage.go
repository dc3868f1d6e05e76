// Package storage keeps the watcher's delivery ledger.
package storage

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Store records which statuses of which transactions were delivered, and the
// last delivered status of each transaction.
type Store interface {
	Close() error
	Seen(transactionID, status string) (bool, error)
	Mark(transactionID, status string) error
	LastStatus(transactionID string) (string, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	case "sqlite":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("sqlite storage requires a path")
		}
		return openSQLite(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

// DeliveryKey identifies one status of one transaction.
func DeliveryKey(transactionID, status string) string {
	return strings.TrimSpace(transactionID) + ":" + normalizeStatus(status)
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// entry is a stored ledger value: 8 bytes of big-endian unix expiry, then the status.
type entry struct {
	expires time.Time
	status  string
}

func (e entry) encode() []byte {
	buf := make([]byte, 8+len(e.status))
	binary.BigEndian.PutUint64(buf, uint64(e.expires.Unix()))
	copy(buf[8:], e.status)
	return buf
}

func (e entry) live(now time.Time) bool {
	return e.expires.After(now)
}

func decodeEntry(value []byte) (entry, bool) {
	if len(value) < 8 {
		return entry{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:8]))
	if unix <= 0 {
		return entry{}, false
	}
	return entry{expires: time.Unix(unix, 0), status: string(value[8:])}, true
}

// sweepGate lets at most one expiry sweep run per interval.
type sweepGate struct {
	mu    sync.Mutex
	last  atomic.Int64
	every time.Duration
}

func newSweepGate(every time.Duration, now time.Time) *sweepGate {
	g := &sweepGate{every: every}
	g.last.Store(now.Unix())
	return g
}

func (g *sweepGate) due(now time.Time) bool {
	return now.Sub(time.Unix(g.last.Load(), 0)) >= g.every
}

func (g *sweepGate) run(now time.Time, sweep func(time.Time) error) error {
	if !g.due(now) {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.due(now) {
		return nil
	}
	if err := sweep(now); err != nil {
		return err
	}
	g.last.Store(now.Unix())
	return nil
}

type noopStore struct{}

func (noopStore) Close() error                      { return nil }
func (noopStore) Seen(string, string) (bool, error) { return false, nil }
func (noopStore) Mark(string, string) error         { return nil }
func (noopStore) LastStatus(string) (string, error) { return "", nil }
