package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	// deliveries maps DeliveryKey to an entry.
	deliveriesBucket = []byte("deliveries")
	// statuses maps a transaction id to its last delivered status.
	statusesBucket = []byte("statuses")
)

type boltStore struct {
	db   *bolt.DB
	ttl  time.Duration
	gate *sweepGate
	now  func() time.Time
}

func openBolt(path string, opts Options) (Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{deliveriesBucket, statusesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	now := time.Now
	return &boltStore{
		db:   db,
		ttl:  opts.TTL,
		gate: newSweepGate(opts.CleanupInterval, now()),
		now:  now,
	}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Seen reports whether status was delivered for the transaction and has not expired.
func (b *boltStore) Seen(transactionID, status string) (bool, error) {
	_, ok, err := b.lookup(deliveriesBucket, DeliveryKey(transactionID, status))
	return ok, err
}

// LastStatus returns the most recently delivered status, or "" when none is on record.
func (b *boltStore) LastStatus(transactionID string) (string, error) {
	e, ok, err := b.lookup(statusesBucket, transactionID)
	if err != nil || !ok {
		return "", err
	}
	return e.status, nil
}

// Mark records the delivery and makes status the transaction's last status.
func (b *boltStore) Mark(transactionID, status string) error {
	if b == nil || b.db == nil {
		return nil
	}
	now := b.now()
	if err := b.gate.run(now, b.sweep); err != nil {
		return err
	}

	status = normalizeStatus(status)
	value := entry{expires: now.Add(b.ttl), status: status}.encode()
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(deliveriesBucket).Put([]byte(DeliveryKey(transactionID, status)), value); err != nil {
			return err
		}
		return tx.Bucket(statusesBucket).Put([]byte(transactionID), value)
	})
}

// lookup reads key from bucket, deleting it when it has expired or is corrupt.
func (b *boltStore) lookup(bucket []byte, key string) (entry, bool, error) {
	if b == nil || b.db == nil {
		return entry{}, false, nil
	}
	now := b.now()
	if err := b.gate.run(now, b.sweep); err != nil {
		return entry{}, false, err
	}

	var (
		found entry
		ok    bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(bucket)
		raw := bkt.Get([]byte(key))
		if raw == nil {
			return nil
		}
		e, valid := decodeEntry(raw)
		if !valid || !e.live(now) {
			return bkt.Delete([]byte(key))
		}
		found, ok = e, true
		return nil
	})
	return found, ok, err
}

func (b *boltStore) sweep(now time.Time) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{deliveriesBucket, statusesBucket} {
			c := tx.Bucket(name).Cursor()
			for k, v := c.First(); k != nil; k, v = c.Next() {
				if e, ok := decodeEntry(v); ok && e.live(now) {
					continue
				}
				if err := c.Delete(); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// count returns the number of delivery keys, expired or not.
func (b *boltStore) count() (int, error) {
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(deliveriesBucket).Stats().KeyN
		return nil
	})
	return n, err
}
