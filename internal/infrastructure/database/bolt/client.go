// Package bolt is a single-node kv.Store backed by a bbolt file, for
// deployments without Redis.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/your-org/solar-storefront/internal/infrastructure/kv"
	bolt "go.etcd.io/bbolt"
)

const (
	// ErrUnableToOpen means we had an issue establishing a connection (or creating the database)
	ErrUnableToOpen = "unable to open boltdb; is another storefront process running? %v"
)

var storeBucket = []byte("storev1")

// Client is a client for the boltDB data store.
type Client struct {
	Path string
	db   *bolt.DB
	now  func() time.Time
}

var _ kv.Store = (*Client)(nil)

// NewClient returns an instance of a Client.
func NewClient(path string) *Client {
	return &Client{
		Path: path,
		now:  time.Now,
	}
}

// Open / create boltDB file.
func (c *Client) Open(ctx context.Context) error {
	if dir := filepath.Dir(c.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	db, err := bolt.Open(c.Path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return fmt.Errorf(ErrUnableToOpen, err)
	}
	c.db = db

	return c.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(storeBucket)
		return err
	})
}

// Close the connection to the bolt database
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the value of key. Expired values are reported as missing and
// removed lazily on the next write of that key.
func (c *Client) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(storeBucket).Get([]byte(key))
		if raw == nil || len(raw) < 8 {
			return kv.ErrNotFound
		}
		expires := int64(binary.BigEndian.Uint64(raw[:8]))
		if expires != 0 && c.now().UnixNano() >= expires {
			return kv.ErrNotFound
		}
		// bolt values are only valid inside the transaction
		out = append([]byte(nil), raw[8:]...)
		return nil
	})
	return out, err
}

// Set stores value prefixed with its expiry time
func (c *Client) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, 8+len(value))
	if ttl > 0 {
		binary.BigEndian.PutUint64(buf[:8], uint64(c.now().Add(ttl).UnixNano()))
	}
	copy(buf[8:], value)

	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(storeBucket).Put([]byte(key), buf)
	})
}

// Delete removes key
func (c *Client) Delete(_ context.Context, key string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(storeBucket).Delete([]byte(key))
	})
}
