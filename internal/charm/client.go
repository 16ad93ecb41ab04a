// ABOUTME: Charm Cloud KV access for the sync commands.
// ABOUTME: One-shot open/use/close; the cloud copy is a backup, not the store.
package charm

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	json "github.com/goccy/go-json"
)

const (
	dbName    = "morning"
	charmHost = "charm.2389.dev"

	// RecordPrefix namespaces daily record keys as record:<YYYY-MM-DD>.
	RecordPrefix = "record:"

	// BaselinesKey holds the single baseline set snapshot.
	BaselinesKey = "baselines"
)

// Client wraps the Charm KV database for backup pushes and restores. It is
// built for one-shot command use: open, push or pull, close. The file store
// stays the source of truth; nothing here runs in the core write path.
type Client struct {
	kv *kv.KV
}

// Open connects to the Charm-backed KV database. Account and keys come from
// the standard charm config; run 'morning sync link' first on a new machine.
// When another process holds the database lock the replica comes up
// read-only and writes are refused.
func Open() (*Client, error) {
	if err := os.Setenv("CHARM_HOST", charmHost); err != nil {
		return nil, err
	}
	db, err := kv.OpenWithDefaultsFallback(dbName)
	if err != nil {
		return nil, fmt.Errorf("open charm kv: %w", err)
	}
	return &Client{kv: db}, nil
}

// Close releases the local replica.
func (c *Client) Close() error {
	if c.kv == nil {
		return nil
	}
	return c.kv.Close()
}

// IsReadOnly reports whether another process holds the database lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// ID returns the Charm account ID.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Sync exchanges local replica and cloud state. A read-only replica cannot
// participate, so sync becomes a no-op rather than an error.
func (c *Client) Sync() error {
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

func (c *Client) set(key string, data []byte) error {
	if c.kv.IsReadOnly() {
		return fmt.Errorf("database locked by another process, writes refused")
	}
	return c.kv.Set([]byte(key), data)
}

func (c *Client) get(key string) ([]byte, error) {
	return c.kv.Get([]byte(key))
}

// keysByPrefix returns the stored keys beginning with prefix.
func (c *Client) keysByPrefix(prefix string) ([]string, error) {
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}
	matched := []string{}
	for _, key := range keys {
		if strings.HasPrefix(string(key), prefix) {
			matched = append(matched, string(key))
		}
	}
	return matched, nil
}

// unmarshalJSON decodes a cloud blob into a fresh T.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// extractDate returns the date portion of a prefixed record key.
func extractDate(key, prefix string) string {
	return strings.TrimPrefix(key, prefix)
}
