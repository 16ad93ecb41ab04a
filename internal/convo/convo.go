// ABOUTME: Conversation history store backed by badger with per-entry TTL.
// ABOUTME: Old turns expire on their own instead of needing a prune pass.
package convo

import (
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/harperreed/morning/internal/config"
)

// DefaultLimit is how many recent turns Recent returns when no limit is given.
const DefaultLimit = 20

// keyPrefix namespaces conversation entries inside the badger keyspace.
const keyPrefix = "msg:"

// keyTimeLayout is RFC 3339 with zero-padded nanoseconds so that lexical key
// order matches chronological order. RFC3339Nano trims trailing zeros and
// would break that.
const keyTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Message is a single conversation turn.
type Message struct {
	Timestamp string `json:"timestamp"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Store holds conversation history in a badger database. Entries carry a TTL
// equal to the conversation window, so retention happens by expiry.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens (or creates) the conversation store at dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening conversation store: %w", err)
	}
	return &Store{
		db:  db,
		ttl: time.Duration(config.ConversationWindowDays) * 24 * time.Hour,
	}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records one conversation turn. Role is "user" or "assistant".
func (s *Store) Append(role, content string) error {
	now := time.Now()
	msg := Message{
		Timestamp: now.In(config.Location()).Format(time.RFC3339),
		Role:      role,
		Content:   content,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding conversation message: %w", err)
	}

	key := keyPrefix + now.UTC().Format(keyTimeLayout) + ":" + uuid.NewString()
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), data).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("saving conversation message: %w", err)
	}
	return nil
}

// Recent returns the last n turns in chronological order. n <= 0 means
// DefaultLimit. Entries that fail to decode are skipped.
func (s *Store) Recent(n int) ([]Message, error) {
	if n <= 0 {
		n = DefaultLimit
	}

	var msgs []Message
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		seek := make([]byte, len(prefix)+1)
		copy(seek, prefix)
		seek[len(prefix)] = 0xFF

		for it.Seek(seek); it.ValidForPrefix(prefix) && len(msgs) < n; it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var m Message
				if err := json.Unmarshal(val, &m); err != nil {
					return nil
				}
				msgs = append(msgs, m)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading conversation history: %w", err)
	}

	// The reverse scan collected newest first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}
