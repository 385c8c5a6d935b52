package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// ErrQuotaExceeded marks a write rejected because the storage medium is
// out of room. The adapter's save path treats it specially: prune
// quarantine backups, retry once.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is the minimal key-value surface the adapter needs. BadgerKV is the
// production implementation; tests substitute in-memory fakes to simulate
// quota exhaustion and write failures.
type KV interface {
	// Get returns the value for key. The second result is false when the
	// key is absent; absence is not an error.
	Get(key string) ([]byte, bool, error)

	// Set writes value under key. Returns ErrQuotaExceeded (possibly
	// wrapped) when the medium is full.
	Set(key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys returns all keys with the given prefix, in lexical order.
	Keys(prefix string) ([]string, error)

	Close() error
}

// KVConfig configures a BadgerKV instance.
type KVConfig struct {
	// Dir is the directory for the database files. Ignored when InMemory.
	Dir string

	// InMemory disables disk persistence. Useful for tests.
	InMemory bool

	// SyncWrites forces fsync on every write. On by default for the real
	// store; tests leave it off for speed.
	SyncWrites bool

	// Logger receives badger's internal log output. Nil disables it.
	Logger *slog.Logger
}

// BadgerKV is the embedded key-value store backing the adapter.
type BadgerKV struct {
	db *badger.DB
}

// OpenKV opens (or creates) a badger database per cfg.
func OpenKV(cfg KVConfig) (*BadgerKV, error) {
	opts := badger.DefaultOptions(cfg.Dir).
		WithInMemory(cfg.InMemory).
		WithSyncWrites(cfg.SyncWrites)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open key-value store: %w", err)
	}
	return &BadgerKV{db: db}, nil
}

// Get implements KV.
func (b *BadgerKV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV. Quota-class badger failures surface as
// ErrQuotaExceeded so the adapter can run its prune-and-retry path.
func (b *BadgerKV) Set(key string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err == nil {
		return nil
	}
	if isQuotaError(err) {
		return fmt.Errorf("set %q: %w", key, ErrQuotaExceeded)
	}
	return fmt.Errorf("set %q: %w", key, err)
}

// Delete implements KV.
func (b *BadgerKV) Delete(key string) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Keys implements KV. Values are not prefetched; this only walks the LSM
// tree.
func (b *BadgerKV) Keys(prefix string) ([]string, error) {
	var keys []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan prefix %q: %w", prefix, err)
	}
	return keys, nil
}

// Close implements KV.
func (b *BadgerKV) Close() error {
	return b.db.Close()
}

// isQuotaError classifies badger failures that mean "no room", as opposed
// to corruption or misuse.
func isQuotaError(err error) bool {
	if errors.Is(err, badger.ErrTxnTooBig) {
		return true
	}
	// badger wraps ENOSPC from the value log without a sentinel.
	return strings.Contains(err.Error(), "no space left on device")
}

// badgerLogger adapts slog.Logger to badger's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
