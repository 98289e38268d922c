// Package ledger records toolchain installations in the cache directory.
//
// The toolchain itself is identified by asking the compiler, but a pinned
// nightly or beta reports a commit date rather than the date it was requested
// with. The ledger remembers which channel and pin each install used so a
// changed pin can be detected without the network.
//
// Entries are stored as JSON in BoltDB, keyed by a monotonically increasing
// sequence so iteration order is install order.
package ledger

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.etcd.io/bbolt"
)

const (
	// FileName is the ledger database name inside the cache directory
	FileName = "provision.db"

	// bucketName is the BoltDB bucket name for install entries
	bucketName = "installs"
)

// Ledger stores install entries using BoltDB
type Ledger struct {
	db   *bbolt.DB
	root string
}

// Open opens (creating if needed) the ledger in cacheDir
func Open(cacheDir string) (*Ledger, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, eris.Wrap(err, "failed to create cache directory")
	}

	dbPath := filepath.Join(cacheDir, FileName)
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, eris.Wrap(err, "failed to open ledger database")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, eris.Wrap(err, "failed to create ledger bucket")
	}

	return &Ledger{
		db:   db,
		root: cacheDir,
	}, nil
}

// Close closes the ledger database
func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}

	return nil
}

// Record appends an entry
func (l *Ledger) Record(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "failed to encode ledger entry")
	}

	err = l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName))

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		return b.Put(itob(seq), data)
	})
	if err != nil {
		return eris.Wrap(err, "failed to store ledger entry")
	}

	return nil
}

// Last returns the most recent entry, or nil if there is none
func (l *Ledger) Last() (*Entry, error) {
	var entry *Entry

	err := l.db.View(func(tx *bbolt.Tx) error {
		_, data := tx.Bucket([]byte(bucketName)).Cursor().Last()
		if data == nil {
			return nil
		}

		entry = &Entry{}
		return json.Unmarshal(data, entry)
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to read ledger")
	}

	return entry, nil
}

// List returns all entries, oldest first
func (l *Ledger) List() ([]Entry, error) {
	var entries []Entry

	err := l.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).ForEach(func(_, data []byte) error {
			var entry Entry
			if err := json.Unmarshal(data, &entry); err != nil {
				return err
			}

			entries = append(entries, entry)
			return nil
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to read ledger")
	}

	return entries, nil
}

// Clear removes all entries
func (l *Ledger) Clear() error {
	err := l.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketName)); err != nil {
			return err
		}

		_, err := tx.CreateBucket([]byte(bucketName))
		return err
	})
	if err != nil {
		return eris.Wrap(err, "failed to clear ledger")
	}

	return nil
}

// Stats returns the number of entries and the size of the database file
func (l *Ledger) Stats() (int, int64, error) {
	var count int

	err := l.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketName)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, 0, eris.Wrap(err, "failed to read ledger")
	}

	info, err := os.Stat(filepath.Join(l.root, FileName))
	if err != nil {
		return count, 0, eris.Wrap(err, "failed to stat ledger")
	}

	return count, info.Size(), nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
