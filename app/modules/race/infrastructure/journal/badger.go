package racejournal

import (
	"errors"
	"fmt"

	raceservice "github.com/Black-And-White-Club/race-tally/app/modules/race/application"
	"github.com/dgraph-io/badger/v3"
	"github.com/vmihailenco/msgpack/v5"
)

const sessionEntity = "session"

// BadgerJournal stores live session snapshots in a local badger database,
// one msgpack value per session under "session/<id>".
type BadgerJournal struct {
	db     *badger.DB
	prefix []byte
}

// Open opens (or creates) a journal directory. An empty dir keeps the journal in memory.
func Open(dir string) (*BadgerJournal, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open session journal: %w", err)
	}
	return New(db), nil
}

// New wraps an open badger database.
func New(db *badger.DB) *BadgerJournal {
	return &BadgerJournal{db: db, prefix: []byte(sessionEntity + "/")}
}

func (j *BadgerJournal) key(sessionID string) []byte {
	return []byte(fmt.Sprintf("%s/%s", sessionEntity, sessionID))
}

// Save overwrites the session's snapshot.
func (j *BadgerJournal) Save(snapshot raceservice.SessionSnapshot) error {
	buf, err := msgpack.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal session snapshot: %w", err)
	}
	return j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(j.key(snapshot.SessionID), buf)
	})
}

// Delete removes the session. Deleting an unknown session is not an error.
func (j *BadgerJournal) Delete(sessionID string) error {
	return j.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(j.key(sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Load returns one session's snapshot.
func (j *BadgerJournal) Load(sessionID string) (raceservice.SessionSnapshot, error) {
	var snap raceservice.SessionSnapshot
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(j.key(sessionID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return msgpack.Unmarshal(val, &snap)
		})
	})
	if err != nil {
		return raceservice.SessionSnapshot{}, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return snap, nil
}

// List returns every journaled session.
func (j *BadgerJournal) List() ([]raceservice.SessionSnapshot, error) {
	var snapshots []raceservice.SessionSnapshot
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(j.prefix); it.ValidForPrefix(j.prefix); it.Next() {
			var snap raceservice.SessionSnapshot
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &snap)
			}); err != nil {
				return err
			}
			snapshots = append(snapshots, snap)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return snapshots, nil
}

// Close releases the database.
func (j *BadgerJournal) Close() error {
	return j.db.Close()
}

var _ raceservice.SessionJournal = (*BadgerJournal)(nil)
