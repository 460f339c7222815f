// Package progress persists per-book reading positions: the last opened
// chapter and a set of bookmarked chapters, keyed by book identifier.
//
// Chapter positions are zero-based indices into epub.Document.Chapters.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const progressPrefix = "progress:"

var (
	// ErrNotFound is returned when no progress is stored for a book.
	ErrNotFound = errors.New("progress not found")

	// ErrInvalidBookID is returned for an empty book identifier.
	ErrInvalidBookID = errors.New("book id must not be empty")

	// ErrInvalidChapter is returned for a negative chapter index.
	ErrInvalidChapter = errors.New("chapter index must not be negative")
)

// Progress is the stored reading state of one book.
type Progress struct {
	BookID      string    `json:"book_id"`
	LastChapter int       `json:"last_chapter"`
	Bookmarks   []int     `json:"bookmarks,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsBookmarked reports whether chapter is bookmarked.
func (p *Progress) IsBookmarked(chapter int) bool {
	_, found := slices.BinarySearch(p.Bookmarks, chapter)
	return found
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the progress database in dir.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.SyncWrites = true
	return open(opts, logger)
}

// OpenInMemory opens a Store that keeps nothing on disk.
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Debug("progress store opened", "dir", opts.Dir, "in_memory", opts.InMemory)

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.logger.Debug("closing progress store")
	return s.db.Close()
}

// Get returns the stored progress of bookID.
func (s *Store) Get(ctx context.Context, bookID string) (*Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if bookID == "" {
		return nil, ErrInvalidBookID
	}

	var p Progress
	err := s.db.View(func(txn *badger.Txn) error {
		return get(txn, bookID, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetLastChapter records chapter as the last opened chapter of bookID.
func (s *Store) SetLastChapter(ctx context.Context, bookID string, chapter int) error {
	return s.update(ctx, bookID, chapter, func(p *Progress) {
		p.LastChapter = chapter
	})
}

// AddBookmark adds chapter to the bookmarks of bookID. Adding an existing
// bookmark is a no-op apart from the timestamp.
func (s *Store) AddBookmark(ctx context.Context, bookID string, chapter int) error {
	return s.update(ctx, bookID, chapter, func(p *Progress) {
		if i, found := slices.BinarySearch(p.Bookmarks, chapter); !found {
			p.Bookmarks = slices.Insert(p.Bookmarks, i, chapter)
		}
	})
}

// RemoveBookmark removes chapter from the bookmarks of bookID.
func (s *Store) RemoveBookmark(ctx context.Context, bookID string, chapter int) error {
	return s.update(ctx, bookID, chapter, func(p *Progress) {
		if i, found := slices.BinarySearch(p.Bookmarks, chapter); found {
			p.Bookmarks = slices.Delete(p.Bookmarks, i, i+1)
		}
	})
}

// Delete removes all progress of bookID.
func (s *Store) Delete(ctx context.Context, bookID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bookID == "" {
		return ErrInvalidBookID
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(bookID))
	})
}

// update applies fn to the stored progress of bookID (or a fresh one) in a
// single read-modify-write transaction.
func (s *Store) update(ctx context.Context, bookID string, chapter int, fn func(*Progress)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bookID == "" {
		return ErrInvalidBookID
	}
	if chapter < 0 {
		return ErrInvalidChapter
	}

	return s.db.Update(func(txn *badger.Txn) error {
		p := Progress{BookID: bookID}
		if err := get(txn, bookID, &p); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		fn(&p)
		p.UpdatedAt = s.now()

		data, err := json.Marshal(&p)
		if err != nil {
			return fmt.Errorf("marshal progress: %w", err)
		}
		if err := txn.Set(key(bookID), data); err != nil {
			return err
		}
		s.logger.Debug("progress updated", "book_id", bookID, "last_chapter", p.LastChapter, "bookmarks", len(p.Bookmarks))
		return nil
	})
}

func get(txn *badger.Txn, bookID string, p *Progress) error {
	item, err := txn.Get(key(bookID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, p)
	})
}

func key(bookID string) []byte {
	return []byte(progressPrefix + bookID)
}
