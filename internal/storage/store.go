// Package storage keeps user bookmarks and read marks in a bbolt file.
// Headlines themselves are never stored.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/headlines/internal/debuglog"
	"github.com/pders01/headlines/internal/news"
)

var (
	bookmarksBucket = []byte("bookmarks")
	readBucket      = []byte("read")
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db  *bolt.DB
	now func() time.Time
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, time.Second)
}

// NewStoreWithTimeout opens dbPath, waiting at most timeout for the file lock.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bookmarksBucket, readBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveBookmark stores article, replacing an earlier bookmark of the same article.
func (s *Store) SaveBookmark(article news.Article) error {
	b := Bookmark{Key: article.Key(), Article: article, SavedAt: s.now()}
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bookmarksBucket).Put([]byte(b.Key), data)
	})
}

func (s *Store) DeleteBookmark(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bookmarksBucket)
		if b.Get([]byte(key)) == nil {
			return fmt.Errorf("bookmark %s: %w", key, ErrNotFound)
		}
		return b.Delete([]byte(key))
	})
}

// ToggleBookmark saves or removes article and reports whether it is now bookmarked.
func (s *Store) ToggleBookmark(article news.Article) (bool, error) {
	saved, err := s.IsBookmarked(article.Key())
	if err != nil {
		return false, err
	}
	if saved {
		return false, s.DeleteBookmark(article.Key())
	}
	return true, s.SaveBookmark(article)
}

func (s *Store) IsBookmarked(key string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bookmarksBucket).Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// Bookmarks returns all bookmarks, newest first.
func (s *Store) Bookmarks() ([]Bookmark, error) {
	var bookmarks []Bookmark
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bookmarksBucket).ForEach(func(k []byte, v []byte) error {
			var b Bookmark
			if err := json.Unmarshal(v, &b); err != nil {
				debuglog.Warnf("skipping unreadable bookmark %s: %v", k, err)
				return nil
			}
			bookmarks = append(bookmarks, b)
			return nil
		})
	})
	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].SavedAt.After(bookmarks[j].SavedAt)
	})
	return bookmarks, err
}

func (s *Store) MarkRead(key string) error {
	data, err := json.Marshal(readMark{Key: key, ReadAt: s.now()})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(readBucket).Put([]byte(key), data)
	})
}

func (s *Store) IsRead(key string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(readBucket).Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// ReadKeys returns the keys of every article marked read.
func (s *Store) ReadKeys() (map[string]bool, error) {
	keys := make(map[string]bool)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(readBucket).ForEach(func(k, _ []byte) error {
			keys[string(k)] = true
			return nil
		})
	})
	return keys, err
}
