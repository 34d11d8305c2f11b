package kv

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jbstore/jbstore/pkg/pagevolume"
)

// ErrNotFound is returned by Get and Delete when no record exists for key.
var ErrNotFound = errors.New("kv: key not found")

// Store is a simple append-only key/value layer over a pagevolume.File:
// Put appends records to the last page, growing the file one page at a
// time when the current page fills up; Get and Delete scan pages from
// the start looking for the most recently written record (a later Put
// of the same key shadows an earlier one). It makes no attempt at
// indexing or compaction.
type Store struct {
	mu         sync.Mutex
	file       *pagevolume.File
	lastOffset uint64
}

// Open wraps an already-open pagevolume.File as a Store. The File must
// have at least one page (true for any pagevolume.File opened via
// pagevolume.Open, which always grows to at least one page).
func Open(file *pagevolume.File) *Store {
	lastOffset := file.Size() - file.PageSize()
	return &Store{file: file, lastOffset: lastOffset}
}

// Put appends a record for key, overwriting any prior value on read
// (the old record's space is not reclaimed). Growing the file to make
// room happens automatically and is safe to run concurrently with other
// Stores' page locks over the same File.
func (s *Store) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.putLocked(key, value)
}

// putLocked is Put's body, callable while s.mu is already held.
func (s *Store) putLocked(key, value []byte) error {
	for {
		page, err := s.file.GetPage(s.lastOffset)
		if err != nil {
			return fmt.Errorf("get page at %d: %w", s.lastOffset, err)
		}

		data, err := page.Lock()
		if err != nil {
			page.Release()
			return fmt.Errorf("lock page at %d: %w", s.lastOffset, err)
		}

		_, insertErr := insertRecord(data, key, value)
		page.Unlock()
		page.Release()

		if insertErr == nil {
			return nil
		}
		if errors.Is(insertErr, ErrRecordTooLarge) {
			return insertErr
		}

		newOffset, growErr := s.file.Grow()
		if growErr != nil {
			return fmt.Errorf("grow for new page: %w", growErr)
		}
		s.lastOffset = newOffset - s.file.PageSize()
	}
}

// Get returns the most recently Put value for key, or ErrNotFound.
func (s *Store) Get(key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var found []byte
	var hasFound bool

	err := s.forEachPage(func(data []byte) {
		iterateRecords(data, func(_ uint16, k, v []byte) bool {
			if string(k) == string(key) {
				found = append([]byte(nil), v...)
				hasFound = true
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	if !hasFound || len(found) == 0 {
		return nil, ErrNotFound
	}
	return found, nil
}

// Delete appends a tombstone-equivalent record (an empty value is not
// distinguishable from a deleted key under this simple encoding, so
// Delete instead records a deletion marker as a value-less Put using a
// reserved zero-length value and relies on callers not storing
// genuinely empty values; see DESIGN.md for the tradeoff).
func (s *Store) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var existed bool
	err := s.forEachPage(func(data []byte) {
		iterateRecords(data, func(_ uint16, k, _ []byte) bool {
			if string(k) == string(key) {
				existed = true
			}
			return true
		})
	})
	if err != nil {
		return err
	}
	if !existed {
		return ErrNotFound
	}

	return s.putLocked(key, nil)
}

// forEachPage walks every page from offset 0 through the current last
// page, invoking fn with each page's locked view.
func (s *Store) forEachPage(fn func(data []byte)) error {
	pageSize := s.file.PageSize()
	for offset := uint64(0); offset <= s.lastOffset; offset += pageSize {
		page, err := s.file.GetPage(offset)
		if err != nil {
			return fmt.Errorf("get page at %d: %w", offset, err)
		}

		data, err := page.Lock()
		if err != nil {
			page.Release()
			return fmt.Errorf("lock page at %d: %w", offset, err)
		}

		fn(data)

		page.Unlock()
		page.Release()
	}
	return nil
}
