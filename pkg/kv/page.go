// Package kv implements a minimal key/value record encoding on top of
// pagevolume pages: a classic slotted page, with a growing-forward slot
// directory and a growing-backward record area, using length-prefixed
// binary encoding.
//
// Records are length-prefixed (4-byte big-endian key length, 4-byte
// big-endian value length, key bytes, value bytes) rather than fixed
// width, since keys and values here are arbitrary byte strings rather
// than a fixed ticket schema.
package kv

import (
	"encoding/binary"
	"errors"
)

const (
	pageHeaderSize = 4 // slotCount(2) + recordAreaStart(2)
	slotSize       = 2
	tombstoneSlot  = 0xFFFF
)

// ErrRecordTooLarge is returned when a key/value pair cannot fit in a
// single page even when empty.
var ErrRecordTooLarge = errors.New("kv: record too large for page")

// ErrNoSpace is returned by insertRecord when the page has no room left
// for the record; callers should retry against a freshly grown page.
var ErrNoSpace = errors.New("kv: page has no space for record")

// slotCount returns the number of slots (including tombstones) in the
// page, from its header.
func slotCount(page []byte) uint16 {
	return binary.BigEndian.Uint16(page[0:2])
}

func setSlotCount(page []byte, n uint16) {
	binary.BigEndian.PutUint16(page[0:2], n)
}

// recordAreaStart returns the offset of the lowest byte currently in use
// by the record area, which grows downward from len(page).
func recordAreaStart(page []byte) uint16 {
	v := binary.BigEndian.Uint16(page[2:4])
	if v == 0 {
		return uint16(len(page))
	}
	return v
}

func setRecordAreaStart(page []byte, v uint16) {
	binary.BigEndian.PutUint16(page[2:4], v)
}

func slotOffset(slot uint16) int {
	return pageHeaderSize + int(slot)*slotSize
}

// resetPage resets a page's header (no slots, empty record area) so it is
// ready to receive records.
// Pages are zero-initialized by the OS on first mmap, so this is only
// needed when reusing a page whose previous contents must be discarded.
func resetPage(page []byte) {
	setSlotCount(page, 0)
	setRecordAreaStart(page, uint16(len(page)))
}

// insertRecord appends key/value as a new record in page, returning the
// slot index it was stored at. Returns ErrNoSpace if the page's free
// space (between the end of the slot directory and the start of the
// record area) cannot hold the new slot and record.
func insertRecord(page []byte, key, value []byte) (uint16, error) {
	recordLen := 8 + len(key) + len(value)
	if pageHeaderSize+slotSize+recordLen > len(page) {
		return 0, ErrRecordTooLarge
	}

	n := slotCount(page)
	dirEnd := slotOffset(n) + slotSize
	areaStart := int(recordAreaStart(page))

	if dirEnd+recordLen > areaStart {
		return 0, ErrNoSpace
	}

	recordStart := areaStart - recordLen
	buf := page[recordStart:]
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(key)))
	binary.BigEndian.PutUint32(buf[4:8], uint32(len(value)))
	copy(buf[8:8+len(key)], key)
	copy(buf[8+len(key):8+len(key)+len(value)], value)

	binary.BigEndian.PutUint16(page[slotOffset(n):slotOffset(n)+slotSize], uint16(recordStart))
	setSlotCount(page, n+1)
	setRecordAreaStart(page, uint16(recordStart))

	return n, nil
}

// readRecord reads the key/value stored at slot. ok is false if the slot
// is a tombstone or out of range.
func readRecord(page []byte, slot uint16) (key, value []byte, ok bool) {
	if slot >= slotCount(page) {
		return nil, nil, false
	}

	off := binary.BigEndian.Uint16(page[slotOffset(slot) : slotOffset(slot)+slotSize])
	if off == tombstoneSlot {
		return nil, nil, false
	}

	buf := page[off:]
	keyLen := binary.BigEndian.Uint32(buf[0:4])
	valueLen := binary.BigEndian.Uint32(buf[4:8])
	key = buf[8 : 8+keyLen]
	value = buf[8+keyLen : 8+keyLen+valueLen]

	return key, value, true
}

// tombstoneRecord marks slot as deleted without reclaiming its space.
func tombstoneRecord(page []byte, slot uint16) bool {
	if slot >= slotCount(page) {
		return false
	}
	binary.BigEndian.PutUint16(page[slotOffset(slot):slotOffset(slot)+slotSize], tombstoneSlot)
	return true
}

// iterateRecords calls fn for every live (non-tombstoned) record in the
// page, in slot order. fn returning false stops iteration early.
func iterateRecords(page []byte, fn func(slot uint16, key, value []byte) bool) {
	n := slotCount(page)
	for slot := uint16(0); slot < n; slot++ {
		key, value, ok := readRecord(page, slot)
		if !ok {
			continue
		}
		if !fn(slot, key, value) {
			return
		}
	}
}
