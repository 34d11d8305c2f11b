package kv

import "testing"

func TestInsertRecord_RoundTrips(t *testing.T) {
	t.Parallel()

	page := make([]byte, 256)

	slot, err := insertRecord(page, []byte("hello"), []byte("world"))
	if err != nil {
		t.Fatalf("insertRecord: %v", err)
	}

	key, value, ok := readRecord(page, slot)
	if !ok {
		t.Fatal("readRecord reported slot not found")
	}
	if string(key) != "hello" || string(value) != "world" {
		t.Fatalf("readRecord = %q, %q", key, value)
	}
}

func TestInsertRecord_MultipleRecordsDoNotOverlap(t *testing.T) {
	t.Parallel()

	page := make([]byte, 256)

	type kvPair struct{ k, v string }
	pairs := []kvPair{
		{"a", "1"},
		{"bb", "22"},
		{"ccc", "333"},
	}

	var slots []uint16
	for _, p := range pairs {
		slot, err := insertRecord(page, []byte(p.k), []byte(p.v))
		if err != nil {
			t.Fatalf("insertRecord(%q): %v", p.k, err)
		}
		slots = append(slots, slot)
	}

	for i, slot := range slots {
		key, value, ok := readRecord(page, slot)
		if !ok {
			t.Fatalf("slot %d not found", slot)
		}
		if string(key) != pairs[i].k || string(value) != pairs[i].v {
			t.Fatalf("slot %d = %q/%q, want %q/%q", slot, key, value, pairs[i].k, pairs[i].v)
		}
	}
}

func TestInsertRecord_NoSpaceWhenPageFull(t *testing.T) {
	t.Parallel()

	page := make([]byte, 40)

	_, err := insertRecord(page, []byte("0123456789"), []byte("0123456789"))
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	_, err = insertRecord(page, []byte("x"), []byte("y"))
	if err == nil {
		t.Fatal("expected ErrNoSpace on second insert into a nearly full page")
	}
}

func TestInsertRecord_TooLargeForEmptyPage(t *testing.T) {
	t.Parallel()

	page := make([]byte, 16)

	_, err := insertRecord(page, []byte("0123456789"), []byte("0123456789"))
	if err == nil {
		t.Fatal("expected ErrRecordTooLarge")
	}
}

func TestTombstoneRecord_HidesRecordFromIteration(t *testing.T) {
	t.Parallel()

	page := make([]byte, 256)

	slot, err := insertRecord(page, []byte("k"), []byte("v"))
	if err != nil {
		t.Fatalf("insertRecord: %v", err)
	}

	if !tombstoneRecord(page, slot) {
		t.Fatal("tombstoneRecord returned false")
	}

	var seen int
	iterateRecords(page, func(uint16, []byte, []byte) bool {
		seen++
		return true
	})
	if seen != 0 {
		t.Fatalf("expected 0 live records after tombstone, got %d", seen)
	}
}

func TestIterateRecords_StopsEarly(t *testing.T) {
	t.Parallel()

	page := make([]byte, 256)
	for _, k := range []string{"a", "b", "c"} {
		if _, err := insertRecord(page, []byte(k), []byte(k)); err != nil {
			t.Fatalf("insertRecord(%q): %v", k, err)
		}
	}

	var seen []string
	iterateRecords(page, func(_ uint16, k, _ []byte) bool {
		seen = append(seen, string(k))
		return len(seen) < 2
	})

	if len(seen) != 2 {
		t.Fatalf("expected iteration to stop after 2 records, got %d", len(seen))
	}
}
