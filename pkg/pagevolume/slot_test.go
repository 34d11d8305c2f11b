package pagevolume

import "testing"

func TestTagSlot_RoundTrips(t *testing.T) {
	t.Parallel()

	for _, idx := range []uint64{0, 1, 2, 1000, 1 << 40} {
		tagged := tagSlot(idx)
		if isOwned(tagged) {
			t.Fatalf("tagSlot(%d) should not set the owned bit", idx)
		}

		got, ok := untagSlot(tagged)
		if !ok {
			t.Fatalf("untagSlot(tagSlot(%d)) reported null", idx)
		}
		if got != idx {
			t.Fatalf("untagSlot(tagSlot(%d)) = %d", idx, got)
		}

		ownedTagged := tagged | ownedBit
		got, ok = untagSlot(ownedTagged)
		if !ok || got != idx {
			t.Fatalf("untagSlot ignoring owned bit failed for %d", idx)
		}
	}
}

func TestUntagSlot_ZeroIsNull(t *testing.T) {
	t.Parallel()

	if _, ok := untagSlot(0); ok {
		t.Fatal("untagSlot(0) should report null")
	}
	if _, ok := untagSlot(ownedBit); ok {
		t.Fatal("untagSlot(ownedBit) should report null")
	}
}
