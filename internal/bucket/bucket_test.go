package bucket

import (
	"sync"
	"testing"
)

func TestPrependAndFindLocked(t *testing.T) {
	var b Bucket[string, int]

	b.Lock()
	b.PrependLocked(NewNode[string, int]("a", 1))
	b.PrependLocked(NewNode[string, int]("b", 2))
	b.Unlock()

	b.Lock()
	node, prev := b.FindLocked("a")
	b.Unlock()

	if node == nil {
		t.Fatal("expected to find key \"a\"")
	}
	if node.LoadValue() != 1 {
		t.Fatalf("value = %d, want 1", node.LoadValue())
	}
	if prev == nil || prev.Key() != "b" {
		t.Fatal("expected \"b\" node as predecessor of \"a\"")
	}
}

func TestLookupAppendOnlySeesPublishedNodes(t *testing.T) {
	var b Bucket[int, string]

	b.Lock()
	b.PrependLocked(NewNode[int, string](1, "one"))
	b.Unlock()

	v, ok := b.LookupAppendOnly(1)
	if !ok || v != "one" {
		t.Fatalf("LookupAppendOnly(1) = (%q, %v), want (\"one\", true)", v, ok)
	}

	if _, ok := b.LookupAppendOnly(2); ok {
		t.Fatal("LookupAppendOnly(2) found a key that was never inserted")
	}
}

func TestSwapValuePreservesOldPointerForCaller(t *testing.T) {
	n := NewNode[string, int]("k", 1)
	old := n.SwapValue(2)

	if *old != 1 {
		t.Fatalf("SwapValue returned old value %d, want 1", *old)
	}
	if n.LoadValue() != 2 {
		t.Fatalf("LoadValue() = %d, want 2", n.LoadValue())
	}
}

func TestUnlinkLockedRemovesHeadAndMiddle(t *testing.T) {
	var b Bucket[int, int]
	b.Lock()
	b.PrependLocked(NewNode[int, int](3, 30))
	b.PrependLocked(NewNode[int, int](2, 20))
	b.PrependLocked(NewNode[int, int](1, 10)) // chain: 1 -> 2 -> 3
	b.Unlock()

	b.Lock()
	node, prev := b.FindLocked(2)
	b.UnlinkLocked(node, prev)
	b.Unlock()

	b.Lock()
	found, _ := b.FindLocked(2)
	b.Unlock()
	if found != nil {
		t.Fatal("key 2 should be unreachable after unlink")
	}

	if _, ok := b.LookupAppendOnly(1); !ok {
		t.Fatal("key 1 should still be reachable")
	}
	if _, ok := b.LookupAppendOnly(3); !ok {
		t.Fatal("key 3 should still be reachable")
	}

	b.Lock()
	head := b.Head()
	b.UnlinkLocked(head, nil) // unlink new head (1)
	b.Unlock()
	if _, ok := b.LookupAppendOnly(1); ok {
		t.Fatal("key 1 should be unreachable after unlinking the head")
	}
}

func TestLookupRemovableSkipsDeletedAndRestarts(t *testing.T) {
	var b Bucket[int, int]
	b.Lock()
	b.PrependLocked(NewNode[int, int](2, 20))
	b.PrependLocked(NewNode[int, int](1, 10))
	b.Unlock()

	b.Lock()
	node, prev := b.FindLocked(1)
	b.UnlinkLocked(node, prev)
	node.MarkDeleted(1)
	b.Unlock()

	v, ok := b.LookupRemovable(2)
	if !ok || v != 20 {
		t.Fatalf("LookupRemovable(2) = (%d, %v), want (20, true)", v, ok)
	}
	if _, ok := b.LookupRemovable(1); ok {
		t.Fatal("LookupRemovable(1) should not find the unlinked, deleted node")
	}
}

func TestConcurrentReadersDuringWrites(t *testing.T) {
	var b Bucket[int, int]
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					b.LookupAppendOnly(0)
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		b.Lock()
		n, _ := b.FindLocked(0)
		if n == nil {
			b.PrependLocked(NewNode[int, int](0, i))
		} else {
			n.SwapValue(i)
		}
		b.Unlock()
	}
	close(stop)
	wg.Wait()
}
