package queue

import (
	"sync"
	"testing"
)

// testItem is a simple struct for testing the generic queue
type testItem struct {
	ID   int
	Name string
}

func TestQueue_New(t *testing.T) {
	q := New[testItem]()
	if q == nil {
		t.Fatal("expected non-nil queue")
	}
	if !q.Empty() {
		t.Error("expected empty queue")
	}
	if q.Len() != 0 {
		t.Errorf("expected length 0, got %d", q.Len())
	}
}

func TestQueue_NewWithItems(t *testing.T) {
	q := New(testItem{ID: 1}, testItem{ID: 2})
	if q.Len() != 2 {
		t.Fatalf("expected length 2, got %d", q.Len())
	}
	first, _ := q.Peek()
	if first.ID != 1 {
		t.Errorf("expected first item ID 1, got %d", first.ID)
	}
}

func TestQueue_Push(t *testing.T) {
	q := New[testItem]()

	q.Push(testItem{ID: 1, Name: "first"})
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}

	q.Push(testItem{ID: 2}, testItem{ID: 3})
	if q.Len() != 3 {
		t.Errorf("expected length 3, got %d", q.Len())
	}
}

func TestQueue_Pop(t *testing.T) {
	q := New[testItem]()

	result, ok := q.Pop()
	if ok {
		t.Error("expected ok=false popping an empty queue")
	}
	if result.ID != 0 || result.Name != "" {
		t.Errorf("expected zero value, got %+v", result)
	}

	q.Push(testItem{ID: 1, Name: "first"}, testItem{ID: 2, Name: "second"})
	first, ok := q.Pop()
	if !ok || first.ID != 1 || first.Name != "first" {
		t.Errorf("expected {1, first}, got %+v (ok=%v)", first, ok)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1, got %d", q.Len())
	}
}

func TestQueue_PeekDoesNotRemove(t *testing.T) {
	q := New(testItem{ID: 7})

	item, ok := q.Peek()
	if !ok || item.ID != 7 {
		t.Fatalf("expected item 7, got %+v (ok=%v)", item, ok)
	}
	if q.Len() != 1 {
		t.Errorf("expected length 1 after peek, got %d", q.Len())
	}

	q.Pop()
	if _, ok := q.Peek(); ok {
		t.Error("expected ok=false peeking an empty queue")
	}
}

func TestQueue_Empty(t *testing.T) {
	q := New[testItem]()

	if !q.Empty() {
		t.Error("expected empty queue")
	}

	q.Push(testItem{ID: 1})
	if q.Empty() {
		t.Error("expected non-empty queue")
	}

	q.Pop()
	if !q.Empty() {
		t.Error("expected empty queue after pop")
	}
}

func TestQueue_Clear(t *testing.T) {
	q := New(testItem{ID: 1}, testItem{ID: 2})
	q.Clear()

	if !q.Empty() {
		t.Error("expected empty queue after clear")
	}

	q.Push(testItem{ID: 3})
	item, _ := q.Pop()
	if item.ID != 3 {
		t.Errorf("expected item 3 after clear and push, got %d", item.ID)
	}
}

func TestQueue_ItemsIsACopy(t *testing.T) {
	q := New(testItem{ID: 1}, testItem{ID: 2})

	items := q.Items()
	items[0].ID = 99

	first, _ := q.Peek()
	if first.ID != 1 {
		t.Errorf("mutating Items() result changed the queue: %+v", first)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 10; i++ {
		q.Push(i)
	}
	for i := 0; i < 10; i++ {
		v, ok := q.Pop()
		if !ok || v != i {
			t.Fatalf("expected %d, got %d (ok=%v)", i, v, ok)
		}
	}
}

func TestQueue_ConcurrentPushPop(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.Push(n)
		}(i)
	}
	wg.Wait()

	popped := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Pop()
		}()
	}
	wg.Wait()

	if _, ok := q.Pop(); ok {
		popped++
	}
	if popped != 0 || !q.Empty() {
		t.Errorf("expected queue drained, %d left", q.Len())
	}
}

func TestQueue_GetAndEmpty(t *testing.T) {
	q := New(1, 2, 3)

	items := q.GetAndEmpty()

	if len(items) != 3 || items[0] != 1 || items[2] != 3 {
		t.Errorf("expected [1 2 3], got %v", items)
	}
	if !q.Empty() {
		t.Error("expected queue to be empty")
	}
	if again := q.GetAndEmpty(); len(again) != 0 {
		t.Errorf("expected no items, got %v", again)
	}
}
