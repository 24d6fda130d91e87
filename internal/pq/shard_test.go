package pq

import "testing"

func TestShardTryLockUnlock(t *testing.T) {
	s := NewShard(4)
	if !IsEmptyTopKey(s.TopKey()) {
		t.Fatal("expected empty shard to publish empty top key")
	}
	if !s.TryLock() {
		t.Fatal("expected first TryLock to succeed")
	}
	if s.TryLock() {
		t.Fatal("expected second TryLock to fail while held")
	}
	s.Push(5, 50)
	s.Unlock()
	if s.TopKey() != 5 {
		t.Fatalf("expected published top key 5, got %d", s.TopKey())
	}
	if !s.TryLock() {
		t.Fatal("expected TryLock to succeed after unlock")
	}
	k, v, ok := s.Pop()
	if !ok || k != 5 || v != 50 {
		t.Fatalf("unexpected pop result: %d %d %v", k, v, ok)
	}
	s.Unlock()
	if !IsEmptyTopKey(s.TopKey()) {
		t.Fatal("expected empty top key after draining shard")
	}
}
