package lock

import (
	"context"
	"testing"
)

func TestLocalTryLock(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	unlock, ok, err := l.TryLock(ctx, "sync")
	if err != nil || !ok {
		t.Fatalf("first TryLock: ok=%v err=%v", ok, err)
	}

	if _, ok, _ = l.TryLock(ctx, "sync"); ok {
		t.Fatal("second TryLock on a held key succeeded")
	}

	other, ok, _ := l.TryLock(ctx, "export")
	if !ok {
		t.Fatal("TryLock on a different key failed")
	}
	other()

	unlock()

	again, ok, _ := l.TryLock(ctx, "sync")
	if !ok {
		t.Fatal("TryLock after unlock failed")
	}
	again()
}
