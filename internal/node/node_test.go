package node

import (
	"testing"

	"github.com/wlblur/wlblurd/internal/params"
)

func TestCreateAssignsNeverZeroIDs(t *testing.T) {
	r := NewRegistry()
	id, err := r.Create(1, 100, 100, params.Default())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Error("Create must never assign id 0")
	}
}

func TestLookupRoundTrip(t *testing.T) {
	r := NewRegistry()
	id, err := r.Create(1, 640, 480, params.Default())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	n, err := r.Lookup(id)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if n.Width != 640 || n.Height != 480 || n.ClientID != 1 {
		t.Errorf("Lookup returned wrong node: %+v", n)
	}
}

func TestLookupUnknown(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Lookup(999); err != ErrNotFound {
		t.Errorf("Lookup(unknown) = %v, want ErrNotFound", err)
	}
}

func TestDestroyRemovesNode(t *testing.T) {
	r := NewRegistry()
	id, _ := r.Create(1, 100, 100, params.Default())
	if err := r.Destroy(id); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if _, err := r.Lookup(id); err != ErrNotFound {
		t.Errorf("Lookup after Destroy = %v, want ErrNotFound", err)
	}
	if err := r.Destroy(id); err != ErrNotFound {
		t.Errorf("double Destroy = %v, want ErrNotFound", err)
	}
}

func TestQuotaEnforced(t *testing.T) {
	r := NewRegistryWithQuota(2)
	if _, err := r.Create(1, 1, 1, params.Default()); err != nil {
		t.Fatalf("Create 1: %v", err)
	}
	if _, err := r.Create(1, 1, 1, params.Default()); err != nil {
		t.Fatalf("Create 2: %v", err)
	}
	if _, err := r.Create(1, 1, 1, params.Default()); err != ErrQuotaExceeded {
		t.Errorf("Create past quota = %v, want ErrQuotaExceeded", err)
	}
	// A different client's quota is independent.
	if _, err := r.Create(2, 1, 1, params.Default()); err != nil {
		t.Errorf("Create for a different client should not be blocked: %v", err)
	}
}

func TestDestroyAllForClient(t *testing.T) {
	r := NewRegistry()
	a1, _ := r.Create(1, 1, 1, params.Default())
	a2, _ := r.Create(1, 1, 1, params.Default())
	b1, _ := r.Create(2, 1, 1, params.Default())

	r.DestroyAllFor(1)

	for _, id := range []uint32{a1, a2} {
		if _, err := r.Lookup(id); err != ErrNotFound {
			t.Errorf("node %d should be gone after DestroyAllFor, got err=%v", id, err)
		}
	}
	if _, err := r.Lookup(b1); err != nil {
		t.Errorf("node owned by a different client should survive, got err=%v", err)
	}
	if got := r.CountFor(1); got != 0 {
		t.Errorf("CountFor(1) after DestroyAllFor = %d, want 0", got)
	}
	if got := r.CountFor(2); got != 1 {
		t.Errorf("CountFor(2) = %d, want 1", got)
	}
}

func TestQuotaFreedAfterDestroy(t *testing.T) {
	r := NewRegistryWithQuota(1)
	id, err := r.Create(1, 1, 1, params.Default())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.Create(1, 1, 1, params.Default()); err != ErrQuotaExceeded {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	r.Destroy(id)
	if _, err := r.Create(1, 1, 1, params.Default()); err != nil {
		t.Errorf("Create after freeing quota: %v", err)
	}
}
