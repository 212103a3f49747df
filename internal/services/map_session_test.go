package services

import (
	"errors"
	"locate-route-service/internal/adapters/maprender"
	"locate-route-service/internal/domain"
	"reflect"
	"testing"
)

func TestEnsureInitializedCreatesOnceThenRecenters(t *testing.T) {
	r := maprender.NewRecordingRenderer()
	m := NewMapSession(r)

	if err := m.EnsureInitialized(domain.DefaultCoordinates); err != nil {
		t.Fatalf("first EnsureInitialized: %v", err)
	}
	if err := m.EnsureInitialized(london); err != nil {
		t.Fatalf("second EnsureInitialized: %v", err)
	}

	want := []string{
		"attach 54.0084, -1.5422 z13",
		"place 54.0084, -1.5422",
		"invalidate",
		"view 51.5000, -0.1200 z16",
		"move 51.5000, -0.1200",
	}
	if got := r.Ops(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ops = %v, want %v", got, want)
	}

	c, ok := m.Center()
	if !ok || c != london {
		t.Fatalf("center = %v (%v), want %v", c, ok, london)
	}
}

func TestEnsureInitializedAttachFailureLeavesMapUncreated(t *testing.T) {
	r := maprender.NewRecordingRenderer()
	r.FailAttach(errors.New("no surface"))
	m := NewMapSession(r)

	if err := m.EnsureInitialized(london); err == nil {
		t.Fatal("EnsureInitialized succeeded, want error")
	}
	if _, ok := m.Center(); ok {
		t.Fatal("map reported as initialized after attach failure")
	}

	r.FailAttach(nil)
	if err := m.EnsureInitialized(london); err != nil {
		t.Fatalf("retry EnsureInitialized: %v", err)
	}
	if r.Count("attach") != 2 || r.Count("place") != 1 {
		t.Fatalf("ops = %v, want a second attach then one marker", r.Ops())
	}
}

func TestEnsureInitializedNilRenderer(t *testing.T) {
	if err := NewMapSession(nil).EnsureInitialized(london); err == nil {
		t.Fatal("EnsureInitialized with nil renderer succeeded, want error")
	}
}
