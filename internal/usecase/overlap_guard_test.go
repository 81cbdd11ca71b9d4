package usecase_test

import (
	"errors"
	"testing"

	"geozone-backend/config"
	"geozone-backend/internal/domain"
	"geozone-backend/internal/usecase"
	"geozone-backend/pkg/geo"
)

func activeZone(id int64, name string, pts []geo.Point) domain.Zone {
	return domain.Zone{ID: id, ZoneName: name, Polygon: polygon(pts), IsActive: true}
}

func TestOverlapGuard_VertexInsideExistingZone(t *testing.T) {
	guard := usecase.NewOverlapGuard(config.OverlapModeVertex)
	existing := []domain.Zone{activeZone(1, "Gulshan", rect(0, 0, 10, 10))}

	candidate := polygon(rect(5, 5, 15, 15))
	err := guard.Check(candidate, existing, 0)

	var overlap *domain.OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("expected OverlapError, got %v", err)
	}
	if overlap.ZoneID != 1 || overlap.ZoneName != "Gulshan" {
		t.Errorf("unexpected conflicting zone %+v", overlap)
	}
	if overlap.Point != (geo.Point{Lat: 5, Lng: 5}) {
		t.Errorf("first offending vertex = %+v, want (5, 5)", overlap.Point)
	}
	if want := "Lat/Lng (5, 5) already exists inside zone 'Gulshan'"; overlap.Error() != want {
		t.Errorf("message = %q, want %q", overlap.Error(), want)
	}
}

func TestOverlapGuard_DisjointPasses(t *testing.T) {
	guard := usecase.NewOverlapGuard(config.OverlapModeVertex)
	existing := []domain.Zone{activeZone(1, "A", rect(0, 0, 10, 10))}

	if err := guard.Check(polygon(rect(20, 20, 30, 30)), existing, 0); err != nil {
		t.Fatalf("disjoint polygon should pass, got %v", err)
	}
}

func TestOverlapGuard_SkipsExcludedInactiveDeletedAndEmpty(t *testing.T) {
	guard := usecase.NewOverlapGuard(config.OverlapModeVertex)
	candidate := polygon(rect(2, 2, 8, 8))

	inactive := activeZone(2, "inactive", rect(0, 0, 10, 10))
	inactive.IsActive = false
	deleted := activeZone(3, "deleted", rect(0, 0, 10, 10))
	deleted.IsDeleted = true
	empty := domain.Zone{ID: 4, ZoneName: "empty", IsActive: true}

	existing := []domain.Zone{
		activeZone(1, "self", rect(0, 0, 10, 10)),
		inactive,
		deleted,
		empty,
	}
	if err := guard.Check(candidate, existing, 1); err != nil {
		t.Fatalf("expected no conflict, got %v", err)
	}
	if err := guard.Check(candidate, existing, 0); err == nil {
		t.Fatal("without exclusion the zone conflicts with itself")
	}
}

func TestOverlapGuard_FirstZoneInOrderWins(t *testing.T) {
	guard := usecase.NewOverlapGuard(config.OverlapModeVertex)
	existing := []domain.Zone{
		activeZone(7, "first", rect(0, 0, 10, 10)),
		activeZone(8, "second", rect(0, 0, 10, 10)),
	}

	var overlap *domain.OverlapError
	if !errors.As(guard.Check(polygon(rect(1, 1, 2, 2)), existing, 0), &overlap) {
		t.Fatal("expected overlap")
	}
	if overlap.ZoneID != 7 {
		t.Fatalf("expected the first zone to win, got %d", overlap.ZoneID)
	}
}

func TestOverlapGuard_ContainmentOnlyCaughtInStrictMode(t *testing.T) {
	// candidate fully contains the existing zone: no candidate vertex lies
	// inside the existing polygon
	existing := []domain.Zone{activeZone(1, "inner", rect(4, 4, 6, 6))}
	candidate := polygon(rect(0, 0, 10, 10))

	if err := usecase.NewOverlapGuard(config.OverlapModeVertex).Check(candidate, existing, 0); err != nil {
		t.Fatalf("vertex mode should not detect containment, got %v", err)
	}

	var overlap *domain.OverlapError
	err := usecase.NewOverlapGuard(config.OverlapModeStrict).Check(candidate, existing, 0)
	if !errors.As(err, &overlap) {
		t.Fatalf("strict mode should detect containment, got %v", err)
	}
	if overlap.Point != (geo.Point{Lat: 4, Lng: 4}) {
		t.Errorf("expected the existing vertex (4, 4), got %+v", overlap.Point)
	}
}

func TestOverlapGuard_CrossingOnlyCaughtInStrictMode(t *testing.T) {
	horizontal := []geo.Point{{Lat: 4, Lng: 0}, {Lat: 4, Lng: 2}, {Lat: 4, Lng: 10}, {Lat: 6, Lng: 10}, {Lat: 6, Lng: 0}}
	vertical := []geo.Point{{Lat: 0, Lng: 4}, {Lat: 0, Lng: 6}, {Lat: 10, Lng: 6}, {Lat: 10, Lng: 5}, {Lat: 10, Lng: 4}}
	existing := []domain.Zone{activeZone(1, "vertical", vertical)}

	if err := usecase.NewOverlapGuard(config.OverlapModeVertex).Check(polygon(horizontal), existing, 0); err != nil {
		t.Fatalf("vertex mode should not detect a plus-shaped crossing, got %v", err)
	}
	if err := usecase.NewOverlapGuard(config.OverlapModeStrict).Check(polygon(horizontal), existing, 0); err == nil {
		t.Fatal("strict mode should detect crossing edges")
	}
}
