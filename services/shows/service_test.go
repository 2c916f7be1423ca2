package shows_test

import (
	"errors"
	"testing"

	"bingetrack/models"
	"bingetrack/services/shows"
)

func TestAddAndList(t *testing.T) {
	dir := t.TempDir()
	svc, err := shows.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create shows service: %v", err)
	}

	if _, err := svc.Add("default", models.OnboardedShowUpsert{ShowID: "100", Name: "First"}); err != nil {
		t.Fatalf("failed to add show: %v", err)
	}
	if _, err := svc.Add("default", models.OnboardedShowUpsert{ShowID: "200", Name: "Second"}); err != nil {
		t.Fatalf("failed to add show: %v", err)
	}

	items, err := svc.List("default")
	if err != nil {
		t.Fatalf("failed to list shows: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 shows, got %d", len(items))
	}

	if !svc.Contains("default", "100") {
		t.Fatal("expected show 100 to be onboarded")
	}
	if svc.Contains("default", "999") {
		t.Fatal("did not expect show 999 to be onboarded")
	}
	if svc.Contains("other", "100") {
		t.Fatal("lists are per user")
	}
}

func TestAddRefreshesMetadataWithoutDuplicating(t *testing.T) {
	dir := t.TempDir()
	svc, err := shows.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create shows service: %v", err)
	}

	first, err := svc.Add("default", models.OnboardedShowUpsert{ShowID: "100", Name: "Old Name"})
	if err != nil {
		t.Fatalf("failed to add show: %v", err)
	}

	updated, err := svc.Add("default", models.OnboardedShowUpsert{ShowID: "100", Name: "New Name", PosterURL: "http://img"})
	if err != nil {
		t.Fatalf("failed to re-add show: %v", err)
	}

	if !updated.AddedAt.Equal(first.AddedAt) {
		t.Fatal("re-adding must not reset AddedAt")
	}
	if updated.Name != "New Name" || updated.PosterURL != "http://img" {
		t.Fatalf("expected refreshed metadata, got %+v", updated)
	}

	items, err := svc.List("default")
	if err != nil {
		t.Fatalf("failed to list shows: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 show after re-add, got %d", len(items))
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	svc, err := shows.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create shows service: %v", err)
	}

	if _, err := svc.Add("default", models.OnboardedShowUpsert{ShowID: "100"}); err != nil {
		t.Fatalf("failed to add show: %v", err)
	}

	removed, err := svc.Remove("default", "100")
	if err != nil {
		t.Fatalf("failed to remove show: %v", err)
	}
	if !removed {
		t.Fatal("expected removal to be reported")
	}

	removed, err = svc.Remove("default", "100")
	if err != nil {
		t.Fatalf("unexpected error on second remove: %v", err)
	}
	if removed {
		t.Fatal("expected second remove to be a no-op")
	}
}

func TestPersistenceAcrossReload(t *testing.T) {
	dir := t.TempDir()
	svc, err := shows.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create shows service: %v", err)
	}

	if _, err := svc.Add("default", models.OnboardedShowUpsert{ShowID: "100", Name: "Persisted"}); err != nil {
		t.Fatalf("failed to add show: %v", err)
	}

	reloaded, err := shows.NewService(dir)
	if err != nil {
		t.Fatalf("failed to reload shows service: %v", err)
	}

	items, err := reloaded.List("default")
	if err != nil {
		t.Fatalf("failed to list after reload: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Persisted" {
		t.Fatalf("unexpected items after reload: %+v", items)
	}
}

func TestValidation(t *testing.T) {
	dir := t.TempDir()
	svc, err := shows.NewService(dir)
	if err != nil {
		t.Fatalf("failed to create shows service: %v", err)
	}

	if _, err := svc.List(""); !errors.Is(err, shows.ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
	if _, err := svc.Add("default", models.OnboardedShowUpsert{}); !errors.Is(err, shows.ErrShowIDRequired) {
		t.Fatalf("expected ErrShowIDRequired, got %v", err)
	}
	if _, err := shows.NewService(" "); !errors.Is(err, shows.ErrStorageDirRequired) {
		t.Fatalf("expected ErrStorageDirRequired, got %v", err)
	}
}
