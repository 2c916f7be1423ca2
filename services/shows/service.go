package shows

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bingetrack/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrShowIDRequired     = errors.New("show id is required")
)

// Service manages persistence of per-user onboarded-show lists. The list is
// written during onboarding and read by every derived-state builder.
type Service struct {
	mu    sync.RWMutex
	path  string
	items map[string]map[string]models.OnboardedShow
}

// NewService creates a shows service storing data inside the provided directory.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create shows dir: %w", err)
	}

	svc := &Service{
		path:  filepath.Join(storageDir, "onboarded_shows.json"),
		items: make(map[string]map[string]models.OnboardedShow),
	}

	if err := svc.load(); err != nil {
		return nil, err
	}

	return svc, nil
}

// List returns the user's onboarded shows sorted by most recent additions first.
func (s *Service) List(userID string) ([]models.OnboardedShow, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.OnboardedShow, 0)
	if perUser, ok := s.items[userID]; ok {
		items = make([]models.OnboardedShow, 0, len(perUser))
		for _, item := range perUser {
			items = append(items, item)
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ShowID < items[j].ShowID
		}
		return items[i].AddedAt.After(items[j].AddedAt)
	})

	return items, nil
}

// IDs returns the user's onboarded show IDs in unspecified order.
func (s *Service) IDs(userID string) ([]string, error) {
	items, err := s.List(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ShowID)
	}
	return ids, nil
}

// Contains reports whether the show is currently on the user's list. Builders
// re-check membership before merging resolved results so that shows removed
// mid-resolution are abandoned rather than surfaced.
func (s *Service) Contains(userID, showID string) bool {
	userID = strings.TrimSpace(userID)
	showID = strings.TrimSpace(showID)
	if userID == "" || showID == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	perUser, ok := s.items[userID]
	if !ok {
		return false
	}
	_, ok = perUser[showID]
	return ok
}

// Add inserts a show or refreshes its denormalized metadata when already present.
func (s *Service) Add(userID string, input models.OnboardedShowUpsert) (models.OnboardedShow, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.OnboardedShow{}, ErrUserIDRequired
	}
	showID := strings.TrimSpace(input.ShowID)
	if showID == "" {
		return models.OnboardedShow{}, ErrShowIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := s.ensureUserLocked(userID)

	item, exists := perUser[showID]
	if !exists {
		item = models.OnboardedShow{
			ShowID:  showID,
			AddedAt: time.Now().UTC(),
		}
	}

	if strings.TrimSpace(input.Name) != "" {
		item.Name = input.Name
	}
	if strings.TrimSpace(input.PosterURL) != "" {
		item.PosterURL = input.PosterURL
	}

	perUser[showID] = item

	if err := s.saveLocked(); err != nil {
		return models.OnboardedShow{}, err
	}

	return item, nil
}

// Remove deletes a show from the user's list.
func (s *Service) Remove(userID, showID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, ErrUserIDRequired
	}
	showID = strings.TrimSpace(showID)
	if showID == "" {
		return false, ErrShowIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	perUser := s.ensureUserLocked(userID)

	if _, exists := perUser[showID]; !exists {
		return false, nil
	}

	delete(perUser, showID)

	if err := s.saveLocked(); err != nil {
		return false, err
	}

	return true, nil
}

func (s *Service) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.items = make(map[string]map[string]models.OnboardedShow)
		return nil
	}
	if err != nil {
		return fmt.Errorf("open shows: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read shows: %w", err)
	}
	if len(data) == 0 {
		s.items = make(map[string]map[string]models.OnboardedShow)
		return nil
	}

	var byUser map[string][]models.OnboardedShow
	if err := json.Unmarshal(data, &byUser); err != nil {
		return fmt.Errorf("decode shows: %w", err)
	}

	s.items = make(map[string]map[string]models.OnboardedShow, len(byUser))
	for userID, items := range byUser {
		userID = strings.TrimSpace(userID)
		if userID == "" {
			continue
		}
		perUser := make(map[string]models.OnboardedShow, len(items))
		for _, item := range items {
			if strings.TrimSpace(item.ShowID) == "" {
				continue
			}
			if item.AddedAt.IsZero() {
				item.AddedAt = time.Now().UTC()
			}
			perUser[item.ShowID] = item
		}
		s.items[userID] = perUser
	}

	return nil
}

func (s *Service) saveLocked() error {
	byUser := make(map[string][]models.OnboardedShow, len(s.items))
	for userID, collection := range s.items {
		items := make([]models.OnboardedShow, 0, len(collection))
		for _, item := range collection {
			items = append(items, item)
		}

		sort.Slice(items, func(i, j int) bool {
			if items[i].AddedAt.Equal(items[j].AddedAt) {
				return items[i].ShowID < items[j].ShowID
			}
			return items[i].AddedAt.Before(items[j].AddedAt)
		})

		byUser[userID] = items
	}

	tmp := s.path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create shows temp file: %w", err)
	}

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(byUser); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("encode shows: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("sync shows: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close shows temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace shows file: %w", err)
	}

	return nil
}

func (s *Service) ensureUserLocked(userID string) map[string]models.OnboardedShow {
	perUser, ok := s.items[userID]
	if !ok {
		perUser = make(map[string]models.OnboardedShow)
		s.items[userID] = perUser
	}
	return perUser
}
