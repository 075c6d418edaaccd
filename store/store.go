// Package store persists user state between runs: visited showtimes and
// the active sede selection.
package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/jjsantos01/cineteca-schedule-grid/model"
)

const maxVisitedEntries = 1000

type visitedHistory struct {
	Showtimes []string `json:"showtimes"`
}

type sedePrefs struct {
	ActiveSedes []string `json:"active_sedes"`
}

// LoadVisited returns the set of showtime unique ids the user has marked
// as visited. A missing file means an empty set.
func LoadVisited() (map[string]bool, error) {
	path, err := configPath("visited.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]bool{}, nil
		}
		return nil, err
	}

	var history visitedHistory
	if err := json.Unmarshal(data, &history); err == nil {
		result := make(map[string]bool, len(history.Showtimes))
		for _, id := range history.Showtimes {
			if id != "" {
				result[id] = true
			}
		}
		return result, nil
	}

	var legacy []string
	if err := json.Unmarshal(data, &legacy); err == nil {
		result := make(map[string]bool, len(legacy))
		for _, id := range legacy {
			if id != "" {
				result[id] = true
			}
		}
		return result, nil
	}

	return nil, errors.New("invalid visited history format")
}

// MarkVisited records one showtime unique id as visited. The newest entry
// goes first and the history is capped so the file stays small.
func MarkVisited(uniqueID string) error {
	if uniqueID == "" {
		return errors.New("showtime id is required")
	}

	history, err := loadVisitedOrder()
	if err != nil {
		history = nil
	}

	next := []string{uniqueID}
	for _, existing := range history {
		if existing == uniqueID || existing == "" {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxVisitedEntries {
			break
		}
	}

	return saveVisited(next)
}

// UnmarkVisited removes one showtime unique id from the visited history.
func UnmarkVisited(uniqueID string) error {
	if uniqueID == "" {
		return errors.New("showtime id is required")
	}

	history, err := loadVisitedOrder()
	if err != nil {
		return err
	}

	next := history[:0]
	for _, existing := range history {
		if existing != uniqueID && existing != "" {
			next = append(next, existing)
		}
	}

	return saveVisited(next)
}

// LoadActiveSedes returns the persisted sede selection, filtered down to
// known sede ids. Empty (or missing) means the caller should use the
// default.
func LoadActiveSedes() ([]string, error) {
	path, err := configPath("sedes.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var prefs sedePrefs
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, errors.New("invalid sede preferences format")
	}

	var ids []string
	for _, id := range prefs.ActiveSedes {
		if model.IsValidSedeID(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// SaveActiveSedes overwrites the persisted sede selection.
func SaveActiveSedes(ids []string) error {
	path, err := configPath("sedes.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	var valid []string
	for _, id := range ids {
		if model.IsValidSedeID(id) {
			valid = append(valid, id)
		}
	}
	sort.Strings(valid)

	payload, err := json.MarshalIndent(sedePrefs{ActiveSedes: valid}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func loadVisitedOrder() ([]string, error) {
	path, err := configPath("visited.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history visitedHistory
	if err := json.Unmarshal(data, &history); err == nil {
		return history.Showtimes, nil
	}

	var legacy []string
	if err := json.Unmarshal(data, &legacy); err == nil {
		return legacy, nil
	}

	return nil, errors.New("invalid visited history format")
}

func saveVisited(ids []string) error {
	path, err := configPath("visited.json")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(visitedHistory{Showtimes: ids}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func configPath(name string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cineteca-schedule-grid", name), nil
}
