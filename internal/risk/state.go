package risk

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"MarketConfluence/internal/model"
)

// LoadState reads the position book from a JSON file. Returns an empty book if the file doesn't exist.
func LoadState(filePath string) (*model.BookState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.BookState{}, nil
		}
		return nil, err
	}
	var state model.BookState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveState writes the position book to a JSON file.
func SaveState(filePath string, state *model.BookState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}
