package repository

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/diagnosis/guestroom-reservations/services/reservations/internal/domain"
)

// LoadRooms reads the room inventory from a JSON array of rooms.
func LoadRooms(path string) ([]domain.Room, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rooms file: %w", err)
	}

	var rooms []domain.Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, fmt.Errorf("failed to parse rooms file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(rooms))
	for i, r := range rooms {
		switch {
		case r.Number == "":
			return nil, fmt.Errorf("room %d in %s has no number", i, path)
		case seen[r.Number]:
			return nil, fmt.Errorf("room %s is listed twice in %s", r.Number, path)
		case r.DailyRate < 0:
			return nil, fmt.Errorf("room %s has a negative daily rate", r.Number)
		case r.MaxOccupancy < 1:
			rooms[i].MaxOccupancy = 1
		}
		seen[r.Number] = true
	}
	return rooms, nil
}
