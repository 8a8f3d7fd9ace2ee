package calendar

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"justtrades-bot/internal/models"
)

//go:embed defaults.yaml
var defaultSeed []byte

// DefaultEvents returns the built-in calendar seed.
func DefaultEvents() ([]models.CalendarEvent, error) {
	return parseSeed(defaultSeed)
}

// LoadSeedFile reads a YAML list of events from path.
func LoadSeedFile(path string) ([]models.CalendarEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	events, err := parseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	return events, nil
}

// Seed returns the events from path, or the built-in seed when path is empty.
func Seed(path string) ([]models.CalendarEvent, error) {
	if path == "" {
		return DefaultEvents()
	}
	return LoadSeedFile(path)
}

func parseSeed(data []byte) ([]models.CalendarEvent, error) {
	var events []models.CalendarEvent
	if err := yaml.Unmarshal(data, &events); err != nil {
		return nil, err
	}
	for i := range events {
		events[i] = events[i].Normalized()
	}
	return events, nil
}
