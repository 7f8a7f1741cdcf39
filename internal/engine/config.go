package engine

import (
	"fmt"
	"time"

	"github.com/lumpybrain/DedMult/internal/commands"
	"github.com/lumpybrain/DedMult/internal/config"
	"github.com/lumpybrain/DedMult/internal/domain"
	"github.com/lumpybrain/DedMult/internal/systems"
)

// Config хранит параметры одного матча.
type Config struct {
	Tick       time.Duration
	MaxPlayers int
	Priorities commands.PriorityTable
	ShipPower  int
	HomePower  systems.HomePowerPolicy
}

// NewConfig создает конфиг по умолчанию.
func NewConfig() Config {
	return Config{
		Tick:       100 * time.Millisecond,
		MaxPlayers: 8,
		Priorities: commands.DefaultPriorities(),
		ShipPower:  domain.DefaultShipPower,
		HomePower:  systems.HomePowerActual,
	}
}

// ConfigFrom переводит игровую секцию конфигурации в параметры матча.
func ConfigFrom(gc config.GameConfig) (Config, error) {
	cfg := NewConfig()

	if gc.Tick > 0 {
		cfg.Tick = gc.Tick
	}
	if gc.MaxPlayers > 0 {
		cfg.MaxPlayers = gc.MaxPlayers
	}
	if gc.DefaultShipPower > 0 {
		cfg.ShipPower = gc.DefaultShipPower
	}

	if gc.Priorities != "" {
		table, err := commands.ParsePriorities(gc.Priorities)
		if err != nil {
			return cfg, fmt.Errorf("priorities: %w", err)
		}
		cfg.Priorities = table
	}

	policy, err := systems.ParseHomePowerPolicy(gc.HomePowerPolicy)
	if err != nil {
		return cfg, err
	}
	cfg.HomePower = policy

	return cfg, nil
}
