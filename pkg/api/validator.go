package api

import (
	"errors"
	"strings"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p JoinPayload) Validate() error {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return errors.New("name is required")
	}
	if len(name) > 32 {
		return errors.New("name is too long")
	}
	return nil
}

func (p CommandPacket) Validate() error {
	if p.Kind == "" {
		return errors.New("kind is required")
	}
	if len(p.Refs) < 2 {
		return errors.New("refs must contain at least player and target")
	}
	return nil
}

func (p CancelPayload) Validate() error {
	if p.ID == 0 {
		return errors.New("id is required")
	}
	return nil
}
