package commands

import (
	"github.com/lumpybrain/DedMult/internal/core/errs"
	"github.com/lumpybrain/DedMult/internal/core/types"
	"github.com/lumpybrain/DedMult/pkg/api"
)

// FillPacket сериализует команду в компактный пакет для передачи по сети:
// [игрок, цель] и корабль третьим элементом для MoveShip.
func FillPacket(c *Command) api.CommandPacket {
	refs := []types.EntityID{c.Player, c.Target}
	if handlers[c.kind].minRefs > 2 {
		refs = append(refs, c.Ship)
	}
	return api.CommandPacket{Kind: c.kind.String(), Refs: refs}
}

// FromPacket восстанавливает команду из пакета и проверяет её
// в текущем состоянии галактики.
//
// Слишком короткий пакет отклоняется до создания команды.
func FromPacket(env *Env, pkt api.CommandPacket) (*Command, error) {
	kind := ParseKind(pkt.Kind)
	h, ok := handlers[kind]
	if !ok {
		return nil, errs.Validationf("packet: unknown command kind %q", pkt.Kind)
	}
	if len(pkt.Refs) < h.minRefs {
		return nil, errs.Validationf("packet: %s needs %d refs, got %d", kind, h.minRefs, len(pkt.Refs))
	}

	p := Params{Player: pkt.Refs[0], Target: pkt.Refs[1]}
	if h.minRefs > 2 {
		p.Ship = pkt.Refs[2]
	}

	c := New(kind)
	if err := c.Initialize(p); err != nil {
		return nil, err
	}
	if err := c.Validate(env); err != nil {
		return nil, err
	}
	return c, nil
}
