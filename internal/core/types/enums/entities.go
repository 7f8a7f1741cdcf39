package enums

import "strings"

// EntityType - тип сущности, упакованный в старшие биты EntityID.
type EntityType uint8

const (
	EntityTypeUnknown EntityType = iota
	EntityTypeNode
	EntityTypeShip
	EntityTypePlayer
)

var entityTypeToString = map[EntityType]string{
	EntityTypeNode:   "NODE",
	EntityTypeShip:   "SHIP",
	EntityTypePlayer: "PLAYER",
}

var entityTypeStringToType = map[string]EntityType{
	"NODE":   EntityTypeNode,
	"SHIP":   EntityTypeShip,
	"PLAYER": EntityTypePlayer,
}

// String возвращает строковое представление (для логов и дебага)
func (e EntityType) String() string {
	if val, ok := entityTypeToString[e]; ok {
		return val
	}
	return "UNKNOWN"
}

// ParseEntityType конвертирует строку в Enum
func ParseEntityType(s string) EntityType {
	upper := strings.ToUpper(s)
	if val, ok := entityTypeStringToType[upper]; ok {
		return val
	}
	return EntityTypeUnknown
}

// NodeKind различает узлы галактики. Строить корабли можно только на планетах.
type NodeKind uint8

const (
	NodeKindUnknown NodeKind = iota
	NodeKindWaypoint
	NodeKindPlanet
)

var nodeKindToString = map[NodeKind]string{
	NodeKindWaypoint: "WAYPOINT",
	NodeKindPlanet:   "PLANET",
}

var nodeKindStringToKind = map[string]NodeKind{
	"WAYPOINT": NodeKindWaypoint,
	"PLANET":   NodeKindPlanet,
}

func (k NodeKind) String() string {
	if val, ok := nodeKindToString[k]; ok {
		return val
	}
	return "UNKNOWN"
}

// ParseNodeKind используется загрузчиком карты.
func ParseNodeKind(s string) NodeKind {
	if val, ok := nodeKindStringToKind[strings.ToUpper(s)]; ok {
		return val
	}
	return NodeKindUnknown
}
