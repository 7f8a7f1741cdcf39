package types

import "strings"

// Team - фракция. Каждый игрок получает свою команду при входе в матч,
// узлы и корабли хранят команду владельца.
type Team uint8

const (
	TeamInvalid Team = iota
	TeamUnowned
	TeamOne
	TeamTwo
	TeamThree
	TeamFour
	TeamFive
	TeamSix
	TeamSeven
	TeamEight
	TeamCount
)

// MaxPlayerTeams - сколько команд можно раздать игрокам.
const MaxPlayerTeams = int(TeamCount - TeamOne)

var teamToString = map[Team]string{
	TeamInvalid: "INVALID",
	TeamUnowned: "UNOWNED",
	TeamOne:     "TEAM_1",
	TeamTwo:     "TEAM_2",
	TeamThree:   "TEAM_3",
	TeamFour:    "TEAM_4",
	TeamFive:    "TEAM_5",
	TeamSix:     "TEAM_6",
	TeamSeven:   "TEAM_7",
	TeamEight:   "TEAM_8",
}

var teamStringToTeam = func() map[string]Team {
	m := make(map[string]Team, len(teamToString))
	for k, v := range teamToString {
		m[v] = k
	}
	return m
}()

func (t Team) String() string {
	if val, ok := teamToString[t]; ok {
		return val
	}
	return "INVALID"
}

// ParseTeam конвертирует строку из карты или JSON в Team.
// Пустая строка означает ничейный узел.
func ParseTeam(s string) Team {
	if s == "" {
		return TeamUnowned
	}
	if val, ok := teamStringToTeam[strings.ToUpper(s)]; ok {
		return val
	}
	return TeamInvalid
}

// IsValid - команда из диапазона (TeamInvalid, TeamCount).
func (t Team) IsValid() bool {
	return t > TeamInvalid && t < TeamCount
}

// IsPlayable - команда, которую можно выдать игроку.
func (t Team) IsPlayable() bool {
	return t >= TeamOne && t < TeamCount
}

// Next возвращает следующую команду для выдачи игроку.
func (t Team) Next() Team {
	if t+1 >= TeamCount {
		return TeamInvalid
	}
	return t + 1
}

// SameTeam сравнивает активные команды. Невалидная команда не равна ничему.
func SameTeam(a, b Team) bool {
	return a.IsValid() && a == b
}
