package match

import (
	"math/rand"
	"strings"
	"unicode/utf8"

	"github.com/okian/ladder/internal/domain/model"
)

const (
	minTrophies = 4000
	maxTrophies = 7000
	tagLength   = 8
	tagAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

var opponentNames = []string{
	"ProGamer", "CrownKing", "Arena15", "Challenger", "Winner",
	"Champion", "Gladiator", "Warrior", "Conqueror", "Master",
	"Legend", "Titan", "Phoenix", "Dragon", "Shadow",
}

// Opponent is a generated rival. It is never modified after creation.
type Opponent struct {
	Name          string
	TrophyCount   int
	Tag           string
	AvatarInitial rune
}

// Info is the wire form sent to the host.
func (o Opponent) Info() model.OpponentInfo {
	return model.OpponentInfo{
		Name:     o.Name,
		Trophies: o.TrophyCount,
		Tag:      o.Tag,
		Avatar:   string(o.AvatarInitial),
	}
}

// Generator produces opponents.
type Generator func(r *rand.Rand) Opponent

// GenerateOpponent picks a name from the pool with a random trophy count and tag.
func GenerateOpponent(r *rand.Rand) Opponent {
	name := opponentNames[r.Intn(len(opponentNames))]
	initial, _ := utf8.DecodeRuneInString(name)

	var tag strings.Builder
	tag.WriteByte('#')
	for i := 0; i < tagLength; i++ {
		tag.WriteByte(tagAlphabet[r.Intn(len(tagAlphabet))])
	}

	return Opponent{
		Name:          name,
		TrophyCount:   minTrophies + r.Intn(maxTrophies-minTrophies),
		Tag:           tag.String(),
		AvatarInitial: initial,
	}
}
