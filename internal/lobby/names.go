package lobby

import (
	"strings"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	roomCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	roomCodeLength   = 6
	maxNameRunes     = 24
	defaultNamePfx   = "Player"
)

func generateRoomCode() (string, error) {
	return gonanoid.Generate(roomCodeAlphabet, roomCodeLength)
}

// NormalizeRoomCode canonicalises a client-supplied room code. Codes are
// case-insensitive.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DisplayName trims and caps name, falling back to a name derived from the
// player id.
func DisplayName(name, playerID string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		short := playerID
		if len(short) > 4 {
			short = short[:4]
		}
		return defaultNamePfx + short
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}
	return name
}
