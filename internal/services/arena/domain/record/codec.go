package record

import (
	"encoding/binary"
	"fmt"

	"github.com/louisbranch/ironarena/internal/services/arena/domain/talent"
)

// The player record uses a fixed little-endian layout so that records can be
// grown in place by append-only schema migrations. Field order is frozen;
// new fields may only ever be appended.
//
//	tag 8 | identity 32 | health 2 | max 2 | attack 2 | xp 8 | kills 8 |
//	deaths 8 | healthTier 1 | attackTier 1 | alive 1 | respawnAt 8 |
//	initialized 1 | talents 25 | manualBuild 1
const (
	// EncodedSize is the current record length.
	EncodedSize = 8 + IdentityLen + 2 + 2 + 2 + 8 + 8 + 8 + 1 + 1 + 1 + 8 + 1 + talent.SlotCount + 1 // 108

	// LegacyEncodedSize is the pre-talent record length.
	LegacyEncodedSize = EncodedSize - talent.SlotCount - 1 // 82

	tagLen = 8
)

// TypeTag identifies a serialized player record.
var TypeTag = [tagLen]byte{56, 3, 60, 86, 174, 16, 244, 195}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// Marshal encodes the player into the current fixed layout.
func Marshal(p Player) []byte {
	buf := make([]byte, EncodedSize)
	copy(buf[:tagLen], TypeTag[:])
	copy(buf[8:40], p.Identity[:])
	binary.LittleEndian.PutUint16(buf[40:42], p.Health)
	binary.LittleEndian.PutUint16(buf[42:44], p.MaxHealth)
	binary.LittleEndian.PutUint16(buf[44:46], p.AttackPower)
	binary.LittleEndian.PutUint64(buf[46:54], p.XP)
	binary.LittleEndian.PutUint64(buf[54:62], p.Kills)
	binary.LittleEndian.PutUint64(buf[62:70], p.Deaths)
	buf[70] = p.HealthTier
	buf[71] = p.AttackTier
	buf[72] = boolByte(p.Alive)
	binary.LittleEndian.PutUint64(buf[73:81], uint64(p.RespawnAt))
	buf[81] = boolByte(p.Initialized)
	copy(buf[82:82+talent.SlotCount], p.Talents[:])
	buf[107] = boolByte(p.ManualBuild)
	return buf
}

// Unmarshal decodes a player from the current fixed layout.
func Unmarshal(data []byte) (Player, error) {
	if len(data) != EncodedSize {
		return Player{}, fmt.Errorf("player record length %d, want %d", len(data), EncodedSize)
	}
	if [tagLen]byte(data[:tagLen]) != TypeTag {
		return Player{}, fmt.Errorf("player record has wrong type tag")
	}

	var p Player
	copy(p.Identity[:], data[8:40])
	p.Health = binary.LittleEndian.Uint16(data[40:42])
	p.MaxHealth = binary.LittleEndian.Uint16(data[42:44])
	p.AttackPower = binary.LittleEndian.Uint16(data[44:46])
	p.XP = binary.LittleEndian.Uint64(data[46:54])
	p.Kills = binary.LittleEndian.Uint64(data[54:62])
	p.Deaths = binary.LittleEndian.Uint64(data[62:70])
	p.HealthTier = data[70]
	p.AttackTier = data[71]
	p.Alive = data[72] != 0
	p.RespawnAt = int64(binary.LittleEndian.Uint64(data[73:81]))
	p.Initialized = data[81] != 0
	copy(p.Talents[:], data[82:82+talent.SlotCount])
	p.ManualBuild = data[107] != 0
	return p, nil
}

// MarshalArena encodes the arena counter record.
func MarshalArena(a Arena) []byte {
	buf := make([]byte, IdentityLen+4+8+1)
	copy(buf[:IdentityLen], a.Authority[:])
	binary.LittleEndian.PutUint32(buf[32:36], a.PlayerCount)
	binary.LittleEndian.PutUint64(buf[36:44], a.TotalKills)
	buf[44] = boolByte(a.Active)
	return buf
}

// UnmarshalArena decodes the arena counter record.
func UnmarshalArena(data []byte) (Arena, error) {
	if len(data) != IdentityLen+4+8+1 {
		return Arena{}, fmt.Errorf("arena record length %d, want %d", len(data), IdentityLen+4+8+1)
	}
	var a Arena
	copy(a.Authority[:], data[:IdentityLen])
	a.PlayerCount = binary.LittleEndian.Uint32(data[32:36])
	a.TotalKills = binary.LittleEndian.Uint64(data[36:44])
	a.Active = data[44] != 0
	return a, nil
}
