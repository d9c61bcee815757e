// Package appid derives the numeric identifiers Steam associates with a
// non-Steam shortcut. Two schemes exist in the wild and store compatibility
// depends on which one the consuming launcher expects, so both are exposed
// as named strategies and selected by the caller.
package appid

import (
	"fmt"
	"hash/crc32"
	"math/rand"
)

// Strategy names an identifier scheme.
type Strategy string

const (
	// StrategyCRC derives the AppID as a CRC-32 checksum of exe+name with
	// the high bit forced, matching what Steam itself computes for
	// non-Steam entries. Deterministic across runs.
	StrategyCRC Strategy = "crc"

	// StrategyLegacy stores a random negative placeholder AppID in the
	// entry; the compat-mapping key is the placeholder offset by 2^32.
	StrategyLegacy Strategy = "legacy"
)

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyCRC:
		return StrategyCRC, nil
	case StrategyLegacy:
		return StrategyLegacy, nil
	}
	return "", fmt.Errorf("unknown appid strategy %q (want %q or %q)", name, StrategyCRC, StrategyLegacy)
}

// Derive computes the deterministic non-Steam AppID for an exe path and
// shortcut name: CRC-32 (IEEE) over the UTF-8 concatenation, high bit set to
// mark the identifier as non-native.
func Derive(exe, name string) uint32 {
	crc := crc32.ChecksumIEEE([]byte(exe + name))
	return crc | 0x80000000
}

// LaunchID returns the 64-bit identifier used in steam://rungameid/ URLs.
func LaunchID(id uint32) uint64 {
	return uint64(id)<<32 | 0x02000000
}

var randInt32 = func() int32 {
	// Placeholder AppIDs are negative by convention.
	return -1 - int32(rand.Int31n(1<<31-1))
}

// EntryID returns the AppID value stored in the shortcut entry itself.
func (s Strategy) EntryID(exe, name string) int32 {
	if s == StrategyLegacy {
		return randInt32()
	}
	return int32(Derive(exe, name))
}

// CompatKey returns the key under which the compat-tool mapping is stored
// for an entry AppID produced by this strategy.
func (s Strategy) CompatKey(entryID int32) uint64 {
	if s == StrategyLegacy {
		return uint64(int64(entryID) + 1<<32)
	}
	return uint64(uint32(entryID))
}
