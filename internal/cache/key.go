package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
)

// StructureKey is the key of a table's full structure payload.
func StructureKey(tableID int) string {
	return "tableau:" + strconv.Itoa(tableID) + ":structure"
}

// FilterOptionsKey is the key of a table's filter options payload.
func FilterOptionsKey(tableID int) string {
	return "tableau:" + strconv.Itoa(tableID) + ":filtres"
}

// FilteredKey is the key of a filtered structure payload. The selection is
// hashed so that keys stay short; the order of labels is significant.
func FilteredKey(tableID int, rows, columns []string) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r)
		b.WriteByte(0)
	}
	b.WriteByte(1)
	for _, c := range columns {
		b.WriteString(c)
		b.WriteByte(0)
	}
	return "tableau:" + strconv.Itoa(tableID) + ":filtre:" + HashKey(b.String())
}

// HashKey returns the hex SHA-256 of key.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
