package common

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

// TempIDPrefix marks client-allocated placeholder ids. Server ids are numeric
// snowflakes or uuids and never carry the prefix, so a reconciliation pass can
// always tell the two apart.
const TempIDPrefix = "temp-"

type TempAllocator struct {
	node *snowflake.Node
}

func NewTempAllocator(node *snowflake.Node) *TempAllocator {
	return &TempAllocator{node: node}
}

// Next returns a placeholder id distinct from every other id produced within
// the process lifetime. Allocator state is in-memory only; temp ids never
// outlive the session that created them.
func (a *TempAllocator) Next() string {
	return TempIDPrefix + a.node.Generate().String()
}

func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}
