package common_test

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/zunou-lab/chatsync/internal/common"
)

func TestTempAllocatorUniqueness(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	allocator := common.NewTempAllocator(node)
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := allocator.Next()
		require.False(t, seen[id], "duplicate temp id %s", id)
		require.True(t, common.IsTempID(id))
		seen[id] = true
	}
}

func TestIsTempIDRejectsServerFormats(t *testing.T) {
	for _, id := range []string{
		"1646173401000001",
		"9f4a2c3e-40f1-44f8-8f5e-6f1f2b6f8a90",
		"srv-9",
		"",
	} {
		require.False(t, common.IsTempID(id), "server id %q misread as temp", id)
	}
}
