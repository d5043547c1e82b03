package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string. Used for request IDs.
func NewKSUID() string {
	return ksuid.New().String()
}

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewSnowflakeID generates a snowflake ID string using a node ID from
// the environment variable SNOWFLAKE_NODE (default 1). The node is built
// once so IDs from concurrent callers stay unique. If node setup fails it
// falls back to a KSUID string.
func NewSnowflakeID() string {
	nodeOnce.Do(func() { node = nodeFromEnv() })
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}

// nodeFromEnv returns nil when SNOWFLAKE_NODE is not a valid node ID.
func nodeFromEnv() *snowflake.Node {
	nodeID := int64(1)
	if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil
		}
		nodeID = n
	}
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil
	}
	return n
}
