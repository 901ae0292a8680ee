package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init sets up the Snowflake node. Each process (server, worker) must call it
// once with a distinct node ID so IDs never collide across instances.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New returns a time-ordered int64 ID unique across all running instances.
func New() int64 {
	return node.Generate().Int64()
}
