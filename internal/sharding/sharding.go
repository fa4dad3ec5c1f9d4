package sharding

import (
	"fmt"
	"hash/crc32"
)

// ShardCount is the fixed number of audit-subject partitions.
const ShardCount = 64

// GetShardID calculates the deterministic shard for a process id.
func GetShardID(processID string) int {
	checksum := crc32.ChecksumIEEE([]byte(processID))
	return int(checksum % ShardCount)
}

// GetSubject returns the NATS subject for a process event.
// Format: processo.evento.{shard_id}.{process_id}
func GetSubject(processID string) string {
	return fmt.Sprintf("processo.evento.%d.%s", GetShardID(processID), processID)
}
