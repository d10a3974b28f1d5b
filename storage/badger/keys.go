package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/docuchat/core"
)

// Key prefixes for different data types
const (
	chunkPrefix         = "chunk"
	chunkResourcePrefix = "chunkres"
	checkpointPrefix    = "ckpt"
	threadPrefix        = "thread"
	threadActivePrefix  = "thractive"
	threadUserPrefix    = "thruser"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkPrefix, id))
}

// makeChunkScan generates the iteration prefix covering every chunk.
func makeChunkScan() []byte {
	return []byte(chunkPrefix + ":")
}

// makeChunkResourceKey generates a composite key for the resource index.
// Format: prefix:resourceID:id, with the ID in BigEndian so iteration order
// is stable.
func makeChunkResourceKey(resourceID string, id core.ID) []byte {
	prefix := []byte(chunkResourcePrefix + ":" + resourceID + ":")
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeChunkResourceScan generates the iteration prefix for one resource.
func makeChunkResourceScan(resourceID string) []byte {
	return []byte(chunkResourcePrefix + ":" + resourceID + ":")
}

// makeCheckpointKey generates a key for a thread's message history.
func makeCheckpointKey(threadID string) []byte {
	return []byte(checkpointPrefix + ":" + threadID)
}

// makeThreadKey generates a key for a thread record by thread ID.
func makeThreadKey(threadID string) []byte {
	return []byte(threadPrefix + ":" + threadID)
}

// makeThreadActiveKey generates the key holding the active thread ID for a
// (user, resource) pair. The NUL separator keeps user and resource IDs from
// colliding when concatenated.
func makeThreadActiveKey(userID, resourceID string) []byte {
	return []byte(threadActivePrefix + ":" + userID + "\x00" + resourceID)
}

// makeThreadUserKey generates a composite key for the per-user thread index.
func makeThreadUserKey(userID, threadID string) []byte {
	return []byte(threadUserPrefix + ":" + userID + "\x00" + threadID)
}

// makeThreadUserScan generates the iteration prefix for one user's threads.
func makeThreadUserScan(userID string) []byte {
	return []byte(threadUserPrefix + ":" + userID + "\x00")
}

// threadIDFromUserKey recovers the thread ID from a per-user index key.
func threadIDFromUserKey(key, prefix []byte) string {
	return string(key[len(prefix):])
}
