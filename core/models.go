package core

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored chunks.
// It is generated using content-based hashing so that identical content
// under the same resource produces identical IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Role identifies the author of a conversation message.
type Role int

const (
	// RoleHuman represents the human user.
	RoleHuman Role = iota + 1
	// RoleAssistant represents the AI assistant.
	RoleAssistant
)

// String returns the wire name of the role.
func (r Role) String() string {
	switch r {
	case RoleHuman:
		return "human"
	case RoleAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Message is one turn in a conversation thread. All history sources are
// normalized into this type at the boundary; nothing downstream handles
// provider-specific message shapes.
type Message struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Segment is a unit of text produced by an extraction adapter, before
// chunking. Metadata carries extractor-supplied fields such as page numbers;
// values must be scalar and serializable.
type Segment struct {
	Text     string
	Metadata map[string]string
}

// Chunk is a bounded-size unit of extracted text plus metadata. It is the
// unit of embedding, storage and retrieval.
type Chunk struct {
	Id         ID
	ResourceID string
	SourceFile string
	// Index is unique and strictly increasing within one source file.
	Index     int
	Content   string
	CreatedAt time.Time
	Vector    []float32         // populated by the storage gateway
	Metadata  map[string]string // extractor-supplied fields (e.g. "page")
}

// ContentKey returns the canonical string hashed into the chunk ID.
// It covers resource, source file, index and content so re-running an
// ingestion job for the same file upserts identical chunks.
func (c *Chunk) ContentKey() string {
	return c.ResourceID + "\x00" + c.SourceFile + "\x00" + strconv.Itoa(c.Index) + "\x00" + c.Content
}

// ScoredChunk is a chunk returned from similarity search with its score.
type ScoredChunk struct {
	Chunk *Chunk
	Score float32
}

// Thread is the durable identity of one user/resource chat session.
// Exactly one thread is active per (user, resource) pair; deactivation is
// terminal and a new thread must be created to continue.
type Thread struct {
	ThreadID      string
	ResourceID    string
	UserID        string
	Title         string
	MessageCount  int
	IsActive      bool
	CreatedAt     time.Time
	LastMessageAt time.Time
}
