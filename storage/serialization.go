// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/poiesic/docuchat/core"
)

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) ([]byte, error) {
	data, err := sonic.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk %d: %w", ErrSerializationFailed, chunk.Id, err)
	}
	return data, nil
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var chunk core.Chunk
	if err := sonic.Unmarshal(data, &chunk); err != nil {
		return nil, fmt.Errorf("%w: chunk: %w", ErrSerializationFailed, err)
	}
	return &chunk, nil
}

// MarshalMessages serializes a message sequence to bytes.
func MarshalMessages(msgs []core.Message) ([]byte, error) {
	data, err := sonic.Marshal(msgs)
	if err != nil {
		return nil, fmt.Errorf("%w: messages: %w", ErrSerializationFailed, err)
	}
	return data, nil
}

// UnmarshalMessages deserializes a message sequence from bytes.
func UnmarshalMessages(data []byte) ([]core.Message, error) {
	var msgs []core.Message
	if err := sonic.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("%w: messages: %w", ErrSerializationFailed, err)
	}
	return msgs, nil
}

// MarshalThread serializes a Thread to bytes.
func MarshalThread(thread *core.Thread) ([]byte, error) {
	data, err := sonic.Marshal(thread)
	if err != nil {
		return nil, fmt.Errorf("%w: thread %s: %w", ErrSerializationFailed, thread.ThreadID, err)
	}
	return data, nil
}

// UnmarshalThread deserializes a Thread from bytes.
func UnmarshalThread(data []byte) (*core.Thread, error) {
	var thread core.Thread
	if err := sonic.Unmarshal(data, &thread); err != nil {
		return nil, fmt.Errorf("%w: thread: %w", ErrSerializationFailed, err)
	}
	return &thread, nil
}
