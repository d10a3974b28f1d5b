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


package core

import (
	"fmt"
	"strings"
	"time"
)

// ValidateMessage validates a conversation Message according to domain rules.
//
// Validation rules:
//   - Content must not be empty or whitespace-only
//   - Role must be valid (Human or Assistant)
//   - Timestamp must not be in the future
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return NewError(KindInvalidInput, "message is nil", nil)
	}

	if strings.TrimSpace(msg.Content) == "" {
		return NewError(KindInvalidInput, "invalid message", ErrEmptyMessage)
	}

	if err := ValidateRole(msg.Role); err != nil {
		return NewError(KindInvalidInput, "invalid message", err)
	}

	if !msg.Timestamp.IsZero() && !IsValidTimestamp(msg.Timestamp) {
		return NewError(KindInvalidInput, "invalid message", ErrInvalidTimestamp)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleHuman && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}

// ValidateChunk validates a Chunk before it is handed to the storage gateway.
//
// Validation rules:
//   - Content must not be empty
//   - ResourceID and SourceFile must be set
//   - Index must not be negative
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("chunk is nil")
	}
	if chunk.Content == "" {
		return fmt.Errorf("chunk %d: content is empty", chunk.Index)
	}
	if chunk.ResourceID == "" {
		return fmt.Errorf("chunk %d: %w", chunk.Index, ErrMissingResourceID)
	}
	if chunk.SourceFile == "" {
		return fmt.Errorf("chunk %d: source file is empty", chunk.Index)
	}
	if chunk.Index < 0 {
		return fmt.Errorf("chunk index %d is negative", chunk.Index)
	}
	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
