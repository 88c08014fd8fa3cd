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
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Header names set on every Message created from an Entry.
const (
	HeaderFileName     = "file_name"
	HeaderFilePath     = "file_path"
	HeaderFileSize     = "file_size"
	HeaderFileModified = "file_modified"
)

// Message is the delivery unit handed to downstream consumers.
// It wraps exactly one Entry.
type Message struct {
	ID        uuid.UUID
	Timestamp time.Time // When the message was created
	Payload   Entry
	Headers   map[string]string
}

// NewMessage wraps an entry in a Message with a fresh ID and timestamp.
func NewMessage(e Entry) *Message {
	return &Message{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC(),
		Payload:   e,
		Headers: map[string]string{
			HeaderFileName:     e.Name,
			HeaderFilePath:     e.Path,
			HeaderFileSize:     strconv.FormatInt(e.Size, 10),
			HeaderFileModified: e.ModTime.UTC().Format(time.RFC3339Nano),
		},
	}
}

func (m *Message) String() string {
	return fmt.Sprintf("[Payload=%s][ID=%s][Timestamp=%d]", m.Payload.Path, m.ID, m.Timestamp.UnixMilli())
}
