package contact

import (
	"encoding/json"
	"time"
)

// Message is one submission of the public contact form. Body is kept
// verbatim as whatever object the client posted.
type Message struct {
	Time time.Time       `json:"time"`
	IP   string          `json:"ip"`
	Body json.RawMessage `json:"body"`
}
