package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata keys set on every domain event message.
const (
	MetadataEventID      = "event_id"
	MetadataEventVersion = "event_version"
)

// ErrPermanent marks a handler failure that redelivery cannot fix, such as an
// undecodable payload. The bus does not retry errors wrapping it.
var ErrPermanent = errors.New("events: permanent failure")

// NewEventMessage marshals event as the JSON payload of a new message and
// records eventID and version in its metadata.
func NewEventMessage(eventID string, version int, event any) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("events: marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataEventID, eventID)
	msg.Metadata.Set(MetadataEventVersion, strconv.Itoa(version))
	return msg, nil
}

// DecodeEvent unmarshals msg's JSON payload into dst. Decode failures wrap
// ErrPermanent.
func DecodeEvent(msg *message.Message, dst any) error {
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrPermanent, msg.UUID, err)
	}
	return nil
}
