package websocket

import (
	"encoding/json"
	"time"

	"github.com/glowupgrow/terrarium-api/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypeSync MessageType = "SYNC"

	// Server to Client
	MessageTypeTerrariumList    MessageType = "TERRARIUM_LIST"
	MessageTypeTerrariumUpdated MessageType = "TERRARIUM_UPDATED"
	MessageTypeError            MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Server to Client payloads

type TerrariumListPayload struct {
	Terrariums []*domain.LiveTerrarium `json:"terrariums"`
}

type TerrariumUpdatedPayload struct {
	Kind      string                `json:"kind"` // "created", "plant", "readings"
	Terrarium *domain.LiveTerrarium `json:"terrarium"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
