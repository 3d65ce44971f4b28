// Package codec decouples structured message payloads from their wire
// encoding so callers can exchange typed values over a WebSocket data
// frame without committing to one serialization format.
package codec

// Interface for decoupling the message serialization and deserialization
type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}
