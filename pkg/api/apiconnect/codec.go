// Package apiconnect wires the groupledger.v1 services to Connect handlers and
// clients. Messages are plain Go structs from package api encoded as JSON, so
// every handler and client is built with the JSON codec below.
package apiconnect

import (
	"fmt"

	"connectrpc.com/connect"
	json "github.com/goccy/go-json"
)

// codecName replaces Connect's built-in "json" codec, which only accepts
// protobuf messages.
const codecName = "json"

type jsonCodec struct{}

func (jsonCodec) Name() string { return codecName }

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal into %T: %w", msg, err)
	}
	return nil
}

// WithJSON is the codec option every groupledger handler and client needs.
func WithJSON() connect.Option {
	return connect.WithCodec(jsonCodec{})
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{WithJSON()}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{WithJSON()}, opts...)
}
