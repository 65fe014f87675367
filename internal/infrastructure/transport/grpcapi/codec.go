package grpcapi

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

// codecName is the content-subtype this package's NetworkConfig service is
// served under. grpc-go selects a codec per RPC from the "+subtype" suffix
// of the request's grpc content-type, defaulting to "proto" when absent;
// registering under a distinct name lets this service and the real
// grpc_health_v1 service (which always negotiates "proto") share one
// *grpc.Server without either one's wire format interfering with the
// other's.
const codecName = "json"

// jsonCodec implements encoding.Codec over plain Go structs with
// encoding/json. There is no generated daemonpb package in this
// repository to marshal against the real protobuf wire format (no .proto
// sources were available to compile), so the NetworkConfig service is
// served as exactly the declared structs instead.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return codecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
