package sink

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
)

const mintMethod = "/begamon.Relayer/SubmitMint"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec lets the sink speak to JSON-transcoding gRPC gateways without
// generated stubs.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }

// GRPCSink submits mint requests over a gRPC connection. It is selected by
// configuration when the destination exposes a gRPC surface instead of HTTP.
type GRPCSink struct {
	endpoint string
	conn     *grpc.ClientConn
}

// NewGRPCSink dials the destination. TLS is inferred from the endpoint scheme.
func NewGRPCSink(endpoint string) (*GRPCSink, error) {
	target := endpoint
	var opts []grpc.DialOption

	if strings.HasPrefix(endpoint, "https://") || strings.HasSuffix(endpoint, ":443") {
		creds := credentials.NewTLS(&tls.Config{})
		opts = append(opts, grpc.WithTransportCredentials(creds))
		target = strings.TrimPrefix(target, "https://")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		target = strings.TrimPrefix(target, "http://")
	}

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial grpc endpoint %s: %w", target, err)
	}

	return &GRPCSink{endpoint: endpoint, conn: conn}, nil
}

type mintAck struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

func (s *GRPCSink) Submit(ctx context.Context, req *MintRequest) error {
	var ack mintAck
	err := s.conn.Invoke(ctx, mintMethod, req, &ack, grpc.CallContentSubtype("json"))
	if err != nil {
		return fmt.Errorf("submit mint request: %w", err)
	}
	if !ack.Accepted {
		return fmt.Errorf("destination rejected mint: %s", ack.Message)
	}
	return nil
}

// Close releases the underlying connection.
func (s *GRPCSink) Close() error {
	return s.conn.Close()
}
