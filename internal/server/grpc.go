package server

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	stdgrpc "google.golang.org/grpc"

	"github.com/bankcore/transfer-service/internal/conf"
)

// maxRecvMsgSize caps inbound gRPC messages at 4 MiB.
const maxRecvMsgSize = 4 * 1024 * 1024

// NewGRPCServer creates the gRPC server. No application service is
// registered on it yet; it carries the built-in health service used by
// load balancers and the registry.
func NewGRPCServer(c *conf.Server, logger log.Logger) *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		grpc.Options(stdgrpc.MaxRecvMsgSize(maxRecvMsgSize)),
	}
	if c.Grpc != nil {
		if c.Grpc.Network != "" {
			opts = append(opts, grpc.Network(c.Grpc.Network))
		}
		if c.Grpc.Addr != "" {
			opts = append(opts, grpc.Address(c.Grpc.Addr))
		}
		if c.Grpc.Timeout.AsDuration() > 0 {
			opts = append(opts, grpc.Timeout(c.Grpc.Timeout.AsDuration()))
		}
	}

	return grpc.NewServer(opts...)
}
