package job

import (
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/google/wire"
)

// Registry holds all background jobs for Kratos lifecycle management.
type Registry struct {
	Audit *ConservationAuditJob
}

// Servers returns all jobs as transport.Server slice for kratos.Server().
func (r *Registry) Servers() []transport.Server {
	servers := make([]transport.Server, 0, 1)
	if r.Audit != nil && r.Audit.Enabled() {
		servers = append(servers, r.Audit)
	}
	return servers
}

// ProviderSet is the job providers.
var ProviderSet = wire.NewSet(
	NewConservationAuditJob,
	wire.Struct(new(Registry), "*"),
)
