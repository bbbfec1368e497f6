// Package nacos adapts the nacos naming client to the kratos registry
// interfaces.
package nacos

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"net"
	"net/url"
	"strconv"

	"github.com/nacos-group/nacos-sdk-go/clients/naming_client"
	"github.com/nacos-group/nacos-sdk-go/common/constant"
	"github.com/nacos-group/nacos-sdk-go/vo"

	"github.com/go-kratos/kratos/v2/registry"
)

var (
	ErrEmptyServiceName = errors.New("nacos: service instance name is empty")
)

var (
	_ registry.Registrar = (*Registry)(nil)
	_ registry.Discovery = (*Registry)(nil)
)

type options struct {
	weight  float64
	cluster string
	group   string
	kind    string
}

// Option configures the registry.
type Option func(o *options)

// WithWeight sets the default instance weight.
func WithWeight(weight float64) Option {
	return func(o *options) { o.weight = weight }
}

// WithCluster sets the nacos cluster name.
func WithCluster(cluster string) Option {
	return func(o *options) { o.cluster = cluster }
}

// WithGroup sets the nacos group name.
func WithGroup(group string) Option {
	return func(o *options) { o.group = group }
}

// WithDefaultKind sets the transport kind assumed when an instance has no
// kind metadata.
func WithDefaultKind(kind string) Option {
	return func(o *options) { o.kind = kind }
}

// Registry registers and discovers service instances through nacos.
type Registry struct {
	opts options
	cli  naming_client.INamingClient
}

// New builds a Registry around an existing naming client.
func New(cli naming_client.INamingClient, opts ...Option) *Registry {
	op := options{
		cluster: "DEFAULT",
		group:   constant.DEFAULT_GROUP,
		weight:  100,
		kind:    "grpc",
	}
	for _, o := range opts {
		o(&op)
	}
	return &Registry{opts: op, cli: cli}
}

// instanceMetadata merges the instance metadata with the kind and version
// fields nacos consumers expect. A "weight" metadata entry overrides the
// registry default.
func (r *Registry) instanceMetadata(si *registry.ServiceInstance, scheme string) (map[string]string, float64) {
	weight := r.opts.weight
	md := map[string]string{}
	if si.Metadata != nil {
		md = maps.Clone(si.Metadata)
		if w, ok := si.Metadata["weight"]; ok {
			if parsed, err := strconv.ParseFloat(w, 64); err == nil {
				weight = parsed
			}
		}
	}
	md["kind"] = scheme
	md["version"] = si.Version
	return md, weight
}

// splitEndpoint breaks a kratos endpoint URL into scheme, host and port.
func splitEndpoint(endpoint string) (scheme, host string, port uint64, err error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", "", 0, err
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", "", 0, err
	}
	port, err = strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", "", 0, err
	}
	return u.Scheme, host, port, nil
}

// Register implements registry.Registrar. Each endpoint registers as
// "<name>.<scheme>" so grpc and http instances stay distinct.
func (r *Registry) Register(_ context.Context, si *registry.ServiceInstance) error {
	if si.Name == "" {
		return ErrEmptyServiceName
	}
	for _, endpoint := range si.Endpoints {
		scheme, host, port, err := splitEndpoint(endpoint)
		if err != nil {
			return err
		}
		md, weight := r.instanceMetadata(si, scheme)
		if _, err := r.cli.RegisterInstance(vo.RegisterInstanceParam{
			Ip:          host,
			Port:        port,
			ServiceName: si.Name + "." + scheme,
			Weight:      weight,
			Enable:      true,
			Healthy:     true,
			Ephemeral:   true,
			Metadata:    md,
			ClusterName: r.opts.cluster,
			GroupName:   r.opts.group,
		}); err != nil {
			return fmt.Errorf("register instance %s: %w", endpoint, err)
		}
	}
	return nil
}

// Deregister implements registry.Registrar.
func (r *Registry) Deregister(_ context.Context, si *registry.ServiceInstance) error {
	for _, endpoint := range si.Endpoints {
		scheme, host, port, err := splitEndpoint(endpoint)
		if err != nil {
			return err
		}
		if _, err := r.cli.DeregisterInstance(vo.DeregisterInstanceParam{
			Ip:          host,
			Port:        port,
			ServiceName: si.Name + "." + scheme,
			GroupName:   r.opts.group,
			Cluster:     r.opts.cluster,
			Ephemeral:   true,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Watch implements registry.Discovery.
func (r *Registry) Watch(ctx context.Context, serviceName string) (registry.Watcher, error) {
	return newWatcher(ctx, r.cli, serviceName, r.opts.group, r.opts.kind, []string{r.opts.cluster})
}

// GetService implements registry.Discovery, returning healthy instances.
func (r *Registry) GetService(_ context.Context, serviceName string) ([]*registry.ServiceInstance, error) {
	res, err := r.cli.SelectInstances(vo.SelectInstancesParam{
		ServiceName: serviceName,
		GroupName:   r.opts.group,
		HealthyOnly: true,
	})
	if err != nil {
		return nil, err
	}

	items := make([]*registry.ServiceInstance, 0, len(res))
	for _, in := range res {
		kind := r.opts.kind
		if k, ok := in.Metadata["kind"]; ok {
			kind = k
		}
		weight := r.opts.weight
		if in.Weight > 0 {
			weight = in.Weight
		}

		si := &registry.ServiceInstance{
			ID:        in.InstanceId,
			Name:      in.ServiceName,
			Version:   in.Metadata["version"],
			Metadata:  in.Metadata,
			Endpoints: []string{kind + "://" + net.JoinHostPort(in.Ip, strconv.FormatUint(in.Port, 10))},
		}
		si.Metadata["weight"] = strconv.FormatInt(int64(math.Ceil(weight)), 10)
		items = append(items, si)
	}
	return items, nil
}
