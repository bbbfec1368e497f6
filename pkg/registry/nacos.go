// Package registry wires service discovery from environment variables so
// deployments need no registry section in the bootstrap config.
package registry

import (
	"strconv"
	"strings"

	"github.com/nacos-group/nacos-sdk-go/clients"
	"github.com/nacos-group/nacos-sdk-go/clients/naming_client"
	"github.com/nacos-group/nacos-sdk-go/common/constant"
	"github.com/nacos-group/nacos-sdk-go/vo"

	"github.com/bankcore/transfer-service/pkg/env"
	"github.com/bankcore/transfer-service/pkg/registry/nacos"
)

// Environment variables read by NewNacosConfigFromEnv.
const (
	EnvNacosServerAddrs = "NACOS_SERVER_ADDRS" // comma-separated "ip:port" list
	EnvNacosNamespaceID = "NACOS_NAMESPACE_ID"
	EnvNacosLogDir      = "NACOS_LOG_DIR"
	EnvNacosCacheDir    = "NACOS_CACHE_DIR"
	EnvNacosLogLevel    = "NACOS_LOG_LEVEL" // debug, info, warn, error
)

const (
	DefaultNacosServerAddr = "127.0.0.1:8848"
	DefaultNacosLogDir     = "/tmp/nacos/log"
	DefaultNacosCacheDir   = "/tmp/nacos/cache"
	DefaultNacosLogLevel   = "warn"

	defaultNacosPort = 8848
)

// NacosConfig holds nacos client settings.
type NacosConfig struct {
	ServerAddrs []ServerAddr
	NamespaceID string
	LogDir      string
	CacheDir    string
	LogLevel    string
}

// ServerAddr is a single nacos server endpoint.
type ServerAddr struct {
	IP   string
	Port uint64
}

// NewNacosConfigFromEnv reads the NACOS_* environment variables, falling
// back to local defaults.
func NewNacosConfigFromEnv() *NacosConfig {
	return &NacosConfig{
		ServerAddrs: parseServerAddrs(env.GetOrDefault(EnvNacosServerAddrs, DefaultNacosServerAddr)),
		NamespaceID: env.Get(EnvNacosNamespaceID),
		LogDir:      env.GetOrDefault(EnvNacosLogDir, DefaultNacosLogDir),
		CacheDir:    env.GetOrDefault(EnvNacosCacheDir, DefaultNacosCacheDir),
		LogLevel:    env.GetOrDefault(EnvNacosLogLevel, DefaultNacosLogLevel),
	}
}

// parseServerAddrs splits a comma-separated address list. Blank entries
// are dropped; an empty list falls back to localhost.
func parseServerAddrs(addrs string) []ServerAddr {
	var out []ServerAddr
	for _, part := range strings.Split(addrs, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, parseServerAddr(part))
	}
	if len(out) == 0 {
		return []ServerAddr{{IP: "127.0.0.1", Port: defaultNacosPort}}
	}
	return out
}

// parseServerAddr parses "ip:port". A missing or unparseable port gets
// the nacos default.
func parseServerAddr(addr string) ServerAddr {
	if idx := strings.LastIndex(addr, ":"); idx != -1 {
		if port, err := strconv.ParseUint(addr[idx+1:], 10, 64); err == nil {
			return ServerAddr{IP: addr[:idx], Port: port}
		}
	}
	return ServerAddr{IP: addr, Port: defaultNacosPort}
}

// NewNacosNamingClient builds a naming client from the config.
func NewNacosNamingClient(cfg *NacosConfig) (naming_client.INamingClient, error) {
	servers := make([]constant.ServerConfig, 0, len(cfg.ServerAddrs))
	for _, addr := range cfg.ServerAddrs {
		servers = append(servers, constant.ServerConfig{
			IpAddr: addr.IP,
			Port:   addr.Port,
		})
	}

	return clients.NewNamingClient(vo.NacosClientParam{
		ClientConfig: &constant.ClientConfig{
			NamespaceId:         cfg.NamespaceID,
			NotLoadCacheAtStart: true,
			LogDir:              cfg.LogDir,
			CacheDir:            cfg.CacheDir,
			LogLevel:            cfg.LogLevel,
		},
		ServerConfigs: servers,
	})
}

// NewNacosRegistry wraps a naming client in a kratos registry.
func NewNacosRegistry(client naming_client.INamingClient) *nacos.Registry {
	return nacos.New(client)
}

// NewNacosRegistryFromEnv is the one-call path used at startup: env
// config, naming client, registry.
func NewNacosRegistryFromEnv() (*nacos.Registry, error) {
	cfg := NewNacosConfigFromEnv()
	client, err := NewNacosNamingClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewNacosRegistry(client), nil
}
