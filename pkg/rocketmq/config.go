package rocketmq

import (
	"strings"
	"sync"
	"time"

	rmq "github.com/apache/rocketmq-clients/golang/v5"
	"github.com/apache/rocketmq-clients/golang/v5/credentials"

	"github.com/bankcore/transfer-service/internal/conf"
)

var sslOnce sync.Once

// configureSSL sets the SDK-global SSL flag. Only the first call takes
// effect, later calls are no-ops.
func configureSSL(enable bool) {
	sslOnce.Do(func() {
		rmq.EnableSsl = enable
	})
}

const (
	defaultSendTimeout = 3 * time.Second
	defaultMaxAttempts = 3
)

// Config holds RocketMQ v5 client settings.
type Config struct {
	Endpoint      string // gRPC endpoint, e.g. "127.0.0.1:8081"
	NameSpace     string
	ConsumerGroup string
	Credentials   *credentials.SessionCredentials
	SendTimeout   time.Duration
	MaxAttempts   int32
	EnableSSL     bool
}

// NewConfigFromConf maps the bootstrap rocketmq section onto a Config.
// The v5 SDK speaks gRPC to a single proxy endpoint, so only the first
// entry of name_servers is used.
func NewConfigFromConf(c *conf.RocketMQ) *Config {
	cfg := &Config{
		ConsumerGroup: c.ProducerGroup,
		SendTimeout:   defaultSendTimeout,
		MaxAttempts:   defaultMaxAttempts,
		Credentials: &credentials.SessionCredentials{
			AccessKey:    c.AccessKey,
			AccessSecret: c.SecretKey,
		},
	}

	servers := strings.ReplaceAll(c.NameServers, ";", ",")
	if parts := strings.Split(servers, ","); len(parts) > 0 {
		cfg.Endpoint = strings.TrimSpace(parts[0])
	}

	if c.SendTimeout.AsDuration() > 0 {
		cfg.SendTimeout = c.SendTimeout.AsDuration()
	}
	if c.RetryTimes > 0 {
		cfg.MaxAttempts = c.RetryTimes
	}
	return cfg
}

// ToRMQConfig converts to the SDK config type.
func (c *Config) ToRMQConfig() *rmq.Config {
	return &rmq.Config{
		Endpoint:      c.Endpoint,
		NameSpace:     c.NameSpace,
		ConsumerGroup: c.ConsumerGroup,
		Credentials:   c.Credentials,
	}
}
