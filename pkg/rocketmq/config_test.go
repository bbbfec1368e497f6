package rocketmq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bankcore/transfer-service/internal/conf"
)

func TestNewConfigFromConf(t *testing.T) {
	tests := []struct {
		name     string
		input    *conf.RocketMQ
		expected *Config
	}{
		{
			name: "single endpoint with defaults",
			input: &conf.RocketMQ{
				NameServers:   "10.0.0.1:8081",
				ProducerGroup: "transfer_producers",
			},
			expected: &Config{
				Endpoint:      "10.0.0.1:8081",
				ConsumerGroup: "transfer_producers",
				SendTimeout:   3 * time.Second,
				MaxAttempts:   3,
			},
		},
		{
			name: "first of multiple servers wins",
			input: &conf.RocketMQ{
				NameServers: "10.0.0.1:8081;10.0.0.2:8081",
			},
			expected: &Config{
				Endpoint:    "10.0.0.1:8081",
				SendTimeout: 3 * time.Second,
				MaxAttempts: 3,
			},
		},
		{
			name: "custom timeout and retries",
			input: &conf.RocketMQ{
				NameServers: "10.0.0.1:8081",
				SendTimeout: conf.Duration(10 * time.Second),
				RetryTimes:  5,
			},
			expected: &Config{
				Endpoint:    "10.0.0.1:8081",
				SendTimeout: 10 * time.Second,
				MaxAttempts: 5,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewConfigFromConf(tt.input)
			require.Equal(t, tt.expected.Endpoint, got.Endpoint)
			require.Equal(t, tt.expected.ConsumerGroup, got.ConsumerGroup)
			require.Equal(t, tt.expected.SendTimeout, got.SendTimeout)
			require.Equal(t, tt.expected.MaxAttempts, got.MaxAttempts)
			require.NotNil(t, got.Credentials)
		})
	}
}
