package conf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{
			name:     "seconds string",
			input:    `"30s"`,
			expected: 30 * time.Second,
		},
		{
			name:     "compound string",
			input:    `"1h30m"`,
			expected: 90 * time.Minute,
		},
		{
			name:     "nanosecond number",
			input:    `1000000000`,
			expected: time.Second,
		},
		{
			name:    "invalid string",
			input:   `"not-a-duration"`,
			wantErr: true,
		},
		{
			name:    "invalid type",
			input:   `true`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, d.AsDuration())
		})
	}
}

func TestDuration_MarshalRoundTrip(t *testing.T) {
	d := Duration(45 * time.Second)
	b, err := json.Marshal(d)
	require.NoError(t, err)
	require.Equal(t, `"45s"`, string(b))

	var got Duration
	require.NoError(t, json.Unmarshal(b, &got))
	require.Equal(t, d, got)
}

func TestBootstrap_Scan(t *testing.T) {
	raw := `{
		"server": {"http": {"network": "tcp", "addr": "0.0.0.0:8000", "timeout": "1s"}},
		"data": {
			"database": {"username": "root", "host": "127.0.0.1", "port": 3306, "db_name": "bank", "tx_timeout": "30s"},
			"redis": {"addr": "127.0.0.1:6379", "balance_ttl": "5m"}
		},
		"rocketmq": {"name_servers": "127.0.0.1:8081", "transfer_topic": "transfer_completed"},
		"audit": {"enabled": true, "interval": "1m"}
	}`

	var bc Bootstrap
	require.NoError(t, json.Unmarshal([]byte(raw), &bc))
	require.Equal(t, "0.0.0.0:8000", bc.Server.Http.Addr)
	require.Equal(t, 30*time.Second, bc.Data.Database.TxTimeout.AsDuration())
	require.Equal(t, 5*time.Minute, bc.Data.Redis.BalanceTtl.AsDuration())
	require.Equal(t, "transfer_completed", bc.Rocketmq.TransferTopic)
	require.True(t, bc.Audit.Enabled)
	require.Equal(t, time.Minute, bc.Audit.Interval.AsDuration())
}
