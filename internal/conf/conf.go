package conf

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bootstrap is the top-level configuration scanned from the config source.
type Bootstrap struct {
	Server   *Server   `json:"server"`
	Data     *Data     `json:"data"`
	Rocketmq *RocketMQ `json:"rocketmq"`
	Audit    *Audit    `json:"audit"`
}

// Server holds transport server configuration.
type Server struct {
	Http *ServerEndpoint `json:"http"`
	Grpc *ServerEndpoint `json:"grpc"`
}

// ServerEndpoint configures a single listener.
type ServerEndpoint struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

// Data holds data layer configuration.
type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
}

// Database configures the MySQL connection pool and transaction bounds.
type Database struct {
	Username        string   `json:"username"`
	Password        string   `json:"password"`
	Host            string   `json:"host"`
	Port            int32    `json:"port"`
	DbName          string   `json:"db_name"`
	DbCharset       string   `json:"db_charset"`
	MaxIdleConns    int32    `json:"max_idle_conns"`
	MaxOpenConns    int32    `json:"max_open_conns"`
	ConnMaxLifetime Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime Duration `json:"conn_max_idle_time"`
	// TxTimeout bounds how long a transfer transaction may stay open
	// before its context deadline aborts it.
	TxTimeout Duration `json:"tx_timeout"`
}

// Redis configures the balance cache client.
type Redis struct {
	Addr         string   `json:"addr"`
	Password     string   `json:"password"`
	Db           int32    `json:"db"`
	DialTimeout  Duration `json:"dial_timeout"`
	ReadTimeout  Duration `json:"read_timeout"`
	WriteTimeout Duration `json:"write_timeout"`
	// BalanceTtl is the expiry of cached balance entries.
	BalanceTtl Duration `json:"balance_ttl"`
}

// RocketMQ configures the transfer event producer.
type RocketMQ struct {
	NameServers   string   `json:"name_servers"`
	ProducerGroup string   `json:"producer_group"`
	AccessKey     string   `json:"access_key"`
	SecretKey     string   `json:"secret_key"`
	SendTimeout   Duration `json:"send_timeout"`
	RetryTimes    int32    `json:"retry_times"`
	TransferTopic string   `json:"transfer_topic"`
}

// Audit configures the balance conservation audit job.
type Audit struct {
	Enabled  bool     `json:"enabled"`
	Interval Duration `json:"interval"`
}

// Duration is a time.Duration that unmarshals from "30s"-style strings
// or plain nanosecond numbers.
type Duration time.Duration

// AsDuration returns the value as a time.Duration.
func (d Duration) AsDuration() time.Duration {
	return time.Duration(d)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", value, err)
		}
		*d = Duration(parsed)
		return nil
	default:
		return fmt.Errorf("invalid duration value: %v", v)
	}
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
