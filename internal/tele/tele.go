// Package tele publishes monitor state to the outside world: sensor
// readings over MQTT and/or an InfluxDB bucket.
//
// Contract:
// - Init() fails only with invalid config, network issues are ignored
// - Reading/State/Error never block a monitor tick, delivery is
//   fire-and-forget (no disk spool, persistence is out of scope)
// - Close() flushes what it can and returns
package tele

import (
	"context"

	"github.com/temoto/pimon/internal/sensor"
	"github.com/temoto/pimon/log2"
)

type Config struct {
	Enable         bool   `hcl:"enable"`
	MqttBroker     string `hcl:"mqtt_broker"`
	MqttPrefix     string `hcl:"mqtt_prefix"`
	MqttPassword   string `hcl:"mqtt_password"`
	KeepaliveSec   int    `hcl:"keepalive_sec"`
	PingTimeoutSec int    `hcl:"ping_timeout_sec"`
	InfluxURL      string `hcl:"influx_url"`
	InfluxToken    string `hcl:"influx_token"`
	InfluxOrg      string `hcl:"influx_org"`
	InfluxBucket   string `hcl:"influx_bucket"`
	LogDebug       bool   `hcl:"log_debug"`
}

type Teler interface {
	Init(ctx context.Context, log *log2.Log, c Config) error
	Reading(r sensor.Reading)
	State(s string)
	Error(e error)
	Close()
}

// Noop is the default when telemetry is not configured.
type Noop struct{}

func (Noop) Init(context.Context, *log2.Log, Config) error { return nil }
func (Noop) Reading(sensor.Reading)                        {}
func (Noop) State(string)                                  {}
func (Noop) Error(error)                                   {}
func (Noop) Close()                                        {}

var _ Teler = Noop{}
