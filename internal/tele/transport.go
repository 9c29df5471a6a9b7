package tele

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxapi "github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/juju/errors"
	"github.com/temoto/pimon/helpers"
	"github.com/temoto/pimon/internal/sensor"
	"github.com/temoto/pimon/log2"
)

const (
	defaultKeepalive   = 60 * time.Second
	defaultPingTimeout = 30 * time.Second
	publishTimeout     = 5 * time.Second
)

type tele struct {
	config Config
	log    *log2.Log

	m              mqtt.Client
	topicConnect   string
	topicState     string
	topicTelemetry string
	topicError     string

	influx   influxdb2.Client
	writeAPI influxapi.WriteAPI
}

func New() Teler { return &tele{} }

func (self *tele) Init(ctx context.Context, log *log2.Log, teleConfig Config) error {
	self.config = teleConfig
	self.log = log
	if self.config.LogDebug {
		self.log.SetLevel(log2.LDebug)
	}
	if !self.config.Enable {
		self.log.Debugf("tele disabled")
		return nil
	}

	if self.config.MqttBroker != "" {
		if err := self.initMqtt(); err != nil {
			return errors.Annotate(err, "tele mqtt")
		}
	}
	if self.config.InfluxURL != "" {
		if self.config.InfluxOrg == "" || self.config.InfluxBucket == "" {
			return errors.NotValidf("tele influx_url without influx_org/influx_bucket")
		}
		self.influx = influxdb2.NewClient(self.config.InfluxURL, self.config.InfluxToken)
		self.writeAPI = self.influx.WriteAPI(self.config.InfluxOrg, self.config.InfluxBucket)
	}
	return nil
}

func (self *tele) initMqtt() error {
	mqtt.ERROR = self.log
	mqtt.CRITICAL = self.log
	mqtt.WARN = self.log

	prefix := self.config.MqttPrefix
	if prefix == "" {
		prefix = "pimon"
	}
	self.topicConnect = fmt.Sprintf("%s/c", prefix)
	self.topicState = fmt.Sprintf("%s/w/1s", prefix)
	self.topicTelemetry = fmt.Sprintf("%s/w/1t", prefix)
	self.topicError = fmt.Sprintf("%s/w/1e", prefix)

	keepAlive := helpers.IntSecondDefault(self.config.KeepaliveSec, defaultKeepalive)
	pingTimeout := helpers.IntSecondDefault(self.config.PingTimeoutSec, defaultPingTimeout)
	credFun := func() (string, string) { return prefix, self.config.MqttPassword }

	mopt := mqtt.NewClientOptions().
		AddBroker(self.config.MqttBroker).
		SetBinaryWill(self.topicConnect, []byte{0x00}, 1, true).
		SetClientID(prefix).
		SetCredentialsProvider(credFun).
		SetKeepAlive(keepAlive).
		SetPingTimeout(pingTimeout).
		SetOrderMatters(false).
		SetConnectRetry(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			self.log.Infof("tele: mqtt connected broker=%s", self.config.MqttBroker)
			c.Publish(self.topicConnect, 1, true, []byte{0x01})
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			self.log.Infof("tele: mqtt connection lost err=%v", err)
		})
	self.m = mqtt.NewClient(mopt)
	if token := self.m.Connect(); token.Error() != nil {
		return errors.Trace(token.Error())
	}
	return nil
}

func (self *tele) Reading(r sensor.Reading) {
	if !self.config.Enable {
		return
	}
	if self.m != nil {
		payload, err := json.Marshal(r)
		if err != nil {
			self.log.Errorf("tele: reading marshal err=%v", err)
			return
		}
		self.publish(self.topicTelemetry, payload)
	}
	if self.writeAPI != nil {
		p := influxdb2.NewPointWithMeasurement("sensor_data").
			AddTag("sensor", "pimon").
			AddField("temperature", r.Temperature).
			AddField("humidity", r.Humidity).
			SetTime(time.Unix(r.Timestamp, 0))
		self.writeAPI.WritePoint(p)
	}
}

func (self *tele) State(s string) {
	if !self.config.Enable || self.m == nil {
		return
	}
	self.publish(self.topicState, []byte(s))
}

func (self *tele) Error(e error) {
	if !self.config.Enable || self.m == nil || e == nil {
		return
	}
	self.publish(self.topicError, []byte(e.Error()))
}

func (self *tele) Close() {
	if self.m != nil {
		token := self.m.Publish(self.topicConnect, 1, true, []byte{0x00})
		token.WaitTimeout(publishTimeout)
		self.m.Disconnect(uint(publishTimeout / time.Millisecond))
		self.m = nil
	}
	if self.influx != nil {
		self.writeAPI.Flush()
		self.influx.Close()
		self.influx = nil
	}
}

// publish never blocks the caller; failed delivery is logged and lost.
func (self *tele) publish(topic string, payload []byte) {
	token := self.m.Publish(topic, 1, false, payload)
	go func() {
		if ok := token.WaitTimeout(publishTimeout); !ok || token.Error() != nil {
			self.log.Debugf("tele: publish topic=%s ok=%t err=%v", topic, ok, token.Error())
		}
	}()
}

var _ Teler = &tele{}
