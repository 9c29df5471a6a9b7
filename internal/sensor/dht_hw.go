//go:build pimon_hardware

package sensor

import (
	"time"

	"github.com/MichaelS11/go-dht"
	"github.com/juju/errors"
)

const dhtRetries = 11

// DHT22 reads a real DHT22/AM2302 on the given GPIO pin.
type DHT22 struct {
	dev *dht.DHT
}

func NewDHT22(pin string) (*DHT22, error) {
	if err := dht.HostInit(); err != nil {
		return nil, errors.Annotate(err, "dht host init")
	}
	dev, err := dht.NewDHT(pin, dht.Celsius, "")
	if err != nil {
		return nil, errors.Annotatef(err, "dht pin=%s", pin)
	}
	return &DHT22{dev: dev}, nil
}

func (self *DHT22) Name() string { return "dht22" }

func (self *DHT22) Read() (Reading, error) {
	humidity, temperature, err := self.dev.ReadRetry(dhtRetries)
	if err != nil {
		return Reading{}, errors.Annotate(err, "dht read")
	}
	return Reading{
		Temperature: temperature,
		Humidity:    humidity,
		Timestamp:   time.Now().Unix(),
	}, nil
}
