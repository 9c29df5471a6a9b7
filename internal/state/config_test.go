package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/pimon/log2"
)

func TestReadConfigDefaults(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{"empty": ``})
	c, err := ReadConfig(log, fs, "empty")
	require.NoError(t, err)
	assert.Equal(t, DefaultIntervalMs, c.Monitor.IntervalMs)
	assert.Equal(t, DefaultHighTemp, c.Monitor.HighTemp)
	assert.Equal(t, DefaultLcdWidth, c.Hardware.Lcd.Width)
	assert.Equal(t, DefaultLcdHeight, c.Hardware.Lcd.Height)
	assert.Equal(t, DefaultListen, c.HTTP.Listen)
	assert.Equal(t, 18, c.Hardware.Led.Pin)
	assert.False(t, c.Tele.Enable)
}

func TestReadConfigOverride(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{"conf": `
monitor {
  interval_ms = 500
  high_temp = 28.5
}
hardware {
  lcd {
    width  = 20
    height = 4
  }
  led {
    pin   = 17
    blink = true
  }
}
http { listen = ":8000" }
tele {
  enable = true
  mqtt_broker = "tcp://localhost:1883"
}
`})
	c, err := ReadConfig(log, fs, "conf")
	require.NoError(t, err)
	assert.Equal(t, 500, c.Monitor.IntervalMs)
	assert.Equal(t, 28.5, c.Monitor.HighTemp)
	assert.Equal(t, 20, c.Hardware.Lcd.Width)
	assert.Equal(t, 4, c.Hardware.Lcd.Height)
	assert.Equal(t, 17, c.Hardware.Led.Pin)
	assert.True(t, c.Hardware.Led.Blink)
	assert.Equal(t, ":8000", c.HTTP.Listen)
	assert.True(t, c.Tele.Enable)
	assert.Equal(t, "tcp://localhost:1883", c.Tele.MqttBroker)
}

func TestReadConfigNotFound(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{})
	_, err := ReadConfig(log, fs, "missing")
	assert.Error(t, err)
}

func TestReadConfigBadSyntax(t *testing.T) {
	t.Parallel()

	log := log2.NewTest(t, log2.LDebug)
	fs := NewMockFullReader(map[string]string{"bad": `monitor { interval_ms = `})
	_, err := ReadConfig(log, fs, "bad")
	assert.Error(t, err)
}
