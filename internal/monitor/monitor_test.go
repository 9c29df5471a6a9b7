package monitor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/pimon/internal/sensor"
	state_new "github.com/temoto/pimon/internal/state/new"
	"github.com/temoto/pimon/internal/tele"
)

const testConf = `
monitor { interval_ms = 50 }
hardware {
  lcd {
    width  = 24
    height = 12
  }
}
`

func TestTickCommitsStatus(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	mon := New(ctx)
	mon.Tick()

	r := g.Store.Reading()
	require.NotNil(t, r)
	assert.True(t, r.Temperature >= sensor.TempMin && r.Temperature <= sensor.TempMax)
	assert.True(t, r.Humidity >= sensor.HumMin && r.Humidity <= sensor.HumMax)
	assert.NotZero(t, r.Timestamp)

	content := g.Store.Content()
	assert.Contains(t, content, "Pi Zero Monitor")
	assert.Contains(t, content, "Temp: ")
	assert.Contains(t, content, "Humidity: ")
	assert.Contains(t, content, "Uptime: ")
	assert.Contains(t, content, "LED")
}

func TestTickPublishesTele(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	stub := g.Tele.(*tele.Stub)
	mon := New(ctx)
	mon.Tick()
	mon.Tick()
	assert.Equal(t, 2, stub.ReadingCount())
	assert.Equal(t, g.Store.Reading().Timestamp, stub.Readings[1].Timestamp)
}

func TestTickNotifiesObservers(t *testing.T) {
	t.Parallel()

	ctx, _ := state_new.NewTestContext(t, testConf)
	mon := New(ctx)
	var got []sensor.Reading
	mon.OnTick(func(r sensor.Reading) { got = append(got, r) })
	mon.Tick()
	require.Len(t, got, 1)
	assert.NotZero(t, got[0].Timestamp)
}

func TestRenderHighTemp(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, `
monitor { high_temp = 20.0 }
hardware {
  lcd {
    width  = 24
    height = 12
  }
}
`)
	mon := New(ctx)
	// keep ticking until the sim crosses the low threshold
	for i := 0; i < 100; i++ {
		mon.Tick()
		if g.Store.Reading().Temperature > 20.0 {
			break
		}
	}
	require.True(t, g.Store.Reading().Temperature > 20.0, "sim never exceeded 20C in 100 reads")
	assert.Contains(t, g.Store.Content(), "HIGH TEMP!")
}

func TestRenderFitsFrame(t *testing.T) {
	t.Parallel()

	// narrow display clips text instead of erroring
	ctx, g := state_new.NewTestContext(t, `
hardware {
  lcd {
    width  = 10
    height = 12
  }
}
`)
	mon := New(ctx)
	mon.Tick()
	for _, line := range strings.Split(g.Store.Content(), "\n") {
		if line == "" {
			continue
		}
		assert.Equal(t, 12, len([]rune(line)), "line %q", line)
	}
}

func TestRunStops(t *testing.T) {
	t.Parallel()

	ctx, g := state_new.NewTestContext(t, testConf)
	mon := New(ctx)
	done := make(chan struct{})
	go func() {
		mon.Run()
		close(done)
	}()
	g.Stop()
	<-done
	assert.NotNil(t, g.Store.Reading())
}
