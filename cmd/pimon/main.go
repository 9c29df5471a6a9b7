package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/temoto/pimon/internal/api"
	"github.com/temoto/pimon/internal/monitor"
	"github.com/temoto/pimon/internal/state"
	state_new "github.com/temoto/pimon/internal/state/new"
	"github.com/temoto/pimon/internal/tele"
	"github.com/temoto/pimon/log2"
)

var BuildVersion string = "unknown" // set by ldflags -X

func main() {
	flagConfig := flag.String("config", "pimon.hcl", "")
	flagListen := flag.String("listen", "", "override http listen address")
	flag.Parse()

	log := log2.NewStderr(log2.LInfo)
	if sdnotify(log, "start") {
		// under systemd, journal adds timestamps
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Errorf("dotenv err=%v", err)
	}

	ctx, g := state_new.NewContext(log, tele.New())
	g.BuildVersion = BuildVersion

	fs, err := state.NewOsFullReader(".")
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	cfg, err := state.ReadConfig(log, fs, *flagConfig)
	if err != nil {
		if errors.IsNotFound(err) {
			log.Infof("config=%s not found, using defaults", *flagConfig)
			cfg = &state.Config{}
			cfg.Normalize(log)
		} else {
			log.Fatal(errors.ErrorStack(err))
		}
	}
	if *flagListen != "" {
		cfg.HTTP.Listen = *flagListen
	}
	g.MustInit(ctx, cfg)

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigch
		log.Infof("signal=%v", sig)
		g.Stop()
	}()

	mon := monitor.New(ctx)
	server := api.NewServer(ctx)
	mon.OnTick(server.Broadcast)

	g.Alive.Add(1)
	go func() {
		defer g.Alive.Done()
		mon.Run()
	}()
	if g.Config.Hardware.Led.Blink {
		g.Alive.Add(1)
		go func() {
			defer g.Alive.Done()
			mon.RunBlink()
		}()
	}
	go func() {
		// bind failure (busy port, bad address) is fatal
		if err := server.Run(g.Config.HTTP.Listen); err != nil {
			g.Fatal(err)
		}
	}()

	sdnotify(log, daemon.SdNotifyReady)
	g.Tele.State("running")
	log.Infof("init complete, running")

	<-g.Alive.StopChan()
	server.Stop(5 * time.Second)
	g.Alive.Wait()
	g.Tele.State("stop")
	g.Tele.Close()
}

func sdnotify(log *log2.Log, s string) bool {
	ok, err := daemon.SdNotify(false, s)
	if err != nil {
		log.Fatal("sdnotify: ", errors.ErrorStack(err))
	}
	return ok
}
