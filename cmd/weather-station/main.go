package main

import (
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	station "github.com/basilfx/go-weather-station"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	metricsAddr := flag.String("metrics", "", "address to serve metrics on, e.g. :9100")
	debug := flag.Bool("debug", false, "log wire traffic")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	config := station.DefaultConfig()

	if *configPath != "" {
		var err error

		if config, err = station.LoadConfig(*configPath); err != nil {
			log.Fatalf("Unable to load configuration: %v", err)
		}
	}

	metrics := station.NewMetrics(prometheus.DefaultRegisterer)

	if *metricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())

			if err := http.ListenAndServe(*metricsAddr, nil); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	s := station.New(config, station.WithMetrics(metrics))

	err := s.Session(func(s *station.Station) error {
		if err := s.SetPolledMode(); err != nil {
			return err
		}

		p := station.NewPoller(s)
		_, c := p.Register()

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

		go func() {
			<-signals
			log.Infof("Shutting down.")
			p.Shutdown()
		}()

		go func() {
			for record := range c {
				log.WithFields(record.Fields()).Infof("Observation.")
			}
		}()

		p.Serve()

		return p.Err()
	})

	if err != nil {
		log.Fatalf("Station failed: %v", err)
	}
}
