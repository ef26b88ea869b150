package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/treepeck/lobbyd/internal/config"
	"github.com/treepeck/lobbyd/internal/metrics"
	"github.com/treepeck/lobbyd/internal/mq"
	"github.com/treepeck/lobbyd/internal/session"
	"github.com/treepeck/lobbyd/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Absent .env is fine; the environment itself may carry everything.
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("cannot load config", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	var relay session.Relay
	if cfg.RabbitMQURL != "" {
		r, err := mq.Dial(log, cfg.RabbitMQURL)
		if err != nil {
			log.Error("cannot connect to RabbitMQ", "error", err)
			os.Exit(1)
		}
		defer r.Close()
		relay = r
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	coord := session.New(log, m, relay, cfg.DefaultMaxPlayers, cfg.ChatHistoryLimit)
	go coord.Run()
	defer coord.Destroy()

	srv := ws.NewServer(log, coord)

	r := chi.NewRouter()
	r.Get("/ws", srv.HandleWS)
	r.Get("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
		rw.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	log.Info("lobbyd listening", "addr", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, r); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
