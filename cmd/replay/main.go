package main

import (
	"context"
	"flag"
	"log"
	"time"

	"ApexCore/internal/di"
	"ApexCore/internal/engine"
	"ApexCore/internal/repository"
	"ApexCore/internal/usecase"
	pkgch "ApexCore/pkg/clickhouse"
	"ApexCore/pkg/config"
	applogger "ApexCore/pkg/logger"
	"ApexCore/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	from := flag.String("from", "", "replay window start (RFC3339)")
	to := flag.String("to", "", "replay window end (RFC3339)")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	fromT, err := time.Parse(time.RFC3339, *from)
	if err != nil {
		log.Fatalf("invalid -from: %v", err)
	}
	toT, err := time.Parse(time.RFC3339, *to)
	if err != nil {
		log.Fatalf("invalid -to: %v", err)
	}

	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	chClient, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(4, 2),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		log.Fatalf("clickhouse: %v", err)
	}
	defer chClient.Close()

	archive := repository.NewCHBarArchive(chClient)
	archive.SetLogger(l)

	inst := di.ProvideInstrument(cfg)
	acct := usecase.NewSimAccount(inst)
	eng := engine.New(cfg.Strategy, inst, acct, l)
	sink := repository.NewLogIntentSink(l)
	proc := usecase.NewBarProcessor(eng, sink, nil, acct, metrics.New())

	replayer := usecase.NewReplayer(archive, proc, acct, l)
	res, err := replayer.Run(context.Background(), cfg.Instrument.Symbol, fromT, toT)
	if err != nil {
		log.Fatalf("replay failed: %v", err)
	}
	log.Printf("replayed %d bars: %d trades, realized %.2f", res.Bars, res.Trades, res.Realized)
}
