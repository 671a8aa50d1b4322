//go:build wireinject
// +build wireinject

package di

import (
	"ApexCore/pkg/config"
	"ApexCore/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Domain
		ProvideInstrument,
		ProvideTracker,
		ProvideEngine,

		// Sinks and status
		ProvideIntentSink,
		ProvideStatusStore,
		ProvideStatusPublisher,

		// Use cases
		ProvideBarProcessor,
		ProvideBarPipeline,
		ProvideBarCollector,

		// Kafka feed
		ProvideKafkaConsumer,
		ProvideKafkaBarsHandler,

		// HTTP
		ProvideStatusHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
