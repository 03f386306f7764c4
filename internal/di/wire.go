//go:build wireinject
// +build wireinject

package di

import (
	"SignalScan/pkg/config"
	"SignalScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application with
// a cleanup that releases the clients it opened.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideSQLiteClient,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,
		ProvideExchangeClient,

		// Repositories
		ProvideSignalStore,
		ProvideArchive,
		ProvideLocker,
		ProvideMarketData,
		ProvideSignalSink,
		ProvideArchiveHandlers,

		// Services
		ProvideSnapshotHolder,
		ProvideHub,
		ProvideRateLimiter,

		// Use cases
		ProvideSignalEngine,
		ProvideScanner,
		ProvideValidator,
		ProvideQueryUseCase,

		// HTTP
		ProvideHTTPHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}
