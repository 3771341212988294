//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"redshare/internal/config"
)

// InitializeApplication builds the whole object graph. The returned cleanup
// releases resources in reverse construction order.
func InitializeApplication(cfg *config.Config) (*Application, func(), error) {
	wire.Build(
		InfraSet,
		ServiceSet,
		HTTPSet,
		wire.Struct(new(Application), "*"),
	)
	return nil, nil, nil
}
