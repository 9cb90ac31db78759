//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	finance_client "github.com/refina/finance_client"
	"github.com/refina/finance_client/configs"
)

func InitializeApp() (*App, error) {
	wire.Build(
		configs.Load,
		NewCache,
		NewRetryQueue,
		NewHTTPClient,
		NewDatabase,
		finance_client.NewMigrationHandler,
		NewClients,
		NewApp,
	)

	return &App{}, nil
}
