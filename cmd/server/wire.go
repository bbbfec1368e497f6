//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/bankcore/transfer-service/internal/biz"
	"github.com/bankcore/transfer-service/internal/conf"
	"github.com/bankcore/transfer-service/internal/data"
	"github.com/bankcore/transfer-service/internal/job"
	"github.com/bankcore/transfer-service/internal/server"
	"github.com/bankcore/transfer-service/internal/service"
	"github.com/bankcore/transfer-service/pkg/registry/nacos"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.RocketMQ, *conf.Audit, *nacos.Registry, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(server.ProviderSet, data.ProviderSet, biz.ProviderSet, service.ProviderSet, job.ProviderSet, newApp))
}
