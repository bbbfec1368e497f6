package main

import (
	"flag"
	"os"
	"strings"

	"github.com/go-kratos/kratos/contrib/config/apollo/v2"
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/encoding/json"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/go-kratos/kratos/v2/transport/grpc"
	"github.com/go-kratos/kratos/v2/transport/http"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap/zapcore"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/bankcore/transfer-service/internal/conf"
	"github.com/bankcore/transfer-service/internal/job"
	"github.com/bankcore/transfer-service/pkg/env"
	zapLog "github.com/bankcore/transfer-service/pkg/log"
	"github.com/bankcore/transfer-service/pkg/registry"
	"github.com/bankcore/transfer-service/pkg/registry/nacos"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string
	// id is the service instance id.
	id string

	flagConf string
)

func init() {
	json.MarshalOptions = protojson.MarshalOptions{
		EmitUnpopulated: true,
		UseProtoNames:   true,
	}

	var err error
	id, err = os.Hostname()
	if err != nil {
		id = "unknown"
	}

	if Name == "" {
		Name = env.GetOrDefault("SERVICE_NAME", "transfer-service")
	}
	if Version == "" {
		Version = env.GetOrDefault("SERVICE_VERSION", "0.0.1")
	}
}

func newApp(logger log.Logger, gs *grpc.Server, hs *http.Server, r *nacos.Registry, jobs *job.Registry) *kratos.App {
	servers := append([]transport.Server{gs, hs}, jobs.Servers()...)
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(servers...),
		kratos.Registrar(r),
	)
}

func main() {
	flag.StringVar(&flagConf, "conf", "", "config file path (e.g., ./configs/config.yaml)")
	flag.Parse()

	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	logger := zapLog.InitDefaultLogger(logLevel())
	logHelper := log.NewHelper(logger)

	bc, confCleanup, err := loadConfig()
	if err != nil {
		logHelper.Errorf("load config: %v", err)
		return err
	}
	defer confCleanup()

	r, err := registry.NewNacosRegistryFromEnv()
	if err != nil {
		logHelper.Errorf("create nacos registry: %v", err)
		return err
	}

	app, appCleanup, err := wireApp(bc.Server, bc.Data, bc.Rocketmq, bc.Audit, r, logger)
	if err != nil {
		logHelper.Errorf("wire app: %v", err)
		return err
	}
	defer appCleanup()

	// blocks until a stop signal or server error
	if err := app.Run(); err != nil {
		logHelper.Errorf("app exited: %v", err)
		return err
	}
	return nil
}

// loadConfig resolves the bootstrap config. Precedence: -conf flag,
// CONFIG_FILE env, then apollo.
func loadConfig() (*conf.Bootstrap, func(), error) {
	confFile := flagConf
	if confFile == "" {
		confFile = env.GetOrDefault("CONFIG_FILE", "")
	}
	if confFile != "" {
		return fileConfig(confFile)
	}
	return apolloConfig()
}

func fileConfig(path string) (*conf.Bootstrap, func(), error) {
	c := config.New(config.WithSource(file.NewSource(path)))
	if err := c.Load(); err != nil {
		return nil, nil, err
	}

	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		return nil, nil, err
	}
	return &bc, func() { c.Close() }, nil
}

func apolloConfig() (*conf.Bootstrap, func(), error) {
	c := config.New(config.WithSource(
		apollo.NewSource(
			apollo.WithAppID(env.GetOrDefault("APOLLO_APP_ID", Name)),
			apollo.WithCluster(env.GetOrDefault("APOLLO_CLUSTER", "dev")),
			apollo.WithEndpoint(env.GetOrDefault("APOLLO_ENDPOINT", "http://localhost:8080")),
			apollo.WithNamespace(env.GetOrDefault("APOLLO_NAMESPACE", "application,bootstrap.yaml")),
			apollo.WithSecret(env.GetOrDefault("APOLLO_SECRET", "")),
		),
	))
	if err := c.Load(); err != nil {
		return nil, nil, err
	}

	var bc conf.Bootstrap
	if err := c.Value("bootstrap").Scan(&bc); err != nil {
		return nil, nil, err
	}
	return &bc, func() { c.Close() }, nil
}

// logLevel maps the LOG_LEVEL environment variable to a zap level.
func logLevel() zapcore.Level {
	switch strings.ToLower(env.GetOrDefault("LOG_LEVEL", "info")) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
