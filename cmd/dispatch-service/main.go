package main

import (
	"flag"
	"fmt"

	"github.com/TowLinkDrive/TowLinkDrive/internal/account"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/config"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/db"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/logger"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/middleware"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/server"
	"github.com/TowLinkDrive/TowLinkDrive/internal/common/tracing"
	"github.com/TowLinkDrive/TowLinkDrive/internal/dispatch"
	"github.com/TowLinkDrive/TowLinkDrive/internal/fleet"
	"github.com/TowLinkDrive/TowLinkDrive/internal/handoff"
	"github.com/TowLinkDrive/TowLinkDrive/internal/notify"
	"github.com/TowLinkDrive/TowLinkDrive/internal/pricing"
	"github.com/TowLinkDrive/TowLinkDrive/internal/tracking"
	"google.golang.org/grpc"
)

var (
	configPath = flag.String("config", "configs/dispatch-service.json", "配置文件路径")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&account.Account{},
		&fleet.TowTruck{},
		&fleet.WreckerDriver{},
		&fleet.ThirdPartyWrecker{},
		&pricing.PricingZone{},
		&dispatch.TowRequest{},
		&dispatch.RequestSequence{},
		&tracking.TowRequestLocation{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// 组装各层
	accounts := account.NewService(account.NewRepo(gormDB), cfg.Auth, log)
	fleetRegistry := fleet.NewRegistry(fleet.NewGormStore(gormDB), log)
	zones := pricing.NewGormCatalog(gormDB)

	// TODO: 接入 job-card 服务的 gRPC 客户端后替换 nil factory
	bridge := handoff.NewBridge(nil, log)

	coordinator := dispatch.NewCoordinator(
		dispatch.NewGormStore(gormDB),
		dispatch.NewMySQLSequenceAllocator(gormDB, cfg.Dispatch.RequestNumberPrefix),
		fleetRegistry,
		bridge,
		notify.NewLogRelay(log),
		log,
	)

	tracker := tracking.NewTracker(
		tracking.NewGormStore(gormDB),
		fleetRegistry,
		middleware.NewKeyedLimiter(cfg.Dispatch.PingBucketCapacity, cfg.Dispatch.PingRefillRate),
		log,
	)

	_ = accounts
	_ = zones
	_ = coordinator
	_ = tracker

	// 启动统一的 gRPC 服务模板
	if err := server.RunGRPCServer(cfg, log, func(s *grpc.Server) error {
		// TODO: proto 定稿后在这里注册 dispatch-service 的业务 gRPC 服务
		// pb.RegisterDispatchServiceServer(s, dispatchgrpc.NewServer(coordinator, tracker, ...))
		return nil
	}); err != nil {
		log.Fatalf("dispatch-service exited with error: %v", err)
	}
}
