package main

import (
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	kconfig "github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/internal/biz"
	"github.com/iWorld-y/trend_radar/internal/conf"
	"github.com/iWorld-y/trend_radar/internal/data"
	"github.com/iWorld-y/trend_radar/internal/server"
	"github.com/iWorld-y/trend_radar/internal/service"
	"github.com/iWorld-y/trend_radar/pkg/config"
	"github.com/iWorld-y/trend_radar/pkg/llm"
	"github.com/iWorld-y/trend_radar/pkg/logger"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "trend_radar"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "configs/config.yaml", "config path, eg: -conf config.yaml")
}

func initApp(bc *conf.Bootstrap, klogger log.Logger) (*kratos.App, func(), error) {
	engineCfg, err := config.LoadConfig(bc.Engine.Config)
	if err != nil {
		return nil, nil, err
	}
	if err := logger.InitLogger(engineCfg.Log.Level, engineCfg.Log.File); err != nil {
		return nil, nil, err
	}

	d, cleanup, err := data.NewData(bc.Data, klogger)
	if err != nil {
		return nil, nil, err
	}
	repo, err := data.NewTitleRepo(bc.Data, d, klogger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// LLM 未配置时 client 为 nil，情感分析只生成提示词不执行
	var executor biz.PromptExecutor
	client, err := llm.NewClient(engineCfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if client != nil {
		executor = client
	}

	uc := biz.NewNewsUseCase(repo, engineCfg, executor, klogger)
	if client != nil {
		uc.WithArticleFetcher(llm.FetchArticleText)
	}

	svc := service.NewNewsService(uc, engineCfg, bc.Data.Storage, Version, klogger)
	httpSrv := server.NewHTTPServer(bc.Server, svc, klogger)

	app := kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Logger(klogger),
		kratos.Server(httpSrv),
	)
	return app, cleanup, nil
}

func main() {
	flag.Parse()
	// 初始化日志记录器，包含时间戳、调用者信息、服务ID等上下文
	klogger := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)

	// 初始化配置加载器
	c := kconfig.New(
		kconfig.WithSource(
			file.NewSource(flagconf),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		panic(err)
	}

	// 扫描配置到 Bootstrap 结构体
	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		panic(err)
	}

	app, cleanup, err := initApp(&bc, klogger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
