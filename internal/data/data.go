package data

import (
	"database/sql"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/trend_radar/internal/biz"
	"github.com/iWorld-y/trend_radar/internal/conf"
)

// Data 数据层资源。file 存储时 db 为 nil。
type Data struct {
	db     *sql.DB
	output string
}

// NewData 按配置初始化数据层资源
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	helper := log.NewHelper(logger)

	d := &Data{output: c.Output}
	cleanup := func() {
		helper.Info("closing the data resources")
		if d.db != nil {
			d.db.Close()
		}
	}

	if c.Storage != "postgres" {
		return d, cleanup, nil
	}
	if c.Database == nil {
		return nil, nil, fmt.Errorf("storage 为 postgres 但缺少 database 配置")
	}

	db, err := sql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	// Init schema for snapshots
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS news_snapshots (
			id SERIAL PRIMARY KEY,
			snapshot_date DATE NOT NULL,
			batch TEXT NOT NULL,
			platform_id TEXT NOT NULL,
			platform_name TEXT NOT NULL,
			title TEXT NOT NULL,
			rank INTEGER NOT NULL,
			url TEXT NOT NULL DEFAULT '',
			mobile_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to init news_snapshots table: %w", err)
	}
	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_news_snapshots_date
		ON news_snapshots (snapshot_date)
	`); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to init news_snapshots index: %w", err)
	}

	d.db = db
	return d, cleanup, nil
}

// NewTitleRepo 按存储类型构造标题仓库
func NewTitleRepo(c *conf.Data, d *Data, logger log.Logger) (biz.TitleRepo, error) {
	switch c.Storage {
	case "", "file":
		return NewFileTitleRepo(c.Output, logger), nil
	case "postgres":
		return NewPostgresTitleRepo(d, logger), nil
	default:
		return nil, fmt.Errorf("不支持的存储类型: %s", c.Storage)
	}
}
