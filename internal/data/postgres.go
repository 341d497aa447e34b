package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/lib/pq"

	"github.com/iWorld-y/trend_radar/internal/biz"
)

// postgresTitleRepo 基于 news_snapshots 表的标题仓库。
// 每行是一条 (日期, 批次, 平台, 标题, 排名) 观测记录，
// 读取时按批次顺序聚合成排名序列。
type postgresTitleRepo struct {
	data *Data
	log  *log.Helper
}

// NewPostgresTitleRepo 创建数据库存储仓库
func NewPostgresTitleRepo(data *Data, logger log.Logger) biz.TitleRepo {
	return &postgresTitleRepo{data: data, log: log.NewHelper(logger)}
}

// ReadTitlesForDate 读取指定日期的全部快照记录
func (r *postgresTitleRepo) ReadTitlesForDate(ctx context.Context, date time.Time, platformIDs []string) (*biz.TitleSnapshot, error) {
	query := `
		SELECT batch, platform_id, platform_name, title, rank, url, mobile_url, created_at
		FROM news_snapshots
		WHERE snapshot_date = $1`
	args := []interface{}{date.Format("2006-01-02")}

	if len(platformIDs) > 0 {
		query += " AND platform_id = ANY($2)"
		args = append(args, pq.Array(platformIDs))
	}
	query += " ORDER BY batch, platform_id, rank"

	rows, err := r.data.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := &biz.TitleSnapshot{
		TitlesByPlatform: make(map[string]map[string]biz.TitleInfo),
		PlatformNames:    make(map[string]string),
		FileTimestamps:   make(map[string]time.Time),
	}

	for rows.Next() {
		var (
			batch        string
			platformID   string
			platformName string
			title        string
			rank         int
			url          string
			mobileURL    string
			createdAt    time.Time
		)
		if err := rows.Scan(&batch, &platformID, &platformName, &title, &rank, &url, &mobileURL, &createdAt); err != nil {
			return nil, err
		}

		titles, ok := snap.TitlesByPlatform[platformID]
		if !ok {
			titles = make(map[string]biz.TitleInfo)
			snap.TitlesByPlatform[platformID] = titles
		}
		info := titles[title]
		info.Ranks = append(info.Ranks, rank)
		if url != "" {
			info.URL = url
		}
		if mobileURL != "" {
			info.MobileURL = mobileURL
		}
		titles[title] = info

		if platformName != "" {
			snap.PlatformNames[platformID] = platformName
		}
		// 批次名兼容文件存储的文件名语义
		filename := batch + ".txt"
		if existing, ok := snap.FileTimestamps[filename]; !ok || createdAt.After(existing) {
			snap.FileTimestamps[filename] = createdAt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(snap.TitlesByPlatform) == 0 {
		return nil, biz.ErrDataNotFound(
			fmt.Sprintf("未找到 %s 的新闻数据", date.Format("2006-01-02")),
			"请确认该日期已有爬取结果")
	}
	return snap, nil
}

// AvailableDateRange 查询表内实际存在数据的日期范围
func (r *postgresTitleRepo) AvailableDateRange(ctx context.Context) (earliest, latest time.Time, ok bool, err error) {
	row := r.data.db.QueryRowContext(ctx,
		`SELECT MIN(snapshot_date), MAX(snapshot_date) FROM news_snapshots`)

	var minDate, maxDate sql.NullTime
	if err := row.Scan(&minDate, &maxDate); err != nil {
		return time.Time{}, time.Time{}, false, err
	}
	if !minDate.Valid || !maxDate.Valid {
		return time.Time{}, time.Time{}, false, nil
	}
	return minDate.Time, maxDate.Time, true, nil
}

// SaveSnapshot 写入一个批次的快照记录。本服务只读，不在任何请求路径上写库；
// 该方法供外部采集进程复用同一张表结构。
func (r *postgresTitleRepo) SaveSnapshot(ctx context.Context, date time.Time, batch string, snap *biz.TitleSnapshot) error {
	tx, err := r.data.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news_snapshots
			(snapshot_date, batch, platform_id, platform_name, title, rank, url, mobile_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	dateStr := date.Format("2006-01-02")
	for platformID, titles := range snap.TitlesByPlatform {
		name := platformID
		if n, ok := snap.PlatformNames[platformID]; ok && n != "" {
			name = n
		}
		for title, info := range titles {
			for _, rank := range info.Ranks {
				if _, err := stmt.ExecContext(ctx, dateStr, batch, platformID, name, title, rank, info.URL, info.MobileURL); err != nil {
					return err
				}
			}
		}
	}
	return tx.Commit()
}
