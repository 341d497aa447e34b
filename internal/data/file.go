package data

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/internal/biz"
)

var (
	dateFolderPattern = regexp.MustCompile(`^(\d{4})年(\d{2})月(\d{2})日$`)
	titleLinePattern  = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)
)

// fileTitleRepo 基于爬虫输出目录的标题仓库。
// 目录结构: <output>/YYYY年MM月DD日/txt/HHMM.txt，
// 每个文件按批次记录各平台榜单。
type fileTitleRepo struct {
	root string
	log  *log.Helper
}

// NewFileTitleRepo 创建文件存储仓库
func NewFileTitleRepo(root string, logger log.Logger) biz.TitleRepo {
	if root == "" {
		root = "output"
	}
	return &fileTitleRepo{root: root, log: log.NewHelper(logger)}
}

func dateFolderName(date time.Time) string {
	return fmt.Sprintf("%04d年%02d月%02d日", date.Year(), int(date.Month()), date.Day())
}

// ReadTitlesForDate 读取指定日期全部批次文件并合并排名序列
func (r *fileTitleRepo) ReadTitlesForDate(ctx context.Context, date time.Time, platformIDs []string) (*biz.TitleSnapshot, error) {
	txtDir := filepath.Join(r.root, dateFolderName(date), "txt")
	entries, err := os.ReadDir(txtDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, biz.ErrDataNotFound(
				fmt.Sprintf("未找到 %s 的新闻数据", date.Format("2006-01-02")),
				"请确认该日期已有爬取结果")
		}
		return nil, err
	}

	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		filenames = append(filenames, entry.Name())
	}
	if len(filenames) == 0 {
		return nil, biz.ErrDataNotFound(
			fmt.Sprintf("未找到 %s 的新闻数据", date.Format("2006-01-02")),
			"请确认该日期已有爬取结果")
	}
	// 文件名即批次时间，按时间顺序合并保证排名序列有序
	sort.Strings(filenames)

	allowed := platformFilter(platformIDs)
	snap := &biz.TitleSnapshot{
		TitlesByPlatform: make(map[string]map[string]biz.TitleInfo),
		PlatformNames:    make(map[string]string),
		FileTimestamps:   make(map[string]time.Time),
	}

	for _, filename := range filenames {
		path := filepath.Join(txtDir, filename)
		if info, err := os.Stat(path); err == nil {
			snap.FileTimestamps[filename] = info.ModTime()
		}
		if err := r.parseSnapshotFile(path, allowed, snap); err != nil {
			r.log.Warnf("解析快照文件 %s 失败: %v", path, err)
		}
	}

	if len(snap.TitlesByPlatform) == 0 {
		return nil, biz.ErrDataNotFound(
			fmt.Sprintf("未找到 %s 的新闻数据", date.Format("2006-01-02")),
			"请确认该日期已有爬取结果或调整平台过滤")
	}
	return snap, nil
}

func platformFilter(platformIDs []string) map[string]struct{} {
	if len(platformIDs) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(platformIDs))
	for _, id := range platformIDs {
		allowed[id] = struct{}{}
	}
	return allowed
}

// parseSnapshotFile 解析单个批次文件。格式：
//
//	platform_id | 平台名
//	1. 标题一
//	   URL: https://example.com/1
//	   MOBILE: https://m.example.com/1
//	2. 标题二
//
//	another_id | 另一平台
//	...
func (r *fileTitleRepo) parseSnapshotFile(path string, allowed map[string]struct{}, snap *biz.TitleSnapshot) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		platformID   string
		platformName string
		lastTitle    string
		skipSection  bool
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			lastTitle = ""
			continue
		}

		// 标题行: "rank. title"
		if m := titleLinePattern.FindStringSubmatch(trimmed); m != nil && platformID != "" {
			if skipSection {
				continue
			}
			rank, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			title := strings.TrimSpace(m[2])
			titles := snap.TitlesByPlatform[platformID]
			info := titles[title]
			info.Ranks = append(info.Ranks, rank)
			titles[title] = info
			lastTitle = title
			continue
		}

		// 链接续行，附加到上一条标题
		if lastTitle != "" && !skipSection {
			if url, ok := strings.CutPrefix(trimmed, "URL:"); ok {
				titles := snap.TitlesByPlatform[platformID]
				info := titles[lastTitle]
				info.URL = strings.TrimSpace(url)
				titles[lastTitle] = info
				continue
			}
			if mobile, ok := strings.CutPrefix(trimmed, "MOBILE:"); ok {
				titles := snap.TitlesByPlatform[platformID]
				info := titles[lastTitle]
				info.MobileURL = strings.TrimSpace(mobile)
				titles[lastTitle] = info
				continue
			}
		}

		// 平台段首行: "id | name" 或仅 "id"
		platformID, platformName = parseSectionHeader(trimmed)
		lastTitle = ""
		skipSection = false
		if allowed != nil {
			if _, ok := allowed[platformID]; !ok {
				skipSection = true
				continue
			}
		}
		if _, ok := snap.TitlesByPlatform[platformID]; !ok {
			snap.TitlesByPlatform[platformID] = make(map[string]biz.TitleInfo)
		}
		if platformName != "" {
			snap.PlatformNames[platformID] = platformName
		}
	}
	return scanner.Err()
}

func parseSectionHeader(line string) (id, name string) {
	if before, after, found := strings.Cut(line, "|"); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return strings.TrimSpace(line), ""
}

// AvailableDateRange 扫描输出目录，返回实际存在数据的日期范围
func (r *fileTitleRepo) AvailableDateRange(ctx context.Context) (earliest, latest time.Time, ok bool, err error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, time.Time{}, false, nil
		}
		return time.Time{}, time.Time{}, false, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := dateFolderPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		folderDate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)

		if !ok {
			earliest, latest, ok = folderDate, folderDate, true
			continue
		}
		if folderDate.Before(earliest) {
			earliest = folderDate
		}
		if folderDate.After(latest) {
			latest = folderDate
		}
	}
	return earliest, latest, ok, nil
}
