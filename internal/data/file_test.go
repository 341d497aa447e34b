package data

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/internal/biz"
)

func writeSnapshotFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

const batchOne = `weibo | 微博
1. 量子计算迎来重大突破
   URL: https://example.com/quantum
   MOBILE: https://m.example.com/quantum
2. 体育赛事收官

zhihu | 知乎
1. 行业讨论热帖
`

const batchTwo = `weibo | 微博
1. 体育赛事收官
3. 量子计算迎来重大突破
`

func TestFileRepoReadTitlesForDate(t *testing.T) {
	root := t.TempDir()
	date := time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local)
	txtDir := filepath.Join(root, "2025年01月07日", "txt")
	writeSnapshotFile(t, txtDir, "0930.txt", batchOne)
	writeSnapshotFile(t, txtDir, "1430.txt", batchTwo)

	repo := NewFileTitleRepo(root, log.DefaultLogger)
	snap, err := repo.ReadTitlesForDate(context.Background(), date, nil)
	if err != nil {
		t.Fatalf("ReadTitlesForDate() error = %v", err)
	}

	weibo := snap.TitlesByPlatform["weibo"]
	if weibo == nil {
		t.Fatalf("weibo platform missing, got %v", snap.TitlesByPlatform)
	}
	quantum := weibo["量子计算迎来重大突破"]
	// 两个批次按文件名顺序合并: 0930 排名 1，1430 排名 3
	if len(quantum.Ranks) != 2 || quantum.Ranks[0] != 1 || quantum.Ranks[1] != 3 {
		t.Errorf("Ranks = %v, want [1 3]", quantum.Ranks)
	}
	if quantum.URL != "https://example.com/quantum" {
		t.Errorf("URL = %s", quantum.URL)
	}
	if quantum.MobileURL != "https://m.example.com/quantum" {
		t.Errorf("MobileURL = %s", quantum.MobileURL)
	}
	if snap.PlatformNames["zhihu"] != "知乎" {
		t.Errorf("PlatformNames = %v", snap.PlatformNames)
	}
	if len(snap.FileTimestamps) != 2 {
		t.Errorf("FileTimestamps = %v, want 2 entries", snap.FileTimestamps)
	}
}

func TestFileRepoPlatformFilter(t *testing.T) {
	root := t.TempDir()
	date := time.Date(2025, 1, 7, 0, 0, 0, 0, time.Local)
	writeSnapshotFile(t, filepath.Join(root, "2025年01月07日", "txt"), "0930.txt", batchOne)

	repo := NewFileTitleRepo(root, log.DefaultLogger)
	snap, err := repo.ReadTitlesForDate(context.Background(), date, []string{"zhihu"})
	if err != nil {
		t.Fatalf("ReadTitlesForDate() error = %v", err)
	}
	if _, ok := snap.TitlesByPlatform["weibo"]; ok {
		t.Errorf("weibo should be filtered out")
	}
	if len(snap.TitlesByPlatform["zhihu"]) != 1 {
		t.Errorf("zhihu titles = %v", snap.TitlesByPlatform["zhihu"])
	}
}

func TestFileRepoMissingDate(t *testing.T) {
	repo := NewFileTitleRepo(t.TempDir(), log.DefaultLogger)

	_, err := repo.ReadTitlesForDate(context.Background(), time.Now(), nil)
	if !biz.IsDataNotFound(err) {
		t.Errorf("error = %v, want DATA_NOT_FOUND", err)
	}
}

func TestFileRepoAvailableDateRange(t *testing.T) {
	root := t.TempDir()
	writeSnapshotFile(t, filepath.Join(root, "2025年01月05日", "txt"), "0930.txt", batchOne)
	writeSnapshotFile(t, filepath.Join(root, "2025年01月07日", "txt"), "0930.txt", batchOne)
	// 非日期目录应被忽略
	if err := os.MkdirAll(filepath.Join(root, "logs"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	repo := NewFileTitleRepo(root, log.DefaultLogger)
	earliest, latest, ok, err := repo.AvailableDateRange(context.Background())
	if err != nil || !ok {
		t.Fatalf("AvailableDateRange() = (%v, %v)", ok, err)
	}
	if earliest.Format("2006-01-02") != "2025-01-05" {
		t.Errorf("earliest = %v, want 2025-01-05", earliest)
	}
	if latest.Format("2006-01-02") != "2025-01-07" {
		t.Errorf("latest = %v, want 2025-01-07", latest)
	}
}

func TestFileRepoEmptyRootRange(t *testing.T) {
	repo := NewFileTitleRepo(filepath.Join(t.TempDir(), "missing"), log.DefaultLogger)

	_, _, ok, err := repo.AvailableDateRange(context.Background())
	if err != nil || ok {
		t.Errorf("AvailableDateRange() = (%v, %v), want (false, nil)", ok, err)
	}
}
