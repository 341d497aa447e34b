package biz

import (
	"strings"
	"testing"
	"time"
)

func TestValidateLimit(t *testing.T) {
	if got, err := ValidateLimit(0, 50, 1000); err != nil || got != 50 {
		t.Errorf("ValidateLimit(0) = (%d, %v), want (50, nil)", got, err)
	}
	if got, err := ValidateLimit(2000, 50, 1000); err != nil || got != 1000 {
		t.Errorf("ValidateLimit(2000) = (%d, %v), want (1000, nil)", got, err)
	}
	if _, err := ValidateLimit(-1, 50, 1000); err == nil {
		t.Errorf("ValidateLimit(-1) should fail")
	}
}

func TestValidateThreshold(t *testing.T) {
	if got, err := ValidateThreshold(0, 0.6); err != nil || got != 0.6 {
		t.Errorf("ValidateThreshold(0) = (%v, %v), want (0.6, nil)", got, err)
	}
	if _, err := ValidateThreshold(1.5, 0.6); err == nil {
		t.Errorf("ValidateThreshold(1.5) should fail")
	}
	if got, err := ValidateThreshold(0.8, 0.6); err != nil || got != 0.8 {
		t.Errorf("ValidateThreshold(0.8) = (%v, %v), want (0.8, nil)", got, err)
	}
}

func TestValidateKeyword(t *testing.T) {
	if got, err := ValidateKeyword("  量子计算  "); err != nil || got != "量子计算" {
		t.Errorf("ValidateKeyword() = (%q, %v), want trimmed", got, err)
	}
	if _, err := ValidateKeyword("   "); err == nil {
		t.Errorf("blank keyword should fail")
	}
	if _, err := ValidateKeyword(strings.Repeat("长", 101)); err == nil {
		t.Errorf("over-length keyword should fail")
	}
}

func TestValidateDateRange(t *testing.T) {
	now := time.Date(2025, 1, 7, 12, 0, 0, 0, time.UTC)

	start, end, err := ValidateDateRange("2025-01-01", "2025-01-05", now)
	if err != nil {
		t.Fatalf("ValidateDateRange() error = %v", err)
	}
	if start.Format("2006-01-02") != "2025-01-01" || end.Format("2006-01-02") != "2025-01-05" {
		t.Errorf("range = %v..%v", start, end)
	}

	if _, _, err := ValidateDateRange("2025-01-05", "2025-01-01", now); err == nil {
		t.Errorf("inverted range should fail")
	}
	if _, _, err := ValidateDateRange("2025-01-01", "2025-02-01", now); err == nil {
		t.Errorf("future end date should fail")
	}
	if _, _, err := ValidateDateRange("2025/01/01", "2025-01-05", now); err == nil {
		t.Errorf("bad format should fail")
	}
}

func TestValidatePlatforms(t *testing.T) {
	got, err := ValidatePlatforms([]string{" weibo ", "zhihu"})
	if err != nil || len(got) != 2 || got[0] != "weibo" {
		t.Errorf("ValidatePlatforms() = (%v, %v)", got, err)
	}
	if _, err := ValidatePlatforms([]string{"weibo", "  "}); err == nil {
		t.Errorf("blank platform id should fail")
	}
}
