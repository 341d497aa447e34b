package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/trend_radar/internal/biz"
	"github.com/iWorld-y/trend_radar/pkg/config"
)

// NewsService 对外 HTTP 服务，负责请求解析与结果信封包装
type NewsService struct {
	uc      *biz.NewsUseCase
	cfg     *config.Config
	storage string
	version string
	log     *log.Helper
}

// NewNewsService 创建服务实例。storage 为数据存储类型，version 为服务版本。
func NewNewsService(uc *biz.NewsUseCase, cfg *config.Config, storage, version string, logger log.Logger) *NewsService {
	if storage == "" {
		storage = "file"
	}
	return &NewsService{
		uc:      uc,
		cfg:     cfg,
		storage: storage,
		version: version,
		log:     log.NewHelper(logger),
	}
}

// DateRange 请求中的日期区间
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func (d *DateRange) bounds() (string, string) {
	if d == nil {
		return "", ""
	}
	return d.Start, d.End
}

// writeSuccess 输出成功信封：结果字段平铺并附加 success=true。
// 业务失败同样返回 HTTP 200，错误语义只体现在信封内。
func (s *NewsService) writeSuccess(w http.ResponseWriter, result interface{}) {
	data, err := json.Marshal(result)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		s.writeError(w, err)
		return
	}
	fields["success"] = true

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(fields); err != nil {
		s.log.Errorf("写入响应失败: %v", err)
	}
}

// writeError 输出失败信封，任意错误统一归一化为业务错误
func (s *NewsService) writeError(w http.ResponseWriter, err error) {
	be := biz.AsError(err)
	if be.Code == biz.CodeInternalError {
		s.log.Errorf("请求处理失败: %v", err)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	envelope := map[string]interface{}{
		"success": false,
		"error":   be,
	}
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		s.log.Errorf("写入响应失败: %v", err)
	}
}

// decodeBody 解析 JSON 请求体；空请求体按空对象处理
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return biz.ErrInvalidParameter("请求体不是合法的 JSON", "请检查请求格式")
	}
	return nil
}

// boolOrDefault 解析可选布尔参数
func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
