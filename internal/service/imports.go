package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"squashclub/internal/config"
	"squashclub/internal/model"
	"squashclub/internal/session"
	"squashclub/internal/sheet"
	"squashclub/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// maxImportBytes 单个导入文件的大小上限
const maxImportBytes = 10 << 20

// importable 可以整表导入的集合
var importable = map[string]bool{
	model.CollectionSchedules:    true,
	model.CollectionClassPlayers: true,
	model.CollectionRankings:     true,
}

// ImportService 日程表、学生名单、排行榜的整表导入与查看
type ImportService struct {
	tables     *TableStore
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewImportService(tables *TableStore, cfg config.ImportConfig, logger *logrus.Logger) *ImportService {
	return &ImportService{
		tables:     tables,
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

// Importable 集合是否支持整表导入
func Importable(collection string) bool { return importable[collection] }

// Table 当前缓存中的集合
func (s *ImportService) Table(ctx context.Context, cache *session.Cache, collection string) (*model.Table, error) {
	if _, ok := model.SchemaFor(collection); !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownCollection, collection)
	}
	return s.tables.Cached(ctx, cache, collection), nil
}

// Reload 忽略缓存，重新从远端读取
func (s *ImportService) Reload(ctx context.Context, cache *session.Cache, collection string) (*model.Table, error) {
	if _, ok := model.SchemaFor(collection); !ok {
		return nil, fmt.Errorf("%w: %s", model.ErrUnknownCollection, collection)
	}
	return s.tables.Load(ctx, cache, collection, nil), nil
}

// Import 解析上传的表格并整体替换集合
func (s *ImportService) Import(ctx context.Context, cache *session.Cache, collection string, f sheet.Format, r io.Reader) (SaveReport, error) {
	if !Importable(collection) {
		return SaveReport{Collection: collection}, fmt.Errorf("%w: %s", model.ErrUnknownCollection, collection)
	}
	t, err := sheet.Decode(f, io.LimitReader(r, maxImportBytes))
	if err != nil {
		return SaveReport{Collection: collection}, err
	}
	report := s.tables.Replace(ctx, cache, collection, t)
	s.logger.WithFields(logrus.Fields{
		"collection": collection,
		"rows":       report.Rows,
		"format":     f,
	}).Info("表格导入完成")
	return report, nil
}

// ImportURL 下载远程表格（如共享的 Excel/CSV 链接）后导入。格式取 URL 路径扩展名
func (s *ImportService) ImportURL(ctx context.Context, cache *session.Cache, collection, rawURL string) (SaveReport, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return SaveReport{Collection: collection}, fmt.Errorf("%w: 無效的連結 %s", model.ErrUnsupportedFormat, rawURL)
	}
	f, err := sheet.FormatOf(path.Base(u.Path))
	if err != nil {
		return SaveReport{Collection: collection}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return SaveReport{Collection: collection}, fmt.Errorf("构建下载请求失败: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SaveReport{Collection: collection}, fmt.Errorf("下载表格失败: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			s.logger.Errorf("关闭响应体失败: %v", err)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return SaveReport{Collection: collection}, fmt.Errorf("下载表格失败: HTTP %d", resp.StatusCode)
	}
	return s.Import(ctx, cache, collection, f, resp.Body)
}
