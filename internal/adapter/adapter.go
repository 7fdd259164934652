package adapter

import (
	"fmt"

	"squashclub/internal/config"
	"squashclub/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// DriverNone 不连接文档库，TableStore 以纯本地模式运行
const DriverNone = "none"

// Open 按 store.driver 从工厂注册表创建文档库后端。
// driver 为 none 时返回 (nil, nil)
func Open(cfg *config.Config, logger *logrus.Logger) (interfaces.DocumentStore, error) {
	driver := cfg.Store.Driver
	if driver == "" || driver == DriverNone {
		logger.Info("未配置文档库，数据只保存在会话缓存中")
		return nil, nil
	}

	factory, ok := GetFactory(driver)
	if !ok {
		return nil, fmt.Errorf("未找到文档库后端%s（已注册：%v）", driver, ListFactories())
	}

	store, err := factory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("初始化文档库后端%s失败: %w", driver, err)
	}
	if store == nil {
		return nil, fmt.Errorf("后端%s工厂函数返回nil实例", driver)
	}

	logger.WithFields(logrus.Fields{
		"driver": store.Name(),
		"app_id": cfg.Store.AppID,
	}).Info("文档库后端初始化成功")
	return store, nil
}
