// internal/adapter/registry.go
package adapter

import (
	"fmt"
	"sort"

	"squashclub/internal/interfaces"

	"github.com/sirupsen/logrus"
)

// ========== 全局工厂函数注册表 ==========
var factoryRegistry = make(map[string]interfaces.Factory)

// Register 供后端 init 函数调用，注册工厂函数
func Register(driver string, factory interfaces.Factory) {
	if factory == nil {
		panic(fmt.Sprintf("后端%s的工厂函数不能为nil", driver))
	}
	if _, exists := factoryRegistry[driver]; exists {
		logrus.Warnf("后端%s已注册，将覆盖原有实现", driver)
	}
	factoryRegistry[driver] = factory
	logrus.Debugf("后端%s工厂函数注册成功", driver)
}

// GetFactory 获取指定后端的工厂函数
func GetFactory(driver string) (interfaces.Factory, bool) {
	factory, ok := factoryRegistry[driver]
	return factory, ok
}

// ListFactories 列出所有已注册的后端（按名称排序）
func ListFactories() []string {
	drivers := make([]string, 0, len(factoryRegistry))
	for d := range factoryRegistry {
		drivers = append(drivers, d)
	}
	sort.Strings(drivers)
	return drivers
}
