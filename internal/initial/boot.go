package initial

import (
	"PensionChat/internal/config"
	"PensionChat/pkg/zlog"
)

// boot.go 按文件名排在本包最前，保证日志先于 gorm/redis 初始化
func init() {
	zlog.Init(config.GetConfig().LogConfig.LogPath)
}
