// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "diskwatch")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "diskwatch.log")
	viper.SetDefault("main.log.maxsizemb", 100)
	viper.SetDefault("main.log.maxbackups", 3)
	viper.SetDefault("main.log.maxagedays", 28)

	viper.SetDefault("monitor.interval", 30)
	viper.SetDefault("monitor.checks", []map[string]any{
		{"path": "/", "warning": 80.0, "critical": 90.0},
	})

	viper.SetDefault("http.enabled", true)
	viper.SetDefault("http.host", "")
	viper.SetDefault("http.port", "8090")

	viper.SetDefault("nats.enabled", false)
	viper.SetDefault("nats.url", "nats://127.0.0.1:4222")
	viper.SetDefault("nats.subject", "diskwatch.snapshots")
}
