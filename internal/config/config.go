package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

// ErrInvalidConfig 配置值不合法
var ErrInvalidConfig = errors.New("invalid config")

// 配置文件名与环境变量前缀
const (
	FileName  = ".wwtable"
	EnvPrefix = "WWTABLE"
)

// Config 保存表格编辑器的所有配置
type Config struct {
	Debug                  bool   `mapstructure:"debug"`
	EmptyCellPlaceholder   bool   `mapstructure:"empty_cell_placeholder"`    // 空单元格放置 br 占位
	TrailingBreakOnEnter   bool   `mapstructure:"trailing_break_on_enter"`   // 回车时为单元格补结尾 br
	TableCompletionDelayMS int    `mapstructure:"table_completion_delay_ms"` // 延迟补全表格的时间（毫秒）
	TableClassPrefix       string `mapstructure:"table_class_prefix"`        // 表格 ID 类名前缀
	FormatMarkdown         bool   `mapstructure:"format_markdown"`           // 输出 Markdown 前用 markdownfmt 规整
	CellAlignMethod        string `mapstructure:"cell_align_method"`         // Markdown 转 HTML 时表格对齐的输出方式: default, attribute, style, none
}

// LoadConfig 从文件和环境变量加载配置，找不到配置文件时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig 将配置保存到文件
func SaveConfig(config *Config, configPath string) error {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		configPath = filepath.Join(home, FileName+".yaml")
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	if err := v.MergeConfigMap(structToMap(config)); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	return v.WriteConfig()
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		Debug:                  false,
		EmptyCellPlaceholder:   true,
		TrailingBreakOnEnter:   true,
		TableCompletionDelayMS: 10,
		TableClassPrefix:       "te-content-table-",
		FormatMarkdown:         false,
		CellAlignMethod:        "default",
	}
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.TableCompletionDelayMS < 0 {
		return fmt.Errorf("%w: table_completion_delay_ms must not be negative", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.TableClassPrefix) == "" {
		return fmt.Errorf("%w: table_class_prefix must be specified", ErrInvalidConfig)
	}
	switch c.CellAlignMethod {
	case "default", "attribute", "style", "none":
	default:
		return fmt.Errorf("%w: unknown cell_align_method %q", ErrInvalidConfig, c.CellAlignMethod)
	}
	return nil
}

// Capabilities 宿主编辑面的能力开关
func (c *Config) Capabilities() table.Capabilities {
	return table.Capabilities{
		EmptyCellPlaceholder: c.EmptyCellPlaceholder,
		TrailingBreakOnEnter: c.TrailingBreakOnEnter,
	}
}

// CompletionDelay 表格补全延迟
func (c *Config) CompletionDelay() time.Duration {
	return time.Duration(c.TableCompletionDelayMS) * time.Millisecond
}

// Settings 以配置文件键名返回全部配置项
func (c *Config) Settings() map[string]interface{} {
	return structToMap(c)
}

// setDefaults 设置默认值
func setDefaults(v *viper.Viper) {
	for k, val := range structToMap(NewDefaultConfig()) {
		v.SetDefault(k, val)
	}
}

// structToMap 将结构体转换为map
func structToMap(config *Config) map[string]interface{} {
	return map[string]interface{}{
		"debug":                     config.Debug,
		"empty_cell_placeholder":    config.EmptyCellPlaceholder,
		"trailing_break_on_enter":   config.TrailingBreakOnEnter,
		"table_completion_delay_ms": config.TableCompletionDelayMS,
		"table_class_prefix":        config.TableClassPrefix,
		"format_markdown":           config.FormatMarkdown,
		"cell_align_method":         config.CellAlignMethod,
	}
}
