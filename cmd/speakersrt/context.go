package main

import (
	"errors"
	"io/fs"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ccp-p/asr-media-cli/speaker-srt/internal/ui"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/models"
	"github.com/ccp-p/asr-media-cli/speaker-srt/pkg/utils"
)

// 全局命令行参数
type rootFlags struct {
	configPath string
	logLevel   string
	logFile    string
	output     string
	recognizer string
	noColor    bool
}

type commandContext struct {
	flags *rootFlags
	cmd   *cobra.Command // 根命令，用于判断参数是否显式设置

	configOnce sync.Once
	config     *models.Config
	configErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

// loadEnv 读取当前目录下的 .env，文件不存在时忽略
func loadEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ensureConfig 按 默认值 < 配置文件 < 命令行参数 的顺序生成配置
func (c *commandContext) ensureConfig() (*models.Config, error) {
	c.configOnce.Do(func() {
		cfg := models.NewDefaultConfig()

		if path := strings.TrimSpace(c.flags.configPath); path != "" {
			if err := cfg.LoadFromFile(path); err != nil {
				c.configErr = utils.ValidationError("config", "加载配置文件失败: "+path, err)
				return
			}
		}

		if c.changed("output") {
			cfg.OutputPath = c.flags.output
		}
		if c.changed("recognizer") {
			cfg.Recognizer = c.flags.recognizer
		}
		if c.changed("log-level") {
			cfg.LogLevel = c.flags.logLevel
		}
		if c.changed("log-file") {
			cfg.LogFile = c.flags.logFile
		}
		if c.flags.noColor {
			cfg.ShowProgress = false
		}

		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) changed(name string) bool {
	if c.cmd == nil {
		return false
	}
	flag := c.cmd.PersistentFlags().Lookup(name)
	return flag != nil && flag.Changed
}

// initOutput 初始化日志和颜色输出
func (c *commandContext) initOutput(cfg *models.Config) error {
	level, file := c.flags.logLevel, c.flags.logFile
	if cfg != nil {
		level, file = cfg.LogLevel, cfg.LogFile
	}
	if err := utils.InitLogger(level, file); err != nil {
		return err
	}
	if c.flags.noColor {
		color.NoColor = true
	}
	return nil
}

func (c *commandContext) terminal(cmd *cobra.Command) *ui.TerminalManager {
	return ui.NewTerminalManager(cmd.OutOrStdout(), c.flags.noColor)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
