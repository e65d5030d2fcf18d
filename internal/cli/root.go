package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/config"
	"github.com/nerdneilsfield/go-wysiwyg-table/internal/logger"
)

// app 各子命令共享的配置和日志
type app struct {
	cfgFile  string
	debug    bool
	encoding string
	cfg      *config.Config
	log      *zap.Logger
}

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "wwtable",
		Short: "所见即所得编辑器的表格内核：修复、导航、粘贴合并与 GFM 序列化",
		Long: `wwtable 在命令行中驱动所见即所得编辑器的表格内核。

它可以修复残缺的表格 HTML，重放按键查看导航和删除行为，把剪贴板内容
合并进表格，以及在编辑区 HTML 与 GitHub 风格的 Markdown 之间转换。

用法示例:
  wwtable repair page.html                      # 补全残缺表格并输出
  wwtable inspect --cells page.html             # 查看各表格的形态
  wwtable keys --table 0 --cell 0,0 page.html TAB TAB a
  wwtable paste --table 0 --cell 1,0 --clipboard grid.html page.html
  wwtable to-markdown page.html
  wwtable to-html README.md`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "配置文件路径 (默认 $HOME/.wwtable.yaml 或 ./.wwtable.yaml)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "输出调试日志")
	rootCmd.PersistentFlags().StringVar(&a.encoding, "encoding", "auto", "输入文件编码 (auto, utf-8, gbk, gb18030, big5, shift_jis, euc-jp, euc-kr, latin1, cp1252, utf-16le, utf-16be)")

	rootCmd.AddCommand(
		newRepairCommand(a),
		newInspectCommand(a),
		newKeysCommand(a),
		newPasteCommand(a),
		newToMarkdownCommand(a),
		newToHTMLCommand(a),
		newConfigCommand(a),
	)

	return rootCmd
}

// setup 加载配置并初始化日志，配置不可用时回退到默认配置
func (a *app) setup(cmd *cobra.Command) error {
	a.log = logger.NewWriterLogger(cmd.ErrOrStderr(), a.debug)

	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		if a.cfgFile != "" {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		a.log.Warn("failed to load config, using defaults", zap.Error(err))
		cfg = config.NewDefaultConfig()
	}
	if a.debug {
		cfg.Debug = true
	}
	a.cfg = cfg
	return nil
}

// readInput 读取文件内容并转换为 UTF-8，路径为空或 "-" 时读取标准输入
func (a *app) readInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("读取标准输入失败: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("读取文件失败: %w", err)
		}
	}
	return decodeInput(data, a.encoding)
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// writeOutput 写到文件或命令输出
func writeOutput(cmd *cobra.Command, path, content string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), ensureNewline(content))
		return err
	}
	if err := os.WriteFile(path, []byte(ensureNewline(content)), 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

func ensureNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// heading 打印带颜色的小节标题
func heading(w io.Writer, format string, a ...interface{}) {
	_, _ = color.New(color.FgCyan, color.Bold).Fprintf(w, format+"\n", a...)
}
