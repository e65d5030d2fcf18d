package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/config"
)

func newConfigCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看或生成配置文件",
	}
	cmd.AddCommand(newConfigShowCommand(a), newConfigInitCommand(a))
	return cmd
}

func newConfigShowCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "显示当前生效的配置",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			heading(out, "当前配置")
			settings := a.cfg.Settings()
			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			tw := prettytable.NewWriter()
			tw.SetOutputMirror(out)
			tw.SetStyle(prettytable.StyleLight)
			tw.AppendHeader(prettytable.Row{"项", "值"})
			for _, k := range keys {
				tw.AppendRow(prettytable.Row{k, fmt.Sprint(settings[k])})
			}
			tw.Render()
			return nil
		},
	}
}

func newConfigInitCommand(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "写出默认配置文件",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := inputArg(args)
			if path == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("获取用户主目录失败: %w", err)
				}
				path = filepath.Join(home, config.FileName+".yaml")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("配置文件已存在: %s (使用 --force 覆盖)", path)
			}
			if err := config.SaveConfig(config.NewDefaultConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已写入配置文件: %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有的配置文件")
	return cmd
}
