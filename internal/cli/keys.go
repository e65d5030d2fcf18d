package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/keyevent"
)

type keysOptions struct {
	at    placement
	file  string
	raw   bool
	list  bool
	state bool
}

func newKeysCommand(a *app) *cobra.Command {
	opts := &keysOptions{}
	cmd := &cobra.Command{
		Use:   "keys [flags] KEY ...",
		Short: "在文档中放置光标并重放按键",
		Long: `读取编辑区 HTML，按 --table/--cell/--offset 放置光标后依次重放按键，输出编辑后的 HTML。

按键使用 keymap 名称，例如 TAB、SHIFT+TAB、BACK_SPACE、DELETE、ENTER 或单个字符。
使用 --list 查看可识别的按键名。`,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.list || len(args) > 0 {
				return nil
			}
			return fmt.Errorf("至少需要一个按键")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.list {
				return listKeys(cmd)
			}
			return a.runKeys(cmd, args, opts)
		},
	}
	opts.at.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "输入文件，默认读取标准输入")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "输出未经导出处理的 HTML")
	cmd.Flags().BoolVar(&opts.list, "list", false, "列出可识别的按键名")
	cmd.Flags().BoolVar(&opts.state, "state", false, "结束后打印导航状态")
	return cmd
}

func listKeys(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	heading(out, "按键名")
	for _, k := range keyevent.NamedKeys() {
		fmt.Fprintf(out, "  %s\n", k)
	}
	heading(out, "修饰键")
	fmt.Fprintln(out, "  SHIFT, CTRL (CONTROL), ALT (OPTION), META (CMD)")
	fmt.Fprintln(out, "  组合写法: SHIFT+TAB, CTRL+Z；单个字符视为文本输入")
	return nil
}

func (a *app) runKeys(cmd *cobra.Command, args []string, opts *keysOptions) error {
	keys := make([]keyevent.Event, 0, len(args))
	for _, name := range args {
		ev, err := keyevent.Parse(name)
		if err != nil {
			return err
		}
		keys = append(keys, ev)
	}

	src, err := a.readInput(cmd, opts.file)
	if err != nil {
		return err
	}
	s, err := a.newSession(src)
	if err != nil {
		return err
	}
	if err := opts.at.apply(s.ed); err != nil {
		return err
	}

	for _, key := range keys {
		suppressed := s.ed.Press(key)
		a.log.Debug("key replayed", zap.String("key", key.Name), zap.Bool("suppressed", suppressed))
	}
	ran := s.settle()
	a.log.Debug("deferred tasks flushed", zap.Int("tasks", ran))

	if err := writeOutput(cmd, "", s.output(opts.raw)); err != nil {
		return err
	}
	if opts.state {
		printState(cmd, s)
	}
	return nil
}

func printState(cmd *cobra.Command, s *session) {
	out := cmd.OutOrStdout()
	st := s.tm.State()
	heading(out, "导航状态")
	if !st.Tracking() {
		fmt.Fprintln(out, "  光标不在表格中")
		return
	}
	label := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(out, "  %s %s\n", label("table:"), st.Last.TableID)
	fmt.Fprintf(out, "  %s %d,%d\n", label("cell:"), st.Last.Cell.Row, st.Last.Cell.Col)
}
