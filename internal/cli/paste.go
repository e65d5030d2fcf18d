package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type pasteOptions struct {
	at        placement
	file      string
	clipboard string
	text      string
	raw       bool
}

func newPasteCommand(a *app) *cobra.Command {
	opts := &pasteOptions{}
	cmd := &cobra.Command{
		Use:   "paste [flags] [file]",
		Short: "把剪贴板 HTML 粘贴到文档中的指定位置",
		Long: `读取编辑区 HTML，放置光标后粘贴剪贴板内容。

光标在表格单元格中且剪贴板是表格片段时，剪贴板网格从该单元格开始覆盖，
表格不够大时自动扩展行列。光标不在表格中时，粘贴进来的表格部件会被补全。`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.file = inputArg(args)
			return a.runPaste(cmd, opts)
		},
	}
	opts.at.register(cmd.Flags())
	cmd.Flags().StringVarP(&opts.clipboard, "clipboard", "c", "", "剪贴板 HTML 文件")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "直接给出的剪贴板 HTML")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "输出未经导出处理的 HTML")
	return cmd
}

func (a *app) runPaste(cmd *cobra.Command, opts *pasteOptions) error {
	clip := opts.text
	switch {
	case opts.clipboard != "" && opts.text != "":
		return fmt.Errorf("--clipboard 和 --text 只能给出一个")
	case opts.clipboard != "":
		data, err := os.ReadFile(opts.clipboard)
		if err != nil {
			return fmt.Errorf("读取剪贴板文件失败: %w", err)
		}
		if clip, err = decodeInput(data, a.encoding); err != nil {
			return err
		}
	case opts.text == "":
		return fmt.Errorf("需要 --clipboard 或 --text")
	}

	// 没有输入文件时粘贴到空文档
	src := ""
	if opts.file != "" {
		var err error
		if src, err = a.readInput(cmd, opts.file); err != nil {
			return err
		}
	}
	s, err := a.newSession(src)
	if err != nil {
		return err
	}
	if err := opts.at.apply(s.ed); err != nil {
		return err
	}

	s.ed.Paste(clip)
	s.settle()
	return writeOutput(cmd, "", s.output(opts.raw))
}
