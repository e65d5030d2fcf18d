package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/markdown"
)

func (a *app) converter(cmd *cobra.Command) (*markdown.Converter, error) {
	opts := markdown.OptionsFromConfig(a.cfg)
	if cmd.Flags().Changed("align") {
		opts.CellAlignMethod, _ = cmd.Flags().GetString("align")
	}
	if cmd.Flags().Changed("format") {
		opts.Format, _ = cmd.Flags().GetBool("format")
	}
	return markdown.NewConverter(opts)
}

func newToMarkdownCommand(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "to-markdown [flags] [file]",
		Short: "把编辑区 HTML 转换为 GitHub 风格的 Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readInput(cmd, inputArg(args))
			if err != nil {
				return err
			}
			conv, err := a.converter(cmd)
			if err != nil {
				return err
			}
			md, err := conv.FromHTML(src)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, md)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	cmd.Flags().Bool("format", false, "用 markdownfmt 规整输出")
	return cmd
}

func newToHTMLCommand(a *app) *cobra.Command {
	var (
		output   string
		showMeta bool
	)
	cmd := &cobra.Command{
		Use:   "to-html [flags] [file]",
		Short: "把 Markdown 转换为编辑区 HTML，并补全其中的表格",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.readInput(cmd, inputArg(args))
			if err != nil {
				return err
			}
			conv, err := a.converter(cmd)
			if err != nil {
				return err
			}
			res, err := conv.ToHTML([]byte(src))
			if err != nil {
				return err
			}
			a.log.Debug("markdown converted",
				zap.Int("repaired", res.Tables.Repaired),
				zap.Int("created", res.Tables.Created),
				zap.Int("discarded", res.Tables.Discarded))

			if showMeta {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(res.Meta); err != nil {
					return err
				}
				return enc.Close()
			}
			return writeOutput(cmd, output, res.HTML)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "输出文件")
	cmd.Flags().String("align", "", "表格对齐的输出方式 (default, attribute, style, none)")
	cmd.Flags().BoolVar(&showMeta, "meta", false, "只输出 front matter 元数据 (YAML)")
	return cmd
}
