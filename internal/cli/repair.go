package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/progress"
)

type repairOptions struct {
	write    bool
	output   string
	raw      bool
	progress bool
}

func newRepairCommand(a *app) *cobra.Command {
	opts := &repairOptions{}
	cmd := &cobra.Command{
		Use:   "repair [flags] [file ...]",
		Short: "补全残缺表格，整理单元格内容",
		Long: `读取编辑区 HTML，去掉单元格中的块包装，补全残缺的表格并在相邻表格之间插入默认块。

没有给出文件时从标准输入读取。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepair(cmd, args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "把结果写回源文件")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "输出文件 (只处理单个输入时可用)")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "输出未经导出处理的 HTML (保留单元格末尾的 br)")
	cmd.Flags().BoolVar(&opts.progress, "progress", false, "处理多个文件时显示进度")
	return cmd
}

func (a *app) runRepair(cmd *cobra.Command, args []string, opts *repairOptions) error {
	if opts.output != "" && len(args) > 1 {
		return fmt.Errorf("--output 只能用于单个输入")
	}
	if opts.write && len(args) == 0 {
		return fmt.Errorf("--write 需要文件参数")
	}
	if len(args) == 0 {
		args = []string{"-"}
	}

	var batch *progress.Batch
	if opts.progress && len(args) > 1 {
		batch = progress.NewBatch(len(args), "repairing tables", progress.WithWriter(cmd.ErrOrStderr()))
	}

	var total dom.Completion
	for _, path := range args {
		res, err := a.repairFile(cmd, path, opts)
		if batch != nil {
			batch.Step(err)
			batch.Add("repaired", res.Repaired)
			batch.Add("created", res.Created)
			batch.Add("discarded", res.Discarded)
		}
		if err != nil {
			if batch != nil {
				batch.Done()
			}
			return fmt.Errorf("%s: %w", path, err)
		}
		total.Repaired += res.Repaired
		total.Created += res.Created
		total.Discarded += res.Discarded
	}
	if batch != nil {
		batch.Done()
	}

	a.log.Info("tables repaired",
		zap.Int("files", len(args)),
		zap.Int("repaired", total.Repaired),
		zap.Int("created", total.Created),
		zap.Int("discarded", total.Discarded))
	return nil
}

func (a *app) repairFile(cmd *cobra.Command, path string, opts *repairOptions) (dom.Completion, error) {
	src, err := a.readInput(cmd, path)
	if err != nil {
		return dom.Completion{}, err
	}
	s, err := a.newSession(src)
	if err != nil {
		return dom.Completion{}, err
	}
	res := s.tm.Normalize()
	s.settle()

	dest := opts.output
	if opts.write {
		dest = path
	}
	return res, writeOutput(cmd, dest, s.output(opts.raw))
}
