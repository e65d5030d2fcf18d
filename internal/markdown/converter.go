package markdown

import (
	"bytes"
	"errors"
	"fmt"

	mathjax "github.com/litao91/goldmark-mathjax"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/config"
	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

// ErrUnknownAlignMethod 无法识别的表格对齐输出方式
var ErrUnknownAlignMethod = errors.New("unknown cell align method")

// Options 转换选项
type Options struct {
	Caps            table.Capabilities
	CellAlignMethod string
	ClassPrefix     string
	// Format 输出 Markdown 前用 markdownfmt 规整
	Format bool
}

// OptionsFromConfig 由配置生成转换选项
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Caps:            cfg.Capabilities(),
		CellAlignMethod: cfg.CellAlignMethod,
		ClassPrefix:     cfg.TableClassPrefix,
		Format:          cfg.FormatMarkdown,
	}
}

// Converter Markdown 与编辑区 HTML 之间的转换器
type Converter struct {
	md       goldmark.Markdown
	repairer *table.Repairer
	ids      *dom.TableIDs
	format   bool
}

// Result Markdown 转 HTML 的结果
type Result struct {
	HTML string
	// Meta 文档开头 YAML front matter 中的元数据
	Meta map[string]interface{}
	// Tables 对输出表格做的修复
	Tables dom.Completion
}

// ParseAlignMethod 解析表格对齐输出方式
func ParseAlignMethod(s string) (extension.TableCellAlignMethod, error) {
	switch s {
	case "", "default":
		return extension.TableCellAlignDefault, nil
	case "attribute":
		return extension.TableCellAlignAttribute, nil
	case "style":
		return extension.TableCellAlignStyle, nil
	case "none":
		return extension.TableCellAlignNone, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlignMethod, s)
}

// NewConverter 创建转换器
func NewConverter(opts Options) (*Converter, error) {
	align, err := ParseAlignMethod(opts.CellAlignMethod)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.NewTable(extension.WithTableCellAlignMethod(align)),
			extension.Strikethrough,
			extension.Linkify,
			extension.TaskList,
			mathjax.MathJax,
			meta.Meta,
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)

	return &Converter{
		md:       md,
		repairer: table.NewRepairer(opts.Caps),
		ids:      dom.NewTableIDs(opts.ClassPrefix),
		format:   opts.Format,
	}, nil
}

// ToHTML 把 Markdown 渲染为编辑区 HTML，表格经过补全，相邻表格之间插入默认块
func (c *Converter) ToHTML(src []byte) (*Result, error) {
	ctx := parser.NewContext()
	var buf bytes.Buffer
	if err := c.md.Convert(src, &buf, parser.WithContext(ctx)); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	doc, err := dom.ParseBody(buf.String())
	if err != nil {
		return nil, err
	}
	body := doc.Body()
	res := &Result{Meta: meta.Get(ctx)}
	res.Tables = dom.CompleteTables(body, c.repairer, c.ids)
	dom.UnwrapBlocksInTables(body)
	dom.InsertDefaultBlockBetweenTables(body)
	res.HTML = doc.HTML()
	return res, nil
}
