package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
	"github.com/nerdneilsfield/go-wysiwyg-table/internal/wysiwyg"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

// ErrBadPlacement 光标位置参数无效
var ErrBadPlacement = errors.New("invalid caret placement")

// session 一个加载了表格插件的编辑器，延迟任务由手动调度器执行
type session struct {
	ed    *wysiwyg.Editor
	tm    *wysiwyg.TableManager
	sched *wysiwyg.ManualScheduler
}

func (a *app) newSession(src string) (*session, error) {
	doc, err := dom.ParseBody(src)
	if err != nil {
		return nil, err
	}
	ed := wysiwyg.NewEditor(doc, a.log)
	sched := wysiwyg.NewManualScheduler()
	tm := wysiwyg.NewTableManager(ed, wysiwyg.OptionsFromConfig(a.cfg, sched, a.log))
	return &session{ed: ed, tm: tm, sched: sched}, nil
}

// settle 执行所有挂起的延迟任务
func (s *session) settle() int {
	return s.sched.Flush()
}

// output 返回编辑区 HTML，raw 为 true 时不经导出处理
func (s *session) output(raw bool) string {
	if raw {
		return s.ed.RawHTML()
	}
	return s.ed.HTML()
}

// placement 命令行指定的光标位置
type placement struct {
	table  int
	cell   string
	to     string
	offset int
	before bool
	after  bool
}

func (p *placement) register(fs *pflag.FlagSet) {
	fs.IntVar(&p.table, "table", 0, "目标表格序号 (从 0 开始)")
	fs.StringVar(&p.cell, "cell", "", "光标所在单元格，格式为 行,列")
	fs.StringVar(&p.to, "to", "", "选区终点单元格，格式为 行,列；与 --cell 组成多单元格选区")
	fs.IntVar(&p.offset, "offset", 0, "单元格内的文本偏移，-1 表示末尾")
	fs.BoolVar(&p.before, "before", false, "光标放在表格之前")
	fs.BoolVar(&p.after, "after", false, "光标放在表格之后")
}

// apply 把光标放到编辑器中。没有指定任何位置时光标放在文档末尾。
func (p *placement) apply(ed *wysiwyg.Editor) error {
	body := ed.Document().Body()
	if p.cell == "" && !p.before && !p.after {
		ed.SetRange(dom.Caret(body, dom.ChildCount(body)))
		return nil
	}

	tables := ed.Document().Find("table").Nodes
	if p.table < 0 || p.table >= len(tables) {
		return fmt.Errorf("%w: table %d out of range (%d tables)", ErrBadPlacement, p.table, len(tables))
	}
	tbl := tables[p.table]

	switch {
	case p.before && p.after:
		return fmt.Errorf("%w: --before and --after are exclusive", ErrBadPlacement)
	case p.before:
		ed.SetRange(dom.Caret(tbl.Parent, dom.Index(tbl)))
		return nil
	case p.after:
		ed.SetRange(dom.Caret(tbl.Parent, dom.Index(tbl)+1))
		return nil
	}

	_, cells := dom.ReadTable(tbl)
	from, err := cellNode(cells, p.cell)
	if err != nil {
		return err
	}
	if p.to != "" {
		nodes, err := rectangle(cells, p.cell, p.to)
		if err != nil {
			return err
		}
		ed.SelectCells(nodes...)
		return nil
	}

	if p.offset < 0 {
		ed.SetRange(dom.AtTextOffset(from, len([]rune(dom.TextContent(from)))))
		return nil
	}
	ed.SetRange(dom.AtTextOffset(from, p.offset))
	return nil
}

func cellNode(cells *dom.CellMap, s string) (*html.Node, error) {
	ref, err := parseCellRef(s)
	if err != nil {
		return nil, err
	}
	n := cells.Node(ref)
	if n == nil {
		return nil, fmt.Errorf("%w: no cell at %s", ErrBadPlacement, s)
	}
	return n, nil
}

// rectangle 返回两个角之间的所有单元格，按行优先排列
func rectangle(cells *dom.CellMap, a, b string) ([]*html.Node, error) {
	from, err := parseCellRef(a)
	if err != nil {
		return nil, err
	}
	to, err := parseCellRef(b)
	if err != nil {
		return nil, err
	}
	if cells.Node(to) == nil {
		return nil, fmt.Errorf("%w: no cell at %s", ErrBadPlacement, b)
	}
	r0, r1 := min(from.Row, to.Row), max(from.Row, to.Row)
	c0, c1 := min(from.Col, to.Col), max(from.Col, to.Col)
	var out []*html.Node
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			if n := cells.Node(table.CellRef{Row: r, Col: c}); n != nil {
				out = append(out, n)
			}
		}
	}
	return out, nil
}

// parseCellRef 解析 "行,列"
func parseCellRef(s string) (table.CellRef, error) {
	r, c, ok := strings.Cut(s, ",")
	if !ok {
		return table.CellRef{}, fmt.Errorf("%w: %q is not row,col", ErrBadPlacement, s)
	}
	row, err := strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return table.CellRef{}, fmt.Errorf("%w: bad row in %q", ErrBadPlacement, s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return table.CellRef{}, fmt.Errorf("%w: bad column in %q", ErrBadPlacement, s)
	}
	return table.CellRef{Row: row, Col: col}, nil
}
