package wysiwyg

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/config"
	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
	"github.com/nerdneilsfield/go-wysiwyg-table/internal/logger"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/keyevent"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/tableedit"
)

// DefaultCompletionDelay 编辑后延迟补全表格的时间
const DefaultCompletionDelay = 10 * time.Millisecond

// markerPrefix 选区标记元素的 id 前缀
const markerPrefix = "wwtable-selection-marker-"

// anchorAttr 表格补全期间标记选区端点所在单元格的临时属性
const anchorAttr = "data-wwtable-anchor"

// Options 表格管理器选项
type Options struct {
	Caps            table.Capabilities
	ClassPrefix     string
	CompletionDelay time.Duration
	Scheduler       Scheduler
	Logger          *zap.Logger
}

// OptionsFromConfig 由配置生成选项
func OptionsFromConfig(cfg *config.Config, s Scheduler, log *zap.Logger) Options {
	return Options{
		Caps:            cfg.Capabilities(),
		ClassPrefix:     cfg.TableClassPrefix,
		CompletionDelay: cfg.CompletionDelay(),
		Scheduler:       s,
		Logger:          log,
	}
}

// TableManager 编辑器中的表格子系统：按键处理、粘贴合并、文档级表格修复
type TableManager struct {
	ed         *Editor
	caps       table.Capabilities
	repairer   *table.Repairer
	merger     *table.Merger
	dispatcher *tableedit.Dispatcher
	ids        *dom.TableIDs
	scheduler  Scheduler
	delay      time.Duration
	state      tableedit.NavState
	pending    bool
	log        *zap.Logger
}

// NewTableManager 创建表格管理器并注册到编辑器
func NewTableManager(ed *Editor, opts Options) *TableManager {
	if opts.Scheduler == nil {
		opts.Scheduler = NewManualScheduler()
	}
	m := &TableManager{
		ed:         ed,
		caps:       opts.Caps,
		repairer:   table.NewRepairer(opts.Caps),
		merger:     table.NewMerger(opts.Caps),
		dispatcher: tableedit.NewTableDispatcher(opts.Caps),
		ids:        dom.NewTableIDs(opts.ClassPrefix),
		scheduler:  opts.Scheduler,
		delay:      opts.CompletionDelay,
		log:        logger.Component(opts.Logger, "table-manager"),
	}

	ed.Bus().On(SelectionChangedAfterEdit, m.onSelectionChangedAfterEdit)
	ed.Bus().On(DocumentValueReplaced, m.onDocumentValueReplaced)
	ed.Bus().On(ProcessHTMLText, m.onProcessHTMLText)
	ed.Use(m)
	return m
}

// State 当前导航状态
func (m *TableManager) State() tableedit.NavState {
	var s tableedit.NavState
	m.ed.Do(func() { s = m.state })
	return s
}

// CompleteTables 立即补全文档中的残缺表格
func (m *TableManager) CompleteTables() dom.Completion {
	var res dom.Completion
	m.ed.Do(func() { res = m.completeTables() })
	return res
}

// Normalize 对整个文档依次执行单元格去包装、表格补全和相邻表格分隔
func (m *TableManager) Normalize() dom.Completion {
	var res dom.Completion
	m.ed.Do(func() {
		dom.UnwrapBlocksInTables(m.ed.doc.Body())
		res = m.completeTables()
		dom.InsertDefaultBlockBetweenTables(m.ed.doc.Body())
	})
	return res
}

func (m *TableManager) completeTables() dom.Completion {
	body := m.ed.doc.Body()
	anchors := m.anchorRange(body)
	res := dom.CompleteTables(body, m.repairer, m.ids)
	if res != (dom.Completion{}) {
		m.log.Debug("tables completed",
			zap.Int("repaired", res.Repaired),
			zap.Int("created", res.Created),
			zap.Int("discarded", res.Discarded))
	}
	m.restoreRange(body, anchors)
	m.ed.clampRange()
	return res
}

// rangeAnchor 选区端点在所在单元格中的文本偏移
type rangeAnchor struct {
	id     string
	offset int
	end    bool
}

// anchorRange 给选区端点所在的单元格打上临时属性。单元格属性在修复时保留，
// 重建后的单元格可据此找回。
func (m *TableManager) anchorRange(body *html.Node) []rangeAnchor {
	r := m.ed.rng
	points := []struct {
		n   *html.Node
		off int
	}{{r.StartContainer, r.StartOffset}, {r.EndContainer, r.EndOffset}}

	var anchors []rangeAnchor
	for i, p := range points {
		if p.n == nil {
			continue
		}
		cell := dom.Closest(p.n, body, "td", "th")
		if cell == nil {
			continue
		}
		id, ok := dom.Attr(cell, anchorAttr)
		if !ok {
			id = strconv.Itoa(i)
			dom.SetAttr(cell, anchorAttr, id)
		}
		anchors = append(anchors, rangeAnchor{id: id, offset: dom.TextOffset(cell, p.n, p.off), end: i == 1})
	}
	return anchors
}

// restoreRange 去掉临时属性，端点所在节点已被重建时移到新单元格的相同文本偏移处
func (m *TableManager) restoreRange(body *html.Node, anchors []rangeAnchor) {
	if len(anchors) == 0 {
		return
	}
	cells := make(map[string]*html.Node)
	for _, n := range dom.NewSelection(body).Find("[" + anchorAttr + "]").Nodes {
		id, _ := dom.Attr(n, anchorAttr)
		cells[id] = n
		dom.RemoveAttr(n, anchorAttr)
	}

	r := m.ed.rng
	for _, a := range anchors {
		cell := cells[a.id]
		container := r.StartContainer
		if a.end {
			container = r.EndContainer
		}
		if cell == nil || dom.Contains(body, container) {
			continue
		}
		p := dom.AtTextOffset(cell, a.offset)
		if a.end {
			r.EndContainer, r.EndOffset = p.StartContainer, p.StartOffset
		} else {
			r.StartContainer, r.StartOffset = p.StartContainer, p.StartOffset
		}
	}
	m.ed.rng = r
}

// scheduleCompletion 延迟补全，已有待执行的补全时不重复登记
func (m *TableManager) scheduleCompletion() {
	if m.pending {
		return
	}
	m.pending = true
	m.scheduler.After(m.delay, func() {
		m.ed.Do(func() {
			m.pending = false
			m.completeTables()
		})
	})
}

func (m *TableManager) onSelectionChangedAfterEdit(*Event) {
	dom.UnwrapBlocksInTables(m.ed.doc.Body())
	m.scheduleCompletion()
	dom.InsertDefaultBlockBetweenTables(m.ed.doc.Body())
}

func (m *TableManager) onDocumentValueReplaced(*Event) {
	dom.UnwrapBlocksInTables(m.ed.doc.Body())
	dom.InsertDefaultBlockBetweenTables(m.ed.doc.Body())
}

func (m *TableManager) onProcessHTMLText(ev *Event) {
	out, err := dom.StripTrailingCellBreaks(ev.HTML)
	if err != nil {
		m.log.Warn("failed to strip trailing cell breaks", zap.Error(err))
		return
	}
	ev.HTML = out
}

// tableContext 一次按键所涉及的表格
type tableContext struct {
	node  *html.Node
	model *table.Table
	cells *dom.CellMap
}

func (m *TableManager) tableID(tbl *html.Node) string {
	if id, ok := m.ids.Existing(tbl); ok {
		return id
	}
	for i, n := range m.ed.doc.Find("table").Nodes {
		if n == tbl {
			return "table@" + strconv.Itoa(i)
		}
	}
	return ""
}

// KeyDown 分发按键并执行副作用
func (m *TableManager) KeyDown(key keyevent.Event) bool {
	body := m.ed.doc.Body()
	ev := tableedit.Event{Key: key}

	var tc tableContext
	if tc.node = dom.TableAround(body, m.ed.rng); tc.node != nil {
		tc.model, tc.cells = dom.ReadTable(tc.node)
		ev.Table = tc.model
		ev.TableID = m.tableID(tc.node)
		ev.Selection = dom.Snapshot(body, tc.node, tc.cells, m.ed.rng, m.ed.selected)
		ev.Around = dom.Surroundings(tc.node)
	}

	res := m.dispatcher.Dispatch(m.state, ev)
	m.state = res.State
	m.apply(&tc, res.Effects)

	if len(res.Effects) > 0 || res.Suppress {
		m.log.Debug("table key handled",
			zap.String("key", key.Name),
			zap.Bool("suppress", res.Suppress),
			zap.Stringers("effects", res.Kinds()))
	}
	return res.Suppress
}

// KeyUp 默认行为之后：被删空的单元格补回占位 br，输入首字符后去掉占位 br
func (m *TableManager) KeyUp(key keyevent.Event) {
	r := m.ed.rng
	if !r.Collapsed() {
		return
	}
	cell := dom.Closest(r.StartContainer, m.ed.doc.Body(), "td", "th")
	if cell == nil {
		return
	}

	switch {
	case key.IsDeletion() && m.caps.EmptyCellPlaceholder && dom.TextContent(cell) == "" && len(dom.ElementChildren(cell)) == 0:
		dom.Empty(cell)
		cell.AppendChild(dom.NewBreak())
		m.ed.rng = dom.Caret(cell, 0)
	case key.IsTextInput() && !key.Mods.Any() && utf8.RuneCountInString(dom.TextContent(cell)) == 1:
		for _, br := range dom.ElementChildren(cell, "br") {
			dom.Detach(br)
		}
	}
}

// apply 按顺序执行副作用：单元格级副作用改写模型并写回对应单元格，文档级副作用直接操作文档
func (m *TableManager) apply(tc *tableContext, effects []tableedit.Effect) {
	var marker *html.Node
	for _, e := range effects {
		switch e.Kind {
		case tableedit.SaveCheckpoint:
			m.ed.saveCheckpoint()

		case tableedit.InsertSelectionMarker:
			if tc.node == nil {
				continue
			}
			marker = dom.NewElement("span", html.Attribute{Key: "id", Val: markerPrefix + uuid.NewString()})
			dom.InsertBefore(marker, tc.node)

		case tableedit.RemoveTable:
			if tc.node == nil {
				continue
			}
			dom.Detach(tc.node)
			*tc = tableContext{}

		case tableedit.RestoreSelectionMarker:
			if marker == nil || marker.Parent == nil {
				continue
			}
			m.ed.rng = dom.Caret(marker.Parent, dom.Index(marker))
			dom.Detach(marker)
			marker = nil

		case tableedit.InsertDefaultBlock:
			if tc.node == nil {
				continue
			}
			block := dom.NewDefaultBlock()
			if e.Placement == tableedit.PlaceBefore {
				dom.InsertBefore(block, tc.node)
			} else {
				dom.InsertAfter(block, tc.node)
			}
			m.ed.rng = dom.Caret(block, 0)

		case tableedit.SetSelection:
			if tc.node == nil {
				continue
			}
			m.ed.rng = dom.RangeAt(tc.node, tc.cells, e.Pos)

		default:
			if tc.model == nil {
				continue
			}
			tableedit.Apply(tc.model, m.caps, []tableedit.Effect{e})
			m.writeBack(tc, e)
			if e.Kind == tableedit.ClearCells {
				m.ed.selected = nil
			}
		}
	}
}

// writeBack 把模型中被修改的单元格写回 DOM
func (m *TableManager) writeBack(tc *tableContext, e tableedit.Effect) {
	refs := e.Cells
	if e.Kind != tableedit.ClearCells {
		refs = []table.CellRef{e.Cell}
	}
	for _, ref := range refs {
		n, c := tc.cells.Node(ref), tc.model.Cell(ref)
		if n == nil || c == nil {
			continue
		}
		r := m.ed.rng
		startIn, endIn := dom.Contains(n, r.StartContainer), dom.Contains(n, r.EndContainer)
		start := dom.TextOffset(n, r.StartContainer, r.StartOffset)
		end := dom.TextOffset(n, r.EndContainer, r.EndOffset)

		dom.WriteCell(n, c)

		if startIn {
			s := dom.AtTextOffset(n, start)
			r.StartContainer, r.StartOffset = s.StartContainer, s.StartOffset
		}
		if endIn {
			e := dom.AtTextOffset(n, end)
			r.EndContainer, r.EndOffset = e.StartContainer, e.StartOffset
		}
		m.ed.rng = r
	}
}

// Paste 处理粘贴。返回 true 表示已处理，编辑器不再执行默认粘贴。
func (m *TableManager) Paste(clipboard string) bool {
	body := m.ed.doc.Body()
	r := m.ed.rng
	tbl := r.ClosestTable(body)

	if tbl != nil && !r.Collapsed() && dom.Ancestor(body, r) != tableedit.AncestorText {
		return true
	}

	nodes, err := dom.ParseFragment(clipboard)
	if err != nil {
		m.log.Warn("failed to parse clipboard", zap.Error(err))
		return tbl != nil
	}
	nodes = dom.NormalizePaste(nodes)

	if tbl == nil {
		m.ed.saveCheckpoint()
		m.ed.insertNodes(nodes)
		m.scheduleCompletion()
		return true
	}

	frag, ok := dom.PastedTable(nodes)
	if !ok {
		m.ed.saveCheckpoint()
		m.ed.collapseSelection()
		m.ed.insertText(textOf(nodes))
		return true
	}
	m.mergeInto(tbl, frag)
	return true
}

// mergeInto 以光标所在单元格为起点把片段合并进表格
func (m *TableManager) mergeInto(tbl *html.Node, frag *table.Fragment) {
	t, cells := dom.ReadTable(tbl)
	pos := dom.Locate(tbl, cells, m.ed.rng.StartContainer, m.ed.rng.StartOffset)
	if pos.Kind != table.InCell {
		return
	}
	grid := table.GridFromFragment(frag)
	if len(grid) == 0 {
		return
	}

	m.ed.saveCheckpoint()
	exp := m.merger.Merge(t, pos.Cell, grid)
	built, cells := dom.ReplaceTable(tbl, t)
	m.ed.rng = dom.RangeAt(built, cells, table.CellStart(pos.Cell))
	m.ed.selected = nil
	m.log.Debug("pasted into table",
		zap.Int("rows", len(grid)),
		zap.Int("extra_columns", exp.Columns),
		zap.Int("extra_rows", exp.Rows))
}

func textOf(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(dom.TextContent(n))
	}
	return b.String()
}
