package tableedit

import (
	"regexp"
	"unicode/utf8"

	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/keyevent"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

var blockTag = regexp.MustCompile(`(?i)^<(div|p|ul|ol|li|h[1-6]|pre|blockquote|table|hr)[\s/>]`)

// Handler 纯函数形式的按键处理器
type Handler func(state NavState, ev Event) Result

// Handlers 表格按键处理器集合
type Handlers struct {
	Caps table.Capabilities
	Nav  table.Navigator
}

// NewHandlers 创建处理器集合
func NewHandlers(caps table.Capabilities) *Handlers {
	return &Handlers{Caps: caps}
}

// Track 对所有按键生效的处理器：单元格切换时记录撤销检查点、
// 输入首字符时移除占位 br、在多选单元格上输入时先清空单元格。
func (h *Handlers) Track(state NavState, ev Event) Result {
	res := Result{State: state}
	sel := ev.Selection
	inTable := ev.Table != nil && sel.InTable

	if !inTable {
		if state.Tracking() {
			res.add(Effect{Kind: SaveCheckpoint})
			res.State.Last = nil
		}
		return res
	}
	if ev.Key.IsLoneModifier() {
		return res
	}

	h.recordCheckpointIfNeed(&res, ev)

	if !ev.Key.IsTextInput() || ev.Key.Mods.Any() {
		return res
	}

	if sel.Collapsed && sel.Start.Kind == table.InCell {
		if c := ev.Table.Cell(sel.Start.Cell); c != nil && utf8.RuneCountInString(c.TextContent()) == 1 && hasBreak(c) {
			res.add(Effect{Kind: RemoveBreaks, Cell: sel.Start.Cell})
		}
	}

	if cells := multiCellSelection(ev); len(cells) > 0 {
		h.clearCells(&res, ev, cells)
	}
	return res
}

// recordCheckpointIfNeed 光标进入与上次不同的单元格时记录检查点
func (h *Handlers) recordCheckpointIfNeed(res *Result, ev Event) {
	sel := ev.Selection
	if !sel.Collapsed || sel.Start.Kind != table.InCell {
		return
	}
	anchor := Anchor{TableID: ev.TableID, Cell: sel.Start.Cell}
	if res.State.Last != nil && *res.State.Last == anchor {
		return
	}
	res.add(Effect{Kind: SaveCheckpoint})
	res.State.Last = &anchor
}

// clearCells 一次检查点后清空全部选中单元格，光标折叠到第一个单元格起始处
func (h *Handlers) clearCells(res *Result, ev Event, cells []table.CellRef) {
	first := cells[0]
	res.add(
		Effect{Kind: SaveCheckpoint},
		Effect{Kind: ClearCells, Cells: cells},
		Effect{Kind: SetSelection, Pos: table.CellStart(first)},
	)
	res.State.Last = &Anchor{TableID: ev.TableID, Cell: first}
}

// Deletion 处理 Backspace 和 Delete
func (h *Handlers) Deletion(state NavState, ev Event) Result {
	res := Result{State: state}
	sel := ev.Selection
	backspace := ev.Key.Combo == keyevent.Backspace

	if ev.Table == nil {
		return res
	}

	if !sel.Collapsed {
		if !sel.InTable || sel.Ancestor == AncestorText || sel.Ancestor == AncestorBody {
			return res
		}
		res.Suppress = true
		res.Stop = true
		if cells := multiCellSelection(ev); len(cells) > 0 {
			h.clearCells(&res, ev, cells)
		}
		return res
	}

	switch {
	case sel.InTable && sel.Start.Kind == table.InCell:
		if backspace {
			h.backspaceInCell(&res, ev)
		} else {
			h.deleteInCell(&res, ev)
		}
		if c := ev.Table.Cell(sel.Start.Cell); c != nil && bare(c) && h.Caps.EmptyCellPlaceholder {
			res.add(Effect{Kind: InsertPlaceholder, Cell: sel.Start.Cell})
		}
		if len(sel.SelectedCells) > 0 {
			h.recordCheckpointIfNeed(&res, ev)
			h.clearCells(&res, ev, sel.SelectedCells)
		}
		res.Stop = true

	case backspace && sel.Start.Kind == table.BeforeTable,
		!backspace && sel.Start.Kind == table.AfterTable && sel.Ancestor == AncestorBody:
		res.Suppress = true
		res.Stop = true
		res.add(
			Effect{Kind: SaveCheckpoint},
			Effect{Kind: InsertSelectionMarker},
			Effect{Kind: RemoveTable},
			Effect{Kind: RestoreSelectionMarker},
		)
	}
	return res
}

// backspaceInCell 行首或单元格边界处阻止默认行为；前一个节点是 br 时只删除该 br
func (h *Handlers) backspaceInCell(res *Result, ev Event) {
	pos := ev.Selection.Start
	c := ev.Table.Cell(pos.Cell)
	if c == nil {
		return
	}

	if pos.Offset > 0 {
		return
	}
	if pos.Inline == 0 {
		res.Suppress = true
		return
	}
	prev := pos.Inline - 1
	if prev < len(c.Content) && c.Content[prev].Kind == table.InlineBreak && len(c.Content) != 1 {
		res.Suppress = true
		res.add(
			Effect{Kind: RemoveBreak, Cell: pos.Cell, Inline: prev},
			Effect{Kind: SetSelection, Pos: table.Position{Kind: table.InCell, Cell: pos.Cell, Inline: prev}},
		)
	}
}

// deleteInCell 光标位于单元格文本末尾时阻止默认行为，避免浏览器合并单元格
func (h *Handlers) deleteInCell(res *Result, ev Event) {
	pos := ev.Selection.Start
	c := ev.Table.Cell(pos.Cell)
	if c == nil || !atCellEnd(c, pos) {
		return
	}
	res.Suppress = true
	res.add(Effect{Kind: NormalizeText, Cell: pos.Cell})
}

// Enter 表格前后回车插入默认块；单元格内回车补一个结尾 br 后交给默认处理
func (h *Handlers) Enter(state NavState, ev Event) Result {
	res := Result{State: state}
	if ev.Table == nil || !ev.Selection.Collapsed {
		return res
	}

	pos := ev.Selection.Start
	switch pos.Kind {
	case table.AfterTable:
		if ev.Selection.Ancestor != AncestorBody {
			return res
		}
		res.Suppress, res.Stop = true, true
		res.add(Effect{Kind: InsertDefaultBlock, Placement: PlaceAfter})
	case table.BeforeTable:
		res.Suppress, res.Stop = true, true
		res.add(Effect{Kind: InsertDefaultBlock, Placement: PlaceBefore})
	case table.InCell:
		res.Stop = true
		c := ev.Table.Cell(pos.Cell)
		if c == nil || !h.Caps.TrailingBreakOnEnter {
			return res
		}
		if n := len(c.Content); n == 0 || !endsLine(c.Content[n-1]) {
			res.add(Effect{Kind: AppendBreak, Cell: pos.Cell})
		}
	}
	return res
}

// endsLine 末尾已是换行或块级元素时无需再补 br
func endsLine(in table.Inline) bool {
	switch in.Kind {
	case table.InlineBreak:
		return true
	case table.InlineRaw:
		return blockTag.MatchString(in.Text)
	}
	return false
}

// Tab 移动到下一个单元格
func (h *Handlers) Tab(state NavState, ev Event) Result {
	return h.move(state, ev, table.Next)
}

// ShiftTab 移动到上一个单元格
func (h *Handlers) ShiftTab(state NavState, ev Event) Result {
	return h.move(state, ev, table.Previous)
}

func (h *Handlers) move(state NavState, ev Event, dir table.Direction) Result {
	res := Result{State: state}
	sel := ev.Selection
	if ev.Table == nil || !sel.Collapsed || !sel.InTable || sel.Start.Kind != table.InCell {
		return res
	}

	target := h.Nav.NextTarget(ev.Table, sel.Start, dir, table.WithinRow, ev.Around)
	res.Suppress, res.Stop = true, true
	res.add(Effect{Kind: SetSelection, Pos: target})
	return res
}

// selectedCells 显式选中的单元格，否则为起止单元格围成的矩形区域
func selectedCells(ev Event) []table.CellRef {
	sel := ev.Selection
	if len(sel.SelectedCells) > 0 {
		return sel.SelectedCells
	}

	rows := ev.Table.Rows()
	if len(rows) == 0 {
		return nil
	}
	start, okStart := clampToTable(ev.Table, sel.Start)
	end, okEnd := clampToTable(ev.Table, sel.End)
	if !okStart || !okEnd {
		return nil
	}

	top, bottom := minMax(start.Row, end.Row)
	left, right := minMax(start.Col, end.Col)
	var cells []table.CellRef
	for r := top; r <= bottom; r++ {
		for c := left; c <= right && c < len(rows[r].Cells); c++ {
			cells = append(cells, table.CellRef{Row: r, Col: c})
		}
	}
	return cells
}

// multiCellSelection 仅当选区跨越两个以上单元格或存在显式多选时返回选中单元格
func multiCellSelection(ev Event) []table.CellRef {
	sel := ev.Selection
	if len(sel.SelectedCells) > 0 {
		return sel.SelectedCells
	}
	if sel.Collapsed || sel.Start.Kind == table.InCell && sel.End.Kind == table.InCell && sel.Start.Cell == sel.End.Cell {
		return nil
	}
	return selectedCells(ev)
}

// clampToTable 表格外的端点落到表格的第一个或最后一个单元格
func clampToTable(t *table.Table, pos table.Position) (table.CellRef, bool) {
	rows := t.Rows()
	switch pos.Kind {
	case table.InCell:
		return pos.Cell, t.Cell(pos.Cell) != nil
	case table.BeforeTable, table.InPreviousBlock:
		return table.CellRef{}, len(rows[0].Cells) > 0
	case table.AfterTable:
		last := len(rows) - 1
		return table.CellRef{Row: last, Col: len(rows[last].Cells) - 1}, len(rows[last].Cells) > 0
	}
	return table.CellRef{}, false
}

// atCellEnd 光标之后只剩空文本或一个结尾 br
func atCellEnd(c *table.Cell, pos table.Position) bool {
	i := pos.Inline
	if i < len(c.Content) && c.Content[i].Kind == table.InlineText {
		if pos.Offset < utf8.RuneCountInString(c.Content[i].Text) {
			return false
		}
		i++
	}
	for ; i < len(c.Content); i++ {
		in := c.Content[i]
		switch {
		case in.Kind == table.InlineText && in.Text == "":
		case in.Kind == table.InlineBreak && i == len(c.Content)-1:
		default:
			return false
		}
	}
	return true
}

// bare 单元格既没有文本也没有任何元素
func bare(c *table.Cell) bool {
	for _, in := range c.Content {
		if in.Kind != table.InlineText || in.Text != "" {
			return false
		}
	}
	return true
}

func hasBreak(c *table.Cell) bool {
	for _, in := range c.Content {
		if in.Kind == table.InlineBreak {
			return true
		}
	}
	return false
}

func minMax(a, b int) (int, int) {
	if a > b {
		return b, a
	}
	return a, b
}
