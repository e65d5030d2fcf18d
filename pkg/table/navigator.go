package table

import "unicode/utf8"

// Direction 光标移动方向
type Direction int

const (
	Next Direction = iota
	Previous
)

// String 返回方向名称
func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// Scope 导航范围
type Scope int

const (
	// WithinRow 同一行内移动，到达行边界时转为跨行
	WithinRow Scope = iota
	// CrossRow 同一列跨行移动
	CrossRow
)

// PositionKind 光标位置类型
type PositionKind int

const (
	// InCell 位于某个单元格内
	InCell PositionKind = iota
	// BeforeTable 紧挨在表格之前
	BeforeTable
	// AfterTable 紧挨在表格之后（下一个块的起始处）
	AfterTable
	// InPreviousBlock 位于表格前一个非表格块的末尾
	InPreviousBlock
	// Elsewhere 不在表格内，也不紧邻表格
	Elsewhere
)

// Position 光标位置。Inline 为单元格内联内容下标，Offset 为该段文本内的字符偏移。
type Position struct {
	Kind   PositionKind
	Cell   CellRef
	Inline int
	Offset int
}

// CellStart 返回单元格起始位置
func CellStart(ref CellRef) Position {
	return Position{Kind: InCell, Cell: ref}
}

// BlockKind 表格相邻块的类型
type BlockKind int

const (
	BlockNone BlockKind = iota
	BlockDefault
	BlockTable
)

// Surroundings 表格前后相邻的块
type Surroundings struct {
	Previous BlockKind
	Next     BlockKind
}

// Navigator 单元格导航器
type Navigator struct{}

// NextTarget 根据当前位置、方向和范围计算目标位置。
// 找不到目标单元格时返回表格外的位置，从不失败。
func (n Navigator) NextTarget(t *Table, pos Position, dir Direction, scope Scope, around Surroundings) Position {
	if pos.Kind != InCell || t.Cell(pos.Cell) == nil {
		return pos
	}

	var target *CellRef
	if scope == CrossRow {
		if p, ok := n.siblingLine(t, pos, dir); ok {
			return p
		}
		target = n.siblingRowCell(t, pos.Cell, dir, false)
	} else {
		target = n.rowCell(t, pos.Cell, dir)
		if target == nil {
			target = n.siblingRowCell(t, pos.Cell, dir, true)
		}
	}

	if target != nil {
		return CellStart(*target)
	}
	return n.exit(dir, around)
}

// siblingLine 单元格内以 br 分隔的多行文本，优先移动到相邻的文本行
func (n Navigator) siblingLine(t *Table, pos Position, dir Direction) (Position, bool) {
	content := t.Cell(pos.Cell).Content
	i := pos.Inline
	if i < 0 || i >= len(content) || content[i].Kind != InlineText {
		return pos, false
	}

	j := i + 2
	if dir == Previous {
		j = i - 2
	}
	if j < 0 || j >= len(content) {
		return pos, false
	}
	if content[(i+j)/2].Kind != InlineBreak || content[j].Kind != InlineText {
		return pos, false
	}

	offset := pos.Offset
	if l := utf8.RuneCountInString(content[j].Text); l < offset {
		offset = l
	}
	return Position{Kind: InCell, Cell: pos.Cell, Inline: j, Offset: offset}, true
}

// rowCell 同一行中的相邻单元格
func (n Navigator) rowCell(t *Table, ref CellRef, dir Direction) *CellRef {
	col := ref.Col + 1
	if dir == Previous {
		col = ref.Col - 1
	}
	next := CellRef{Row: ref.Row, Col: col}
	if t.Cell(next) == nil {
		return nil
	}
	return &next
}

// siblingRowCell 相邻行中的单元格。edge 为 true 时取行首（next）或行尾（previous），
// 否则取同一列，列号超出目标行时落在目标行最后一个单元格。
func (n Navigator) siblingRowCell(t *Table, ref CellRef, dir Direction, edge bool) *CellRef {
	rows := t.Rows()
	row := ref.Row + 1
	if dir == Previous {
		row = ref.Row - 1
	}
	if row < 0 || row >= len(rows) || len(rows[row].Cells) == 0 {
		return nil
	}

	last := len(rows[row].Cells) - 1
	col := ref.Col
	switch {
	case edge && dir == Next:
		col = 0
	case edge:
		col = last
	case col > last:
		col = last
	}
	return &CellRef{Row: row, Col: col}
}

func (n Navigator) exit(dir Direction, around Surroundings) Position {
	if dir == Next {
		return Position{Kind: AfterTable}
	}
	if around.Previous == BlockDefault {
		return Position{Kind: InPreviousBlock}
	}
	return Position{Kind: BeforeTable}
}
