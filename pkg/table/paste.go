package table

import (
	"golang.org/x/text/unicode/norm"
)

// Expansion 粘贴前表格需要扩展的行列数
type Expansion struct {
	Columns int
	Rows    int
}

// Merger 把剪贴板中的表格数据合并进已有表格
type Merger struct {
	Caps Capabilities
}

// NewMerger 创建合并器
func NewMerger(caps Capabilities) *Merger {
	return &Merger{Caps: caps}
}

// GridFromFragment 提取粘贴片段中每行的文本，没有单元格的行被跳过
func GridFromFragment(f *Fragment) [][]string {
	var grid [][]string
	for _, r := range f.Rows() {
		if len(r.Cells) == 0 {
			continue
		}
		texts := r.Texts()
		for i, s := range texts {
			texts[i] = norm.NFC.String(s)
		}
		grid = append(grid, texts)
	}
	return grid
}

// Measure 计算以 anchor 为起点放下 grid 还缺多少列和行。
// 列宽取 grid 第一行的长度；行号为全局行号，已包含表头行。
func (m *Merger) Measure(t *Table, anchor CellRef, grid [][]string) Expansion {
	if len(grid) == 0 {
		return Expansion{}
	}
	return Expansion{
		Columns: anchor.Col + len(grid[0]) - t.ColumnCount(),
		Rows:    anchor.Row + len(grid) - len(t.Rows()),
	}
}

// Expand 按需为每行追加空单元格、为表体追加清空后的行
func (m *Merger) Expand(t *Table, exp Expansion) {
	if exp.Columns > 0 {
		for i, row := range t.Rows() {
			kind := DataCell
			if i == 0 {
				kind = HeaderCell
			}
			for k := 0; k < exp.Columns; k++ {
				row.Cells = append(row.Cells, m.Caps.EmptyCell(kind))
			}
		}
	}

	if exp.Rows > 0 {
		rows := t.Rows()
		template := rows[len(rows)-1].Clone()
		for _, c := range template.Cells {
			c.Kind = DataCell
			c.Content = m.Caps.Placeholder()
		}
		for k := 0; k < exp.Rows; k++ {
			t.Body.Rows = append(t.Body.Rows, template.Clone())
		}
	}
}

// Merge 扩展表格后用 grid 覆盖 anchor 起始区域的单元格文本。
// 每一行 grid 从 anchor 所在列开始写入，超出行尾的值被丢弃，其余单元格保持不变。
func (m *Merger) Merge(t *Table, anchor CellRef, grid [][]string) Expansion {
	exp := m.Measure(t, anchor, grid)
	m.Expand(t, exp)

	rows := t.Rows()
	for i, values := range grid {
		r := anchor.Row + i
		if r >= len(rows) {
			break
		}
		cells := rows[r].Cells
		for j, v := range values {
			c := anchor.Col + j
			if c >= len(cells) {
				break
			}
			if v != "" {
				cells[c].SetText(v)
			} else {
				cells[c].Content = m.Caps.Placeholder()
			}
		}
	}
	return exp
}
