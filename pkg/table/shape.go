package table

// Shape 表格形态信息，结构修复所需的不一致数据
type Shape struct {
	RowCount        int
	CellCounts      []int
	EffectiveWidths []int
	HasHead         bool
	HasBody         bool
	MaxCellCount    int
	// NeedsStuffing 各行单元格数不一致时为 true
	NeedsStuffing bool
}

// Inspect 计算片段的形态，不修改片段
func Inspect(f *Fragment) Shape {
	s := Shape{}
	if f == nil {
		return s
	}

	switch f.Kind {
	case FragmentRow:
		if f.Row != nil {
			s.HasHead = len(f.Row.Cells) > 0 && f.Row.Cells[0].Kind == HeaderCell
			s.HasBody = !s.HasHead
		}
	default:
		s.HasHead = len(f.Heads) > 0
		s.HasBody = len(f.Bodies) > 0
	}

	rows := f.Rows()
	s.RowCount = len(rows)
	s.CellCounts = make([]int, len(rows))
	s.EffectiveWidths = make([]int, len(rows))
	for i, r := range rows {
		n := len(r.Cells)
		s.CellCounts[i] = n
		s.EffectiveWidths[i] = r.Width()
		if i == 0 {
			s.MaxCellCount = n
			continue
		}
		if n != s.MaxCellCount {
			s.NeedsStuffing = true
		}
		if n > s.MaxCellCount {
			s.MaxCellCount = n
		}
	}
	return s
}

// InspectTable 计算完整表格的形态
func InspectTable(t *Table) Shape {
	return Inspect(TableFragment(t))
}
