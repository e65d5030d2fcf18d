package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepairer() *Repairer {
	return NewRepairer(DefaultCapabilities())
}

func TestInspect(t *testing.T) {
	t.Run("UniformTable", func(t *testing.T) {
		shape := InspectTable(New([]string{"a", "b"}, []string{"1", "2"}))
		assert.Equal(t, 2, shape.RowCount)
		assert.Equal(t, []int{2, 2}, shape.CellCounts)
		assert.True(t, shape.HasHead)
		assert.True(t, shape.HasBody)
		assert.Equal(t, 2, shape.MaxCellCount)
		assert.False(t, shape.NeedsStuffing)
	})

	t.Run("RaggedRows", func(t *testing.T) {
		f := &Fragment{Kind: FragmentBody, Bodies: []*Section{{
			Kind: SectionBody,
			Rows: []*Row{NewRow(DataCell, "a"), NewRow(DataCell, "b", "c", "d"), NewRow(DataCell, "e", "f")},
		}}}
		shape := Inspect(f)
		assert.False(t, shape.HasHead)
		assert.True(t, shape.HasBody)
		assert.Equal(t, []int{1, 3, 2}, shape.CellCounts)
		assert.Equal(t, 3, shape.MaxCellCount)
		assert.True(t, shape.NeedsStuffing)
	})

	t.Run("BareHeaderRow", func(t *testing.T) {
		shape := Inspect(RowFragment(NewRow(HeaderCell, "x", "y")))
		assert.True(t, shape.HasHead)
		assert.False(t, shape.HasBody)
		assert.Equal(t, 1, shape.RowCount)
		assert.Equal(t, 2, shape.MaxCellCount)
	})

	t.Run("ColSpanWidth", func(t *testing.T) {
		tbl := New([]string{"a", "b"}, []string{"1", "2"})
		tbl.Head.Rows[0].Cells[0].ColSpan = 3
		shape := InspectTable(tbl)
		assert.Equal(t, []int{4, 2}, shape.EffectiveWidths)
		assert.Equal(t, []int{2, 2}, shape.CellCounts)
	})
}

func TestCompleteBareRow(t *testing.T) {
	t.Run("DataRow", func(t *testing.T) {
		tbl, ok := newRepairer().Complete(RowFragment(NewRow(DataCell, "A", "B")))
		require.True(t, ok)
		require.True(t, IsValid(tbl))

		head := tbl.Head.Rows[0]
		require.Len(t, head.Cells, 2)
		for _, c := range head.Cells {
			assert.Equal(t, HeaderCell, c.Kind)
			assert.True(t, c.IsEmpty())
		}
		assert.Equal(t, [][]string{{"", ""}, {"A", "B"}}, tbl.Grid())
	})

	t.Run("HeaderRow", func(t *testing.T) {
		tbl, ok := newRepairer().Complete(RowFragment(NewRow(HeaderCell, "Name", "Age", "City")))
		require.True(t, ok)
		assert.Equal(t, []string{"Name", "Age", "City"}, tbl.Head.Rows[0].Texts())
		require.Len(t, tbl.Body.Rows, 1)
		assert.Len(t, tbl.Body.Rows[0].Cells, 3)
		assert.Equal(t, DataCell, tbl.Body.Rows[0].Cells[0].Kind)
	})

	t.Run("EmptyRowDiscarded", func(t *testing.T) {
		_, ok := newRepairer().Complete(RowFragment(&Row{}))
		assert.False(t, ok)
	})
}

func TestCompleteBareSections(t *testing.T) {
	t.Run("HeadOnly", func(t *testing.T) {
		f := &Fragment{Kind: FragmentHead, Heads: []*Section{{Kind: SectionHead, Rows: []*Row{NewRow(HeaderCell, "a", "b")}}}}
		tbl, ok := newRepairer().Complete(f)
		require.True(t, ok)
		assert.True(t, IsValid(tbl))
		assert.Equal(t, [][]string{{"a", "b"}, {"", ""}}, tbl.Grid())
	})

	t.Run("BodyOnlyRagged", func(t *testing.T) {
		f := &Fragment{Kind: FragmentBody, Bodies: []*Section{{
			Kind: SectionBody,
			Rows: []*Row{NewRow(DataCell, "a", "b"), NewRow(DataCell, "c")},
		}}}
		tbl, ok := newRepairer().Complete(f)
		require.True(t, ok)
		assert.True(t, IsValid(tbl))
		assert.Equal(t, []string{"c", ""}, tbl.Body.Rows[1].Texts())
		assert.Equal(t, DataCell, tbl.Body.Rows[1].Cells[1].Kind)
		assert.Equal(t, []Inline{Break()}, tbl.Body.Rows[1].Cells[1].Content)
	})

	t.Run("SectionsWithoutTable", func(t *testing.T) {
		f := &Fragment{
			Kind:   FragmentSections,
			Heads:  []*Section{{Kind: SectionHead, Rows: []*Row{NewRow(HeaderCell, "h")}}},
			Bodies: []*Section{{Kind: SectionBody, Rows: []*Row{NewRow(DataCell, "d")}}},
		}
		tbl, ok := newRepairer().Complete(f)
		require.True(t, ok)
		assert.Equal(t, [][]string{{"h"}, {"d"}}, tbl.Grid())
	})

	t.Run("EmptyShellDiscarded", func(t *testing.T) {
		_, ok := newRepairer().Complete(&Fragment{Kind: FragmentTable})
		assert.False(t, ok)
	})
}

func TestRepairTable(t *testing.T) {
	t.Run("MissingBody", func(t *testing.T) {
		tbl := &Table{Head: &Section{Kind: SectionHead, Rows: []*Row{NewRow(HeaderCell, "a", "b")}}}
		assert.True(t, newRepairer().Repair(tbl))
		assert.True(t, IsValid(tbl))
		require.Len(t, tbl.Body.Rows, 1)
		assert.Len(t, tbl.Body.Rows[0].Cells, 2)
	})

	t.Run("MissingHead", func(t *testing.T) {
		tbl := &Table{Body: &Section{Kind: SectionBody, Rows: []*Row{NewRow(DataCell, "a", "b", "c")}}}
		newRepairer().Repair(tbl)
		assert.True(t, IsValid(tbl))
		for _, c := range tbl.Head.Rows[0].Cells {
			assert.Equal(t, HeaderCell, c.Kind)
		}
		assert.Len(t, tbl.Head.Rows[0].Cells, 3)
	})

	t.Run("EmptySections", func(t *testing.T) {
		tbl := &Table{Head: &Section{Kind: SectionHead}, Body: &Section{Kind: SectionBody, Rows: []*Row{NewRow(DataCell, "x")}}}
		newRepairer().Repair(tbl)
		assert.True(t, IsValid(tbl))
		assert.Len(t, tbl.Head.Rows[0].Cells, 1)
	})

	t.Run("ExtraHeadRowsMoveToBody", func(t *testing.T) {
		tbl := &Table{
			Head: &Section{Kind: SectionHead, Rows: []*Row{NewRow(HeaderCell, "h1", "h2"), NewRow(HeaderCell, "x", "y")}},
			Body: &Section{Kind: SectionBody, Rows: []*Row{NewRow(DataCell, "1", "2")}},
		}
		newRepairer().Repair(tbl)
		assert.True(t, IsValid(tbl))
		assert.Equal(t, [][]string{{"h1", "h2"}, {"x", "y"}, {"1", "2"}}, tbl.Grid())
		assert.Equal(t, DataCell, tbl.Body.Rows[0].Cells[0].Kind)
	})

	t.Run("NeverTruncates", func(t *testing.T) {
		tbl := New([]string{"a"}, []string{"1", "2", "3"}, []string{"4", "5"})
		newRepairer().Repair(tbl)
		for _, r := range tbl.Rows() {
			assert.Len(t, r.Cells, 3)
		}
		assert.Equal(t, []string{"1", "2", "3"}, tbl.Body.Rows[0].Texts())
	})

	t.Run("NoPlaceholderCapability", func(t *testing.T) {
		tbl := New([]string{"a", "b"}, []string{"1"})
		NewRepairer(Capabilities{}).Repair(tbl)
		assert.Empty(t, tbl.Body.Rows[0].Cells[1].Content)
	})
}

func TestRepairProperties(t *testing.T) {
	inputs := map[string]*Fragment{
		"bare row":     RowFragment(NewRow(DataCell, "A", "B")),
		"ragged table": TableFragment(New([]string{"a"}, []string{"1", "2"}, []string{}, []string{"3", "4", "5"})),
		"head only":    {Kind: FragmentHead, Heads: []*Section{{Rows: []*Row{NewRow(HeaderCell, "a", "b", "c")}}}},
		"two heads": {
			Kind:   FragmentTable,
			Heads:  []*Section{{Rows: []*Row{NewRow(HeaderCell, "a")}}, {Rows: []*Row{NewRow(HeaderCell, "b", "c")}}},
			Bodies: []*Section{{Rows: []*Row{NewRow(DataCell, "1")}}},
		},
	}

	for name, f := range inputs {
		t.Run(name, func(t *testing.T) {
			max := Inspect(f).MaxCellCount
			r := newRepairer()

			tbl, ok := r.Complete(f)
			require.True(t, ok)

			// 列数一致且等于输入的最大单元格数
			for _, row := range tbl.Rows() {
				assert.Len(t, row.Cells, max)
			}

			// 恰好一个表头行，至少一个表体行
			assert.Len(t, tbl.Head.Rows, 1)
			assert.NotEmpty(t, tbl.Body.Rows)

			// 幂等
			before := tbl.Clone()
			assert.False(t, r.Repair(tbl))
			assert.Equal(t, before, tbl)
		})
	}
}
