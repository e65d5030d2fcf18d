package tableedit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/keyevent"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

const tableID = "te-content-table-0"

func sampleTable() *table.Table {
	return table.New([]string{"Name", "Age"}, []string{"Ann", "30"}, []string{"Bob", "41"})
}

func keyEvent(key string, tbl *table.Table, sel Selection) Event {
	return Event{Key: keyevent.MustParse(key), TableID: tableID, Table: tbl, Selection: sel}
}

func inCell(row, col, inline, offset int) table.Position {
	return table.Position{Kind: table.InCell, Cell: table.CellRef{Row: row, Col: col}, Inline: inline, Offset: offset}
}

func tracking(row, col int) NavState {
	return NavState{Last: &Anchor{TableID: tableID, Cell: table.CellRef{Row: row, Col: col}}}
}

func TestBackspaceInCell(t *testing.T) {
	d := NewTableDispatcher(table.DefaultCapabilities())

	tests := []struct {
		name     string
		content  []table.Inline
		pos      table.Position
		suppress bool
		kinds    []EffectKind
	}{
		{
			name:     "start of cell",
			content:  []table.Inline{table.Text("Ann")},
			pos:      inCell(1, 0, 0, 0),
			suppress: true,
		},
		{
			name:    "inside text",
			content: []table.Inline{table.Text("Ann")},
			pos:     inCell(1, 0, 0, 2),
		},
		{
			name:     "after line break",
			content:  []table.Inline{table.Text("a"), table.Break(), table.Text("b")},
			pos:      inCell(1, 0, 2, 0),
			suppress: true,
			kinds:    []EffectKind{RemoveBreak, SetSelection},
		},
		{
			name:    "inside leading formatted text",
			content: []table.Inline{table.Raw("<b>bold</b>")},
			pos:     inCell(1, 0, 0, 2),
		},
		{
			name:     "start of leading formatted text",
			content:  []table.Inline{table.Raw("<b>bold</b>")},
			pos:      inCell(1, 0, 0, 0),
			suppress: true,
		},
		{
			name:    "lone placeholder break",
			content: []table.Inline{table.Break()},
			pos:     inCell(1, 0, 1, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := sampleTable()
			tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content = tt.content

			res := d.Dispatch(tracking(1, 0), keyEvent("BACK_SPACE", tbl, Caret(tt.pos)))
			assert.Equal(t, tt.suppress, res.Suppress)
			assert.True(t, res.Stop)
			if tt.kinds == nil {
				assert.Empty(t, res.Effects)
			} else {
				assert.Equal(t, tt.kinds, res.Kinds())
			}
		})
	}
}

func TestBackspaceRemovesBreakAndMovesCaret(t *testing.T) {
	tbl := sampleTable()
	tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content = []table.Inline{table.Text("a"), table.Break(), table.Text("b")}

	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(tracking(1, 0), keyEvent("BACK_SPACE", tbl, Caret(inCell(1, 0, 2, 0))))
	require.Len(t, res.Effects, 2)
	assert.Equal(t, 1, res.Effects[0].Inline)
	assert.Equal(t, inCell(1, 0, 1, 0), res.Effects[1].Pos)
}

func TestDeleteInCell(t *testing.T) {
	d := NewTableDispatcher(table.DefaultCapabilities())

	tests := []struct {
		name     string
		content  []table.Inline
		pos      table.Position
		suppress bool
	}{
		{"end of text", []table.Inline{table.Text("Ann")}, inCell(1, 0, 0, 3), true},
		{"before trailing break", []table.Inline{table.Text("Ann"), table.Break()}, inCell(1, 0, 0, 3), true},
		{"placeholder only", []table.Inline{table.Break()}, inCell(1, 0, 0, 0), true},
		{"middle of text", []table.Inline{table.Text("Ann")}, inCell(1, 0, 0, 1), false},
		{"before inner break", []table.Inline{table.Text("a"), table.Break(), table.Text("b")}, inCell(1, 0, 0, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := sampleTable()
			tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content = tt.content

			res := d.Dispatch(tracking(1, 0), keyEvent("DELETE", tbl, Caret(tt.pos)))
			assert.Equal(t, tt.suppress, res.Suppress)
			if tt.suppress {
				assert.Equal(t, []EffectKind{NormalizeText}, res.Kinds())
			}
		})
	}
}

func TestEmptyCellGetsPlaceholder(t *testing.T) {
	tbl := sampleTable()
	tbl.Cell(table.CellRef{Row: 1, Col: 1}).Content = nil

	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(tracking(1, 1), keyEvent("BACK_SPACE", tbl, Caret(inCell(1, 1, 0, 0))))
	assert.True(t, res.Suppress)
	assert.Equal(t, []EffectKind{InsertPlaceholder}, res.Kinds())

	res = NewTableDispatcher(table.Capabilities{}).
		Dispatch(tracking(1, 1), keyEvent("BACK_SPACE", tbl, Caret(inCell(1, 1, 0, 0))))
	assert.Empty(t, res.Effects)
}

func TestRemoveTableAroundCaret(t *testing.T) {
	d := NewTableDispatcher(table.DefaultCapabilities())
	removal := []EffectKind{SaveCheckpoint, InsertSelectionMarker, RemoveTable, RestoreSelectionMarker}

	tests := []struct {
		name    string
		key     string
		kind    table.PositionKind
		removed bool
	}{
		{"backspace before table", "BACK_SPACE", table.BeforeTable, true},
		{"delete after table", "DELETE", table.AfterTable, true},
		{"backspace after table", "BACK_SPACE", table.AfterTable, false},
		{"delete before table", "DELETE", table.BeforeTable, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Dispatch(NavState{}, keyEvent(tt.key, sampleTable(), Caret(table.Position{Kind: tt.kind})))
			assert.Equal(t, tt.removed, res.Suppress)
			if tt.removed {
				assert.Equal(t, removal, res.Kinds())
			} else {
				assert.Empty(t, res.Effects)
			}
		})
	}
}

func TestDeleteSelectionAcrossCells(t *testing.T) {
	sel := Selection{
		Start:    inCell(1, 0, 0, 1),
		End:      inCell(2, 1, 0, 1),
		Ancestor: AncestorElement,
		InTable:  true,
	}

	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(NavState{}, keyEvent("BACK_SPACE", sampleTable(), sel))
	assert.True(t, res.Suppress)
	assert.Equal(t, []EffectKind{SaveCheckpoint, ClearCells, SetSelection}, res.Kinds())
	assert.Equal(t, []table.CellRef{{Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 2, Col: 0}, {Row: 2, Col: 1}}, res.Effects[1].Cells)
	assert.Equal(t, table.CellStart(table.CellRef{Row: 1, Col: 0}), res.Effects[2].Pos)
	require.NotNil(t, res.State.Last)
	assert.Equal(t, table.CellRef{Row: 1, Col: 0}, res.State.Last.Cell)
}

func TestDeleteSelectionWithinOneCell(t *testing.T) {
	tbl := sampleTable()
	tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content = []table.Inline{table.Raw("<b>bold</b>"), table.Text(" text")}
	sel := Selection{Start: inCell(1, 0, 0, 1), End: inCell(1, 0, 1, 2), Ancestor: AncestorElement, InTable: true}

	for _, key := range []string{"BACK_SPACE", "DELETE"} {
		t.Run(key, func(t *testing.T) {
			res := NewTableDispatcher(table.DefaultCapabilities()).
				Dispatch(NavState{}, keyEvent(key, tbl, sel))
			assert.True(t, res.Suppress)
			assert.True(t, res.Stop)
			assert.NotContains(t, res.Kinds(), ClearCells)
			assert.Empty(t, res.Effects)
		})
	}
}

func TestDeleteSelectionInsideText(t *testing.T) {
	sel := Selection{Start: inCell(1, 0, 0, 0), End: inCell(1, 0, 0, 2), Ancestor: AncestorText, InTable: true}

	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(NavState{}, keyEvent("DELETE", sampleTable(), sel))
	assert.False(t, res.Suppress)
	assert.Empty(t, res.Effects)
}

func TestSelectionFromBeforeTable(t *testing.T) {
	sel := Selection{Start: table.Position{Kind: table.BeforeTable}, End: inCell(1, 1, 0, 0), Ancestor: AncestorElement, InTable: true}

	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(NavState{}, keyEvent("DELETE", sampleTable(), sel))
	assert.True(t, res.Suppress)
	require.Len(t, res.Effects, 3)
	assert.Len(t, res.Effects[1].Cells, 4)
}

func TestEnter(t *testing.T) {
	d := NewTableDispatcher(table.DefaultCapabilities())

	res := d.Dispatch(NavState{}, keyEvent("ENTER", sampleTable(), Caret(table.Position{Kind: table.AfterTable})))
	assert.True(t, res.Suppress)
	require.Len(t, res.Effects, 1)
	assert.Equal(t, InsertDefaultBlock, res.Effects[0].Kind)
	assert.Equal(t, PlaceAfter, res.Effects[0].Placement)

	res = d.Dispatch(NavState{}, keyEvent("ENTER", sampleTable(), Caret(table.Position{Kind: table.BeforeTable})))
	assert.True(t, res.Suppress)
	assert.Equal(t, PlaceBefore, res.Effects[0].Placement)

	res = d.Dispatch(tracking(1, 0), keyEvent("ENTER", sampleTable(), Caret(inCell(1, 0, 0, 3))))
	assert.False(t, res.Suppress)
	assert.Equal(t, []EffectKind{AppendBreak}, res.Kinds())

	tbl := sampleTable()
	tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content = []table.Inline{table.Text("Ann"), table.Break()}
	res = d.Dispatch(tracking(1, 0), keyEvent("ENTER", tbl, Caret(inCell(1, 0, 0, 3))))
	assert.Empty(t, res.Effects)

	res = NewTableDispatcher(table.Capabilities{}).
		Dispatch(tracking(1, 0), keyEvent("ENTER", sampleTable(), Caret(inCell(1, 0, 0, 3))))
	assert.Empty(t, res.Effects)
}

func TestEnterAfterBlockContent(t *testing.T) {
	d := NewTableDispatcher(table.DefaultCapabilities())

	tests := []struct {
		name    string
		content []table.Inline
		want    []EffectKind
	}{
		{"trailing div", []table.Inline{table.Text("a"), table.Raw("<div>b</div>")}, []EffectKind{}},
		{"trailing paragraph", []table.Inline{table.Raw("<P>b</P>")}, []EffectKind{}},
		{"trailing inline element", []table.Inline{table.Raw("<b>b</b>")}, []EffectKind{AppendBreak}},
		{"trailing custom element", []table.Inline{table.Raw("<pre-x>b</pre-x>")}, []EffectKind{AppendBreak}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := sampleTable()
			tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content = tt.content

			res := d.Dispatch(tracking(1, 0), keyEvent("ENTER", tbl, Caret(inCell(1, 0, 0, 0))))
			assert.True(t, res.Stop)
			assert.Equal(t, tt.want, res.Kinds())
		})
	}
}

func TestTabNavigation(t *testing.T) {
	d := NewTableDispatcher(table.DefaultCapabilities())

	tests := []struct {
		name string
		key  string
		from table.Position
		want table.Position
	}{
		{"next in row", "TAB", inCell(0, 0, 0, 2), table.CellStart(table.CellRef{Row: 0, Col: 1})},
		{"wrap to next row", "TAB", inCell(0, 1, 0, 0), table.CellStart(table.CellRef{Row: 1, Col: 0})},
		{"last cell exits", "TAB", inCell(2, 1, 0, 0), table.Position{Kind: table.AfterTable}},
		{"previous row end", "SHIFT+TAB", inCell(1, 0, 0, 0), table.CellStart(table.CellRef{Row: 0, Col: 1})},
		{"first cell exits", "SHIFT+TAB", inCell(0, 0, 0, 0), table.Position{Kind: table.BeforeTable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := d.Dispatch(tracking(tt.from.Cell.Row, tt.from.Cell.Col), keyEvent(tt.key, sampleTable(), Caret(tt.from)))
			assert.True(t, res.Suppress)
			require.Equal(t, []EffectKind{SetSelection}, res.Kinds())
			assert.Equal(t, tt.want, res.Effects[0].Pos)
		})
	}
}

func TestTabOutsideTableIsIgnored(t *testing.T) {
	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(NavState{}, keyEvent("TAB", nil, Caret(table.Position{Kind: table.Elsewhere})))
	assert.False(t, res.Suppress)
	assert.Empty(t, res.Effects)
}

func TestTrackCheckpoints(t *testing.T) {
	d := NewTableDispatcher(table.DefaultCapabilities())
	tbl := sampleTable()

	res := d.Dispatch(NavState{}, keyEvent("a", tbl, Caret(inCell(1, 0, 0, 1))))
	assert.Equal(t, []EffectKind{SaveCheckpoint}, res.Kinds())
	require.NotNil(t, res.State.Last)

	res = d.Dispatch(res.State, keyEvent("b", tbl, Caret(inCell(1, 0, 0, 2))))
	assert.Empty(t, res.Effects)

	res = d.Dispatch(res.State, keyEvent("c", tbl, Caret(inCell(1, 1, 0, 0))))
	assert.Equal(t, []EffectKind{SaveCheckpoint}, res.Kinds())
	assert.Equal(t, table.CellRef{Row: 1, Col: 1}, res.State.Last.Cell)

	res = d.Dispatch(res.State, keyEvent("d", nil, Caret(table.Position{Kind: table.Elsewhere})))
	assert.Equal(t, []EffectKind{SaveCheckpoint}, res.Kinds())
	assert.False(t, res.State.Tracking())

	res = d.Dispatch(res.State, keyEvent("e", nil, Caret(table.Position{Kind: table.Elsewhere})))
	assert.Empty(t, res.Effects)
}

func TestTrackIgnoresLoneModifier(t *testing.T) {
	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(NavState{}, keyEvent("SHIFT", sampleTable(), Caret(inCell(1, 0, 0, 0))))
	assert.Empty(t, res.Effects)
	assert.False(t, res.State.Tracking())
}

func TestTypingRemovesPlaceholderBreak(t *testing.T) {
	tbl := sampleTable()
	tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content = []table.Inline{table.Text("x"), table.Break()}

	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(tracking(1, 0), keyEvent("y", tbl, Caret(inCell(1, 0, 0, 1))))
	assert.Equal(t, []EffectKind{RemoveBreaks}, res.Kinds())
}

func TestTypingOverSelectedCells(t *testing.T) {
	cells := []table.CellRef{{Row: 1, Col: 1}, {Row: 2, Col: 1}}
	sel := Caret(inCell(1, 1, 0, 0))
	sel.SelectedCells = cells

	res := NewTableDispatcher(table.DefaultCapabilities()).
		Dispatch(tracking(1, 1), keyEvent("z", sampleTable(), sel))
	assert.Equal(t, []EffectKind{SaveCheckpoint, ClearCells, SetSelection}, res.Kinds())
	assert.Equal(t, cells, res.Effects[1].Cells)
}

func TestApply(t *testing.T) {
	tbl := sampleTable()
	tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content = []table.Inline{table.Text("a"), table.Break(), table.Text("b")}
	tbl.Cell(table.CellRef{Row: 2, Col: 0}).Content = []table.Inline{table.Text("B"), table.Text(""), table.Text("ob")}

	rest := Apply(tbl, table.DefaultCapabilities(), []Effect{
		{Kind: SaveCheckpoint},
		{Kind: RemoveBreak, Cell: table.CellRef{Row: 1, Col: 0}, Inline: 1},
		{Kind: ClearCells, Cells: []table.CellRef{{Row: 1, Col: 1}}},
		{Kind: NormalizeText, Cell: table.CellRef{Row: 2, Col: 0}},
		{Kind: AppendBreak, Cell: table.CellRef{Row: 2, Col: 1}},
		{Kind: SetSelection, Pos: table.CellStart(table.CellRef{Row: 1, Col: 1})},
	})

	assert.Equal(t, []EffectKind{SaveCheckpoint, SetSelection}, Result{Effects: rest}.Kinds())
	assert.Equal(t, []table.Inline{table.Text("a"), table.Text("b")}, tbl.Cell(table.CellRef{Row: 1, Col: 0}).Content)
	assert.Equal(t, []table.Inline{table.Break()}, tbl.Cell(table.CellRef{Row: 1, Col: 1}).Content)
	assert.Equal(t, []table.Inline{table.Text("Bob")}, tbl.Cell(table.CellRef{Row: 2, Col: 0}).Content)
	assert.Equal(t, []table.Inline{table.Text("41"), table.Break()}, tbl.Cell(table.CellRef{Row: 2, Col: 1}).Content)
}

func TestDispatcherStopsAfterCatchAll(t *testing.T) {
	d := NewDispatcher()
	var calls []string
	d.HandleAll(func(s NavState, ev Event) Result {
		calls = append(calls, "all")
		return Result{State: s, Stop: true, Suppress: true}
	})
	d.Handle(keyevent.Tab, func(s NavState, ev Event) Result {
		calls = append(calls, "tab")
		return Result{State: s}
	})

	res := d.Dispatch(NavState{}, Event{Key: keyevent.MustParse("TAB")})
	assert.Equal(t, []string{"all"}, calls)
	assert.True(t, res.Suppress)
	assert.True(t, res.Stop)
}
