package wysiwyg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/nerdneilsfield/go-wysiwyg-table/internal/dom"
)

func TestEventBusOrderAndRewrite(t *testing.T) {
	bus := NewEventBus()
	var calls []string
	bus.On(ProcessHTMLText, func(ev *Event) {
		calls = append(calls, "first")
		ev.HTML += "-a"
	})
	bus.On(ProcessHTMLText, func(ev *Event) {
		calls = append(calls, "second")
		ev.HTML += "-b"
	})
	bus.On(DocumentValueReplaced, func(*Event) { calls = append(calls, "other") })

	ev := bus.Emit(&Event{Kind: ProcessHTMLText, HTML: "x"})
	assert.Equal(t, "x-a-b", ev.HTML)
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, "process-html-text", ProcessHTMLText.String())
}

func TestManualScheduler(t *testing.T) {
	s := NewManualScheduler()
	var ran []string
	s.After(10*time.Millisecond, func() { ran = append(ran, "late") })
	s.After(5*time.Millisecond, func() { ran = append(ran, "early") })
	s.After(5*time.Millisecond, func() { ran = append(ran, "early2") })

	assert.Equal(t, 3, s.Pending())
	assert.Equal(t, 0, s.Advance(4*time.Millisecond))
	assert.Equal(t, 2, s.Advance(1*time.Millisecond))
	assert.Equal(t, []string{"early", "early2"}, ran)

	s.After(0, func() { ran = append(ran, "now") })
	assert.Equal(t, 2, s.Flush())
	assert.Equal(t, []string{"early", "early2", "late", "now"}, ran)
	assert.Equal(t, 0, s.Pending())
}

func TestManualSchedulerFlushRunsNestedTasks(t *testing.T) {
	s := NewManualScheduler()
	count := 0
	s.After(time.Millisecond, func() {
		count++
		s.After(time.Millisecond, func() { count++ })
	})
	assert.Equal(t, 2, s.Flush())
	assert.Equal(t, 2, count)
}

func TestLoopScheduler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewLoopScheduler(ctx)

	done := make(chan struct{})
	s.After(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task did not run")
	}

	cancel()
	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestHistoryUndo(t *testing.T) {
	doc, err := dom.ParseBody("<p>ab</p>")
	require.NoError(t, err)
	text := doc.Body().FirstChild.FirstChild

	h := NewHistory(0)
	hint := dom.Caret(text, 1)
	h.Save(doc, &hint)
	text.Data = "abc"
	h.Save(doc, nil)
	assert.Equal(t, 2, h.Len())

	_, ok := h.Undo(doc)
	require.True(t, ok)
	assert.Equal(t, "<p>abc</p>", doc.HTML())

	r, ok := h.Undo(doc)
	require.True(t, ok)
	assert.Equal(t, "<p>ab</p>", doc.HTML())
	require.True(t, dom.IsText(r.StartContainer))
	assert.Equal(t, "ab", r.StartContainer.Data)
	assert.Equal(t, 1, r.StartOffset)

	_, ok = h.Undo(doc)
	assert.False(t, ok)
}

func TestHistorySkipsIdenticalSnapshots(t *testing.T) {
	doc, err := dom.ParseBody("<p>a</p>")
	require.NoError(t, err)
	h := NewHistory(2)
	h.Save(doc, nil)
	h.Save(doc, nil)
	assert.Equal(t, 1, h.Len())

	doc.Body().FirstChild.FirstChild.Data = "b"
	h.Save(doc, nil)
	doc.Body().FirstChild.FirstChild.Data = "c"
	h.Save(doc, nil)
	assert.Equal(t, 2, h.Len())
}

func TestEditorDefaultActions(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		offset int
		want   string
	}{
		{name: "type", keys: []string{"x", "y"}, offset: 1, want: "<p>axyb</p>"},
		{name: "space", keys: []string{"SPACE"}, offset: 2, want: "<p>ab </p>"},
		{name: "backspace", keys: []string{"BACK_SPACE"}, offset: 1, want: "<p>b</p>"},
		{name: "delete", keys: []string{"DELETE"}, offset: 1, want: "<p>a</p>"},
		{name: "enter", keys: []string{"ENTER"}, offset: 1, want: "<p>a<br/>b</p>"},
		{name: "ctrl combo ignored", keys: []string{"CTRL+Z"}, offset: 1, want: "<p>ab</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed, _, _ := newTestEditor(t, "<p>ab</p>")
			text := ed.Document().Body().FirstChild.FirstChild
			ed.SetRange(dom.Caret(text, tt.offset))
			for _, k := range tt.keys {
				press(t, ed, k)
			}
			assert.Equal(t, tt.want, ed.HTML())
		})
	}
}

func TestEditorSetHTMLAndUndo(t *testing.T) {
	ed, _, _ := newTestEditor(t, "<p>a</p>")
	require.NoError(t, ed.SetHTML("<table><thead><tr><th>a</th></tr></thead><tbody><tr><td>b</td></tr></tbody></table><table><thead><tr><th>c</th></tr></thead><tbody><tr><td>d</td></tr></tbody></table>"))
	assert.Contains(t, ed.RawHTML(), "</table><div><br/></div><table>")

	ed.SaveCheckpoint()
	require.NoError(t, ed.SetHTML("<p>z</p>"))
	assert.Equal(t, 1, ed.Checkpoints())
	require.True(t, ed.Undo())
	assert.Contains(t, ed.RawHTML(), "<td>b</td>")
	assert.False(t, ed.Undo())
}

func TestEditorPasteWithoutPlugins(t *testing.T) {
	doc, err := dom.ParseBody("<p>ab</p>")
	require.NoError(t, err)
	ed := NewEditor(doc, nil)
	ed.SetRange(dom.Caret(doc.Body().FirstChild.FirstChild, 1))
	ed.Paste("<b>x</b>")
	assert.Equal(t, "<p>a<b>x</b>b</p>", ed.HTML())
	assert.Equal(t, 1, ed.Checkpoints())
}

func TestEditorClampsDetachedRange(t *testing.T) {
	doc, err := dom.ParseBody("<p>ab</p><p>c</p>")
	require.NoError(t, err)
	ed := NewEditor(doc, nil)
	first := doc.Body().FirstChild
	ed.SetRange(dom.Caret(first.FirstChild, 2))
	ed.Do(func() {
		dom.Detach(first)
		ed.clampRange()
	})
	r := ed.Range()
	assert.Equal(t, doc.Body(), r.StartContainer)
	assert.Equal(t, 1, r.StartOffset)
}

func TestSelectCells(t *testing.T) {
	ed, _, _ := newTestEditor(t, gridTable)
	a, d := cellNode(t, ed, 0, 0), cellNode(t, ed, 1, 1)
	ed.SelectCells(a, d)
	r := ed.Range()
	assert.Equal(t, a, r.StartContainer)
	assert.Equal(t, d, r.EndContainer)
	assert.False(t, r.Collapsed())

	ed.SetRange(dom.Caret(a, 0))
	var selected []*html.Node
	ed.Do(func() { selected = ed.selected })
	assert.Empty(t, selected)
}
