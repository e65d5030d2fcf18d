package tableedit

import (
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/keyevent"
	"github.com/nerdneilsfield/go-wysiwyg-table/pkg/table"
)

// Anchor 最近一次获得焦点的单元格
type Anchor struct {
	TableID string
	Cell    table.CellRef
}

// NavState 按键处理之间传递的导航状态。
// 每个编辑器实例持有自己的 NavState，不存在进程级共享状态。
type NavState struct {
	Last *Anchor
}

// Tracking 是否正在跟踪某个单元格
func (s NavState) Tracking() bool {
	return s.Last != nil
}

// AncestorKind 选区公共祖先的类型
type AncestorKind int

const (
	AncestorElement AncestorKind = iota
	AncestorText
	AncestorBody
)

// Selection 选区快照，位置均相对于当前表格
type Selection struct {
	Start     table.Position
	End       table.Position
	Collapsed bool
	Ancestor  AncestorKind
	// InTable 选区位于表格内或与表格相交
	InTable bool
	// SelectedCells 由单元格多选功能显式给出的选中单元格
	SelectedCells []table.CellRef
}

// Caret 折叠选区
func Caret(pos table.Position) Selection {
	sel := Selection{Start: pos, End: pos, Collapsed: true, InTable: pos.Kind == table.InCell}
	switch pos.Kind {
	case table.InCell:
		sel.Ancestor = AncestorText
	case table.BeforeTable, table.AfterTable:
		sel.Ancestor = AncestorBody
	}
	return sel
}

// Event 一次按键事件及其上下文
type Event struct {
	Key     keyevent.Event
	TableID string
	// Table 选区所在或紧邻的表格；与表格无关时为 nil
	Table     *table.Table
	Selection Selection
	Around    table.Surroundings
}

// EffectKind 副作用类型
type EffectKind int

const (
	// SaveCheckpoint 记录撤销检查点
	SaveCheckpoint EffectKind = iota
	// InsertSelectionMarker 在表格前插入选区标记
	InsertSelectionMarker
	// RemoveTable 删除整个表格
	RemoveTable
	// RestoreSelectionMarker 把光标恢复到选区标记处并移除标记
	RestoreSelectionMarker
	// InsertDefaultBlock 在表格前或后插入默认块并把光标移入
	InsertDefaultBlock
	// SetSelection 设置新的光标位置
	SetSelection
	// ClearCells 把单元格内容替换为空行占位
	ClearCells
	// RemoveBreak 删除单元格中指定位置的 br
	RemoveBreak
	// RemoveBreaks 删除单元格中全部 br
	RemoveBreaks
	// AppendBreak 在单元格末尾追加 br
	AppendBreak
	// InsertPlaceholder 空单元格补上占位 br
	InsertPlaceholder
	// NormalizeText 合并单元格中相邻的文本片段
	NormalizeText
)

var effectNames = map[EffectKind]string{
	SaveCheckpoint:         "save-checkpoint",
	InsertSelectionMarker:  "insert-selection-marker",
	RemoveTable:            "remove-table",
	RestoreSelectionMarker: "restore-selection-marker",
	InsertDefaultBlock:     "insert-default-block",
	SetSelection:           "set-selection",
	ClearCells:             "clear-cells",
	RemoveBreak:            "remove-break",
	RemoveBreaks:           "remove-breaks",
	AppendBreak:            "append-break",
	InsertPlaceholder:      "insert-placeholder",
	NormalizeText:          "normalize-text",
}

// String 返回副作用名称
func (k EffectKind) String() string {
	return effectNames[k]
}

// Placement 默认块相对表格的位置
type Placement int

const (
	PlaceBefore Placement = iota
	PlaceAfter
)

// Effect 处理器产出的副作用描述
type Effect struct {
	Kind      EffectKind
	Cell      table.CellRef
	Cells     []table.CellRef
	Inline    int
	Pos       table.Position
	Placement Placement
}

// IsDocumentLevel 是否需要由宿主在文档层面执行
func (e Effect) IsDocumentLevel() bool {
	switch e.Kind {
	case SaveCheckpoint, InsertSelectionMarker, RemoveTable, RestoreSelectionMarker, InsertDefaultBlock:
		return true
	}
	return false
}

// Result 处理结果
type Result struct {
	State   NavState
	Effects []Effect
	// Suppress 阻止宿主的默认按键行为
	Suppress bool
	// Stop 不再执行后续处理器
	Stop bool
}

// Kinds 返回副作用类型序列，便于断言
func (r Result) Kinds() []EffectKind {
	kinds := make([]EffectKind, len(r.Effects))
	for i, e := range r.Effects {
		kinds[i] = e.Kind
	}
	return kinds
}

func (r *Result) add(e ...Effect) {
	r.Effects = append(r.Effects, e...)
}
