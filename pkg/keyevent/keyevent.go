package keyevent

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrUnknownKey 无法识别的按键名
var ErrUnknownKey = errors.New("unknown key")

// Combo 表格处理关心的按键组合，封闭枚举
type Combo int

const (
	// Other 其他按键（普通字符、方向键、带修饰键的组合等）
	Other Combo = iota
	Backspace
	Delete
	Enter
	Tab
	ShiftTab
	Shift
	Control
	Alt
	Meta
)

var comboNames = map[Combo]string{
	Other:     "OTHER",
	Backspace: "BACK_SPACE",
	Delete:    "DELETE",
	Enter:     "ENTER",
	Tab:       "TAB",
	ShiftTab:  "SHIFT+TAB",
	Shift:     "SHIFT",
	Control:   "CONTROL",
	Alt:       "ALT",
	Meta:      "META",
}

// String 返回按键组合的名称，与编辑器 keymap 名称一致
func (c Combo) String() string {
	if n, ok := comboNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Combo(%d)", int(c))
}

// Modifiers 按下的修饰键
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
	Meta  bool
}

// Any 是否按下了任意修饰键
func (m Modifiers) Any() bool {
	return m.Shift || m.Ctrl || m.Alt || m.Meta
}

// Event 一次按键
type Event struct {
	Combo Combo
	// Name 原始 keymap 名称，如 "A"、"CTRL+Z"、"BACK_SPACE"
	Name string
	Mods Modifiers
}

// IsTextInput 单个字符的 keymap 视为文本输入
func (e Event) IsTextInput() bool {
	return len([]rune(e.Name)) == 1
}

// IsDeletion Backspace 或 Delete
func (e Event) IsDeletion() bool {
	return e.Combo == Backspace || e.Combo == Delete
}

// IsLoneModifier 只按下了一个修饰键本身
func (e Event) IsLoneModifier() bool {
	switch e.Combo {
	case Shift, Control, Alt, Meta:
		return true
	}
	return false
}

// namedKeys 除单字符外可识别的按键名
var namedKeys = []string{
	"BACK_SPACE", "DELETE", "ENTER", "TAB", "ESC", "SPACE",
	"LEFT", "RIGHT", "UP", "DOWN", "HOME", "END", "PAGE_UP", "PAGE_DOWN",
	"SHIFT", "CONTROL", "ALT", "META",
}

var modifierAliases = map[string]string{
	"SHIFT":   "SHIFT",
	"CTRL":    "CTRL",
	"CONTROL": "CTRL",
	"ALT":     "ALT",
	"OPTION":  "ALT",
	"META":    "META",
	"CMD":     "META",
}

// Parse 解析 keymap 名称，如 "TAB"、"SHIFT+TAB"、"a"、"CTRL+Z"
func Parse(name string) (Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Event{}, fmt.Errorf("%w: empty key name", ErrUnknownKey)
	}

	parts := strings.Split(name, "+")
	key := parts[len(parts)-1]
	if key == "" && len(parts) > 1 {
		// "SHIFT++" 表示加号键
		key = "+"
		parts = parts[:len(parts)-2]
	} else {
		parts = parts[:len(parts)-1]
	}

	var mods Modifiers
	for _, p := range parts {
		switch modifierAliases[strings.ToUpper(p)] {
		case "SHIFT":
			mods.Shift = true
		case "CTRL":
			mods.Ctrl = true
		case "ALT":
			mods.Alt = true
		case "META":
			mods.Meta = true
		default:
			return Event{}, unknown(p)
		}
	}

	if len([]rune(key)) != 1 {
		key = strings.ToUpper(key)
		if alias, ok := modifierAliases[key]; ok && alias == "CTRL" {
			key = "CONTROL"
		}
		if !isNamedKey(key) {
			return Event{}, unknown(key)
		}
	}

	ev := Event{Name: canonicalName(mods, key), Mods: mods}
	ev.Combo = comboFor(mods, key)
	return ev, nil
}

// MustParse 解析失败时 panic，用于固定的按键表
func MustParse(name string) Event {
	ev, err := Parse(name)
	if err != nil {
		panic(err)
	}
	return ev
}

func comboFor(mods Modifiers, key string) Combo {
	shiftOnly := mods == (Modifiers{Shift: true})
	switch {
	case key == "TAB" && shiftOnly:
		return ShiftTab
	case mods.Any():
		return Other
	}

	switch key {
	case "BACK_SPACE":
		return Backspace
	case "DELETE":
		return Delete
	case "ENTER":
		return Enter
	case "TAB":
		return Tab
	case "SHIFT":
		return Shift
	case "CONTROL":
		return Control
	case "ALT":
		return Alt
	case "META":
		return Meta
	}
	return Other
}

func canonicalName(mods Modifiers, key string) string {
	var parts []string
	if mods.Meta {
		parts = append(parts, "META")
	}
	if mods.Ctrl {
		parts = append(parts, "CTRL")
	}
	if mods.Alt {
		parts = append(parts, "ALT")
	}
	if mods.Shift {
		parts = append(parts, "SHIFT")
	}
	return strings.Join(append(parts, key), "+")
}

// NamedKeys 返回可识别的多字符按键名
func NamedKeys() []string {
	return append([]string(nil), namedKeys...)
}

func isNamedKey(key string) bool {
	for _, k := range namedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// unknown 生成带拼写建议的错误
func unknown(name string) error {
	candidates := append([]string{"CTRL", "CMD", "OPTION"}, namedKeys...)
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	sort.Sort(ranks)
	return fmt.Errorf("%w: %q (did you mean %s?)", ErrUnknownKey, name, ranks[0].Target)
}
