package dom

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement 创建游离的元素节点
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// NewText 创建文本节点
func NewText(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// NewBreak 创建 br
func NewBreak() *html.Node {
	return NewElement("br")
}

// NewDefaultBlock 创建默认块 <div><br></div>
func NewDefaultBlock() *html.Node {
	div := NewElement("div")
	div.AppendChild(NewBreak())
	return div
}

// IsElement 节点是否为给定标签之一的元素
func IsElement(n *html.Node, tags ...string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if n.Data == t {
			return true
		}
	}
	return false
}

// IsText 是否为文本节点
func IsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// Attr 读取属性
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr 设置属性
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr 删除属性
func RemoveAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// HasClass class 属性中是否包含给定类名
func HasClass(n *html.Node, class string) bool {
	v, _ := Attr(n, "class")
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// AddClass 追加类名
func AddClass(n *html.Node, class string) {
	if HasClass(n, class) {
		return
	}
	v, _ := Attr(n, "class")
	SetAttr(n, "class", strings.TrimSpace(v+" "+class))
}

// Children 返回子节点切片，遍历期间可安全修改树
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// ElementChildren 返回元素子节点，可按标签过滤
func ElementChildren(n *html.Node, tags ...string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c, tags...) {
			out = append(out, c)
		}
	}
	return out
}

// ChildAt 返回第 i 个子节点
func ChildAt(n *html.Node, i int) *html.Node {
	if i < 0 {
		return nil
	}
	c := n.FirstChild
	for ; c != nil && i > 0; i-- {
		c = c.NextSibling
	}
	return c
}

// Index 返回节点在父节点中的下标
func Index(n *html.Node) int {
	i := 0
	for c := n.PrevSibling; c != nil; c = c.PrevSibling {
		i++
	}
	return i
}

// ChildCount 子节点数量
func ChildCount(n *html.Node) int {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		i++
	}
	return i
}

// Detach 从父节点上摘下
func Detach(n *html.Node) *html.Node {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
	return n
}

// InsertAfter 在 ref 之后插入 n
func InsertAfter(n, ref *html.Node) {
	ref.Parent.InsertBefore(Detach(n), ref.NextSibling)
}

// InsertBefore 在 ref 之前插入 n
func InsertBefore(n, ref *html.Node) {
	ref.Parent.InsertBefore(Detach(n), ref)
}

// Append 把节点依次追加为 parent 的子节点
func Append(parent *html.Node, nodes ...*html.Node) {
	for _, n := range nodes {
		parent.AppendChild(Detach(n))
	}
}

// Empty 移除全部子节点
func Empty(n *html.Node) {
	for c := n.FirstChild; c != nil; c = n.FirstChild {
		n.RemoveChild(c)
	}
}

// Unwrap 用子节点替换自身
func Unwrap(n *html.Node) {
	for _, c := range Children(n) {
		InsertBefore(c, n)
	}
	Detach(n)
}

// Closest 从 n 开始向上查找第一个匹配标签的元素，stop 为查找边界（不包含）
func Closest(n, stop *html.Node, tags ...string) *html.Node {
	for ; n != nil && n != stop; n = n.Parent {
		if IsElement(n, tags...) {
			return n
		}
	}
	return nil
}

// Contains a 是否为 b 的祖先或 b 本身
func Contains(a, b *html.Node) bool {
	for ; b != nil; b = b.Parent {
		if a == b {
			return true
		}
	}
	return false
}

// TextContent 返回节点的全部文本
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

// RuneLen 文本节点的字符数，元素节点返回子节点数量
func RuneLen(n *html.Node) int {
	if n.Type == html.TextNode {
		return utf8.RuneCountInString(n.Data)
	}
	return ChildCount(n)
}

// Normalize 合并相邻文本节点并移除空文本节点
func Normalize(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.TextNode && c.Data == "":
			n.RemoveChild(c)
		case c.Type == html.TextNode && next != nil && next.Type == html.TextNode:
			c.Data += next.Data
			n.RemoveChild(next)
			continue
		case c.Type == html.ElementNode:
			Normalize(c)
		}
		c = next
	}
}

// OuterHTML 渲染节点本身
func OuterHTML(n *html.Node) string {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return ""
	}
	return b.String()
}

// InnerHTML 渲染全部子节点
func InnerHTML(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return ""
		}
	}
	return b.String()
}

// PrevOffsetNode 返回边界点 (container, offset) 之前紧邻的节点，
// 位于容器起始处时向上查找最近的前一个兄弟节点。
func PrevOffsetNode(container *html.Node, offset int, stop *html.Node) *html.Node {
	if container.Type == html.ElementNode && offset > 0 {
		return ChildAt(container, offset-1)
	}
	if container.Type == html.TextNode && offset > 0 {
		return nil
	}
	for n := container; n != nil && n != stop; n = n.Parent {
		if n.PrevSibling != nil {
			return n.PrevSibling
		}
	}
	return nil
}
