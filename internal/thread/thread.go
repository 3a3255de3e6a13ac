// Package thread 把一篇文章的评论行组装成有序森林
//
// 评论以 ID 为索引放入 arena，按 ParentID 挂接子节点，不依赖双向对象导航。
// 同层节点按 (CreatedAt, ID) 升序排列，深度不限。
package thread

import (
	"iter"
	"sort"

	"news-cms/internal/model"
)

// Node 森林中的一个评论节点
type Node struct {
	Comment *model.Comment
	Replies []*Node
}

// Options 组装选项
type Options struct {
	// Privileged 为 true 时保留已删除/已隐藏的评论，供审核使用
	Privileged bool
}

// Forest 顶层评论及其回复子树
type Forest struct {
	roots []*Node
	size  int
}

// Build 组装评论森林
//
// 非特权模式下只保留 IsApproved 的评论；被过滤掉的评论其可见回复挂到
// 最近的可见祖先下，没有可见祖先时提升为顶层节点。
// 父评论不在本批数据中（引用悬空）的评论同样视为顶层节点。
func Build(comments []model.Comment, opts Options) *Forest {
	sorted := make([]*model.Comment, len(comments))
	for i := range comments {
		sorted[i] = &comments[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})

	byID := make(map[uint]*model.Comment, len(sorted))
	for _, c := range sorted {
		byID[c.ID] = c
	}

	include := func(c *model.Comment) bool {
		return opts.Privileged || c.IsApproved()
	}

	nodes := make(map[uint]*Node, len(sorted))
	for _, c := range sorted {
		if include(c) {
			nodes[c.ID] = &Node{Comment: c}
		}
	}

	f := &Forest{}
	for _, c := range sorted {
		node, ok := nodes[c.ID]
		if !ok {
			continue
		}
		f.size++
		if onCycle(c, byID) {
			f.roots = append(f.roots, node)
			continue
		}
		if parent := nearestIncludedAncestor(c, byID, nodes); parent != nil {
			parent.Replies = append(parent.Replies, node)
			continue
		}
		f.roots = append(f.roots, node)
	}
	return f
}

// nearestIncludedAncestor 沿父链向上查找第一个被保留的祖先
// 步数上限为评论总数，防止脏数据形成环
func nearestIncludedAncestor(c *model.Comment, byID map[uint]*model.Comment, nodes map[uint]*Node) *Node {
	pid := c.ParentID
	for steps := 0; pid != nil && steps < len(byID); steps++ {
		parent, ok := byID[*pid]
		if !ok {
			return nil
		}
		if n, ok := nodes[parent.ID]; ok {
			return n
		}
		pid = parent.ParentID
	}
	return nil
}

// onCycle 父链是否回到自身
func onCycle(c *model.Comment, byID map[uint]*model.Comment) bool {
	pid := c.ParentID
	for steps := 0; pid != nil && steps < len(byID); steps++ {
		if *pid == c.ID {
			return true
		}
		parent, ok := byID[*pid]
		if !ok {
			return false
		}
		pid = parent.ParentID
	}
	return false
}

func less(a, b *model.Comment) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// All 依次产出顶层节点；可多次遍历，每次从头开始
func (f *Forest) All() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, n := range f.roots {
			if !yield(n) {
				return
			}
		}
	}
}

// Walk 深度优先遍历全部节点，同时给出深度（顶层为0）
func (f *Forest) Walk() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		var visit func(n *Node, depth int) bool
		visit = func(n *Node, depth int) bool {
			if !yield(depth, n) {
				return false
			}
			for _, r := range n.Replies {
				if !visit(r, depth+1) {
					return false
				}
			}
			return true
		}
		for _, n := range f.roots {
			if !visit(n, 0) {
				return
			}
		}
	}
}

// Roots 顶层节点切片
func (f *Forest) Roots() []*Node { return f.roots }

// Len 森林中的节点总数
func (f *Forest) Len() int { return f.size }
