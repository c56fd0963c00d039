package Kernel

import "sort"

// Comparison 属性选择谓词
type Comparison string

const (
	CmpEq Comparison = "eq"
	CmpNe Comparison = "ne"
	CmpGt Comparison = "gt"
	CmpGe Comparison = "ge"
	CmpLt Comparison = "lt"
	CmpLe Comparison = "le"
)

// Membership 由点集推导单元集时的隶属模式：
// inclusive 单元任一节点在点集内即入选；exclusive 要求全部节点在点集内
type Membership string

const (
	MemberInclusive Membership = "inclusive"
	MemberExclusive Membership = "exclusive"
)

// PSet 节点选择集
type PSet struct {
	mo      *MO
	name    string
	indices []int // 0基内部索引
}

// EltSet 单元选择集
type EltSet struct {
	mo      *MO
	name    string
	indices []int
}

func compare(v, ref float64, cmp Comparison) bool {
	switch cmp {
	case CmpEq:
		return v == ref
	case CmpNe:
		return v != ref
	case CmpGt:
		return v > ref
	case CmpGe:
		return v >= ref
	case CmpLt:
		return v < ref
	case CmpLe:
		return v <= ref
	}
	return false
}

// PSetAttribute 按节点属性谓词构造点集
func (mo *MO) PSetAttribute(att string, value float64, cmp Comparison) (*PSet, error) {
	if err := mo.ensureAtt(att, false); err != nil {
		return nil, kernelErrf("pset", "attribute %s not found on %s", att, mo.name)
	}
	ps := &PSet{mo: mo, name: mo.s.nextName("p")}
	for i := range mo.mesh.Nodes {
		if compare(mo.nodeAttGet(att, i), value, cmp) {
			ps.indices = append(ps.indices, i)
		}
	}
	return ps, nil
}

// EltSetAttribute 按单元属性谓词构造单元集
func (mo *MO) EltSetAttribute(att string, value float64, cmp Comparison) (*EltSet, error) {
	if err := mo.ensureAtt(att, true); err != nil {
		return nil, kernelErrf("eltset", "attribute %s not found on %s", att, mo.name)
	}
	es := &EltSet{mo: mo, name: mo.s.nextName("e")}
	for i := range mo.mesh.Elems {
		if compare(mo.cellAttGet(att, i), value, cmp) {
			es.indices = append(es.indices, i)
		}
	}
	return es, nil
}

// EltSet 由点集推导单元集
func (ps *PSet) EltSet(membership Membership) *EltSet {
	mo := ps.mo
	in := make(map[int]bool, len(ps.indices))
	for _, i := range ps.indices {
		in[i] = true
	}
	es := &EltSet{mo: mo, name: mo.s.nextName("e")}
	for i, e := range mo.mesh.Elems {
		hit, all := false, true
		for _, r := range e.Refs {
			if in[r-1] {
				hit = true
			} else {
				all = false
			}
		}
		if membership == MemberExclusive {
			if all && len(e.Refs) > 0 {
				es.indices = append(es.indices, i)
			}
		} else if hit {
			es.indices = append(es.indices, i)
		}
	}
	return es
}

// PSet 单元集包含的全部节点构成的点集
func (es *EltSet) PSet() *PSet {
	mo := es.mo
	seen := map[int]bool{}
	for _, i := range es.indices {
		for _, r := range mo.mesh.Elems[i].Refs {
			seen[r-1] = true
		}
	}
	ps := &PSet{mo: mo, name: mo.s.nextName("p")}
	for i := range seen {
		ps.indices = append(ps.indices, i)
	}
	sort.Ints(ps.indices)
	return ps
}

// EltSetInter 单元集求交
func (mo *MO) EltSetInter(sets []*EltSet) *EltSet {
	count := map[int]int{}
	for _, s := range sets {
		for _, i := range s.indices {
			count[i]++
		}
	}
	es := &EltSet{mo: mo, name: mo.s.nextName("e")}
	for i := 0; i < mo.mesh.ElemCount(); i++ {
		if count[i] == len(sets) {
			es.indices = append(es.indices, i)
		}
	}
	return es
}

// EltSetNot 全集对给定单元集并集的补集
func (mo *MO) EltSetNot(sets []*EltSet) *EltSet {
	drop := map[int]bool{}
	for _, s := range sets {
		for _, i := range s.indices {
			drop[i] = true
		}
	}
	es := &EltSet{mo: mo, name: mo.s.nextName("e")}
	for i := 0; i < mo.mesh.ElemCount(); i++ {
		if !drop[i] {
			es.indices = append(es.indices, i)
		}
	}
	return es
}

// EltSetRange 按单元序号区间构造单元集，区间为0基半开[lo,hi)
func (mo *MO) EltSetRange(lo, hi int) *EltSet {
	if lo < 0 {
		lo = 0
	}
	if hi > mo.mesh.ElemCount() {
		hi = mo.mesh.ElemCount()
	}
	es := &EltSet{mo: mo, name: mo.s.nextName("e")}
	for i := lo; i < hi; i++ {
		es.indices = append(es.indices, i)
	}
	return es
}

// Size 集合大小
func (es *EltSet) Size() int {
	return len(es.indices)
}

// Size 集合大小
func (ps *PSet) Size() int {
	return len(ps.indices)
}

// RmpointEltset 删除单元集内的单元，compress时同时压缩掉孤立节点
func (mo *MO) RmpointEltset(es *EltSet, compress bool, resetITP bool) {
	drop := make(map[int]bool, len(es.indices))
	for _, i := range es.indices {
		drop[i] = true
	}
	kept := mo.mesh.Elems[:0:0]
	keptIdx := make([]int, 0, len(mo.mesh.Elems))
	for i, e := range mo.mesh.Elems {
		if !drop[i] {
			kept = append(kept, e)
			keptIdx = append(keptIdx, i)
		}
	}
	mo.mesh.Elems = kept
	for a := range mo.mesh.CellAtts {
		vals := make([]float64, len(keptIdx))
		for j, i := range keptIdx {
			vals[j] = mo.mesh.CellAtts[a].Values[i]
		}
		mo.mesh.CellAtts[a].Values = vals
	}
	if compress {
		mo.RmpointCompress(resetITP)
	}
}
