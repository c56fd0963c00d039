package Kernel

import (
	"math"

	"github.com/GrainArc/TinMesh/Mesh"
)

func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// 边到相邻单元的映射，索引均为0基
func (mo *MO) edgeMap() map[[2]int][]int {
	em := make(map[[2]int][]int)
	for i, e := range mo.mesh.Elems {
		n := len(e.Refs)
		if e.Type != "tri" && e.Type != "quad" {
			continue
		}
		for j := 0; j < n; j++ {
			k := edgeKey(e.Refs[j]-1, e.Refs[(j+1)%n]-1)
			em[k] = append(em[k], i)
		}
	}
	return em
}

func (mo *MO) edgeLength(k [2]int) float64 {
	p := mo.mesh.Nodes[k[0]]
	q := mo.mesh.Nodes[k[1]]
	dx, dy, dz := p.X-q.X, p.Y-q.Y, p.Z-q.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// 拓扑变更后将属性数组长度补齐到节点/单元数量
func (mo *MO) syncNodeAtts() {
	for i := range mo.mesh.NodeAtts {
		for len(mo.mesh.NodeAtts[i].Values) < mo.mesh.NodeCount() {
			mo.mesh.NodeAtts[i].Values = append(mo.mesh.NodeAtts[i].Values, 0)
		}
	}
}

func (mo *MO) syncCellAtts() {
	for i := range mo.mesh.CellAtts {
		for len(mo.mesh.CellAtts[i].Values) < mo.mesh.ElemCount() {
			mo.mesh.CellAtts[i].Values = append(mo.mesh.CellAtts[i].Values, 0)
		}
	}
}

// ResetPtsITP 重算节点类型标记：边界节点10，内部节点0。
// 边界节点为仅被一个单元引用的边上的节点。
func (mo *MO) ResetPtsITP() {
	mo.AddAtt("itp", false, true)
	att := mo.mesh.FindNodeAtt("itp")
	for i := range att.Values {
		att.Values[i] = 0
	}
	for k, elems := range mo.edgeMap() {
		if len(elems) == 1 {
			att.Values[k[0]] = 10
			att.Values[k[1]] = 10
		}
	}
}

// 将边从中点剖开：新增中点节点，相邻三角形各一分为二
func (mo *MO) splitEdge(k [2]int, adjacent []int) {
	p := mo.mesh.Nodes[k[0]]
	q := mo.mesh.Nodes[k[1]]
	mid := Mesh.Point3D{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2, Z: (p.Z + q.Z) / 2}
	mo.mesh.Nodes = append(mo.mesh.Nodes, mid)
	midID := mo.mesh.NodeCount() // 1基

	for i := range mo.mesh.NodeAtts {
		a := &mo.mesh.NodeAtts[i]
		v := (a.Values[k[0]] + a.Values[k[1]]) / 2
		if a.Integer {
			v = math.Round(v)
		}
		a.Values = append(a.Values, v)
	}

	for _, ti := range adjacent {
		e := mo.mesh.Elems[ti]
		if e.Type != "tri" {
			continue
		}
		if oppositeNode(e.Refs, k) < 0 {
			continue
		}
		// 保持原环绕方向：按原序替换被剖分边的端点
		first := Mesh.Element{MatID: e.MatID, Type: "tri", Refs: make([]int, 3)}
		second := Mesh.Element{MatID: e.MatID, Type: "tri", Refs: make([]int, 3)}
		for j, r := range e.Refs {
			first.Refs[j] = r
			second.Refs[j] = r
			if r-1 == k[1] {
				first.Refs[j] = midID
			}
			if r-1 == k[0] {
				second.Refs[j] = midID
			}
		}
		mo.mesh.Elems[ti] = first
		mo.mesh.Elems = append(mo.mesh.Elems, second)
		for ai := range mo.mesh.CellAtts {
			a := &mo.mesh.CellAtts[ai]
			a.Values = append(a.Values, a.Values[ti])
		}
	}
}

// RefineRivara 最长边对分细化：反复剖分长度不小于阈值的边，直至不动点。
// 每轮只处理互不相邻的一批最长边，收敛后所有边长均小于阈值。
func (mo *MO) RefineRivara(threshold float64) error {
	if threshold <= 0 {
		return kernelErrf("refine", "invalid rivara threshold %g", threshold)
	}
	for pass := 0; pass < 500; pass++ {
		em := mo.edgeMap()
		type cand struct {
			k   [2]int
			len float64
		}
		var long []cand
		for k := range em {
			if l := mo.edgeLength(k); l >= threshold {
				long = append(long, cand{k, l})
			}
		}
		if len(long) == 0 {
			mo.ResetPtsITP()
			return nil
		}
		// 最长优先，跳过本轮已被剖分过的三角形
		for i := 0; i < len(long); i++ {
			for j := i + 1; j < len(long); j++ {
				if long[j].len > long[i].len {
					long[i], long[j] = long[j], long[i]
				}
			}
		}
		dirty := map[int]bool{}
		for _, c := range long {
			ok := true
			for _, ti := range em[c.k] {
				if dirty[ti] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			for _, ti := range em[c.k] {
				dirty[ti] = true
			}
			mo.splitEdge(c.k, em[c.k])
		}
	}
	return kernelErrf("refine", "rivara refinement did not converge on %s", mo.name)
}

// 节点邻接表（经边相连）
func (mo *MO) nodeNeighbors() map[int][]int {
	nb := map[int][]int{}
	for k := range mo.edgeMap() {
		nb[k[0]] = append(nb[k[0]], k[1])
		nb[k[1]] = append(nb[k[1]], k[0])
	}
	return nb
}

// Smooth 一次Laplacian光滑：内部节点移动到邻接节点的质心，边界节点不动
func (mo *MO) Smooth() {
	mo.ResetPtsITP()
	itp := mo.mesh.FindNodeAtt("itp")
	nb := mo.nodeNeighbors()
	moved := make([]Mesh.Point3D, mo.mesh.NodeCount())
	copy(moved, mo.mesh.Nodes)
	for i := range mo.mesh.Nodes {
		if itp.Values[i] != 0 || len(nb[i]) == 0 {
			continue
		}
		var sx, sy, sz float64
		for _, j := range nb[i] {
			sx += mo.mesh.Nodes[j].X
			sy += mo.mesh.Nodes[j].Y
			sz += mo.mesh.Nodes[j].Z
		}
		n := float64(len(nb[i]))
		moved[i] = Mesh.Point3D{X: sx / n, Y: sy / n, Z: sz / n}
	}
	mo.mesh.Nodes = moved
}

// SmoothN 连续执行n次光滑迭代
func (mo *MO) SmoothN(n int) {
	for i := 0; i < n; i++ {
		mo.Smooth()
	}
}

// Recon 局部重连：对内部边做Delaunay翻边，直到无可翻边。
// flag保留内核语义（1允许更强的重构），当前实现两者行为一致。
func (mo *MO) Recon(flag int) {
	_ = flag
	for pass := 0; pass < 50; pass++ {
		if mo.reconPass() == 0 {
			return
		}
	}
}

func (mo *MO) reconPass() int {
	flips := 0
	em := mo.edgeMap()
	for k, adj := range em {
		if len(adj) != 2 {
			continue
		}
		t1, t2 := adj[0], adj[1]
		e1, e2 := mo.mesh.Elems[t1], mo.mesh.Elems[t2]
		if e1.Type != "tri" || e2.Type != "tri" {
			continue
		}
		c := oppositeNode(e1.Refs, k)
		d := oppositeNode(e2.Refs, k)
		if c < 0 || d < 0 || c == d {
			continue
		}
		pa, pb := mo.mesh.Nodes[k[0]], mo.mesh.Nodes[k[1]]
		pc, pd := mo.mesh.Nodes[c], mo.mesh.Nodes[d]
		if !inCircumcircle(&triPoint{x: pd.X, y: pd.Y},
			&triangle{
				a: &triPoint{x: pa.X, y: pa.Y},
				b: &triPoint{x: pb.X, y: pb.Y},
				c: &triPoint{x: pc.X, y: pc.Y},
			}) {
			continue
		}
		// 翻边后两三角形须保持非退化且方向一致
		a1 := signedArea2(pc.X, pc.Y, pa.X, pa.Y, pd.X, pd.Y)
		a2 := signedArea2(pc.X, pc.Y, pd.X, pd.Y, pb.X, pb.Y)
		if a1*a2 <= 0 {
			continue
		}
		mo.mesh.Elems[t1] = Mesh.Element{MatID: e1.MatID, Type: "tri", Refs: []int{c + 1, k[0] + 1, d + 1}}
		mo.mesh.Elems[t2] = Mesh.Element{MatID: e2.MatID, Type: "tri", Refs: []int{c + 1, d + 1, k[1] + 1}}
		flips++
		em = mo.edgeMap()
	}
	return flips
}

func oppositeNode(refs []int, k [2]int) int {
	for _, r := range refs {
		if r-1 != k[0] && r-1 != k[1] {
			return r - 1
		}
	}
	return -1
}

// RmpointCompress 删除未被任何单元引用的孤立节点并重排编号
func (mo *MO) RmpointCompress(resetITP bool) {
	used := make([]bool, mo.mesh.NodeCount())
	for _, e := range mo.mesh.Elems {
		for _, r := range e.Refs {
			used[r-1] = true
		}
	}
	remap := make([]int, mo.mesh.NodeCount())
	kept := mo.mesh.Nodes[:0:0]
	keptIdx := make([]int, 0, mo.mesh.NodeCount())
	for i, u := range used {
		if u {
			remap[i] = len(kept)
			kept = append(kept, mo.mesh.Nodes[i])
			keptIdx = append(keptIdx, i)
		} else {
			remap[i] = -1
		}
	}
	mo.mesh.Nodes = kept
	for a := range mo.mesh.NodeAtts {
		vals := make([]float64, len(keptIdx))
		for j, i := range keptIdx {
			vals[j] = mo.mesh.NodeAtts[a].Values[i]
		}
		mo.mesh.NodeAtts[a].Values = vals
	}
	for i := range mo.mesh.Elems {
		for j, r := range mo.mesh.Elems[i].Refs {
			mo.mesh.Elems[i].Refs[j] = remap[r-1] + 1
		}
	}
	if resetITP {
		mo.ResetPtsITP()
	}
}

// Massage 尺寸场松弛：将所有超过目标尺度的边细化到该尺度以下
func (mo *MO) Massage(scale float64) error {
	return mo.RefineRivara(scale)
}

// MassageGraded 按到特征线距离的线性尺寸场细化：size(d) = a*d + b。
// 每条边与两端点目标尺寸的较小值比较，超出即剖分。
func (mo *MO) MassageGraded(a, b float64, feature *MO) error {
	if feature == nil {
		return kernelErrf("massage2", "feature polyline is required")
	}
	target := func(i int) float64 {
		d := feature.distanceToLines(mo.mesh.Nodes[i])
		t := a*d + b
		if t < b {
			t = b
		}
		if t < 1e-9 {
			t = 1e-9
		}
		return t
	}
	for pass := 0; pass < 50; pass++ {
		em := mo.edgeMap()
		split := 0
		dirty := map[int]bool{}
		for k, adj := range em {
			if mo.edgeLength(k) <= math.Min(target(k[0]), target(k[1])) {
				continue
			}
			ok := true
			for _, ti := range adj {
				if dirty[ti] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			for _, ti := range adj {
				dirty[ti] = true
			}
			mo.splitEdge(k, adj)
			split++
		}
		if split == 0 {
			mo.ResetPtsITP()
			return nil
		}
	}
	return kernelErrf("massage2", "graded refinement did not converge on %s", mo.name)
}

// 点到线网格所有线段的最小距离（XY平面）
func (mo *MO) distanceToLines(p Mesh.Point3D) float64 {
	best := math.Inf(1)
	for _, e := range mo.mesh.Elems {
		if e.Type != "line" || len(e.Refs) < 2 {
			continue
		}
		a := mo.mesh.Nodes[e.Refs[0]-1]
		b := mo.mesh.Nodes[e.Refs[1]-1]
		if d := pointSegmentDistance(p.X, p.Y, a.X, a.Y, b.X, b.Y); d < best {
			best = d
		}
	}
	if math.IsInf(best, 1) {
		// 无线单元时退化为点距
		for _, q := range mo.mesh.Nodes {
			dx, dy := p.X-q.X, p.Y-q.Y
			if d := math.Sqrt(dx*dx + dy*dy); d < best {
				best = d
			}
		}
	}
	return best
}

func pointSegmentDistance(px, py, ax, ay, bx, by float64) float64 {
	vx, vy := bx-ax, by-ay
	wx, wy := px-ax, py-ay
	seg := vx*vx + vy*vy
	t := 0.0
	if seg > 0 {
		t = (wx*vx + wy*vy) / seg
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	dx, dy := px-(ax+t*vx), py-(ay+t*vy)
	return math.Sqrt(dx*dx + dy*dy)
}

// Perturb 对点集内的节点做随机扰动，幅度为±dx/±dy，用于打破轴对齐伪迹
func (mo *MO) Perturb(ps *PSet, dx, dy float64) {
	for _, i := range ps.indices {
		mo.mesh.Nodes[i].X += (mo.s.rng.Float64()*2 - 1) * dx
		mo.mesh.Nodes[i].Y += (mo.s.rng.Float64()*2 - 1) * dy
	}
}
