package Kernel

import (
	"math"

	"github.com/GrainArc/TinMesh/Mesh"
	"github.com/GrainArc/TinMesh/Raster"
)

// ReadSheetIJ 将规则栅格转换为结构化四边形面片网格。
// 节点逐格布设，z坐标取栅格值。缺省按ESRI ASCII约定把数据第0行排在北侧，
// flip为true时按行序镜像，第0行排在南侧。
func (s *Session) ReadSheetIJ(g *Raster.Grid, flip bool) *MO {
	m := &Mesh.Mesh{Nodes: make([]Mesh.Point3D, 0, g.NCols*g.NRows)}
	for r := 0; r < g.NRows; r++ {
		y := g.YLLCorner + float64(g.NRows-1-r)*g.CellSize
		if flip {
			y = g.YLLCorner + float64(r)*g.CellSize
		}
		for c := 0; c < g.NCols; c++ {
			x := g.XLLCorner + float64(c)*g.CellSize
			m.Nodes = append(m.Nodes, Mesh.Point3D{X: x, Y: y, Z: g.At(r, c)})
		}
	}
	node := func(r, c int) int { return r*g.NCols + c + 1 }
	for r := 0; r < g.NRows-1; r++ {
		for c := 0; c < g.NCols-1; c++ {
			m.Elems = append(m.Elems, Mesh.Element{
				MatID: 1, Type: "quad",
				Refs: []int{node(r, c), node(r, c+1), node(r+1, c+1), node(r+1, c)},
			})
		}
	}
	mo := s.register(KindSheet, m)
	mo.ResetPtsITP()
	return mo
}

// Extrude 沿z负方向以固定高度拉伸面片网格为体网格。
// 四边形面片生成六面体单元，三角形面片生成棱柱单元。
func (mo *MO) Extrude(height float64) (*MO, error) {
	nn := mo.mesh.NodeCount()
	if nn == 0 {
		return nil, kernelErrf("extrude", "empty mesh object %s", mo.name)
	}
	m := &Mesh.Mesh{Nodes: make([]Mesh.Point3D, 0, nn*2)}
	m.Nodes = append(m.Nodes, mo.mesh.Nodes...)
	for _, p := range mo.mesh.Nodes {
		m.Nodes = append(m.Nodes, Mesh.Point3D{X: p.X, Y: p.Y, Z: p.Z - height})
	}
	for _, e := range mo.mesh.Elems {
		var typ string
		switch e.Type {
		case "quad":
			typ = "hex"
		case "tri":
			typ = "prism"
		default:
			continue
		}
		refs := make([]int, 0, len(e.Refs)*2)
		refs = append(refs, e.Refs...)
		for _, r := range e.Refs {
			refs = append(refs, r+nn)
		}
		m.Elems = append(m.Elems, Mesh.Element{MatID: e.MatID, Type: typ, Refs: refs})
	}
	if len(m.Elems) == 0 {
		return nil, kernelErrf("extrude", "mesh object %s has no extrudable elements", mo.name)
	}
	return mo.s.register(KindVolume, m), nil
}

type stackMeta struct {
	nodesPerLayer int
	surfaceElems  []Mesh.Element // 单层三角形连接关系
	layerCount    int
	bandMatIDs    []int // 每个堆叠带的材质号，自底向上
	xySubset      []Mesh.Point2D
}

// StackLayers 将一组共享同一平面三角化的层面（自底向上排列）堆叠为分层节点序列。
// gapBands[g]指定第g个层间间隙细分的堆叠带数量（0视为1），
// gapMatIDs[g]为该间隙内所有带的材质号。节点属性layertyp标记层类型：
// 底层-1，顶层-2，中间0。体单元由随后的StackFill生成。
func (s *Session) StackLayers(surfaces []*MO, gapBands []int, gapMatIDs []int, xySubset []Mesh.Point2D) (*MO, error) {
	if len(surfaces) < 2 {
		return nil, Validationf("layer stack requires at least 2 surfaces, got %d", len(surfaces))
	}
	if len(gapMatIDs) != len(surfaces)-1 {
		return nil, Validationf("gap material count %d does not match gap count %d", len(gapMatIDs), len(surfaces)-1)
	}
	if gapBands != nil && len(gapBands) != len(surfaces)-1 {
		return nil, Validationf("sublayer count %d does not match gap count %d", len(gapBands), len(surfaces)-1)
	}

	base := surfaces[0].mesh
	nn := base.NodeCount()
	for _, mo := range surfaces[1:] {
		if mo.mesh.NodeCount() != nn || mo.mesh.ElemCount() != base.ElemCount() {
			return nil, Validationf("stacked surfaces must share one triangulation")
		}
	}

	m := &Mesh.Mesh{}
	meta := &stackMeta{nodesPerLayer: nn, xySubset: xySubset}
	for _, e := range base.Elems {
		if e.Type == "tri" {
			refs := make([]int, len(e.Refs))
			copy(refs, e.Refs)
			meta.surfaceElems = append(meta.surfaceElems, Mesh.Element{MatID: e.MatID, Type: e.Type, Refs: refs})
		}
	}
	if len(meta.surfaceElems) == 0 {
		return nil, Validationf("stacked surfaces contain no triangles")
	}

	appendLayer := func(nodes []Mesh.Point3D) {
		m.Nodes = append(m.Nodes, nodes...)
		meta.layerCount++
	}

	appendLayer(base.Nodes)
	for g := 0; g < len(surfaces)-1; g++ {
		bands := 1
		if gapBands != nil && gapBands[g] > 0 {
			bands = gapBands[g]
		}
		lower := surfaces[g].mesh.Nodes
		upper := surfaces[g+1].mesh.Nodes
		for band := 1; band <= bands; band++ {
			t := float64(band) / float64(bands)
			layer := make([]Mesh.Point3D, nn)
			for i := 0; i < nn; i++ {
				layer[i] = Mesh.Point3D{
					X: lower[i].X + (upper[i].X-lower[i].X)*t,
					Y: lower[i].Y + (upper[i].Y-lower[i].Y)*t,
					Z: lower[i].Z + (upper[i].Z-lower[i].Z)*t,
				}
			}
			appendLayer(layer)
			meta.bandMatIDs = append(meta.bandMatIDs, gapMatIDs[g])
		}
	}

	layertyp := Mesh.Attribute{Name: "layertyp", Integer: true, Values: make([]float64, m.NodeCount())}
	for i := 0; i < nn; i++ {
		layertyp.Values[i] = -1
	}
	for i := (meta.layerCount - 1) * nn; i < meta.layerCount*nn; i++ {
		layertyp.Values[i] = -2
	}
	m.NodeAtts = append(m.NodeAtts, layertyp)

	mo := s.register("stack", m)
	mo.stack = meta
	return mo, nil
}

// StackFill 由分层节点序列生成棱柱体网格，填充全部层间带。
// 单元按堆叠带自底向上排列：带b的单元区间为[b*ntri, (b+1)*ntri)。
func (mo *MO) StackFill() (*MO, error) {
	meta := mo.stack
	if meta == nil {
		return nil, kernelErrf("stack_fill", "mesh object %s is not a layer stack", mo.name)
	}
	m := mo.mesh.Clone()
	nn := meta.nodesPerLayer
	for band := 0; band < meta.layerCount-1; band++ {
		lowOff := band * nn
		highOff := (band + 1) * nn
		for _, tri := range meta.surfaceElems {
			refs := []int{
				tri.Refs[0] + lowOff, tri.Refs[1] + lowOff, tri.Refs[2] + lowOff,
				tri.Refs[0] + highOff, tri.Refs[1] + highOff, tri.Refs[2] + highOff,
			}
			m.Elems = append(m.Elems, Mesh.Element{
				MatID: meta.bandMatIDs[band], Type: "prism", Refs: refs,
			})
		}
	}

	vol := mo.s.register(KindVolume, m)
	if meta.xySubset != nil {
		drop := &EltSet{mo: vol, name: vol.s.nextName("e")}
		for i, e := range m.Elems {
			var cx, cy float64
			for _, r := range e.Refs {
				cx += m.Nodes[r-1].X
				cy += m.Nodes[r-1].Y
			}
			cx /= float64(len(e.Refs))
			cy /= float64(len(e.Refs))
			if !pointInPolygon2D(cx, cy, meta.xySubset) {
				drop.indices = append(drop.indices, i)
			}
		}
		vol.RmpointEltset(drop, true, false)
	}
	return vol, nil
}

func pointInPolygon2D(x, y float64, ring []Mesh.Point2D) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// AddVolumeAtt 计算并挂接逐单元体积属性。
// 棱柱/六面体按底面面积乘以竖向棱平均高度计算。
func (mo *MO) AddVolumeAtt(name string) error {
	mo.AddAtt(name, true, false)
	att := mo.mesh.FindCellAtt(name)
	if att == nil {
		return kernelErrf("addatt", "failed to attach volume attribute %s", name)
	}
	att.Integer = false
	for i, e := range mo.mesh.Elems {
		var v float64
		switch e.Type {
		case "prism":
			v = prismVolume(mo.mesh, e.Refs)
		case "hex":
			v = hexVolume(mo.mesh, e.Refs)
		}
		att.Values[i] = v
	}
	return nil
}

func triAreaXY(a, b, c Mesh.Point3D) float64 {
	return math.Abs((b.X-a.X)*(c.Y-a.Y)-(c.X-a.X)*(b.Y-a.Y)) / 2
}

func prismVolume(m *Mesh.Mesh, refs []int) float64 {
	a, b, c := m.Nodes[refs[0]-1], m.Nodes[refs[1]-1], m.Nodes[refs[2]-1]
	d, e, f := m.Nodes[refs[3]-1], m.Nodes[refs[4]-1], m.Nodes[refs[5]-1]
	h := (math.Abs(d.Z-a.Z) + math.Abs(e.Z-b.Z) + math.Abs(f.Z-c.Z)) / 3
	return triAreaXY(a, b, c) * h
}

func hexVolume(m *Mesh.Mesh, refs []int) float64 {
	a, b, c, d := m.Nodes[refs[0]-1], m.Nodes[refs[1]-1], m.Nodes[refs[2]-1], m.Nodes[refs[3]-1]
	e, f, g, h := m.Nodes[refs[4]-1], m.Nodes[refs[5]-1], m.Nodes[refs[6]-1], m.Nodes[refs[7]-1]
	area := triAreaXY(a, b, c) + triAreaXY(a, c, d)
	hh := (math.Abs(e.Z-a.Z) + math.Abs(f.Z-b.Z) + math.Abs(g.Z-c.Z) + math.Abs(h.Z-d.Z)) / 4
	return area * hh
}
