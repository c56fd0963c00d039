package Kernel

import (
	"math"

	"github.com/GrainArc/TinMesh/Mesh"
)

// Scheme 插值传递方案
type Scheme string

const (
	SchemeContinuous Scheme = "continuous" // 连续：重心坐标插值
	SchemeVoronoi    Scheme = "voronoi"    // 最近邻：取最近源实体的值
	SchemeMap        Scheme = "map"        // 映射：汇单元映射到最近/包含它的源单元
)

// Interpolate 跨网格属性传递。sinkAtt为节点属性时逐节点求值，
// 为单元属性时逐单元求值；es非nil时仅作用于该单元集内的汇单元。
// 所有空间匹配在XY平面内进行。
func (mo *MO) Interpolate(scheme Scheme, sinkAtt string, src *MO, srcAtt string, es *EltSet) error {
	switch scheme {
	case SchemeContinuous:
		return mo.interpContinuous(sinkAtt, src, srcAtt)
	case SchemeVoronoi:
		return mo.interpVoronoi(sinkAtt, src, srcAtt, es)
	case SchemeMap:
		return mo.interpMap(sinkAtt, src, srcAtt, es)
	}
	return kernelErrf("interpolate", "unknown scheme %q", scheme)
}

type srcTriangle struct {
	ax, ay, bx, by, cx, cy float64
	va, vb, vc             float64
}

// 将源网格的三角形/四边形单元展开为带属性值的插值三角形
func (mo *MO) srcTriangles(srcAtt string) []srcTriangle {
	var tris []srcTriangle
	value := func(i int) float64 { return mo.nodeAttGet(srcAtt, i) }
	add := func(a, b, c int) {
		pa, pb, pc := mo.mesh.Nodes[a], mo.mesh.Nodes[b], mo.mesh.Nodes[c]
		tris = append(tris, srcTriangle{
			ax: pa.X, ay: pa.Y, bx: pb.X, by: pb.Y, cx: pc.X, cy: pc.Y,
			va: value(a), vb: value(b), vc: value(c),
		})
	}
	for _, e := range mo.mesh.Elems {
		switch e.Type {
		case "tri":
			add(e.Refs[0]-1, e.Refs[1]-1, e.Refs[2]-1)
		case "quad":
			add(e.Refs[0]-1, e.Refs[1]-1, e.Refs[2]-1)
			add(e.Refs[0]-1, e.Refs[2]-1, e.Refs[3]-1)
		}
	}
	return tris
}

// 重心坐标求值，点在三角形外时返回false
func (t *srcTriangle) barycentric(px, py float64) (float64, bool) {
	den := (t.by-t.cy)*(t.ax-t.cx) + (t.cx-t.bx)*(t.ay-t.cy)
	if math.Abs(den) < 1e-12 {
		return 0, false
	}
	a := ((t.by-t.cy)*(px-t.cx) + (t.cx-t.bx)*(py-t.cy)) / den
	b := ((t.cy-t.ay)*(px-t.cx) + (t.ax-t.cx)*(py-t.cy)) / den
	c := 1 - a - b
	const eps = -1e-9
	if a < eps || b < eps || c < eps {
		return 0, false
	}
	return a*t.va + b*t.vb + c*t.vc, true
}

func (mo *MO) interpContinuous(sinkAtt string, src *MO, srcAtt string) error {
	if !mo.IsNodeAtt(sinkAtt) {
		return kernelErrf("interpolate", "continuous sink attribute %s must be node based", sinkAtt)
	}
	if !src.IsNodeAtt(srcAtt) {
		return kernelErrf("interpolate", "continuous source attribute %s must be node based", srcAtt)
	}
	tris := src.srcTriangles(srcAtt)
	for i := range mo.mesh.Nodes {
		px, py := mo.mesh.Nodes[i].X, mo.mesh.Nodes[i].Y
		found := false
		for ti := range tris {
			if v, ok := tris[ti].barycentric(px, py); ok {
				mo.nodeAttSet(sinkAtt, i, v)
				found = true
				break
			}
		}
		if !found {
			mo.nodeAttSet(sinkAtt, i, src.nearestNodeValue(px, py, srcAtt))
		}
	}
	return nil
}

func (mo *MO) nearestNodeValue(px, py float64, att string) float64 {
	best := math.Inf(1)
	v := 0.0
	for i, p := range mo.mesh.Nodes {
		dx, dy := px-p.X, py-p.Y
		if d := dx*dx + dy*dy; d < best {
			best = d
			v = mo.nodeAttGet(att, i)
		}
	}
	return v
}

func (mo *MO) elemCentroidXY(i int) (float64, float64) {
	e := mo.mesh.Elems[i]
	var cx, cy float64
	for _, r := range e.Refs {
		cx += mo.mesh.Nodes[r-1].X
		cy += mo.mesh.Nodes[r-1].Y
	}
	n := float64(len(e.Refs))
	return cx / n, cy / n
}

func (mo *MO) interpVoronoi(sinkAtt string, src *MO, srcAtt string, es *EltSet) error {
	srcIsNode := src.IsNodeAtt(srcAtt)
	if !srcIsNode && !src.IsCellAtt(srcAtt) {
		return kernelErrf("interpolate", "unknown source attribute %s on %s", srcAtt, src.name)
	}
	sample := func(px, py float64) float64 {
		if srcIsNode {
			return src.nearestNodeValue(px, py, srcAtt)
		}
		best := math.Inf(1)
		v := 0.0
		for i := range src.mesh.Elems {
			cx, cy := src.elemCentroidXY(i)
			dx, dy := px-cx, py-cy
			if d := dx*dx + dy*dy; d < best {
				best = d
				v = src.cellAttGet(srcAtt, i)
			}
		}
		return v
	}
	if mo.IsNodeAtt(sinkAtt) {
		for i := range mo.mesh.Nodes {
			mo.nodeAttSet(sinkAtt, i, sample(mo.mesh.Nodes[i].X, mo.mesh.Nodes[i].Y))
		}
		return nil
	}
	if !mo.IsCellAtt(sinkAtt) {
		return kernelErrf("interpolate", "unknown sink attribute %s on %s", sinkAtt, mo.name)
	}
	for _, i := range mo.elemIndices(es) {
		cx, cy := mo.elemCentroidXY(i)
		mo.cellAttSet(sinkAtt, i, sample(cx, cy))
	}
	return nil
}

func (mo *MO) elemIndices(es *EltSet) []int {
	if es != nil {
		return es.indices
	}
	out := make([]int, mo.mesh.ElemCount())
	for i := range out {
		out[i] = i
	}
	return out
}

// 汇单元质心到源单元的XY距离：线单元取点到线段距离，
// 面/体单元落在XY投影内时距离为0，否则取质心距离。
func (mo *MO) distanceToElem(px, py float64, i int) float64 {
	e := mo.mesh.Elems[i]
	if e.Type == "line" && len(e.Refs) >= 2 {
		a := mo.mesh.Nodes[e.Refs[0]-1]
		b := mo.mesh.Nodes[e.Refs[1]-1]
		return pointSegmentDistance(px, py, a.X, a.Y, b.X, b.Y)
	}
	foot := e.Refs
	if e.Type == "prism" {
		foot = e.Refs[:3]
	} else if e.Type == "hex" {
		foot = e.Refs[:4]
	}
	ring := make([]Mesh.Point3D, len(foot))
	for j, r := range foot {
		ring[j] = mo.mesh.Nodes[r-1]
	}
	if pointInPolygon(px, py, ring) {
		return 0
	}
	cx, cy := mo.elemCentroidXY(i)
	dx, dy := px-cx, py-cy
	return math.Sqrt(dx*dx + dy*dy)
}

func (mo *MO) interpMap(sinkAtt string, src *MO, srcAtt string, es *EltSet) error {
	if !mo.IsCellAtt(sinkAtt) {
		return kernelErrf("interpolate", "map sink attribute %s must be cell based", sinkAtt)
	}
	if !src.IsCellAtt(srcAtt) {
		return kernelErrf("interpolate", "map source attribute %s must be cell based", srcAtt)
	}
	if src.mesh.ElemCount() == 0 {
		return kernelErrf("interpolate", "source mesh %s has no elements", src.name)
	}
	for _, i := range mo.elemIndices(es) {
		px, py := mo.elemCentroidXY(i)
		best := math.Inf(1)
		bestIdx := 0
		for j := range src.mesh.Elems {
			if d := src.distanceToElem(px, py, j); d < best {
				best = d
				bestIdx = j
				if d == 0 {
					break
				}
			}
		}
		mo.cellAttSet(sinkAtt, i, src.cellAttGet(srcAtt, bestIdx))
	}
	return nil
}
