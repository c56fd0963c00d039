package Kernel

import (
	"math"

	"github.com/GrainArc/TinMesh/Mesh"
)

type triPoint struct {
	x, y float64
	id   int // 0基节点索引，超级三角形顶点为负
}

type triangle struct {
	a, b, c *triPoint
}

// 计算三角形外接圆圆心和半径（XY平面）
func circumcircle(p1, p2, p3 *triPoint) (cx, cy, r float64) {
	ax, ay := p1.x, p1.y
	bx, by := p2.x, p2.y
	cx1, cy1 := p3.x, p3.y

	d := 2 * (ax*(by-cy1) + bx*(cy1-ay) + cx1*(ay-by))
	if math.Abs(d) < 1e-10 {
		return 0, 0, math.Inf(1)
	}

	ux := (ax*ax+ay*ay)*(by-cy1) + (bx*bx+by*by)*(cy1-ay) + (cx1*cx1+cy1*cy1)*(ay-by)
	uy := (ax*ax+ay*ay)*(cx1-bx) + (bx*bx+by*by)*(ax-cx1) + (cx1*cx1+cy1*cy1)*(bx-ax)

	cx = ux / d
	cy = uy / d
	r = math.Sqrt((cx-ax)*(cx-ax) + (cy-ay)*(cy-ay))
	return cx, cy, r
}

// 判断点是否在三角形外接圆内
func inCircumcircle(p *triPoint, t *triangle) bool {
	cx, cy, r := circumcircle(t.a, t.b, t.c)
	if math.IsInf(r, 1) {
		return false
	}
	dist := math.Sqrt((p.x-cx)*(p.x-cx) + (p.y-cy)*(p.y-cy))
	return dist < r
}

// 创建覆盖所有点的超级三角形
func superTriangle(points []*triPoint) *triangle {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.x)
		maxX = math.Max(maxX, p.x)
		minY = math.Min(minY, p.y)
		maxY = math.Max(maxY, p.y)
	}
	dx := maxX - minX
	dy := maxY - minY
	deltaMax := math.Max(dx, dy)
	midX := (minX + maxX) / 2
	midY := (minY + maxY) / 2

	return &triangle{
		a: &triPoint{x: midX - 20*deltaMax, y: midY - deltaMax, id: -1},
		b: &triPoint{x: midX, y: midY + 20*deltaMax, id: -2},
		c: &triPoint{x: midX + 20*deltaMax, y: midY - deltaMax, id: -3},
	}
}

type triEdge struct {
	p1, p2 *triPoint
}

// Bowyer-Watson逐点插入Delaunay三角剖分
func delaunay(points []*triPoint) []*triangle {
	if len(points) < 3 {
		return nil
	}

	triangles := []*triangle{superTriangle(points)}

	for _, point := range points {
		var bad []*triangle
		for _, t := range triangles {
			if inCircumcircle(point, t) {
				bad = append(bad, t)
			}
		}

		// 找到空腔多边形边界：仅属于一个坏三角形的边
		var polygon []triEdge
		for _, bt := range bad {
			edges := []triEdge{{bt.a, bt.b}, {bt.b, bt.c}, {bt.c, bt.a}}
			for _, edge := range edges {
				shared := false
				for _, other := range bad {
					if other == bt {
						continue
					}
					otherEdges := []triEdge{{other.a, other.b}, {other.b, other.c}, {other.c, other.a}}
					for _, oe := range otherEdges {
						if (edge.p1 == oe.p1 && edge.p2 == oe.p2) ||
							(edge.p1 == oe.p2 && edge.p2 == oe.p1) {
							shared = true
							break
						}
					}
					if shared {
						break
					}
				}
				if !shared {
					polygon = append(polygon, edge)
				}
			}
		}

		var kept []*triangle
		for _, t := range triangles {
			isBad := false
			for _, bt := range bad {
				if t == bt {
					isBad = true
					break
				}
			}
			if !isBad {
				kept = append(kept, t)
			}
		}
		triangles = kept

		for _, edge := range polygon {
			triangles = append(triangles, &triangle{a: edge.p1, b: edge.p2, c: point})
		}
	}

	var final []*triangle
	for _, t := range triangles {
		if t.a.id >= 0 && t.b.id >= 0 && t.c.id >= 0 {
			final = append(final, t)
		}
	}
	return final
}

// 射线法判断点是否在多边形内
func pointInPolygon(x, y float64, ring []Mesh.Point3D) bool {
	inside := false
	n := len(ring)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].X, ring[i].Y
		xj, yj := ring[j].X, ring[j].Y
		if (yi > y) != (yj > y) &&
			x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

func signedArea2(x1, y1, x2, y2, x3, y3 float64) float64 {
	return (x2-x1)*(y3-y1) - (x3-x1)*(y2-y1)
}

// Triangulate 对当前对象的节点做边界约束三角化。
// 节点序列被视为按顺时针（counterclockwise为false）或逆时针排列的闭合边界环，
// 仅使用边界节点生成三角形，落在边界环外的三角形被剔除。
func (mo *MO) Triangulate(counterclockwise bool) error {
	ring := mo.mesh.Nodes
	if len(ring) < 3 {
		return kernelErrf("triangulate", "boundary of %s has fewer than 3 nodes", mo.name)
	}

	points := make([]*triPoint, len(ring))
	for i, p := range ring {
		points[i] = &triPoint{x: p.X, y: p.Y, id: i}
	}

	tris := delaunay(points)
	if len(tris) == 0 {
		return kernelErrf("triangulate", "degenerate boundary on %s", mo.name)
	}

	mo.mesh.Elems = mo.mesh.Elems[:0]
	for _, t := range tris {
		cx := (t.a.x + t.b.x + t.c.x) / 3
		cy := (t.a.y + t.b.y + t.c.y) / 3
		if !pointInPolygon(cx, cy, ring) {
			continue
		}
		a, b, c := t.a.id, t.b.id, t.c.id
		// 统一三角形环绕方向与边界环方向一致
		ccw := signedArea2(t.a.x, t.a.y, t.b.x, t.b.y, t.c.x, t.c.y) > 0
		if ccw != counterclockwise {
			b, c = c, b
		}
		mo.mesh.Elems = append(mo.mesh.Elems, Mesh.Element{
			MatID: 1, Type: "tri", Refs: []int{a + 1, b + 1, c + 1},
		})
	}
	if len(mo.mesh.Elems) == 0 {
		return kernelErrf("triangulate", "no triangle lies inside boundary of %s", mo.name)
	}
	mo.kind = KindTriplane
	mo.syncCellAtts()
	mo.ResetPtsITP()
	return nil
}
