package Kernel

import (
	"fmt"
	"sort"

	"github.com/GrainArc/TinMesh/Mesh"
)

func faceKey(refs []int) string {
	s := make([]int, len(refs))
	copy(s, refs)
	sort.Ints(s)
	key := ""
	for _, r := range s {
		key += fmt.Sprintf("%d,", r)
	}
	return key
}

// 体单元的面分解，返回每个面的节点引用（1基）与面序号
func elementFaces(e Mesh.Element) [][]int {
	r := e.Refs
	switch e.Type {
	case "prism":
		return [][]int{
			{r[0], r[1], r[2]},
			{r[3], r[4], r[5]},
			{r[0], r[1], r[4], r[3]},
			{r[1], r[2], r[5], r[4]},
			{r[2], r[0], r[3], r[5]},
		}
	case "hex":
		return [][]int{
			{r[0], r[1], r[2], r[3]},
			{r[4], r[5], r[6], r[7]},
			{r[0], r[1], r[5], r[4]},
			{r[1], r[2], r[6], r[5]},
			{r[2], r[3], r[7], r[6]},
			{r[3], r[0], r[4], r[7]},
		}
	case "tet":
		return [][]int{
			{r[0], r[1], r[2]},
			{r[0], r[1], r[3]},
			{r[1], r[2], r[3]},
			{r[2], r[0], r[3]},
		}
	}
	return nil
}

// ExtractSurface 提取体网格的外表面，保留面到父单元/父节点的溯源属性：
// 单元属性idelem0/idface0，节点属性idnode0，父网格的节点属性（含layertyp）随节点带出。
func (s *Session) ExtractSurface(vol *MO) (*MO, error) {
	if vol.kind != KindVolume {
		return nil, kernelErrf("extract_surfmesh", "mesh object %s is not volumetric", vol.name)
	}

	type faceRef struct {
		elem, face int
		refs       []int
	}
	count := map[string]int{}
	first := map[string]faceRef{}
	for i, e := range vol.mesh.Elems {
		for fi, f := range elementFaces(e) {
			k := faceKey(f)
			count[k]++
			if count[k] == 1 {
				first[k] = faceRef{elem: i, face: fi, refs: f}
			}
		}
	}

	var exterior []faceRef
	for k, c := range count {
		if c == 1 {
			exterior = append(exterior, first[k])
		}
	}
	if len(exterior) == 0 {
		return nil, kernelErrf("extract_surfmesh", "mesh object %s has no exterior faces", vol.name)
	}
	// 按父单元、面序排序，保证提取结果可复现
	sort.Slice(exterior, func(i, j int) bool {
		if exterior[i].elem != exterior[j].elem {
			return exterior[i].elem < exterior[j].elem
		}
		return exterior[i].face < exterior[j].face
	})

	m := &Mesh.Mesh{}
	remap := map[int]int{} // 父节点1基 -> 新节点1基
	var parentNode []int
	mapNode := func(r int) int {
		if n, ok := remap[r]; ok {
			return n
		}
		m.Nodes = append(m.Nodes, vol.mesh.Nodes[r-1])
		parentNode = append(parentNode, r)
		remap[r] = len(m.Nodes)
		return remap[r]
	}

	idelem0 := Mesh.Attribute{Name: "idelem0", Integer: true}
	idface0 := Mesh.Attribute{Name: "idface0", Integer: true}
	for _, f := range exterior {
		refs := make([]int, len(f.refs))
		for i, r := range f.refs {
			refs[i] = mapNode(r)
		}
		typ := "tri"
		if len(refs) == 4 {
			typ = "quad"
		}
		m.Elems = append(m.Elems, Mesh.Element{
			MatID: vol.mesh.Elems[f.elem].MatID, Type: typ, Refs: refs,
		})
		idelem0.Values = append(idelem0.Values, float64(f.elem+1))
		idface0.Values = append(idface0.Values, float64(f.face+1))
	}
	m.CellAtts = append(m.CellAtts, idelem0, idface0)

	idnode0 := Mesh.Attribute{Name: "idnode0", Integer: true, Values: make([]float64, len(m.Nodes))}
	for i, r := range parentNode {
		idnode0.Values[i] = float64(r)
	}
	m.NodeAtts = append(m.NodeAtts, idnode0)
	for _, a := range vol.mesh.NodeAtts {
		vals := make([]float64, len(m.Nodes))
		for i, r := range parentNode {
			vals[i] = a.Values[r-1]
		}
		m.NodeAtts = append(m.NodeAtts, Mesh.Attribute{Name: a.Name, Integer: a.Integer, Values: vals})
	}

	mo := s.register(KindSurface, m)
	mo.ResetPtsITP()
	return mo, nil
}

// SetTetsNormal 按面法向将单元材质号归类：朝下1，朝上2，侧向3
func (mo *MO) SetTetsNormal() {
	for i, e := range mo.mesh.Elems {
		nz := newellNormalZ(mo.mesh, e.Refs)
		switch {
		case nz < -1e-9:
			mo.mesh.Elems[i].MatID = 1
		case nz > 1e-9:
			mo.mesh.Elems[i].MatID = 2
		default:
			mo.mesh.Elems[i].MatID = 3
		}
	}
}

// Newell法计算多边形面法向的z分量
func newellNormalZ(m *Mesh.Mesh, refs []int) float64 {
	var nz float64
	n := len(refs)
	for i := 0; i < n; i++ {
		p := m.Nodes[refs[i]-1]
		q := m.Nodes[refs[(i+1)%n]-1]
		nz += (p.X - q.X) * (p.Y + q.Y)
	}
	return nz
}
