package Kernel

import (
	"testing"

	"github.com/GrainArc/TinMesh/Mesh"
	"github.com/GrainArc/TinMesh/Raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoGrid() *Raster.Grid {
	g := Raster.NewGrid(3, 3, 0, 0, 10, -9999)
	for i := range g.Data {
		g.Data[i] = float64(100 + i)
	}
	return g
}

func TestReadSheetIJ(t *testing.T) {
	ks := NewSession()
	mo := ks.ReadSheetIJ(demoGrid(), false)

	m := mo.Raw()
	assert.Equal(t, 9, m.NodeCount())
	assert.Equal(t, 4, m.ElemCount())
	assert.Equal(t, "quad", m.Elems[0].Type)
	// 数据第0行对应北侧
	assert.Equal(t, 100.0, m.Nodes[0].Z)
	assert.Equal(t, 20.0, m.Nodes[0].Y)
	assert.Equal(t, KindSheet, mo.Kind())
}

func TestReadSheetIJFlip(t *testing.T) {
	ks := NewSession()
	mo := ks.ReadSheetIJ(demoGrid(), true)
	// 镜像后数据第0行排在南侧
	assert.Equal(t, 0.0, mo.Raw().Nodes[0].Y)
	assert.Equal(t, 100.0, mo.Raw().Nodes[0].Z)
}

func TestExtrude(t *testing.T) {
	ks := NewSession()
	sheet := ks.ReadSheetIJ(demoGrid(), false)
	vol, err := sheet.Extrude(50)
	require.NoError(t, err)

	m := vol.Raw()
	assert.Equal(t, 18, m.NodeCount())
	assert.Equal(t, 4, m.ElemCount())
	assert.Equal(t, "hex", m.Elems[0].Type)
	assert.Equal(t, m.Nodes[0].Z-50, m.Nodes[9].Z)
	assert.Equal(t, KindVolume, vol.Kind())
}

// 公共的双三角形地表，供分层相关用例使用
func triSurfaceMO(ks *Session) *MO {
	m := &Mesh.Mesh{
		Nodes: []Mesh.Point3D{
			{X: 0, Y: 0, Z: 0}, {X: 10, Y: 0, Z: 0},
			{X: 10, Y: 10, Z: 0}, {X: 0, Y: 10, Z: 0},
		},
		Elems: []Mesh.Element{
			{MatID: 1, Type: "tri", Refs: []int{1, 2, 3}},
			{MatID: 1, Type: "tri", Refs: []int{1, 3, 4}},
		},
	}
	mo := ks.Create(KindTriplane)
	*mo.Raw() = *m
	return mo
}

func stackedVolume(t *testing.T, ks *Session) *MO {
	top := triSurfaceMO(ks)
	mid := top.Copy()
	require.NoError(t, mid.MathSubNodes("zic", 10))
	bot := top.Copy()
	require.NoError(t, bot.MathSubNodes("zic", 20))

	stack, err := ks.StackLayers([]*MO{bot, mid, top}, nil, []int{2, 1}, nil)
	require.NoError(t, err)
	vol, err := stack.StackFill()
	require.NoError(t, err)
	return vol
}

func TestStackLayersLayertyp(t *testing.T) {
	ks := NewSession()
	top := triSurfaceMO(ks)
	mid := top.Copy()
	require.NoError(t, mid.MathSubNodes("zic", 10))
	bot := top.Copy()
	require.NoError(t, bot.MathSubNodes("zic", 20))

	stack, err := ks.StackLayers([]*MO{bot, mid, top}, nil, []int{2, 1}, nil)
	require.NoError(t, err)

	m := stack.Raw()
	assert.Equal(t, 12, m.NodeCount())
	lt := m.FindNodeAtt("layertyp")
	require.NotNil(t, lt)
	for i := 0; i < 4; i++ {
		assert.Equal(t, -1.0, lt.Values[i])
	}
	for i := 8; i < 12; i++ {
		assert.Equal(t, -2.0, lt.Values[i])
	}
	assert.Equal(t, 0.0, lt.Values[5])
}

func TestStackLayersRejectsMismatchedSurfaces(t *testing.T) {
	ks := NewSession()
	a := triSurfaceMO(ks)
	b := triSurfaceMO(ks)
	b.Raw().Nodes = b.Raw().Nodes[:3]
	b.Raw().Elems = b.Raw().Elems[:1]

	_, err := ks.StackLayers([]*MO{a, b}, nil, []int{1}, nil)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestStackFill(t *testing.T) {
	ks := NewSession()
	vol := stackedVolume(t, ks)

	m := vol.Raw()
	assert.Equal(t, 4, m.ElemCount())
	for _, e := range m.Elems {
		assert.Equal(t, "prism", e.Type)
	}
	// 堆叠带自底向上排列，底带材料2，顶带材料1
	assert.Equal(t, 2, m.Elems[0].MatID)
	assert.Equal(t, 2, m.Elems[1].MatID)
	assert.Equal(t, 1, m.Elems[2].MatID)
	assert.Equal(t, 1, m.Elems[3].MatID)

	minZ, maxZ := m.Nodes[0].Z, m.Nodes[0].Z
	for _, p := range m.Nodes {
		if p.Z < minZ {
			minZ = p.Z
		}
		if p.Z > maxZ {
			maxZ = p.Z
		}
	}
	assert.Equal(t, 20.0, maxZ-minZ)
}

func TestStackFillSublayers(t *testing.T) {
	ks := NewSession()
	top := triSurfaceMO(ks)
	bot := top.Copy()
	require.NoError(t, bot.MathSubNodes("zic", 20))

	stack, err := ks.StackLayers([]*MO{bot, top}, []int{2}, []int{3}, nil)
	require.NoError(t, err)
	vol, err := stack.StackFill()
	require.NoError(t, err)

	// 单间隙细分为2带：3层节点、4个棱柱
	assert.Equal(t, 12, vol.Raw().NodeCount())
	assert.Equal(t, 4, vol.Raw().ElemCount())
}

func TestAddVolumeAtt(t *testing.T) {
	ks := NewSession()
	vol := stackedVolume(t, ks)
	require.NoError(t, vol.AddVolumeAtt("cell_vol"))

	att := vol.Raw().FindCellAtt("cell_vol")
	require.NotNil(t, att)
	var total float64
	for _, v := range att.Values {
		assert.InDelta(t, 500.0, v, 1e-9)
		total += v
	}
	assert.InDelta(t, 2000.0, total, 1e-9)
}
