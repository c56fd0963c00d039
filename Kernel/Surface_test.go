package Kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSurface(t *testing.T) {
	ks := NewSession()
	vol := stackedVolume(t, ks)

	surf, err := ks.ExtractSurface(vol)
	require.NoError(t, err)
	m := surf.Raw()

	// 底2三角+顶2三角+侧面4边x2带=12个外表面
	assert.Equal(t, 12, m.ElemCount())
	assert.Equal(t, KindSurface, surf.Kind())

	tris, quads := 0, 0
	for _, e := range m.Elems {
		switch e.Type {
		case "tri":
			tris++
		case "quad":
			quads++
		}
	}
	assert.Equal(t, 4, tris)
	assert.Equal(t, 8, quads)

	// 溯源属性指向合法的父单元/父节点
	idelem0 := m.FindCellAtt("idelem0")
	require.NotNil(t, idelem0)
	for _, v := range idelem0.Values {
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, float64(vol.Raw().ElemCount()))
	}
	idnode0 := m.FindNodeAtt("idnode0")
	require.NotNil(t, idnode0)
	for _, v := range idnode0.Values {
		assert.GreaterOrEqual(t, v, 1.0)
		assert.LessOrEqual(t, v, float64(vol.Raw().NodeCount()))
	}
}

func TestExtractSurfaceCarriesLayertyp(t *testing.T) {
	ks := NewSession()
	vol := stackedVolume(t, ks)

	surf, err := ks.ExtractSurface(vol)
	require.NoError(t, err)

	lt := surf.Raw().FindNodeAtt("layertyp")
	require.NotNil(t, lt)
	top, bot := 0, 0
	for _, v := range lt.Values {
		switch v {
		case -2:
			top++
		case -1:
			bot++
		}
	}
	// 顶底层面各4个节点
	assert.Equal(t, 4, top)
	assert.Equal(t, 4, bot)
}

func TestExtractSurfaceRejectsNonVolume(t *testing.T) {
	ks := NewSession()
	tri := triSurfaceMO(ks)
	_, err := ks.ExtractSurface(tri)
	var ke *KernelError
	require.ErrorAs(t, err, &ke)
	assert.Equal(t, "extract_surfmesh", ke.Op)
}

func TestSetTetsNormal(t *testing.T) {
	ks := NewSession()
	vol := stackedVolume(t, ks)
	surf, err := ks.ExtractSurface(vol)
	require.NoError(t, err)

	surf.SetTetsNormal()
	down, up, side := 0, 0, 0
	for _, e := range surf.Raw().Elems {
		switch e.MatID {
		case 1:
			down++
		case 2:
			up++
		case 3:
			side++
		}
	}
	// 三角面朝上或朝下，四边形侧面竖直
	assert.Equal(t, 4, down+up)
	assert.Equal(t, 8, side)
}
