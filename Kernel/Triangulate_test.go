package Kernel

import (
	"testing"

	"github.com/GrainArc/TinMesh/Mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 凸四边形边界，四点不共圆，面积90
func quadBoundary() []Mesh.Point3D {
	return []Mesh.Point3D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 8},
	}
}

func newBoundaryMO(ks *Session, ring []Mesh.Point3D) *MO {
	mo := ks.Create(KindLine)
	mo.Raw().Nodes = append(mo.Raw().Nodes, ring...)
	return mo
}

func triAreaSigned(m *Mesh.Mesh, e Mesh.Element) float64 {
	a := m.Nodes[e.Refs[0]-1]
	b := m.Nodes[e.Refs[1]-1]
	c := m.Nodes[e.Refs[2]-1]
	return signedArea2(a.X, a.Y, b.X, b.Y, c.X, c.Y) / 2
}

func TestTriangulateConvexQuad(t *testing.T) {
	ks := NewSession()
	mo := newBoundaryMO(ks, quadBoundary())
	require.NoError(t, mo.Triangulate(true))

	m := mo.Raw()
	assert.Equal(t, 4, m.NodeCount())
	assert.Equal(t, 2, m.ElemCount())

	var total float64
	for _, e := range m.Elems {
		area := triAreaSigned(m, e)
		assert.Greater(t, area, 0.0, "expected counterclockwise winding")
		assert.Equal(t, 1, e.MatID)
		total += area
	}
	assert.InDelta(t, 90.0, total, 1e-9)
}

func TestTriangulateClockwise(t *testing.T) {
	ks := NewSession()
	mo := newBoundaryMO(ks, quadBoundary())
	require.NoError(t, mo.Triangulate(false))

	for _, e := range mo.Raw().Elems {
		assert.Less(t, triAreaSigned(mo.Raw(), e), 0.0)
	}
}

func TestTriangulateConcaveBoundary(t *testing.T) {
	// L形边界，凹角外的三角形必须被剔除
	ring := []Mesh.Point3D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 5},
		{X: 5, Y: 5}, {X: 5, Y: 10}, {X: 0, Y: 10},
	}
	ks := NewSession()
	mo := newBoundaryMO(ks, ring)
	require.NoError(t, mo.Triangulate(true))

	var total float64
	for _, e := range mo.Raw().Elems {
		total += triAreaSigned(mo.Raw(), e)
	}
	assert.InDelta(t, 75.0, total, 1e-9)
}

func TestTriangulateDegenerate(t *testing.T) {
	ks := NewSession()
	mo := newBoundaryMO(ks, quadBoundary()[:2])
	err := mo.Triangulate(true)
	require.Error(t, err)

	var ke *KernelError
	assert.ErrorAs(t, err, &ke)
	assert.Equal(t, "triangulate", ke.Op)
}

func TestTriangulateMarksBoundaryNodes(t *testing.T) {
	ks := NewSession()
	mo := newBoundaryMO(ks, quadBoundary())
	require.NoError(t, mo.Triangulate(true))

	itp := mo.Raw().FindNodeAtt("itp")
	require.NotNil(t, itp)
	for i, v := range itp.Values {
		assert.Equal(t, 10.0, v, "node %d should be on the boundary", i+1)
	}
}
