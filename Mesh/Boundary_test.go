package Mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineConnectivityOpen(t *testing.T) {
	lines := LineConnectivity(4, false)
	assert.Equal(t, [][2]int{{1, 2}, {2, 3}, {3, 4}}, lines)
}

func TestLineConnectivityClosed(t *testing.T) {
	lines := LineConnectivity(4, true)
	assert.Len(t, lines, 4)
	assert.Equal(t, [2]int{4, 1}, lines[3])
}

func TestLineConnectivityDegenerate(t *testing.T) {
	assert.Nil(t, LineConnectivity(1, false))
	assert.Nil(t, LineConnectivity(0, true))
}

func TestBoundaryPolyline(t *testing.T) {
	nodes := []Point3D{{X: 0}, {X: 1}, {X: 2}}
	pl := BoundaryPolyline(nodes, true)
	assert.Equal(t, nodes, pl.Nodes)
	assert.Equal(t, [][2]int{{1, 2}, {2, 3}, {3, 1}}, pl.Lines)
}
