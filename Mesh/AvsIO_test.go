package Mesh

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMesh() *Mesh {
	return &Mesh{
		Nodes: []Point3D{
			{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 10, 0},
		},
		Elems: []Element{
			{MatID: 1, Type: "tri", Refs: []int{1, 2, 3}},
			{MatID: 2, Type: "tri", Refs: []int{1, 3, 4}},
		},
		NodeAtts: []Attribute{
			{Name: "imt", Integer: true, Values: []float64{1, 1, 2, 2}},
		},
		CellAtts: []Attribute{
			{Name: "cell_vol", Values: []float64{50, 50}},
		},
	}
}

func TestWriteReadAVSRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.inp")
	src := sampleMesh()
	require.NoError(t, WriteAVS(path, src))

	got, err := ReadAVS(path)
	require.NoError(t, err)

	assert.Equal(t, src.NodeCount(), got.NodeCount())
	assert.Equal(t, src.ElemCount(), got.ElemCount())
	assert.Equal(t, src.Nodes, got.Nodes)
	assert.Equal(t, 2, got.Elems[1].MatID)
	assert.Equal(t, "tri", got.Elems[0].Type)

	imt := got.FindNodeAtt("imt")
	require.NotNil(t, imt)
	assert.True(t, imt.Integer)
	assert.Equal(t, []float64{1, 1, 2, 2}, imt.Values)

	vol := got.FindCellAtt("cell_vol")
	require.NotNil(t, vol)
	assert.False(t, vol.Integer)
}

func TestWriteAVSAttributeLengthMismatch(t *testing.T) {
	m := sampleMesh()
	m.NodeAtts[0].Values = m.NodeAtts[0].Values[:2]
	err := WriteAVS(filepath.Join(t.TempDir(), "bad.inp"), m)
	assert.Error(t, err)
}

func TestWriteLineAVS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "line.inp")
	nodes := []Point3D{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	pl := BoundaryPolyline(nodes, true)
	require.NoError(t, WriteLineAVS(path, pl, []int{1, 2, 3}, nil, nil))

	got, err := ReadAVS(path)
	require.NoError(t, err)
	assert.Equal(t, 3, got.NodeCount())
	assert.Equal(t, 3, got.ElemCount())
	assert.Equal(t, "line", got.Elems[0].Type)
	assert.Equal(t, 2, got.Elems[1].MatID)
}

func TestWriteLineAVSMaterialMismatch(t *testing.T) {
	nodes := []Point3D{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}}
	pl := BoundaryPolyline(nodes, true)
	err := WriteLineAVS(filepath.Join(t.TempDir(), "bad.inp"), pl, []int{1}, nil, nil)
	assert.Error(t, err)
}
