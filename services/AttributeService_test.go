package services

import (
	"testing"

	"github.com/GrainArc/TinMesh/Kernel"
	"github.com/GrainArc/TinMesh/Mesh"
	"github.com/GrainArc/TinMesh/Raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 平面 z = x 的DEM，覆盖[0,15]²
func slopeDem() *Raster.Grid {
	g := Raster.NewGrid(4, 4, 0, 0, 5, -9999)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			g.Set(r, c, float64(c)*5)
		}
	}
	return g
}

func TestAddElevation(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	triPath := writeTriplaneFile(t, dir)

	svc := &AttributeService{}
	mo, err := svc.AddElevation(ks, slopeDem(), triPath, false, "")
	require.NoError(t, err)

	for _, p := range mo.Raw().Nodes {
		assert.InDelta(t, p.X, p.Z, 1e-9)
	}

	// 默认覆盖写回原文件
	got, err := Mesh.ReadAVS(triPath)
	require.NoError(t, err)
	for _, p := range got.Nodes {
		assert.InDelta(t, p.X, p.Z, 1e-9)
	}
	assert.Nil(t, got.FindNodeAtt("z_new"))
}

// 平面 z = y 的DEM，第0行为北侧
func ridgeDem() *Raster.Grid {
	g := Raster.NewGrid(4, 4, 0, 0, 5, -9999)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			g.Set(r, c, float64(3-r)*5)
		}
	}
	return g
}

func TestAddElevationRowOrientation(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	triPath := writeTriplaneFile(t, dir)

	svc := &AttributeService{}
	// 缺省方向下北行数据贴到北侧节点，z随y增大
	mo, err := svc.AddElevation(ks, ridgeDem(), triPath, false, "")
	require.NoError(t, err)
	for _, p := range mo.Raw().Nodes {
		assert.InDelta(t, p.Y, p.Z, 1e-9)
	}
}

func TestAddElevationDropsNoDataNodes(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	triPath := writeTriplaneFile(t, dir)

	dem := slopeDem()
	dem.Set(0, 0, dem.NoData)

	svc := &AttributeService{}
	// 填充后不残留哨兵值，插值仍然成功
	_, err := svc.AddElevation(ks, dem, triPath, false, "")
	require.NoError(t, err)
}

func TestAddAttributeEncodesLayers(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	dem := Raster.NewGrid(4, 4, 0, 0, 5, -9999)
	stackedPath := buildStackedMeshFile(t, ks, dir)

	data := Raster.NewGrid(2, 2, 0, 0, 10, -9999)
	for i := range data.Data {
		data.Data[i] = 7
	}

	svc := &AttributeService{}
	mo, err := svc.AddAttribute(ks, data, dem, stackedPath, 2, "zone", nil, false, "")
	require.NoError(t, err)

	zone := mo.Raw().FindCellAtt("zone")
	require.NotNil(t, zone)
	// 单元自底向上分带：第1层编码7+10，第2层编码7+20
	assert.Equal(t, []float64{17, 17, 27, 27}, zone.Values)
	assert.Nil(t, mo.Raw().FindCellAtt("eslayer"))
}

func TestAddAttributeStretchesDataOverDem(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	dem := Raster.NewGrid(6, 6, 0, 0, 2, -9999)
	stackedPath := buildStackedMeshFile(t, ks, dir)

	// 数据栅格的地理参考与DEM完全不同，西列1东列2
	data := Raster.NewGrid(2, 2, 100, 100, 10, -9999)
	data.Data = []float64{1, 2, 1, 2}

	svc := &AttributeService{}
	mo, err := svc.AddAttribute(ks, data, dem, stackedPath, 2, "zone", nil, false, "")
	require.NoError(t, err)

	zone := mo.Raw().FindCellAtt("zone")
	require.NotNil(t, zone)
	// 数据按DEM范围拉伸取样：东侧三角形取东列值，西侧取西列值
	assert.Equal(t, []float64{12, 11, 22, 21}, zone.Values)
}

func TestAddAttributeSingleLayerSelection(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	dem := Raster.NewGrid(4, 4, 0, 0, 5, -9999)
	stackedPath := buildStackedMeshFile(t, ks, dir)

	data := Raster.NewGrid(2, 2, 0, 0, 10, -9999)
	for i := range data.Data {
		data.Data[i] = 7
	}

	svc := &AttributeService{}
	mo, err := svc.AddAttribute(ks, data, dem, stackedPath, 2, "zone", []float64{2}, false, "")
	require.NoError(t, err)

	zone := mo.Raw().FindCellAtt("zone")
	require.NotNil(t, zone)
	// 未选中的层保持零值
	assert.Equal(t, []float64{0, 0, 27, 27}, zone.Values)
}

func TestAddAttributeValidation(t *testing.T) {
	ks := Kernel.NewSession()
	dem := Raster.NewGrid(4, 4, 0, 0, 5, -9999)
	data := Raster.NewGrid(2, 2, 0, 0, 10, -9999)
	svc := &AttributeService{}
	var ve *Kernel.ValidationError

	_, err := svc.AddAttribute(ks, data, dem, "unused.inp", 2, "zone", []float64{1.5}, false, "")
	require.ErrorAs(t, err, &ve)

	_, err = svc.AddAttribute(ks, data, dem, "unused.inp", 2, "zone", []float64{3}, false, "")
	require.ErrorAs(t, err, &ve)

	_, err = svc.AddAttribute(ks, data, dem, "unused.inp", 0, "zone", nil, false, "")
	require.ErrorAs(t, err, &ve)
}
