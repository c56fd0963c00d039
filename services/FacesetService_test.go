package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GrainArc/TinMesh/Kernel"
	"github.com/GrainArc/TinMesh/Mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 10个沿x轴排列的边界节点
func lineBoundary(n int) []Mesh.Point3D {
	pts := make([]Mesh.Point3D, n)
	for i := range pts {
		pts[i] = Mesh.Point3D{X: float64(i)}
	}
	return pts
}

func TestFromCoordinatesTwoMarkers(t *testing.T) {
	boundary := lineBoundary(10)
	ids := FromCoordinates([]Mesh.Point2D{{X: 2}, {X: 7}}, boundary)

	want := []int{1, 1, 2, 2, 2, 2, 2, 1, 1, 1}
	assert.Equal(t, want, ids)
}

func TestFromCoordinatesThreeMarkers(t *testing.T) {
	boundary := lineBoundary(10)
	ids := FromCoordinates([]Mesh.Point2D{{X: 9}, {X: 7}, {X: 2}}, boundary)

	// 由最小标记区段起依次编号：[2,7)组2，[7,9)组3
	want := []int{1, 1, 2, 2, 2, 2, 2, 3, 3, 1}
	assert.Equal(t, want, ids)
}

func TestFromCoordinatesSnapsToNearest(t *testing.T) {
	boundary := lineBoundary(5)
	ids := FromCoordinates([]Mesh.Point2D{{X: 1.2}, {X: 3.4}}, boundary)
	assert.Equal(t, []int{1, 2, 2, 1, 1}, ids)
}

func TestFromCoordinatesDegenerate(t *testing.T) {
	boundary := lineBoundary(4)
	assert.Equal(t, []int{1, 1, 1, 1}, FromCoordinates(nil, boundary))
	assert.Equal(t, []int{1, 1, 1, 1}, FromCoordinates([]Mesh.Point2D{{X: 2}}, boundary))
}

func TestShiftAttributesContiguous(t *testing.T) {
	shifted, groups, err := shiftAttributes([]int{3, 5, 4, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 2, 1}, shifted)
	assert.Equal(t, 3, groups)
}

func TestShiftAttributesNonSequential(t *testing.T) {
	_, _, err := shiftAttributes([]int{1, 4, 3})
	var ve *Kernel.ValidationError
	require.ErrorAs(t, err, &ve)
}

// 搭建一个双层棱柱体网格文件供面组导出使用
func buildStackedMeshFile(t *testing.T, ks *Kernel.Session, dir string) string {
	t.Helper()
	tri := &Mesh.Mesh{
		Nodes: []Mesh.Point3D{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
		},
		Elems: []Mesh.Element{
			{MatID: 1, Type: "tri", Refs: []int{1, 2, 3}},
			{MatID: 1, Type: "tri", Refs: []int{1, 3, 4}},
		},
	}
	triPath := filepath.Join(dir, "triplane.inp")
	require.NoError(t, Mesh.WriteAVS(triPath, tri))

	laySvc := &LayerService{}
	outPath := filepath.Join(dir, "stacked.inp")
	req := &StackRequest{Thicknesses: []float64{0, 10, 20}, MatIDs: []int{0, 1, 2}}
	_, err := laySvc.Stack(ks, triPath, req, outPath)
	require.NoError(t, err)
	return outPath
}

// readFacesetParts 解析打包输出中逐个内嵌的面组网格
func readFacesetParts(t *testing.T, path string) []*Mesh.Mesh {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	parts := strings.Split(string(data), "faceset ")
	meshes := make([]*Mesh.Mesh, 0, len(parts)-1)
	dir := t.TempDir()
	for i, part := range parts[1:] {
		// 每段首行是面组文件名，其后是内嵌网格正文
		nl := strings.Index(part, "\n")
		require.GreaterOrEqual(t, nl, 0)
		tmp := filepath.Join(dir, fmt.Sprintf("part%d.inp", i))
		require.NoError(t, os.WriteFile(tmp, []byte(part[nl+1:]), 0o644))
		m, err := Mesh.ReadAVS(tmp)
		require.NoError(t, err)
		meshes = append(meshes, m)
	}
	return meshes
}

// elemCentroidKeys 以单元质心为键，用于跨网格比对单元集合
func elemCentroidKeys(m *Mesh.Mesh) map[string]bool {
	keys := map[string]bool{}
	for _, e := range m.Elems {
		var x, y, z float64
		for _, ref := range e.Refs {
			p := m.Nodes[ref-1]
			x += p.X
			y += p.Y
			z += p.Z
		}
		n := float64(len(e.Refs))
		keys[fmt.Sprintf("%.6f_%.6f_%.6f", x/n, y/n, z/n)] = true
	}
	return keys
}

// assertFacesetPartition 校验各面组互不相交且并集恰为全部外表面单元
func assertFacesetPartition(t *testing.T, ks *Kernel.Session, meshPath string,
	facesets []*Mesh.Mesh) {
	t.Helper()

	moIn, err := ks.Read(meshPath)
	require.NoError(t, err)
	defer moIn.Delete()
	moSurf, err := ks.ExtractSurface(moIn)
	require.NoError(t, err)
	defer moSurf.Delete()
	want := elemCentroidKeys(moSurf.Raw())

	union := map[string]bool{}
	total := 0
	for _, fs := range facesets {
		assert.NotZero(t, fs.ElemCount())
		total += fs.ElemCount()
		for k := range elemCentroidKeys(fs) {
			union[k] = true
		}
	}
	// 并集大小等于各组单元数之和即互不相交
	assert.Equal(t, total, len(union))
	assert.Equal(t, want, union)
}

func TestClassifyExportsDisjointFacesets(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	meshPath := buildStackedMeshFile(t, ks, dir)

	boundary := []Mesh.Point3D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	outPath := filepath.Join(dir, "mesh_fs.inp")
	fsSvc := &FacesetService{}
	err := fsSvc.Classify(ks, meshPath, boundary,
		&Facesets{All: []int{1, 1, 2, 2}}, outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	text := string(data)
	// 两个侧面组加顶底共4个面组
	assert.Equal(t, 4, strings.Count(text, "faceset "))
	assert.Contains(t, text, "regions")

	parts := readFacesetParts(t, outPath)
	require.Len(t, parts, 4)
	// 顶底各2个三角形，两个侧面组各覆盖两侧共4个四边形
	assert.Equal(t, 2, parts[0].ElemCount())
	assert.Equal(t, 2, parts[1].ElemCount())
	assert.Equal(t, 4, parts[2].ElemCount())
	assert.Equal(t, 4, parts[3].ElemCount())
	assertFacesetPartition(t, ks, meshPath, parts)
}

func TestClassifyTopOutletSplit(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	meshPath := buildStackedMeshFile(t, ks, dir)

	boundary := []Mesh.Point3D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	outPath := filepath.Join(dir, "mesh_outlet.inp")
	fsSvc := &FacesetService{}
	// 出口标记落在x=10与y=10两条边界边上
	err := fsSvc.Classify(ks, meshPath, boundary,
		&Facesets{All: []int{1, 1, 2, 2}, Top: []int{0, 2, 2, 0}}, outPath)
	require.NoError(t, err)

	parts := readFacesetParts(t, outPath)
	// 指定出口时顶层出口环单元追加为第5组
	require.Len(t, parts, 5)
	assert.Equal(t, 2, parts[4].ElemCount())
	assertFacesetPartition(t, ks, meshPath, parts)
}

func TestClassifyRejectsMismatchedAttributes(t *testing.T) {
	ks := Kernel.NewSession()
	fsSvc := &FacesetService{}
	boundary := lineBoundary(4)
	err := fsSvc.Classify(ks, "unused.inp", boundary, &Facesets{All: []int{1}}, "out.inp")
	var ve *Kernel.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestNaiveExportsThreeFacesets(t *testing.T) {
	dir := t.TempDir()
	ks := Kernel.NewSession()
	meshPath := buildStackedMeshFile(t, ks, dir)

	boundary := []Mesh.Point3D{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}
	outPath := filepath.Join(dir, "mesh_naive.inp")
	fsSvc := &FacesetService{}
	require.NoError(t, fsSvc.Naive(ks, meshPath, boundary, outPath))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "faceset "))
}
