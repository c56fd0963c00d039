package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/GrainArc/TinMesh/Kernel"
	"github.com/GrainArc/TinMesh/Mesh"
)

// Facesets 边界面组定义。All为每个边界节点的侧面分组号，
// Top为顶面出口标记（可选，非零节点处的顶面第一环单元单独成组）。
type Facesets struct {
	All []int
	Top []int
}

// FacesetService 体网格外表面分组导出服务
type FacesetService struct {
}

// 侧面在id_side中的缺省分组号，顶面为2，底面为1
const sideDefaultID = 3

// shiftAttributes 把分组号平移到从1开始并校验连续性
func shiftAttributes(attrs []int) ([]int, int, error) {
	min := attrs[0]
	for _, a := range attrs {
		if a < min {
			min = a
		}
	}
	shifted := make([]int, len(attrs))
	seen := map[int]bool{}
	for i, a := range attrs {
		shifted[i] = a - min + 1
		seen[shifted[i]] = true
	}
	for i := 1; i <= len(seen); i++ {
		if !seen[i] {
			return nil, 0, Kernel.Validationf("边界分组号不连续: 缺少第 %d 组", i)
		}
	}
	return shifted, len(seen), nil
}

// setTopBottom 把顶(2)底(1)分组写入id_side并同步到材料号
func setTopBottom(moSurf *Kernel.MO, eTop, eBot *Kernel.EltSet) error {
	if err := moSurf.SetAttElems("id_side", 2, eTop); err != nil {
		return err
	}
	if err := moSurf.SetAttElems("id_side", 1, eBot); err != nil {
		return err
	}
	return moSurf.CopyAtt("id_side", "itetclr")
}

// Classify 对分层体网格做外表面分组并导出带面组的网格文件。
// 底面组1、顶面组2，侧面按边界节点分组号映射到组3..k+2；
// 指定Top时，顶面出口一环单元追加为第k+3组。
func (s *FacesetService) Classify(ks *Kernel.Session, meshPath string,
	boundary []Mesh.Point3D, fs *Facesets, outPath string) error {

	if len(boundary) < 3 {
		return Kernel.Validationf("边界节点数不足: %d", len(boundary))
	}
	if fs == nil || len(fs.All) != len(boundary) {
		return Kernel.Validationf("边界分组号数量与边界节点数不一致")
	}
	hasTop := fs.Top != nil
	if hasTop && len(fs.Top) != len(boundary) {
		return Kernel.Validationf("顶面出口标记数量与边界节点数不一致")
	}

	shifted, groups, err := shiftAttributes(fs.All)
	if err != nil {
		return err
	}

	ws, err := NewWorkspace()
	if err != nil {
		return err
	}
	defer ws.Close()

	// 边界线写成闭合折线，线材料号即分组号，出口标记挂为单元属性
	poly := Mesh.BoundaryPolyline(boundary, true)
	var cellAtts []Mesh.Attribute
	if hasTop {
		outlet := make([]float64, len(fs.Top))
		for i, v := range fs.Top {
			outlet[i] = float64(v)
		}
		cellAtts = []Mesh.Attribute{{Name: "ioutlet", Integer: true, Values: outlet}}
	}
	bndryFile := ws.Path("boundary_fs.inp")
	if err := Mesh.WriteLineAVS(bndryFile, poly, shifted, nil, cellAtts); err != nil {
		return err
	}

	moIn, err := ks.Read(meshPath)
	if err != nil {
		return err
	}
	defer moIn.Delete()
	moIn.ResetPtsITP()

	moBndry, err := ks.Read(bndryFile)
	if err != nil {
		return err
	}
	defer moBndry.Delete()
	moBndry.ResetPtsITP()

	moSurf, err := ks.ExtractSurface(moIn)
	if err != nil {
		return err
	}
	defer moSurf.Delete()

	// 法向朝向分出顶/底/侧的初分类
	moSurf.AddAtt("id_side", true, true)
	moSurf.SetTetsNormal()
	if err := moSurf.CopyAtt("itetclr", "id_side"); err != nil {
		return err
	}
	for _, att := range []string{"idnode0", "idelem0", "idface0"} {
		moSurf.DelAtt(att)
	}

	// 层型属性比法向更可靠，用其覆盖顶底分类
	if err := moSurf.SetAtt("id_side", sideDefaultID); err != nil {
		return err
	}
	pTop, err := moSurf.PSetAttribute("layertyp", -2, Kernel.CmpEq)
	if err != nil {
		return err
	}
	pBot, err := moSurf.PSetAttribute("layertyp", -1, Kernel.CmpEq)
	if err != nil {
		return err
	}
	eTop := pTop.EltSet(Kernel.MemberExclusive)
	eBot := pBot.EltSet(Kernel.MemberExclusive)
	if err := setTopBottom(moSurf, eTop, eBot); err != nil {
		return err
	}

	moSurf.AddAtt("imt", false, true)
	eSides, err := moSurf.EltSetAttribute("id_side", sideDefaultID, Kernel.CmpEq)
	if err != nil {
		return err
	}
	if err := moSurf.SetAttNodes("imt", 2, pTop); err != nil {
		return err
	}
	if err := moSurf.SetAttNodes("imt", 1, pBot); err != nil {
		return err
	}
	if err := moSurf.SetAttNodes("imt", 3, eSides.PSet()); err != nil {
		return err
	}

	// 压平后在平面内把边界线材料号映射到侧面单元。
	// 线材料整体+2，避开顶(2)底(1)的保留组号。
	moSurf.AddAtt("zsave", false, false)
	if err := moSurf.CopyAtt("zic", "zsave"); err != nil {
		return err
	}
	if err := moSurf.SetAtt("zic", 0); err != nil {
		return err
	}
	if err := moBndry.SetAtt("zic", 0); err != nil {
		return err
	}
	if err := moBndry.MathAddElems("itetclr", 2, nil); err != nil {
		return err
	}
	if err := moSurf.Interpolate(Kernel.SchemeMap, "id_side", moBndry, "itetclr", eSides); err != nil {
		return err
	}
	if hasTop {
		moSurf.AddAtt("ioutlet", true, true)
		if err := moSurf.Interpolate(Kernel.SchemeMap, "ioutlet", moBndry, "ioutlet", eSides); err != nil {
			return err
		}
	}
	if err := moSurf.CopyAtt("zsave", "zic"); err != nil {
		return err
	}
	moSurf.DelAtt("zsave")

	// 映射可能波及顶底面单元，重设一遍保证互斥
	if err := setTopBottom(moSurf, eTop, eBot); err != nil {
		return err
	}

	facesetCount := groups + 2

	if hasTop {
		// 顶面中与出口边界相邻的一环单元单独成组
		moSurf.AddAtt("ilayer", true, true)
		if err := moSurf.SetAtt("ilayer", 0); err != nil {
			return err
		}
		eTopTouch := pTop.EltSet(Kernel.MemberInclusive)
		if err := moSurf.SetAttElems("ilayer", 1, eTopTouch); err != nil {
			return err
		}
		if err := moSurf.SetAttElems("ilayer", 0, eTop); err != nil {
			return err
		}
		eRing, err := moSurf.EltSetAttribute("ilayer", 1, Kernel.CmpEq)
		if err != nil {
			return err
		}
		eOutlet, err := moSurf.EltSetAttribute("ioutlet", 2, Kernel.CmpEq)
		if err != nil {
			return err
		}
		facesetCount++
		eBoth := moSurf.EltSetInter([]*Kernel.EltSet{eRing, eOutlet})
		if err := moSurf.SetAttElems("id_side", float64(facesetCount), eBoth); err != nil {
			return err
		}
		moSurf.DelAtt("ioutlet")
		moSurf.DelAtt("ilayer")
	}

	// 逐组抽取面单元写出面组文件
	var facesetFiles []string
	for ssID := 1; ssID <= facesetCount; ssID++ {
		moTmp := moSurf.Copy()
		eKeep, err := moTmp.EltSetAttribute("id_side", float64(ssID), Kernel.CmpEq)
		if err != nil {
			moTmp.Delete()
			return err
		}
		eDrop := moTmp.EltSetNot([]*Kernel.EltSet{eKeep})
		moTmp.RmpointEltset(eDrop, true, false)
		moTmp.DelAtt("layertyp")
		moTmp.DelAtt("id_side")
		fname := ws.Path(fmt.Sprintf("ss%d_fs.faceset", ssID))
		if err := moTmp.Dump(fname); err != nil {
			moTmp.Delete()
			return err
		}
		moTmp.Delete()
		facesetFiles = append(facesetFiles, fname)
	}

	return moIn.DumpFacesetRegions(outPath, facesetFiles)
}

// Naive 不区分侧面分组的简化导出：底面、顶面、全部侧面共三组
func (s *FacesetService) Naive(ks *Kernel.Session, meshPath string,
	boundary []Mesh.Point3D, outPath string) error {

	attrs := make([]int, len(boundary))
	for i := range attrs {
		attrs[i] = 1
	}
	return s.Classify(ks, meshPath, boundary, &Facesets{All: attrs}, outPath)
}

// FromCoordinates 由标记点坐标生成边界分组号。
// 每个标记点吸附到最近的边界节点，相邻标记点之间的半开区间
// 自编号最小的区间起依次取组号2、3、…，其余节点为组1。
func FromCoordinates(coords []Mesh.Point2D, boundary []Mesh.Point3D) []int {
	matIDs := make([]int, len(boundary))
	for i := range matIDs {
		matIDs[i] = 1
	}
	if len(coords) < 2 || len(boundary) == 0 {
		return matIDs
	}

	markers := make([]int, 0, len(coords))
	for _, c := range coords {
		best, bestDist := 0, math.Inf(1)
		for i, p := range boundary {
			d := math.Hypot(p.X-c.X, p.Y-c.Y)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		markers = append(markers, best)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(markers)))
	id := 2
	for j := len(markers) - 1; j >= 1; j-- {
		for i := markers[j]; i < markers[j-1] && i < len(matIDs); i++ {
			matIDs[i] = id
		}
		id++
	}
	return matIDs
}
