package services

import (
	"github.com/GrainArc/TinMesh/Kernel"
	"github.com/GrainArc/TinMesh/Mesh"
)

// 加密尺度序列，从粗到细逐级逼近目标边长
var uniformScales = []float64{64, 32, 16, 8, 4, 2, 1}
var refineScales = []float64{64, 32, 16, 8}

// TriplaneService 平面三角网生成服务
type TriplaneService struct {
}

// triangulateBoundary 写出边界线文件并在内核中完成初始三角剖分
func (s *TriplaneService) triangulateBoundary(ks *Kernel.Session, ws *Workspace,
	boundary []Mesh.Point3D, counterclockwise bool) (*Kernel.MO, error) {

	polyFile := ws.Path("boundary_line.inp")
	if err := Mesh.WriteLineAVS(polyFile, Mesh.BoundaryPolyline(boundary, false), nil, nil, nil); err != nil {
		return nil, err
	}

	moTmp, err := ks.Read(polyFile)
	if err != nil {
		return nil, err
	}
	motri := ks.Create(Kernel.KindTriplane)
	motri.CopyPts(moTmp)
	moTmp.Delete()

	if err := motri.Triangulate(counterclockwise); err != nil {
		return nil, err
	}
	motri.SetAtt("imt", 1)
	motri.SetAtt("itetclr", 1)
	motri.ResetPtsITP()
	return motri, nil
}

// BuildUniform 生成均匀边长的三角网。
// 从64倍目标边长开始逐级Rivara加密，每级之后重连/平滑消除劣质单元，
// 最后做一轮整体整理并压缩未引用节点。
func (s *TriplaneService) BuildUniform(ks *Kernel.Session, boundary []Mesh.Point3D,
	minEdge float64, counterclockwise bool, outPath string) (*Kernel.MO, error) {

	if len(boundary) < 3 {
		return nil, Kernel.Validationf("边界节点数不足: %d", len(boundary))
	}
	if minEdge <= 0 {
		return nil, Kernel.Validationf("目标边长必须为正数: %g", minEdge)
	}

	ws, err := NewWorkspace()
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	motri, err := s.triangulateBoundary(ks, ws, boundary, counterclockwise)
	if err != nil {
		return nil, err
	}

	for _, scale := range uniformScales {
		ln := minEdge * scale
		if err := motri.RefineRivara(ln); err != nil {
			return nil, err
		}
		for i := 0; i < 3; i++ {
			motri.Recon(0)
			motri.Smooth()
		}
		motri.RmpointCompress(false)
	}

	for i := 0; i < 6; i++ {
		motri.Smooth()
		motri.Recon(0)
		motri.RmpointCompress(true)
	}
	motri.RmpointCompress(false)
	motri.Recon(1)
	motri.Smooth()
	motri.Recon(0)
	motri.Recon(1)

	if outPath != "" {
		if err := motri.Dump(outPath); err != nil {
			return nil, err
		}
	}
	return motri, nil
}

// BuildRefined 生成沿特征线加密的三角网。
// 先按均匀尺度序列整理到基准边长h，每级平滑前对内部节点做微小随机扰动
// 打破规则网格的对称性，再按到特征线的距离做两级梯度加密：
// 细加密目标边长 slope*d + h*(1-slope*refineDist)，
// 粗加密目标边长 0.5*slope*d + h*(1-0.5*slope*refineDist)。
func (s *TriplaneService) BuildRefined(ks *Kernel.Session, boundary, feature []Mesh.Point3D,
	h, slope, refineDist float64, outPath string) (*Kernel.MO, error) {

	if len(boundary) < 3 {
		return nil, Kernel.Validationf("边界节点数不足: %d", len(boundary))
	}
	if len(feature) == 0 {
		return nil, Kernel.Validationf("特征线节点为空")
	}
	if h <= 0 {
		return nil, Kernel.Validationf("基准边长必须为正数: %g", h)
	}

	ws, err := NewWorkspace()
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	featureFile := ws.Path("feature_line.inp")
	// 特征线只取节点位置参与距离场计算，不需要连接关系
	if err := Mesh.WriteLineAVS(featureFile, &Mesh.Polyline{Nodes: feature}, nil, nil, nil); err != nil {
		return nil, err
	}
	moFeature, err := ks.Read(featureFile)
	if err != nil {
		return nil, err
	}

	motri, err := s.triangulateBoundary(ks, ws, boundary, false)
	if err != nil {
		return nil, err
	}

	for _, scale := range refineScales {
		if err := motri.Massage(scale * h); err != nil {
			return nil, err
		}
		for i := 0; i < 3; i++ {
			motri.Recon(0)
			motri.Smooth()
		}
		motri.Recon(0)

		motri.ResetPtsITP()
		pMove, err := motri.PSetAttribute("itp", 0, Kernel.CmpEq)
		if err != nil {
			return nil, err
		}
		perturb := 0.05 * scale * h
		motri.Perturb(pMove, perturb, perturb)

		for i := 0; i < 3; i++ {
			motri.Recon(0)
			motri.Smooth()
		}
		motri.Recon(0)
		for i := 0; i < 3; i++ {
			motri.Smooth()
			motri.Recon(0)
		}
	}

	// 梯度加密使用的临时字段
	motri.AddAtt("x_four", false, false)
	motri.AddAtt("fac_n", false, false)

	if err := motri.MassageGraded(slope, h*(1-slope*refineDist), moFeature); err != nil {
		return nil, err
	}
	motri.SmoothN(1)
	for i := 0; i < 3; i++ {
		motri.Smooth()
		motri.Recon(0)
	}

	if err := motri.MassageGraded(0.5*slope, h*(1-0.5*slope*refineDist), moFeature); err != nil {
		return nil, err
	}
	motri.SmoothN(10)
	for i := 0; i < 3; i++ {
		motri.Smooth()
		motri.Recon(0)
	}

	motri.DelAtt("x_four")
	motri.DelAtt("fac_n")
	moFeature.Delete()

	if outPath != "" {
		if err := motri.Dump(outPath); err != nil {
			return nil, err
		}
	}
	return motri, nil
}
