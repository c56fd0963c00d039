package services

import (
	"github.com/GrainArc/TinMesh/Kernel"
	"github.com/GrainArc/TinMesh/Mesh"
)

// LayerService 分层体网格生成服务
type LayerService struct {
}

// StackRequest 分层参数。Thicknesses与MatIDs自顶向下排列，
// 首项厚度0/材料0代表地表面本身，缺省时自动补齐。
type StackRequest struct {
	Thicknesses []float64
	MatIDs      []int
	Sublayers   []int
	XYSubset    []Mesh.Point2D
}

// normalize 补齐地表占位项并校验长度一致
func (req *StackRequest) normalize() error {
	if len(req.Thicknesses) == 0 {
		return Kernel.Validationf("层厚列表为空")
	}
	if len(req.MatIDs) != len(req.Thicknesses) {
		return Kernel.Validationf("材料号数量 %d 与层厚数量 %d 不一致",
			len(req.MatIDs), len(req.Thicknesses))
	}
	if req.Sublayers != nil && len(req.Sublayers) != len(req.Thicknesses)-1 {
		return Kernel.Validationf("细分层数数量 %d 与层间隔数量 %d 不一致",
			len(req.Sublayers), len(req.Thicknesses)-1)
	}
	if req.Thicknesses[0] != 0 {
		req.Thicknesses = append([]float64{0}, req.Thicknesses...)
		req.MatIDs = append([]int{0}, req.MatIDs...)
		if req.Sublayers != nil {
			req.Sublayers = append([]int{1}, req.Sublayers...)
		}
	}
	for i := 1; i < len(req.Thicknesses); i++ {
		if req.Thicknesses[i] <= req.Thicknesses[i-1] {
			return Kernel.Validationf("层厚必须自顶向下递增: %v", req.Thicknesses)
		}
	}
	return nil
}

// Stack 将地表三角网按厚度列表下移复制成多张层面，自底向上堆叠并填充棱柱体。
// 每个偏移量都是相对地表的绝对下移距离。
func (s *LayerService) Stack(ks *Kernel.Session, triplanePath string,
	req *StackRequest, outPath string) (*Kernel.MO, error) {

	if err := req.normalize(); err != nil {
		return nil, err
	}

	mosurf, err := ks.Read(triplanePath)
	if err != nil {
		return nil, err
	}
	defer mosurf.Delete()

	return s.stackSurface(ks, mosurf, req, outPath)
}

// SingleColumn 单材料分层：先把地表材料场压为常数再按普通流程分层
func (s *LayerService) SingleColumn(ks *Kernel.Session, triplanePath string,
	req *StackRequest, outPath string) (*Kernel.MO, error) {

	if err := req.normalize(); err != nil {
		return nil, err
	}

	mosurf, err := ks.Read(triplanePath)
	if err != nil {
		return nil, err
	}
	defer mosurf.Delete()

	mosurf.SetAtt("itetclr", 1)
	return s.stackSurface(ks, mosurf, req, outPath)
}

func (s *LayerService) stackSurface(ks *Kernel.Session, mosurf *Kernel.MO,
	req *StackRequest, outPath string) (*Kernel.MO, error) {

	n := len(req.Thicknesses)

	// 自顶向下生成层面，再反序为自底向上供堆叠使用
	surfaces := make([]*Kernel.MO, n)
	for i, offset := range req.Thicknesses {
		layer := mosurf.Copy()
		if offset != 0 {
			if err := layer.MathSubNodes("zic", offset); err != nil {
				return nil, err
			}
		}
		surfaces[n-1-i] = layer
	}
	defer func() {
		for _, layer := range surfaces {
			layer.Delete()
		}
	}()

	// 层间材料与细分带同样反序，材料列表首项为地表占位不参与层间隔
	gapMatIDs := make([]int, 0, n-1)
	for i := n - 1; i >= 1; i-- {
		gapMatIDs = append(gapMatIDs, req.MatIDs[i])
	}
	var gapBands []int
	if req.Sublayers != nil {
		gapBands = make([]int, 0, n-1)
		for i := n - 2; i >= 0; i-- {
			gapBands = append(gapBands, req.Sublayers[i])
		}
	}

	stack, err := ks.StackLayers(surfaces, gapBands, gapMatIDs, req.XYSubset)
	if err != nil {
		return nil, err
	}
	defer stack.Delete()

	vol, err := stack.StackFill()
	if err != nil {
		return nil, err
	}
	vol.ResetPtsITP()
	if err := vol.AddVolumeAtt("cell_vol"); err != nil {
		return nil, err
	}

	if outPath != "" {
		if err := vol.Dump(outPath); err != nil {
			return nil, err
		}
	}
	return vol, nil
}
