package services

import (
	"math"

	"github.com/GrainArc/TinMesh/Kernel"
	"github.com/GrainArc/TinMesh/Raster"
)

// AttributeService 网格属性映射服务，负责把栅格数据写入网格属性
type AttributeService struct {
}

// AddElevation 把DEM高程插值到三角网节点的z坐标上。
// 输出路径为空时覆盖原文件。
func (s *AttributeService) AddElevation(ks *Kernel.Session, dem *Raster.Grid,
	triplanePath string, flip bool, outPath string) (*Kernel.MO, error) {

	if dem == nil {
		return nil, Kernel.Validationf("DEM栅格为空")
	}
	if outPath == "" {
		outPath = triplanePath
	}

	filled := dem.FillNoData()
	mosheet := ks.ReadSheetIJ(filled, flip)
	defer mosheet.Delete()

	// 填充后可能仍残留无效值，按哨兵阈值剔除对应节点。
	// 哨兵向有效值一侧收紧一个单位，避免把边界上的合法值误删。
	dud := filled.NoData - math.Copysign(1, filled.NoData)
	cmp := Kernel.CmpGe
	if filled.NoData <= 0 {
		cmp = Kernel.CmpLe
	}
	pduds, err := mosheet.PSetAttribute("zic", dud, cmp)
	if err != nil {
		return nil, err
	}
	eduds := pduds.EltSet(Kernel.MemberInclusive)
	mosheet.RmpointEltset(eduds, true, true)

	// 高程暂存到独立属性，把片网压平到z=0再做平面插值
	mosheet.AddAtt("z_elev", false, false)
	if err := mosheet.CopyAtt("zic", "z_elev"); err != nil {
		return nil, err
	}
	mosheet.SetAtt("zic", 0)

	motri, err := ks.Read(triplanePath)
	if err != nil {
		return nil, err
	}
	motri.AddAtt("z_new", false, false)
	if err := motri.Interpolate(Kernel.SchemeContinuous, "z_new", mosheet, "z_elev", nil); err != nil {
		return nil, err
	}
	if err := motri.CopyAtt("z_new", "zic"); err != nil {
		return nil, err
	}
	motri.DelAtt("z_new")

	if err := motri.Dump(outPath); err != nil {
		return nil, err
	}
	return motri, nil
}

// AddAttribute 把栅格数据映射到分层体网格的单元属性上。
// 栅格先按最近邻拉伸到DEM的行列布局与覆盖范围，经片网挤出成覆盖全高程范围的体网格后
// 按层号做单元间映射，结果以 层号*10 的累加量编码进目标属性。
// layers为空时默认处理全部层位，属性名为空时写入itetclr。
func (s *AttributeService) AddAttribute(ks *Kernel.Session, data *Raster.Grid,
	dem *Raster.Grid, stackedPath string, nLayers int, attName string,
	layers []float64, flip bool, outPath string) (*Kernel.MO, error) {

	if data == nil || dem == nil {
		return nil, Kernel.Validationf("栅格数据为空")
	}
	if nLayers < 1 {
		return nil, Kernel.Validationf("层数必须为正数: %d", nLayers)
	}
	if outPath == "" {
		outPath = stackedPath
	}

	// 层号校验先于任何内核操作，保证出错时不留场景副作用
	targets := make([]int, 0, nLayers)
	if layers == nil {
		for i := 1; i <= nLayers; i++ {
			targets = append(targets, i)
		}
	} else {
		for _, l := range layers {
			if l != math.Trunc(l) {
				return nil, Kernel.Validationf("层号必须为整数: %g", l)
			}
			li := int(l)
			if li < 1 || li > nLayers {
				return nil, Kernel.Validationf("层号超出范围[1,%d]: %d", nLayers, li)
			}
			targets = append(targets, li)
		}
	}

	resampled := data.ResampleNearestOnto(dem)
	filled := resampled.FillNoData()

	mosheet := ks.ReadSheetIJ(filled, flip)
	moext, err := mosheet.Extrude(10000)
	if err != nil {
		return nil, err
	}
	defer moext.Delete()

	// 栅格值从片网节点汇聚到挤出体的单元上
	moext.AddAtt("esatt", true, false)
	if err := moext.Interpolate(Kernel.SchemeVoronoi, "esatt", mosheet, "zic", nil); err != nil {
		return nil, err
	}
	mosheet.Delete()

	mostack, err := ks.Read(stackedPath)
	if err != nil {
		return nil, err
	}
	if attName == "" {
		attName = "itetclr"
	} else {
		mostack.AddAtt(attName, true, false)
	}

	info := mostack.Information()
	if info.Elements%nLayers != 0 {
		return nil, Kernel.Validationf("单元数 %d 无法按 %d 层均分", info.Elements, nLayers)
	}
	perLayer := info.Elements / nLayers

	mostack.AddAtt("eslayer", true, true)
	for _, layer := range targets {
		mostack.SetAtt("eslayer", 1)
		band := mostack.EltSetRange(perLayer*(layer-1), perLayer*layer)
		if err := mostack.SetAttElems("eslayer", 2, band); err != nil {
			return nil, err
		}
		testElt, err := mostack.EltSetAttribute("eslayer", 2, Kernel.CmpEq)
		if err != nil {
			return nil, err
		}
		if err := mostack.Interpolate(Kernel.SchemeMap, attName, moext, "esatt", testElt); err != nil {
			return nil, err
		}
		if err := mostack.MathAddElems(attName, float64(layer*10), testElt); err != nil {
			return nil, err
		}
	}
	mostack.DelAtt("eslayer")

	if err := mostack.Dump(outPath); err != nil {
		return nil, err
	}
	return mostack, nil
}
