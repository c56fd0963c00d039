package Raster

import "math"

// Grid 规则栅格：行主序存储，行0为北侧（与ESRI ASCII一致）
type Grid struct {
	NCols, NRows int
	XLLCorner    float64
	YLLCorner    float64
	CellSize     float64
	NoData       float64
	Data         []float64 // 长度 NCols*NRows
}

// NewGrid 创建指定尺寸的栅格，所有单元初始化为NoData
func NewGrid(ncols, nrows int, xll, yll, cellSize, noData float64) *Grid {
	g := &Grid{
		NCols:     ncols,
		NRows:     nrows,
		XLLCorner: xll,
		YLLCorner: yll,
		CellSize:  cellSize,
		NoData:    noData,
		Data:      make([]float64, ncols*nrows),
	}
	for i := range g.Data {
		g.Data[i] = noData
	}
	return g
}

// At 读取第r行第c列的值
func (g *Grid) At(r, c int) float64 {
	return g.Data[r*g.NCols+c]
}

// Set 写入第r行第c列的值
func (g *Grid) Set(r, c int, v float64) {
	g.Data[r*g.NCols+c] = v
}

// IsNoData 判断值是否为无数据哨兵值
func (g *Grid) IsNoData(v float64) bool {
	return v == g.NoData || math.IsNaN(v)
}

// Clone 深拷贝栅格
func (g *Grid) Clone() *Grid {
	out := *g
	out.Data = make([]float64, len(g.Data))
	copy(out.Data, g.Data)
	return &out
}

// ResampleNearest 按最近邻重采样到指定尺寸，覆盖范围保持不变
func (g *Grid) ResampleNearest(ncols, nrows int) *Grid {
	out := NewGrid(ncols, nrows, g.XLLCorner, g.YLLCorner,
		g.CellSize*float64(g.NCols)/float64(ncols), g.NoData)
	g.stretchInto(out)
	return out
}

// ResampleNearestOnto 按最近邻把栅格值拉伸到参考栅格的行列布局上。
// 输出采用参考栅格的地理参考，数据被整体拉伸到覆盖参考栅格的范围
func (g *Grid) ResampleNearestOnto(ref *Grid) *Grid {
	out := NewGrid(ref.NCols, ref.NRows, ref.XLLCorner, ref.YLLCorner,
		ref.CellSize, g.NoData)
	g.stretchInto(out)
	return out
}

func (g *Grid) stretchInto(out *Grid) {
	for r := 0; r < out.NRows; r++ {
		sr := r * g.NRows / out.NRows
		for c := 0; c < out.NCols; c++ {
			sc := c * g.NCols / out.NCols
			out.Set(r, c, g.At(sr, sc))
		}
	}
}
