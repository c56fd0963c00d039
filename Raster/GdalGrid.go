package Raster

import (
	"fmt"

	"github.com/GrainArc/Gogeo"
)

// ReadGeoTIFF 通过GDAL读取单波段栅格（GeoTIFF等）为Grid。
// 仅支持北向上、方形像元的数据集。
func ReadGeoTIFF(path string) (*Grid, error) {
	rd, err := Gogeo.OpenRasterDataset(path, false)
	if err != nil {
		return nil, fmt.Errorf("打开栅格文件失败: %w", err)
	}
	defer rd.Close()

	info := rd.GetInfo()
	if !info.HasGeoInfo {
		return nil, fmt.Errorf("栅格缺少地理参考信息: %s", path)
	}
	gt := info.GeoTransform
	if gt[1] != -gt[5] {
		return nil, fmt.Errorf("仅支持方形像元的栅格: %s", path)
	}

	noData := -9999.0
	bandInfo, err := rd.GetBandInfo(1)
	if err != nil {
		return nil, fmt.Errorf("获取波段信息失败: %w", err)
	}
	if bandInfo.HasNoData {
		noData = bandInfo.NoDataValue
	}

	calc := rd.NewBandCalculator()
	values, err := calc.Calculate("B1")
	if err != nil {
		return nil, fmt.Errorf("读取波段数据失败: %w", err)
	}
	if len(values) != info.Width*info.Height {
		return nil, fmt.Errorf("波段数据尺寸不匹配: %d != %d", len(values), info.Width*info.Height)
	}

	cellSize := gt[1]
	return &Grid{
		NCols:     info.Width,
		NRows:     info.Height,
		XLLCorner: gt[0],
		YLLCorner: gt[3] - cellSize*float64(info.Height),
		CellSize:  cellSize,
		NoData:    noData,
		Data:      values,
	}, nil
}
