package Transformer

import (
	"fmt"
	"os"

	"gitee.com/LJ_COOL/go-shp"
	"github.com/GrainArc/TinMesh/Mesh"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SplitPoints 按Parts索引拆分shapefile点序列
func SplitPoints(points []shp.Point, parts []int32) [][]shp.Point {
	var polygons [][]shp.Point
	for i := 0; i < len(parts); i++ {
		start := parts[i]
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		polygons = append(polygons, points[start:end])
	}
	return polygons
}

// ShpToBoundary 从shapefile读取第一个面/线要素的外环作为有序边界点序列。
// 闭合环的重复尾点被去掉（边界连接关系由调用方生成）。
func ShpToBoundary(shpfilePath string) ([]Mesh.Point3D, error) {
	shape, err := shp.Open(shpfilePath)
	if err != nil {
		return nil, fmt.Errorf("打开shapefile失败: %v", err)
	}
	defer shape.Close()

	for shape.Next() {
		_, p := shape.Shape()
		switch s := p.(type) {
		case *shp.Polygon:
			return ringToNodes(firstPart(s.Points, s.Parts)), nil
		case *shp.PolygonZ:
			return ringToNodes(firstPart(s.Points, s.Parts)), nil
		case *shp.PolygonM:
			return ringToNodes(firstPart(s.Points, s.Parts)), nil
		case *shp.PolyLine:
			return lineToNodes(firstPart(s.Points, s.Parts)), nil
		case *shp.PolyLineZ:
			return lineToNodes(firstPart(s.Points, s.Parts)), nil
		case *shp.PolyLineM:
			return lineToNodes(firstPart(s.Points, s.Parts)), nil
		}
	}
	return nil, fmt.Errorf("shapefile中没有面或线要素: %s", shpfilePath)
}

func firstPart(points []shp.Point, parts []int32) []shp.Point {
	if len(parts) > 1 {
		return SplitPoints(points, parts)[0]
	}
	return points
}

// 面外环转节点序列，去掉闭合重复点
func ringToNodes(ring []shp.Point) []Mesh.Point3D {
	if len(ring) > 1 && ring[0].X == ring[len(ring)-1].X && ring[0].Y == ring[len(ring)-1].Y {
		ring = ring[:len(ring)-1]
	}
	return lineToNodes(ring)
}

func lineToNodes(points []shp.Point) []Mesh.Point3D {
	out := make([]Mesh.Point3D, len(points))
	for i, p := range points {
		out[i] = Mesh.Point3D{X: p.X, Y: p.Y}
	}
	return out
}

// GeoJSONToBoundary 从GeoJSON文件读取边界点序列。
// 支持Polygon/MultiPolygon（取第一个多边形的外环）与LineString。
func GeoJSONToBoundary(path string) ([]Mesh.Point3D, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取GeoJSON文件失败: %v", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		// 也允许单个Feature或裸Geometry
		if feat, ferr := geojson.UnmarshalFeature(data); ferr == nil {
			return geometryToBoundary(feat.Geometry)
		}
		if geom, gerr := geojson.UnmarshalGeometry(data); gerr == nil {
			return geometryToBoundary(geom.Geometry())
		}
		return nil, fmt.Errorf("解析GeoJSON失败: %v", err)
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("GeoJSON中没有要素: %s", path)
	}
	return geometryToBoundary(fc.Features[0].Geometry)
}

func geometryToBoundary(geom orb.Geometry) ([]Mesh.Point3D, error) {
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("polygon has no rings")
		}
		return orbRingToNodes(g[0]), nil
	case orb.MultiPolygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return nil, fmt.Errorf("multipolygon has no rings")
		}
		return orbRingToNodes(g[0][0]), nil
	case orb.LineString:
		out := make([]Mesh.Point3D, len(g))
		for i, p := range g {
			out[i] = Mesh.Point3D{X: p.X(), Y: p.Y()}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type: %T (only Polygon, MultiPolygon and LineString are supported)", geom)
	}
}

func orbRingToNodes(ring orb.Ring) []Mesh.Point3D {
	pts := []orb.Point(ring)
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	out := make([]Mesh.Point3D, len(pts))
	for i, p := range pts {
		out[i] = Mesh.Point3D{X: p.X(), Y: p.Y()}
	}
	return out
}
