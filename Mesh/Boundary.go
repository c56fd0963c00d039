package Mesh

// LineConnectivity 根据有序边界点序列生成线单元连接关系。
// 假定点序列按顺时针或逆时针排列，序列中相邻即视为连接。
// connectEnds为false时生成N-1条开放边，为true时追加闭合边(N,1)生成N条边。
// 不校验自相交或重复点，由调用方保证。
func LineConnectivity(n int, connectEnds bool) [][2]int {
	if n < 2 {
		return nil
	}
	size := n - 1
	if connectEnds {
		size = n
	}
	out := make([][2]int, size)
	for i := 0; i < n-1; i++ {
		out[i] = [2]int{i + 1, i + 2}
	}
	if connectEnds {
		out[n-1] = [2]int{n, 1}
	}
	return out
}

// BoundaryPolyline 将边界点序列组装为折线对象
func BoundaryPolyline(nodes []Point3D, connectEnds bool) *Polyline {
	return &Polyline{
		Nodes: nodes,
		Lines: LineConnectivity(len(nodes), connectEnds),
	}
}
