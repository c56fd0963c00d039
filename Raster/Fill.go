package Raster

// FillNoData 用最近有效值填充无数据单元，避免后续网格插值时产生边缘噪声。
// 多源广度优先扩散：每个无数据单元取扩散最先到达的有效单元的值。
// 对已填满的栅格再次调用是幂等的；全无效栅格原样返回（哨兵值保留）。
func (g *Grid) FillNoData() *Grid {
	out := g.Clone()

	type cell struct{ r, c int }
	queue := make([]cell, 0, len(g.Data))
	visited := make([]bool, len(g.Data))

	for r := 0; r < g.NRows; r++ {
		for c := 0; c < g.NCols; c++ {
			if !g.IsNoData(g.At(r, c)) {
				queue = append(queue, cell{r, c})
				visited[r*g.NCols+c] = true
			}
		}
	}
	if len(queue) == 0 {
		return out
	}

	// 8邻域扩散
	dirs := [8][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}, {-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		v := out.At(cur.r, cur.c)
		for _, d := range dirs {
			nr, nc := cur.r+d[0], cur.c+d[1]
			if nr < 0 || nr >= g.NRows || nc < 0 || nc >= g.NCols {
				continue
			}
			idx := nr*g.NCols + nc
			if visited[idx] {
				continue
			}
			visited[idx] = true
			out.Data[idx] = v
			queue = append(queue, cell{nr, nc})
		}
	}
	return out
}
