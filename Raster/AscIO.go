package Raster

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadASC 读取ESRI ASCII格式的DEM文件
func ReadASC(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	header := map[string]float64{}
	var values []float64

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		key := strings.ToLower(fields[0])
		switch key {
		case "ncols", "nrows", "xllcorner", "yllcorner", "cellsize", "nodata_value":
			if len(fields) < 2 {
				return nil, fmt.Errorf("invalid header line: %q", line)
			}
			v, convErr := strconv.ParseFloat(fields[1], 64)
			if convErr != nil {
				return nil, fmt.Errorf("invalid header value %q: %v", fields[1], convErr)
			}
			header[key] = v
		default:
			for _, s := range fields {
				v, convErr := strconv.ParseFloat(s, 64)
				if convErr != nil {
					return nil, fmt.Errorf("invalid raster value %q: %v", s, convErr)
				}
				values = append(values, v)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	for _, key := range []string{"ncols", "nrows", "xllcorner", "yllcorner", "cellsize"} {
		if _, ok := header[key]; !ok {
			return nil, fmt.Errorf("missing header field %s", key)
		}
	}
	ncols := int(header["ncols"])
	nrows := int(header["nrows"])
	if len(values) != ncols*nrows {
		return nil, fmt.Errorf("value count %d does not match grid size %dx%d", len(values), ncols, nrows)
	}

	noData := -9999.0
	if v, ok := header["nodata_value"]; ok {
		noData = v
	}
	return &Grid{
		NCols:     ncols,
		NRows:     nrows,
		XLLCorner: header["xllcorner"],
		YLLCorner: header["yllcorner"],
		CellSize:  header["cellsize"],
		NoData:    noData,
		Data:      values,
	}, nil
}

// WriteASC 将栅格写出为ESRI ASCII格式
func WriteASC(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "ncols %d\n", g.NCols)
	fmt.Fprintf(w, "nrows %d\n", g.NRows)
	fmt.Fprintf(w, "xllcorner %s\n", strconv.FormatFloat(g.XLLCorner, 'g', -1, 64))
	fmt.Fprintf(w, "yllcorner %s\n", strconv.FormatFloat(g.YLLCorner, 'g', -1, 64))
	fmt.Fprintf(w, "cellsize %s\n", strconv.FormatFloat(g.CellSize, 'g', -1, 64))
	fmt.Fprintf(w, "NODATA_value %s\n", strconv.FormatFloat(g.NoData, 'g', -1, 64))

	for r := 0; r < g.NRows; r++ {
		for c := 0; c < g.NCols; c++ {
			if c > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprint(w, strconv.FormatFloat(g.At(r, c), 'g', -1, 64))
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
