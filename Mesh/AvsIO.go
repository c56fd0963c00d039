package Mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteLineAVS 将边界折线序列化为内核交换格式。
// materialID为nil时所有线单元材质号默认为1。
// 属性数组长度小于对应的节点/单元数量时返回校验错误。
func WriteLineAVS(path string, pl *Polyline, materialID []int,
	nodeAtts, cellAtts []Attribute) error {

	nodes, lines := pl.Nodes, pl.Lines
	nnodes := len(nodes)
	nlines := len(lines)

	if materialID != nil && len(materialID) < nlines {
		return fmt.Errorf("material ID count %d does not match cell count %d", len(materialID), nlines)
	}

	m := &Mesh{Nodes: make([]Point3D, nnodes), Elems: make([]Element, nlines)}
	for i, p := range nodes {
		m.Nodes[i] = Point3D{X: p.X, Y: p.Y}
	}
	for i, ln := range lines {
		mat := 1
		if materialID != nil {
			mat = materialID[i]
		}
		m.Elems[i] = Element{MatID: mat, Type: "line", Refs: []int{ln[0], ln[1]}}
	}
	m.NodeAtts = nodeAtts
	m.CellAtts = cellAtts
	return WriteAVS(path, m)
}

// WriteAVS 将网格对象写出为交换格式文本文件
func WriteAVS(path string, m *Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteAVSTo(f, m)
}

// WriteAVSTo 将网格对象以交换格式写入任意输出流
func WriteAVSTo(out io.Writer, m *Mesh) error {
	for _, a := range m.NodeAtts {
		if len(a.Values) < len(m.Nodes) {
			return fmt.Errorf("length of node attribute %s does not match length of points array", a.Name)
		}
	}
	for _, a := range m.CellAtts {
		if len(a.Values) < len(m.Elems) {
			return fmt.Errorf("length of cell attribute %s does not match length of elem array", a.Name)
		}
	}

	w := bufio.NewWriter(out)

	fmt.Fprintf(w, "%d %d %d %d 0\n", len(m.Nodes), len(m.Elems), len(m.NodeAtts), len(m.CellAtts))

	for i, p := range m.Nodes {
		fmt.Fprintf(w, "%d %s %s %s\n", i+1, formatCoord(p.X), formatCoord(p.Y), formatCoord(p.Z))
	}
	for i, e := range m.Elems {
		fmt.Fprintf(w, "%d %d %s", i+1, e.MatID, e.Type)
		for _, r := range e.Refs {
			fmt.Fprintf(w, " %d", r)
		}
		fmt.Fprintln(w)
	}

	if err := writeAttBlock(w, m.NodeAtts, len(m.Nodes)); err != nil {
		return err
	}
	if err := writeAttBlock(w, m.CellAtts, len(m.Elems)); err != nil {
		return err
	}

	fmt.Fprintln(w)
	return w.Flush()
}

func writeAttBlock(w *bufio.Writer, atts []Attribute, count int) error {
	if len(atts) == 0 {
		return nil
	}
	fmt.Fprintf(w, "%d%s\n", len(atts), strings.Repeat(" 1", len(atts)))
	for _, a := range atts {
		kind := "real"
		if a.Integer {
			kind = "integer"
		}
		fmt.Fprintf(w, "%s, %s\n", a.Name, kind)
	}
	for i := 0; i < count; i++ {
		fmt.Fprintf(w, "%d", i+1)
		for _, a := range atts {
			if a.Integer {
				fmt.Fprintf(w, " %d", int(a.Values[i]))
			} else {
				fmt.Fprintf(w, " %s", formatCoord(a.Values[i]))
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// ReadAVS 从交换格式文本读回网格对象
func ReadAVS(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)

	fields, err := nextFields(sc)
	if err != nil {
		return nil, fmt.Errorf("invalid mesh header: %v", err)
	}
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid mesh header: %q", strings.Join(fields, " "))
	}
	nnodes, _ := strconv.Atoi(fields[0])
	nelems, _ := strconv.Atoi(fields[1])
	natts, _ := strconv.Atoi(fields[2])
	catts, _ := strconv.Atoi(fields[3])

	m := &Mesh{Nodes: make([]Point3D, nnodes), Elems: make([]Element, nelems)}

	for i := 0; i < nnodes; i++ {
		fields, err = nextFields(sc)
		if err != nil || len(fields) < 4 {
			return nil, fmt.Errorf("truncated node section at row %d", i+1)
		}
		x, _ := strconv.ParseFloat(fields[1], 64)
		y, _ := strconv.ParseFloat(fields[2], 64)
		z, _ := strconv.ParseFloat(fields[3], 64)
		m.Nodes[i] = Point3D{X: x, Y: y, Z: z}
	}
	for i := 0; i < nelems; i++ {
		fields, err = nextFields(sc)
		if err != nil || len(fields) < 4 {
			return nil, fmt.Errorf("truncated element section at row %d", i+1)
		}
		mat, _ := strconv.Atoi(fields[1])
		refs := make([]int, 0, len(fields)-3)
		for _, s := range fields[3:] {
			r, convErr := strconv.Atoi(s)
			if convErr != nil {
				return nil, fmt.Errorf("invalid node ref %q in element %d", s, i+1)
			}
			if r < 1 || r > nnodes {
				return nil, fmt.Errorf("node ref %d out of range in element %d", r, i+1)
			}
			refs = append(refs, r)
		}
		m.Elems[i] = Element{MatID: mat, Type: fields[2], Refs: refs}
	}

	if natts > 0 {
		m.NodeAtts, err = readAttBlock(sc, natts, nnodes)
		if err != nil {
			return nil, err
		}
	}
	if catts > 0 {
		m.CellAtts, err = readAttBlock(sc, catts, nelems)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func readAttBlock(sc *bufio.Scanner, natts, count int) ([]Attribute, error) {
	if _, err := nextFields(sc); err != nil { // 形如 "2 1 1" 的计数行
		return nil, fmt.Errorf("truncated attribute header: %v", err)
	}
	atts := make([]Attribute, natts)
	for i := 0; i < natts; i++ {
		fields, err := nextFields(sc)
		if err != nil {
			return nil, fmt.Errorf("truncated attribute name section: %v", err)
		}
		name := strings.TrimSuffix(fields[0], ",")
		integer := len(fields) > 1 && fields[1] == "integer"
		atts[i] = Attribute{Name: name, Integer: integer, Values: make([]float64, count)}
	}
	for r := 0; r < count; r++ {
		fields, err := nextFields(sc)
		if err != nil || len(fields) < natts+1 {
			return nil, fmt.Errorf("truncated attribute row %d", r+1)
		}
		for i := 0; i < natts; i++ {
			v, convErr := strconv.ParseFloat(fields[i+1], 64)
			if convErr != nil {
				return nil, fmt.Errorf("invalid attribute value %q at row %d", fields[i+1], r+1)
			}
			atts[i].Values[r] = v
		}
	}
	return atts, nil
}

func nextFields(sc *bufio.Scanner) ([]string, error) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		return strings.Fields(line), nil
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("unexpected end of file")
}
