package Mesh

// Point3D 表示一个三维网格节点
type Point3D struct {
	X, Y, Z float64
}

// Point2D 表示一个二维点
type Point2D struct {
	X, Y float64
}

// Element 网格单元，Refs中的节点编号为1基（内核约定）
type Element struct {
	MatID int
	Type  string // line tri quad prism hex
	Refs  []int
}

// Attribute 命名标量属性，挂接在节点或单元上
type Attribute struct {
	Name    string
	Integer bool
	Values  []float64
}

// Mesh 网格对象：有序节点序列 + 有序单元序列 + 命名属性
type Mesh struct {
	Nodes    []Point3D
	Elems    []Element
	NodeAtts []Attribute
	CellAtts []Attribute
}

// Polyline 边界折线：有序节点 + 线单元连接关系（1基节点编号对）
type Polyline struct {
	Nodes []Point3D
	Lines [][2]int
}

// NodeCount 节点数量
func (m *Mesh) NodeCount() int {
	return len(m.Nodes)
}

// ElemCount 单元数量
func (m *Mesh) ElemCount() int {
	return len(m.Elems)
}

// FindNodeAtt 按名称查找节点属性，未找到返回nil
func (m *Mesh) FindNodeAtt(name string) *Attribute {
	for i := range m.NodeAtts {
		if m.NodeAtts[i].Name == name {
			return &m.NodeAtts[i]
		}
	}
	return nil
}

// FindCellAtt 按名称查找单元属性，未找到返回nil
func (m *Mesh) FindCellAtt(name string) *Attribute {
	for i := range m.CellAtts {
		if m.CellAtts[i].Name == name {
			return &m.CellAtts[i]
		}
	}
	return nil
}

// Clone 深拷贝网格对象
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Nodes: make([]Point3D, len(m.Nodes)),
		Elems: make([]Element, len(m.Elems)),
	}
	copy(out.Nodes, m.Nodes)
	for i, e := range m.Elems {
		refs := make([]int, len(e.Refs))
		copy(refs, e.Refs)
		out.Elems[i] = Element{MatID: e.MatID, Type: e.Type, Refs: refs}
	}
	out.NodeAtts = cloneAtts(m.NodeAtts)
	out.CellAtts = cloneAtts(m.CellAtts)
	return out
}

func cloneAtts(atts []Attribute) []Attribute {
	if atts == nil {
		return nil
	}
	out := make([]Attribute, len(atts))
	for i, a := range atts {
		vals := make([]float64, len(a.Values))
		copy(vals, a.Values)
		out[i] = Attribute{Name: a.Name, Integer: a.Integer, Values: vals}
	}
	return out
}
