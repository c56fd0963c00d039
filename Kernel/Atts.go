package Kernel

import "github.com/GrainArc/TinMesh/Mesh"

// 属性名约定（内核保留名）：
//   xic/yic/zic  节点坐标
//   imt          节点材质号
//   itp          节点类型标记（0内部，10边界）
//   itetclr      单元材质号
// 其余名称为用户自定义标量属性。

func isCoordAtt(name string) bool {
	return name == "xic" || name == "yic" || name == "zic"
}

// IsNodeAtt 判断名称是否解析为节点属性
func (mo *MO) IsNodeAtt(name string) bool {
	if isCoordAtt(name) || name == "imt" || name == "itp" {
		return true
	}
	return mo.mesh.FindNodeAtt(name) != nil
}

// IsCellAtt 判断名称是否解析为单元属性
func (mo *MO) IsCellAtt(name string) bool {
	if name == "itetclr" {
		return true
	}
	return mo.mesh.FindCellAtt(name) != nil
}

// AddAtt 添加命名标量属性，onElems决定挂接到单元还是节点，初值为0
func (mo *MO) AddAtt(name string, onElems bool, integer bool) {
	if onElems {
		if name == "itetclr" || mo.mesh.FindCellAtt(name) != nil {
			return
		}
		mo.mesh.CellAtts = append(mo.mesh.CellAtts, Mesh.Attribute{
			Name: name, Integer: integer, Values: make([]float64, mo.mesh.ElemCount()),
		})
		return
	}
	if isCoordAtt(name) || mo.mesh.FindNodeAtt(name) != nil {
		return
	}
	mo.mesh.NodeAtts = append(mo.mesh.NodeAtts, Mesh.Attribute{
		Name: name, Integer: integer, Values: make([]float64, mo.mesh.NodeCount()),
	})
}

// DelAtt 删除命名属性，保留名与不存在的名称忽略
func (mo *MO) DelAtt(name string) {
	for i := range mo.mesh.NodeAtts {
		if mo.mesh.NodeAtts[i].Name == name {
			mo.mesh.NodeAtts = append(mo.mesh.NodeAtts[:i], mo.mesh.NodeAtts[i+1:]...)
			return
		}
	}
	for i := range mo.mesh.CellAtts {
		if mo.mesh.CellAtts[i].Name == name {
			mo.mesh.CellAtts = append(mo.mesh.CellAtts[:i], mo.mesh.CellAtts[i+1:]...)
			return
		}
	}
}

func (mo *MO) nodeAttGet(name string, i int) float64 {
	switch name {
	case "xic":
		return mo.mesh.Nodes[i].X
	case "yic":
		return mo.mesh.Nodes[i].Y
	case "zic":
		return mo.mesh.Nodes[i].Z
	}
	if a := mo.mesh.FindNodeAtt(name); a != nil {
		return a.Values[i]
	}
	return 0
}

func (mo *MO) nodeAttSet(name string, i int, v float64) {
	switch name {
	case "xic":
		mo.mesh.Nodes[i].X = v
		return
	case "yic":
		mo.mesh.Nodes[i].Y = v
		return
	case "zic":
		mo.mesh.Nodes[i].Z = v
		return
	}
	if a := mo.mesh.FindNodeAtt(name); a != nil {
		a.Values[i] = v
	}
}

func (mo *MO) cellAttGet(name string, i int) float64 {
	if name == "itetclr" {
		return float64(mo.mesh.Elems[i].MatID)
	}
	if a := mo.mesh.FindCellAtt(name); a != nil {
		return a.Values[i]
	}
	return 0
}

func (mo *MO) cellAttSet(name string, i int, v float64) {
	if name == "itetclr" {
		mo.mesh.Elems[i].MatID = int(v)
		return
	}
	if a := mo.mesh.FindCellAtt(name); a != nil {
		a.Values[i] = v
	}
}

func (mo *MO) ensureAtt(name string, onElems bool) error {
	if onElems {
		if !mo.IsCellAtt(name) {
			return kernelErrf("setatt", "unknown cell attribute %s on %s", name, mo.name)
		}
	} else {
		if !mo.IsNodeAtt(name) {
			return kernelErrf("setatt", "unknown node attribute %s on %s", name, mo.name)
		}
	}
	return nil
}

// SetAtt 将属性的所有值设为常量，名称按节点属性优先解析
func (mo *MO) SetAtt(name string, v float64) error {
	if mo.IsNodeAtt(name) {
		for i := range mo.mesh.Nodes {
			mo.nodeAttSet(name, i, v)
		}
		return nil
	}
	if mo.IsCellAtt(name) {
		for i := range mo.mesh.Elems {
			mo.cellAttSet(name, i, v)
		}
		return nil
	}
	return kernelErrf("setatt", "unknown attribute %s on %s", name, mo.name)
}

// SetAttNodes 将节点属性在给定点集范围内设为常量
func (mo *MO) SetAttNodes(name string, v float64, ps *PSet) error {
	if err := mo.ensureAtt(name, false); err != nil {
		return err
	}
	for _, i := range ps.indices {
		mo.nodeAttSet(name, i, v)
	}
	return nil
}

// SetAttElems 将单元属性在给定单元集范围内设为常量
func (mo *MO) SetAttElems(name string, v float64, es *EltSet) error {
	if err := mo.ensureAtt(name, true); err != nil {
		return err
	}
	for _, i := range es.indices {
		mo.cellAttSet(name, i, v)
	}
	return nil
}

// CopyAtt 同一网格对象内的属性复制，目标属性不存在时自动创建
func (mo *MO) CopyAtt(src, dst string) error {
	if mo.IsNodeAtt(src) {
		mo.AddAtt(dst, false, false)
		if err := mo.ensureAtt(dst, false); err != nil {
			return err
		}
		for i := range mo.mesh.Nodes {
			mo.nodeAttSet(dst, i, mo.nodeAttGet(src, i))
		}
		return nil
	}
	if mo.IsCellAtt(src) {
		mo.AddAtt(dst, true, false)
		if err := mo.ensureAtt(dst, true); err != nil {
			return err
		}
		for i := range mo.mesh.Elems {
			mo.cellAttSet(dst, i, mo.cellAttGet(src, i))
		}
		return nil
	}
	return kernelErrf("copyatt", "unknown attribute %s on %s", src, mo.name)
}

// MathAddElems 对单元属性做加法，es为nil时作用于全部单元
func (mo *MO) MathAddElems(name string, v float64, es *EltSet) error {
	if err := mo.ensureAtt(name, true); err != nil {
		return err
	}
	if es == nil {
		for i := range mo.mesh.Elems {
			mo.cellAttSet(name, i, mo.cellAttGet(name, i)+v)
		}
		return nil
	}
	for _, i := range es.indices {
		mo.cellAttSet(name, i, mo.cellAttGet(name, i)+v)
	}
	return nil
}

// MathSubNodes 对节点属性做减法（如zic整体下移一个厚度偏移量）
func (mo *MO) MathSubNodes(name string, v float64) error {
	if err := mo.ensureAtt(name, false); err != nil {
		return err
	}
	for i := range mo.mesh.Nodes {
		mo.nodeAttSet(name, i, mo.nodeAttGet(name, i)-v)
	}
	return nil
}
