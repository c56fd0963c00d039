package Kernel

import (
	"fmt"
	"math/rand"

	"github.com/GrainArc/TinMesh/Mesh"
)

// 网格对象类别
const (
	KindLine     = "line"
	KindTriplane = "triplane"
	KindSheet    = "sheet"
	KindVolume   = "volume"
	KindSurface  = "surface"
)

// Session 网格内核会话。所有网格状态通过会话内的命名句柄寻址，
// 句柄名称单调递增分配，保证可复现。
type Session struct {
	seq    int
	meshes map[string]*MO
	rng    *rand.Rand
}

// MO 网格对象句柄
type MO struct {
	s     *Session
	name  string
	kind  string
	mesh  *Mesh.Mesh
	stack *stackMeta // 仅堆叠中间对象持有
}

// Info 网格对象的基本统计信息
type Info struct {
	Nodes    int
	Elements int
}

// NewSession 创建内核会话。随机扰动使用固定种子，保证结果可复现。
func NewSession() *Session {
	return &Session{
		meshes: make(map[string]*MO),
		rng:    rand.New(rand.NewSource(1)),
	}
}

func (s *Session) nextName(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s%d", prefix, s.seq)
}

func (s *Session) register(kind string, m *Mesh.Mesh) *MO {
	mo := &MO{s: s, name: s.nextName("mo"), kind: kind, mesh: m}
	s.meshes[mo.name] = mo
	return mo
}

// Create 创建指定类别的空网格对象
func (s *Session) Create(kind string) *MO {
	return s.register(kind, &Mesh.Mesh{})
}

// Read 从交换格式文件读入网格对象，类别由单元类型推断
func (s *Session) Read(path string) (*MO, error) {
	m, err := Mesh.ReadAVS(path)
	if err != nil {
		return nil, &ResourceError{Path: path, Err: err}
	}
	return s.register(inferKind(m), m), nil
}

func inferKind(m *Mesh.Mesh) string {
	hasLine, hasTri, hasQuad, hasVol := false, false, false, false
	for _, e := range m.Elems {
		switch e.Type {
		case "line":
			hasLine = true
		case "tri":
			hasTri = true
		case "quad":
			hasQuad = true
		case "prism", "hex", "tet":
			hasVol = true
		}
	}
	switch {
	case hasVol:
		return KindVolume
	case hasTri && !hasLine:
		return KindTriplane
	case hasQuad:
		return KindSheet
	case hasLine:
		return KindLine
	default:
		return KindTriplane
	}
}

// Name 句柄名称
func (mo *MO) Name() string {
	return mo.name
}

// Kind 网格对象类别
func (mo *MO) Kind() string {
	return mo.kind
}

// Information 节点与单元数量
func (mo *MO) Information() Info {
	return Info{Nodes: mo.mesh.NodeCount(), Elements: mo.mesh.ElemCount()}
}

// Delete 从会话中移除网格对象
func (mo *MO) Delete() {
	delete(mo.s.meshes, mo.name)
	mo.mesh = &Mesh.Mesh{}
}

// Copy 深拷贝出一个新的网格对象句柄
func (mo *MO) Copy() *MO {
	return mo.s.register(mo.kind, mo.mesh.Clone())
}

// CopyPts 仅复制源对象的节点（不复制单元与属性）
func (mo *MO) CopyPts(src *MO) {
	nodes := make([]Mesh.Point3D, len(src.mesh.Nodes))
	copy(nodes, src.mesh.Nodes)
	mo.mesh.Nodes = nodes
}

// Dump 将网格对象写出为交换格式文件
func (mo *MO) Dump(path string) error {
	if err := Mesh.WriteAVS(path, mo.mesh); err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	return nil
}

// Raw 返回底层网格数据（只读用途）
func (mo *MO) Raw() *Mesh.Mesh {
	return mo.mesh
}
