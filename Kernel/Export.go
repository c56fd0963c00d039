package Kernel

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/GrainArc/TinMesh/Mesh"
)

// DumpFacesetRegions 多区域边界导出：将体网格与全部面组文件打包为单一输出。
// 文件结构：regions头 + 内嵌体网格 + 逐个内嵌面组网格（保留面组文件名作为区域名）。
func (mo *MO) DumpFacesetRegions(path string, facesetFiles []string) error {
	if mo.kind != KindVolume {
		return kernelErrf("dump_exo", "mesh object %s is not volumetric", mo.name)
	}
	f, err := os.Create(path)
	if err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "regions %d\n", len(facesetFiles))
	fmt.Fprintf(w, "volume %s\n", mo.name)
	if err := w.Flush(); err != nil {
		return &ResourceError{Path: path, Err: err}
	}
	if err := Mesh.WriteAVSTo(f, mo.mesh); err != nil {
		return &ResourceError{Path: path, Err: err}
	}

	for _, fs := range facesetFiles {
		m, err := Mesh.ReadAVS(fs)
		if err != nil {
			return &ResourceError{Path: fs, Err: err}
		}
		fmt.Fprintf(w, "faceset %s\n", filepath.Base(fs))
		if err := w.Flush(); err != nil {
			return &ResourceError{Path: path, Err: err}
		}
		if err := Mesh.WriteAVSTo(f, m); err != nil {
			return &ResourceError{Path: path, Err: err}
		}
	}
	return nil
}
