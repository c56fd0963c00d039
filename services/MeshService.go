package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GrainArc/TinMesh/Kernel"
	"github.com/GrainArc/TinMesh/Mesh"
	"github.com/GrainArc/TinMesh/Raster"
	"github.com/GrainArc/TinMesh/Transformer"
	"github.com/GrainArc/TinMesh/config"
	"github.com/GrainArc/TinMesh/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// TriplaneTaskRequest 三角网生成请求参数
type TriplaneTaskRequest struct {
	BoundaryPath     string  `json:"boundary_path" binding:"required"` //边界文件 shp或geojson
	FeaturePath      string  `json:"feature_path"`                     //特征线文件，填写时走梯度加密流程
	DemPath          string  `json:"dem_path"`                         //DEM路径，填写时生成后贴高程
	MinEdge          float64 `json:"min_edge" binding:"required"`
	Slope            float64 `json:"slope"`
	RefineDist       float64 `json:"refine_dist"`
	Counterclockwise bool    `json:"counterclockwise"`
	FlipDem          bool    `json:"flip_dem"` //为true时按行序镜像DEM（第0行排到南侧）
}

// StackTaskRequest 分层体网格生成请求参数
type StackTaskRequest struct {
	TriplanePath string    `json:"triplane_path" binding:"required"`
	Thicknesses  []float64 `json:"thicknesses" binding:"required"` //自顶向下的层厚
	MatIDs       []int     `json:"matids" binding:"required"`
	Sublayers    []int     `json:"sublayers"`
	SingleColumn bool      `json:"single_column"`
}

// AttributeTaskRequest 属性映射请求参数
type AttributeTaskRequest struct {
	DataPath    string    `json:"data_path" binding:"required"` //待映射栅格 tif或asc
	DemPath     string    `json:"dem_path" binding:"required"`
	StackedPath string    `json:"stacked_path" binding:"required"`
	NLayers     int       `json:"n_layers" binding:"required"`
	AttName     string    `json:"att_name"`
	Layers      []float64 `json:"layers"`
	FlipDem     bool      `json:"flip_dem"` //为true时按行序镜像栅格（第0行排到南侧）
}

// FacesetTaskRequest 面组导出请求参数
type FacesetTaskRequest struct {
	MeshPath     string       `json:"mesh_path" binding:"required"`
	BoundaryPath string       `json:"boundary_path" binding:"required"`
	Coordinates  [][2]float64 `json:"coordinates"` //侧面分组标记点
	TopOutlet    [][2]float64 `json:"top_outlet"`  //顶面出口标记点
}

// TaskResponse 任务提交响应
type TaskResponse struct {
	TaskID     string `json:"task_id"`
	OutputPath string `json:"output_path"`
	Message    string `json:"message"`
}

// MeshService 网格生成异步任务服务
type MeshService struct {
}

// loadBoundary 按扩展名读取边界节点
func loadBoundary(path string) ([]Mesh.Point3D, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return Transformer.ShpToBoundary(path)
	case ".geojson", ".json":
		return Transformer.GeoJSONToBoundary(path)
	default:
		return nil, fmt.Errorf("不支持的边界文件格式: %s", path)
	}
}

// loadGrid 按扩展名读取栅格
func loadGrid(path string) (*Raster.Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		return Raster.ReadGeoTIFF(path)
	case ".asc":
		return Raster.ReadASC(path)
	default:
		return nil, fmt.Errorf("不支持的栅格格式: %s", path)
	}
}

// createRecord 创建任务记录并返回任务编号与输出目录
func (s *MeshService) createRecord(typeName, sourcePath string, args interface{}) (string, string, error) {
	taskID := uuid.New().String()
	outputDir := filepath.Join(config.MainConfig.Download, taskID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", "", fmt.Errorf("创建输出目录失败: %w", err)
	}
	argsJSON, _ := json.Marshal(args)
	record := &models.MeshRecord{
		TaskID:     taskID,
		SourcePath: sourcePath,
		OutputPath: outputDir,
		Status:     0, // 运行中
		TypeName:   typeName,
		Args:       datatypes.JSON(argsJSON),
	}
	if err := models.DB.Create(record).Error; err != nil {
		return "", "", fmt.Errorf("创建任务记录失败: %w", err)
	}
	return taskID, outputDir, nil
}

// finishTask 按执行结果更新任务状态
func (s *MeshService) finishTask(taskID string, err *error) {
	finalStatus := 1 // 默认成功
	message := ""
	if r := recover(); r != nil {
		finalStatus = 2 // 执行失败
		message = fmt.Sprintf("%v", r)
	} else if err != nil && *err != nil {
		finalStatus = 2
		message = (*err).Error()
	}
	models.DB.Model(&models.MeshRecord{}).Where("task_id = ?", taskID).
		Updates(map[string]interface{}{"status": finalStatus, "message": message})
}

// StartTriplaneTask 启动异步三角网生成任务
func (s *MeshService) StartTriplaneTask(req *TriplaneTaskRequest) (*TaskResponse, error) {
	taskID, outputDir, err := s.createRecord("triplane", req.BoundaryPath, req)
	if err != nil {
		return nil, err
	}
	go s.executeTriplaneTask(taskID, req, outputDir)
	return &TaskResponse{TaskID: taskID, OutputPath: outputDir, Message: "任务已提交"}, nil
}

func (s *MeshService) executeTriplaneTask(taskID string, req *TriplaneTaskRequest, outputDir string) {
	var err error
	defer s.finishTask(taskID, &err)

	var boundary []Mesh.Point3D
	boundary, err = loadBoundary(req.BoundaryPath)
	if err != nil {
		return
	}

	ks := Kernel.NewSession()
	triSvc := &TriplaneService{}
	outPath := filepath.Join(outputDir, "triplane.inp")

	if req.FeaturePath != "" {
		var feature []Mesh.Point3D
		feature, err = loadBoundary(req.FeaturePath)
		if err != nil {
			return
		}
		_, err = triSvc.BuildRefined(ks, boundary, feature,
			req.MinEdge, req.Slope, req.RefineDist, outPath)
	} else {
		_, err = triSvc.BuildUniform(ks, boundary, req.MinEdge,
			req.Counterclockwise, outPath)
	}
	if err != nil {
		return
	}

	if req.DemPath != "" {
		var dem *Raster.Grid
		dem, err = loadGrid(req.DemPath)
		if err != nil {
			return
		}
		attSvc := &AttributeService{}
		_, err = attSvc.AddElevation(ks, dem, outPath, req.FlipDem, "")
	}
}

// StartStackTask 启动异步分层任务
func (s *MeshService) StartStackTask(req *StackTaskRequest) (*TaskResponse, error) {
	taskID, outputDir, err := s.createRecord("stack", req.TriplanePath, req)
	if err != nil {
		return nil, err
	}
	go s.executeStackTask(taskID, req, outputDir)
	return &TaskResponse{TaskID: taskID, OutputPath: outputDir, Message: "任务已提交"}, nil
}

func (s *MeshService) executeStackTask(taskID string, req *StackTaskRequest, outputDir string) {
	var err error
	defer s.finishTask(taskID, &err)

	ks := Kernel.NewSession()
	laySvc := &LayerService{}
	stackReq := &StackRequest{
		Thicknesses: req.Thicknesses,
		MatIDs:      req.MatIDs,
		Sublayers:   req.Sublayers,
	}
	outPath := filepath.Join(outputDir, "stacked.inp")
	if req.SingleColumn {
		_, err = laySvc.SingleColumn(ks, req.TriplanePath, stackReq, outPath)
	} else {
		_, err = laySvc.Stack(ks, req.TriplanePath, stackReq, outPath)
	}
}

// StartAttributeTask 启动异步属性映射任务
func (s *MeshService) StartAttributeTask(req *AttributeTaskRequest) (*TaskResponse, error) {
	taskID, outputDir, err := s.createRecord("attribute", req.StackedPath, req)
	if err != nil {
		return nil, err
	}
	go s.executeAttributeTask(taskID, req, outputDir)
	return &TaskResponse{TaskID: taskID, OutputPath: outputDir, Message: "任务已提交"}, nil
}

func (s *MeshService) executeAttributeTask(taskID string, req *AttributeTaskRequest, outputDir string) {
	var err error
	defer s.finishTask(taskID, &err)

	var data, dem *Raster.Grid
	if data, err = loadGrid(req.DataPath); err != nil {
		return
	}
	if dem, err = loadGrid(req.DemPath); err != nil {
		return
	}

	ks := Kernel.NewSession()
	attSvc := &AttributeService{}
	outPath := filepath.Join(outputDir, "stacked_attr.inp")
	_, err = attSvc.AddAttribute(ks, data, dem, req.StackedPath,
		req.NLayers, req.AttName, req.Layers, req.FlipDem, outPath)
}

// StartFacesetTask 启动异步面组导出任务
func (s *MeshService) StartFacesetTask(req *FacesetTaskRequest) (*TaskResponse, error) {
	taskID, outputDir, err := s.createRecord("faceset", req.MeshPath, req)
	if err != nil {
		return nil, err
	}
	go s.executeFacesetTask(taskID, req, outputDir)
	return &TaskResponse{TaskID: taskID, OutputPath: outputDir, Message: "任务已提交"}, nil
}

func (s *MeshService) executeFacesetTask(taskID string, req *FacesetTaskRequest, outputDir string) {
	var err error
	defer s.finishTask(taskID, &err)

	var boundary []Mesh.Point3D
	boundary, err = loadBoundary(req.BoundaryPath)
	if err != nil {
		return
	}

	ks := Kernel.NewSession()
	fsSvc := &FacesetService{}
	outPath := filepath.Join(outputDir, "mesh_fs.inp")

	if len(req.Coordinates) == 0 && len(req.TopOutlet) == 0 {
		err = fsSvc.Naive(ks, req.MeshPath, boundary, outPath)
		return
	}

	fs := &Facesets{All: FromCoordinates(toPoints2D(req.Coordinates), boundary)}
	if len(req.TopOutlet) > 0 {
		fs.Top = FromCoordinates(toPoints2D(req.TopOutlet), boundary)
	}
	err = fsSvc.Classify(ks, req.MeshPath, boundary, fs, outPath)
}

func toPoints2D(coords [][2]float64) []Mesh.Point2D {
	pts := make([]Mesh.Point2D, len(coords))
	for i, c := range coords {
		pts[i] = Mesh.Point2D{X: c[0], Y: c[1]}
	}
	return pts
}

// GetTaskStatus 查询任务状态
func (s *MeshService) GetTaskStatus(taskID string) (*models.MeshRecord, error) {
	var record models.MeshRecord
	if err := models.DB.Where("task_id = ?", taskID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// GetTaskList 按类型查询任务列表
func (s *MeshService) GetTaskList(typeName string) ([]models.MeshRecord, error) {
	var records []models.MeshRecord
	query := models.DB.Order("id desc")
	if typeName != "" {
		query = query.Where("type_name = ?", typeName)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
