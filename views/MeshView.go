package views

import (
	"errors"
	"net/http"
	"os"

	"github.com/GrainArc/TinMesh/Kernel"
	"github.com/GrainArc/TinMesh/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
}

var meshService = &services.MeshService{}

// 校验错误返回400，其余返回500
func taskError(c *gin.Context, err error) {
	var ve *Kernel.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// StartTriplane 提交三角网生成任务
func (uc *UserController) StartTriplane(c *gin.Context) {
	var req services.TriplaneTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if _, err := os.Stat(req.BoundaryPath); os.IsNotExist(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "boundary file not found: " + req.BoundaryPath})
		return
	}
	resp, err := meshService.StartTriplaneTask(&req)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StartStack 提交分层体网格任务
func (uc *UserController) StartStack(c *gin.Context) {
	var req services.StackTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if _, err := os.Stat(req.TriplanePath); os.IsNotExist(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "triplane file not found: " + req.TriplanePath})
		return
	}
	resp, err := meshService.StartStackTask(&req)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StartAttribute 提交栅格属性映射任务
func (uc *UserController) StartAttribute(c *gin.Context) {
	var req services.AttributeTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if _, err := os.Stat(req.StackedPath); os.IsNotExist(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stacked mesh not found: " + req.StackedPath})
		return
	}
	resp, err := meshService.StartAttributeTask(&req)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StartFaceset 提交面组导出任务
func (uc *UserController) StartFaceset(c *gin.Context) {
	var req services.FacesetTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if _, err := os.Stat(req.MeshPath); os.IsNotExist(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mesh file not found: " + req.MeshPath})
		return
	}
	resp, err := meshService.StartFacesetTask(&req)
	if err != nil {
		taskError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTaskStatus 查询任务状态
func (uc *UserController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("taskId")
	record, err := meshService.GetTaskStatus(taskID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found: " + taskID})
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetTaskList 查询任务列表
func (uc *UserController) GetTaskList(c *gin.Context) {
	typeName := c.Query("type")
	records, err := meshService.GetTaskList(typeName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": records, "count": len(records)})
}
