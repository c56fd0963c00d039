package routers

import (
	"github.com/GrainArc/TinMesh/views"
	"github.com/gin-gonic/gin"
)

func MeshRouters(r *gin.Engine) {
	UserController := &views.UserController{}
	mapRouter := r.Group("/mesh")
	{
		// POST用于提交三角网生成任务
		mapRouter.POST("/Triplane/start", UserController.StartTriplane)
		mapRouter.GET("/Triplane/status/:taskId", UserController.GetTaskStatus)
	}
	{
		// POST用于提交分层体网格任务
		mapRouter.POST("/Stack/start", UserController.StartStack)
		mapRouter.GET("/Stack/status/:taskId", UserController.GetTaskStatus)
	}
	{
		// POST用于提交属性映射任务
		mapRouter.POST("/Attribute/start", UserController.StartAttribute)
		mapRouter.GET("/Attribute/status/:taskId", UserController.GetTaskStatus)
	}
	{
		// POST用于提交面组导出任务
		mapRouter.POST("/Faceset/start", UserController.StartFaceset)
		mapRouter.GET("/Faceset/status/:taskId", UserController.GetTaskStatus)
	}
	{
		// 任务列表查询
		mapRouter.GET("/Tasks", UserController.GetTaskList)
	}
}
