package main

import (
	"log"

	"github.com/GrainArc/TinMesh/config"
	"github.com/GrainArc/TinMesh/models"
	"github.com/GrainArc/TinMesh/routers"
	"github.com/gin-gonic/gin"
)

func main() {
	if err := models.InitDatabase(); err != nil {
		log.Fatalf("初始化任务库失败: %v", err)
	}

	r := gin.Default()
	routers.MeshRouters(r)

	addr := config.MainRouter
	if addr == "" {
		addr = ":8426"
	}
	if err := r.Run(addr); err != nil {
		log.Fatalf("服务启动失败: %v", err)
	}
}
