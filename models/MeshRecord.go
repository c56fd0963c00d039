package models

import "gorm.io/datatypes"

type MeshRecord struct {
	ID         int64          `gorm:"primary_key;autoIncrement"`
	TaskID     string         `gorm:"type:varchar(64);index"` //任务编号
	SourcePath string         `gorm:"type:varchar(255)"`      //输入网格或边界文件路径
	OutputPath string         `gorm:"type:varchar(255)"`      //成果网格输出路径
	Status     int            //任务运行状态 0 运行中 1 执行完成  2 执行失败
	TypeName   string         `gorm:"type:varchar(255)"` //网格操作的类型
	Args       datatypes.JSON `gorm:"type:jsonb"`        //网格操作的输入参数
	Message    string         `gorm:"type:varchar(512)"` //失败原因
}

func (MeshRecord) TableName() string {
	return "mesh_record"
}
