package config

import (
	"encoding/xml"
	"fmt"
	"os"
)

var MainRouter string
var Dem string
var Dbname string
var Download string
var RootPath string
var MainConfig Config

type Config struct {
	XMLName    xml.Name `xml:"config"`
	MainRouter string   `xml:"MainRouter"`
	Dbname     string   `xml:"dbname"`
	Dem        string   `xml:"dem"`
	RootPath   string   `xml:"RootPath"`
	Download   string   `xml:"download"`
}

func init() {

	xmlFile, err := os.Open("config.xml")
	if err != nil {
		fmt.Println("Error  opening  file:", err)
	} else {
		defer xmlFile.Close()
		xmlDecoder := xml.NewDecoder(xmlFile)
		if err = xmlDecoder.Decode(&MainConfig); err != nil {
			fmt.Println("Error  decoding  XML:", err)
		}
	}
	MainRouter = MainConfig.MainRouter
	Dem = MainConfig.Dem
	Dbname = MainConfig.Dbname
	Download = MainConfig.Download
	RootPath = MainConfig.RootPath
	if Dbname == "" {
		Dbname = "tinmesh.db"
	}
	if Download == "" {
		Download = "./data"
	}
	MainConfig.Dbname = Dbname
	MainConfig.Download = Download
}
