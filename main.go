package main

import (
	"fmt"
	"os"

	"resapi/config"
	"resapi/dao/query"
	"resapi/logutils"
	"resapi/service"
	"resapi/util"
)

func main() {
	err := query.InitDB()
	if err != nil {
		fmt.Println("err init:", err)
		os.Exit(1)
	}

	cfg := config.GetConfig()
	service.Init(query.DB, util.GetTokenMgr(), cfg.Auth.BcryptCost)

	r := service.NewRouter()
	err = r.Run(cfg.Server.Addr)
	if err != nil {
		logutils.Log.Fatal(err)
	}
}
