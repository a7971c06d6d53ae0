package main

import (
	"time"

	"github.com/kathashu/kathashu/config"
	"github.com/kathashu/kathashu/models"
	"github.com/kathashu/kathashu/routes"
	"github.com/kathashu/kathashu/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.UsernameEntry{},
		&models.Story{},
		&models.Comment{},
		&models.StoryLike{},
		&models.CommentLike{},
		&models.UploadedFile{},
	)

	r := routes.SetupRouter(db)

	utils.StartUploadCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
