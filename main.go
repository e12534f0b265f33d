package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/nordblog/blogapi/config"
	"github.com/nordblog/blogapi/engine"
	"github.com/nordblog/blogapi/media"
	"github.com/nordblog/blogapi/models"
	"github.com/nordblog/blogapi/routes"
	"github.com/nordblog/blogapi/store"
	"github.com/nordblog/blogapi/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	// With no database configured the server keeps everything in memory,
	// which is enough for local development.
	var stores store.Stores
	if cfg.DatabaseURI != "" || cfg.DBHost != "" {
		db := config.InitDatabase(&models.User{}, &models.Post{}, &models.Comment{}, &models.OrphanedMedia{})
		stores = store.NewGorm(db)
	} else {
		utils.Sugar.Warn("no database configured, using in-memory store")
		stores = store.NewMemory()
	}

	mediaStore := media.NewDiskStore(cfg.MediaDir, cfg.MediaBaseURL)
	defaults := media.NewDefaults(cfg.MediaBaseURL, cfg.DefaultPhotoCount, rand.New(rand.NewSource(time.Now().UnixNano())))

	e := engine.New(stores, mediaStore, defaults, utils.Sugar)

	// Retry deletion of media objects that outlived their owning records
	e.StartMediaJanitor(context.Background(), time.Duration(cfg.JanitorIntervalMinutes)*time.Minute)

	r := routes.SetupRouter(e, utils.Logger)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
