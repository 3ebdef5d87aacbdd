package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/ytget/yt-queue/internal/download"
	"github.com/ytget/yt-queue/internal/metadata"
	"github.com/ytget/yt-queue/internal/platform"
	"github.com/ytget/yt-queue/internal/queue"
	"github.com/ytget/yt-queue/internal/resolve"
	"github.com/ytget/yt-queue/internal/session"
	"github.com/ytget/yt-queue/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.yt-queue"
	AppName = "YT Queue"
)

func main() {
	fmt.Printf("%s v%s starting...\n", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewQueueTheme())

	adapter := session.NewAdapter(session.DefaultPath())
	doc := adapter.Load()

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(float32(doc.Settings.WindowWidth), float32(doc.Settings.WindowHeight)))

	if err := platform.CreateDirectoryIfNotExists(doc.Settings.DownloadDir); err != nil {
		fmt.Printf("failed to ensure downloads dir: %v\n", err)
	}

	store := queue.NewStore()
	store.Restore(doc.Queue)

	cache := metadata.NewCache(metadata.NewYtdlpProber())
	resolver := resolve.NewResolver()
	resolver.SetSabrCeiling(doc.Settings.SabrCeiling)

	engine := download.NewEngine(store, cache, resolver, download.NewYtdlpFetcher(), doc.Settings.DownloadDir)
	engine.SetMaxParallel(doc.Settings.MaxParallel)
	engine.SetForceSabr(doc.Settings.ForceSabr)

	rootUI := ui.NewRootUI(myWindow, store, engine, adapter, doc.Settings)
	engine.SetPersistFunc(rootUI.SaveSession)

	myWindow.ShowAndRun()
}
