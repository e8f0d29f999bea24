package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/parkour/logging"
	"github.com/milk9111/parkour/prefabs"
)

func main() {
	courseName := flag.String("course", "vault", "course name in prefabs/ (course_<name>.yaml)")
	tuningFile := flag.String("tuning", prefabs.TuningFile, "tuning file in prefabs/")
	autoplay := flag.Bool("autoplay", false, "drive the character with the course script")
	watch := flag.Bool("watch", true, "reload prefabs when they change on disk")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	logger, err := logging.New(*logLevel, logging.FormatConsole)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = logger.Sync() }()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("parkour viewer")

	viewer, err := NewViewer(*courseName, *tuningFile, *autoplay, logger)
	if err != nil {
		log.Fatal(err)
	}
	if *watch {
		if err := viewer.Watch(prefabs.DiskDir); err != nil {
			logger.Sugar().Warnf("prefab watch disabled: %v", err)
		}
	}
	defer viewer.Close()

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
