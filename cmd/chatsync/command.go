package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "chatsync"
	app.Usage = "Cache synchronization daemon for chat threads"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path of the TOML config file",
			Value: "chatsync.toml",
		},
	}
	app.Commands = []*cli.Command{
		{
			Action:      s.startDaemon,
			Name:        "daemon",
			Usage:       "Start the sync daemon",
			Category:    "Sync",
			Description: `Runs the cache engine with the realtime listener, the redis mirror and the search feeder attached.`,
		},
	}

	s.app = app
}
