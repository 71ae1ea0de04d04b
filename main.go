package main

import (
	"os"

	"github.com/alecthomas/kong"
	"golang.org/x/exp/slog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Context struct {
	Debug     bool
	Dialector gorm.Dialector
	Logger    *slog.Logger

	gorm.Config
}

var cli struct {
	Debug  bool   `help:"Enable debug mode." env:"PUBMOD_DEBUG"`
	DSN    string `help:"data source name" default:"pubmod:pubmod@tcp(localhost:3306)/pubmod" env:"PUBMOD_DSN"`
	LogSQL bool   `help:"log sql statements" env:"PUBMOD_LOG_SQL"`

	AutoMigrate     AutoMigrateCmd     `cmd:"" help:"Automigrate the database."`
	CreateInstance  CreateInstanceCmd  `cmd:"" help:"Create a new instance."`
	CreatePerson    CreatePersonCmd    `cmd:"" help:"Create a new local person."`
	CreateCommunity CreateCommunityCmd `cmd:"" help:"Create a new local community."`
	Ban             BanCmd             `cmd:"" help:"Ban a person from a community."`
	Unban           UnbanCmd           `cmd:"" help:"Lift the ban of a person from a community."`
	SiteBan         SiteBanCmd         `cmd:"" help:"Ban a person from every community of this instance."`
	FetchActor      FetchActorCmd      `cmd:"" help:"Fetch and store a remote actor."`
	Serve           ServeCmd           `cmd:"" help:"Serve a local web server."`
}

func main() {
	ctx := kong.Parse(&cli)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	err := ctx.Run(&Context{
		Debug:     cli.Debug,
		Dialector: newDialector(cli.DSN),
		Logger:    log,
		Config: gorm.Config{
			TranslateError: true,
			Logger: logger.Default.LogMode(func() logger.LogLevel {
				if cli.LogSQL {
					return logger.Info
				}
				return logger.Warn
			}()),
		},
	})
	ctx.FatalIfErrorf(err)
}
