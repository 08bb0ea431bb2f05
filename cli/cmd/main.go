package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/maddsua/minitar/cli/config"
	"github.com/maddsua/minitar/tarball"
	"github.com/maddsua/minitar/utils"
	"github.com/urfave/cli/v3"
)

func main() {

	var cfg config.Config

	if err := cfg.Load(); err != nil {
		fmt.Println("Load config:", err)
		os.Exit(1)
	}

	setupLogger(&cfg)

	archiveFlag := &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path of the archive file to operate on",
		Required: true,
	}

	cmd := &cli.Command{
		Name:  "minitar",
		Usage: "A tiny ustar-compatible archiver",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a new archive from the given files",
				Flags: []cli.Flag{archiveFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {

					arc, members, err := archiveMembersArgs(cmd)
					if err != nil {
						return err
					}

					if err := arc.Create(members); err != nil {
						return err
					}

					slog.Info("Archive created",
						slog.String("file", arc.Path),
						slog.Int("members", len(members)))

					return nil
				},
			},
			{
				Name:  "append",
				Usage: "Append files to the end of an existing archive",
				Flags: []cli.Flag{archiveFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {

					arc, members, err := archiveMembersArgs(cmd)
					if err != nil {
						return err
					}

					if err := arc.Append(members); err != nil {
						return err
					}

					slog.Info("Archive extended",
						slog.String("file", arc.Path),
						slog.Int("members", len(members)))

					return nil
				},
			},
			{
				Name:  "list",
				Usage: "Print archive member names in archive order",
				Flags: []cli.Flag{archiveFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {

					arc := tarball.Archive{Path: cmd.String("file")}

					names, err := arc.List()
					if err != nil {
						return err
					}

					for _, name := range names {
						fmt.Println(name)
					}

					return nil
				},
			},
			{
				Name:  "update",
				Usage: "Append new versions of files that are already in the archive",
				Flags: []cli.Flag{archiveFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {

					arc, members, err := archiveMembersArgs(cmd)
					if err != nil {
						return err
					}

					if err := arc.Update(members); err != nil {
						return err
					}

					slog.Info("Archive updated",
						slog.String("file", arc.Path),
						slog.Int("members", len(members)))

					return nil
				},
			},
			{
				Name:  "extract",
				Usage: "Extract all archive members, later duplicates overwriting earlier ones",
				Flags: []cli.Flag{
					archiveFlag,
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Destination directory (must already exist)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {

					arc := tarball.Archive{Path: cmd.String("file")}
					dest := utils.SelectString(cmd.String("dir"), cfg.ExtractDir, ".")

					if err := arc.Extract(dest); err != nil {
						return err
					}

					slog.Info("Archive extracted",
						slog.String("file", arc.Path),
						slog.String("dir", dest))

					return nil
				},
			},
		},
	}

	errCh := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := cmd.Run(ctx, os.Args); ctx.Err() == nil {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	exitCh := make(chan os.Signal, 2)
	signal.Notify(exitCh, os.Interrupt, syscall.SIGTERM)

	select {

	case err := <-errCh:

		if err != nil {
			slog.Error("Operation failed",
				slog.String("err", err.Error()))
			os.Exit(1)
		}

	case <-exitCh:
		fmt.Println("Cancelling...")
		cancel()
		<-errCh
	}
}

func archiveMembersArgs(cmd *cli.Command) (*tarball.Archive, []string, error) {

	members := cmd.Args().Slice()
	if len(members) == 0 {
		return nil, nil, fmt.Errorf("no member files given")
	}

	if err := utils.ValidateMembers(members); err != nil {
		return nil, nil, err
	}

	return &tarball.Archive{Path: cmd.String("file")}, members, nil
}

func setupLogger(cfg *config.Config) {

	var level slog.Level
	switch utils.SelectString(os.Getenv("MINITAR_LOG_LEVEL"), cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	if utils.SelectString(os.Getenv("MINITAR_LOG_FORMAT"), cfg.LogFormat) == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}
}
