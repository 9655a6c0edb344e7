package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"Friendbook/internals/config"
	"Friendbook/internals/handlers"
	"Friendbook/internals/logger"
	"Friendbook/internals/render"
	"Friendbook/internals/server"
	"Friendbook/internals/session"
	"Friendbook/internals/store"
)

func main() {
	app := &cli.App{
		Name:   "friendbook",
		Usage:  "share short posts with everyone",
		Flags:  []cli.Flag{configFlag()},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the web server",
				Flags:  []cli.Flag{configFlag()},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "create or upgrade the database schema and exit",
				Flags:  []cli.Flag{configFlag()},
				Action: migrateOnly,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

// configFlag is accepted both before and after the subcommand name.
func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Usage:   "path to the YAML configuration file",
		EnvVars: []string{"CONFIG_PATH"},
	}
}

// configPath returns the innermost --config value that was given.
func configPath(c *cli.Context) string {
	for _, ctx := range c.Lineage() {
		if v := ctx.String("config"); v != "" {
			return v
		}
	}
	return ""
}

func setup(c *cli.Context) (*config.Config, *logrus.Logger, *store.Store, error) {
	cfg, err := config.Load(configPath(c))
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stdout)
	log.Info("Config loaded")

	var opts []store.Option
	if cfg.Auth.PasswordMode == config.PasswordModeBcrypt {
		opts = append(opts, store.WithBcrypt())
	} else {
		log.Warn("Passwords are stored and compared in plaintext; set auth.password_mode to bcrypt")
	}
	st, err := store.Open(cfg.Database.SQLitePath, cfg.Database.BusyTimeoutMs, opts...)
	if err != nil {
		return nil, nil, nil, err
	}
	log.WithField("path", cfg.Database.SQLitePath).Info("Database connected")

	if err := st.InitSchema(c.Context); err != nil {
		st.Close()
		return nil, nil, nil, err
	}
	log.Info("Schema up to date")
	return cfg, log, st, nil
}

func migrateOnly(c *cli.Context) error {
	_, log, st, err := setup(c)
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := st.CountUsers(c.Context)
	if err != nil {
		return err
	}
	posts, err := st.CountPosts(c.Context)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"users": users, "posts": posts}).Info("Migration complete")
	return nil
}

func serve(c *cli.Context) error {
	cfg, log, st, err := setup(c)
	if err != nil {
		return err
	}
	defer st.Close()

	pages, err := render.New()
	if err != nil {
		return err
	}
	sessions := session.NewManager(session.Options{
		CookieName:    cfg.Session.CookieName,
		Secret:        cfg.Session.Secret,
		EncryptionKey: cfg.Session.EncryptionKey,
		MaxAge:        cfg.Session.MaxAge,
		Secure:        cfg.Session.Secure,
		Log:           log,
	})
	env := handlers.NewEnv(st, sessions, pages, log)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg, env, log).Run(ctx)
}
