package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/5w1tchy/bookshelf/internal/backup"
	"github.com/5w1tchy/bookshelf/internal/security/password"
	"github.com/5w1tchy/bookshelf/internal/store"
	storebooks "github.com/5w1tchy/bookshelf/internal/store/books"
	"github.com/5w1tchy/bookshelf/internal/store/categories"
	"github.com/5w1tchy/bookshelf/internal/store/dbx"
	"github.com/5w1tchy/bookshelf/internal/store/users"
	"github.com/5w1tchy/bookshelf/internal/validate"
)

type categoryInput struct {
	Name string `form:"name" validate:"max=20"`
}

type userInput struct {
	Email    string `form:"email" validate:"required,email"`
	Username string `form:"username" validate:"required,max=150"`
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Create or update the database schema",
		Action: r.Migrate,
	}
}

func (r *Runner) Migrate(ctx context.Context, _ *cli.Command) error {
	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	if err := store.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	r.logger.Info("schema up to date")
	return nil
}

func categoryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "category",
		Usage: "Maintain book categories",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a category",
				ArgsUsage: "<name>",
				Action:    r.CategoryAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List categories",
				Action:  r.CategoryList,
			},
			{
				Name:      "rm",
				Usage:     "Delete a category; its books stay, uncategorized",
				ArgsUsage: "<id>",
				Action:    r.CategoryRemove,
			},
		},
	}
}

func (r *Runner) CategoryAdd(ctx context.Context, cmd *cli.Command) error {
	in := categoryInput{Name: validate.CleanText(cmd.Args().First())}
	if err := r.v.Struct(in); err != nil {
		return err
	}
	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	c, err := categories.New(db).Create(ctx, in.Name)
	if err != nil {
		return err
	}
	r.writePlainln("✓ Category %d: %s", c.ID, c.Name)
	return nil
}

func (r *Runner) CategoryList(ctx context.Context, _ *cli.Command) error {
	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	cats, err := categories.New(db).List(ctx)
	if err != nil {
		return err
	}
	for _, c := range cats {
		r.writePlainln("%d\t%s", c.ID, c.Name)
	}
	return nil
}

func (r *Runner) CategoryRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
	if err != nil || id < 1 {
		return fmt.Errorf("category id required, got %q", cmd.Args().First())
	}
	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	if err := categories.New(db).Delete(ctx, id); err != nil {
		if errors.Is(err, dbx.ErrNotFound) {
			return fmt.Errorf("category %d does not exist", id)
		}
		return err
	}
	r.writePlainln("✓ Category %d deleted", id)
	return nil
}

func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Maintain accounts that may edit books",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Login email", Required: true},
					&cli.StringFlag{Name: "username", Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Initial password", Required: true, Sources: cli.EnvVars("BOOKSHELF_PASSWORD")},
				},
				Action: r.UserAdd,
			},
			{
				Name:      "rm",
				Usage:     "Delete a user; their books stay, authorship cleared",
				ArgsUsage: "<id>",
				Action:    r.UserRemove,
			},
		},
	}
}

func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	in := userInput{
		Email:    validate.Clean(cmd.String("email")),
		Username: validate.Clean(cmd.String("username")),
	}
	if err := r.v.Struct(in); err != nil {
		return err
	}
	pwd, hint, err := password.Check(cmd.String("password"))
	if err != nil {
		return err
	}
	if hint != "" {
		r.logger.Warn("weak password", "hint", hint)
	}
	hash, err := r.hasher.Hash(pwd)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	u, err := users.New(db).Create(ctx, in.Email, in.Username, hash)
	if err != nil {
		return err
	}
	r.writePlainln("✓ User %s (%s)", u.ID, u.Email)
	return nil
}

func (r *Runner) UserRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return errors.New("user id required")
	}
	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	if err := users.New(db).Delete(ctx, id); err != nil {
		if errors.Is(err, dbx.ErrNotFound) {
			return fmt.Errorf("user %s does not exist", id)
		}
		return err
	}
	r.writePlainln("✓ User %s deleted", id)
	return nil
}

func backupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "Upload a JSON snapshot of categories and books",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "prefix", Usage: "Object key prefix", Value: r.cfg.Backup.Prefix},
			&cli.IntFlag{Name: "keep", Usage: "Delete all but the newest N snapshots afterwards (0 keeps all)"},
			&cli.BoolFlag{Name: "link", Usage: "Print a 15 minute download link"},
		},
		Action: r.Backup,
	}
}

func (r *Runner) Backup(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	bucket, err := r.openBucket(ctx)
	if err != nil {
		return err
	}
	svc := backup.New(storebooks.New(db), categories.New(db), bucket, cmd.String("prefix"), r.logger)

	key, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	r.writePlainln("✓ Snapshot %s", key)

	if keep := cmd.Int("keep"); keep > 0 {
		deleted, err := svc.Prune(ctx, keep)
		if err != nil {
			return err
		}
		r.writePlainln("  Pruned: %d", len(deleted))
	}
	if cmd.Bool("link") {
		url, err := bucket.PresignGet(ctx, key, 15*time.Minute)
		if err != nil {
			return err
		}
		r.writePlainln("  Link: %s", url)
	}
	return nil
}
