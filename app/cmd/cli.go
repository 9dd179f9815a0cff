package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/Rakhulsr/go-storefront/app/configs"
	"github.com/Rakhulsr/go-storefront/app/db/seeders"
	"github.com/Rakhulsr/go-storefront/app/helpers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/models/migrations"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"github.com/Rakhulsr/go-storefront/app/services"
	"github.com/Rakhulsr/go-storefront/app/utils/hashing"
	"github.com/Rakhulsr/go-storefront/app/utils/token"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RunCli executes a maintenance command such as "migrate" or "seed".
func RunCli(ctx context.Context, args []string, cfg *configs.Config, log *zap.Logger) error {
	openDB := func() (*gorm.DB, error) {
		return configs.OpenConnection(cfg.DB, cfg.AppEnv, log)
	}

	cmd := &cli.Command{
		Name:  "storefront",
		Usage: "Storefront API maintenance commands",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Run database migration",
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := openDB()
					if err != nil {
						return err
					}
					if err := migrations.AutoMigrate(db); err != nil {
						return err
					}
					log.Info("migration complete")
					return nil
				},
			},
			{
				Name:  "generate-keys",
				Usage: "Generate a new JWT signing secret for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := configs.GenerateAndPrintKeys(os.Stdout); err != nil {
						return err
					}
					log.Info("key generation complete, copy the secret to your .env file")
					return nil
				},
			},
			{
				Name:  "create-admin",
				Usage: "Create a staff account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := openDB()
					if err != nil {
						return err
					}
					repo := repositories.New(db)
					tokens := token.NewHSProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
					auth := services.NewAuthService(repo.Users, hashing.NewBcrypt(bcrypt.DefaultCost), tokens, helpers.NewValidator(), log)

					user, err := auth.CreateAdmin(ctx, services.RegisterInput{
						Email:           c.String("email"),
						Username:        c.String("username"),
						Password:        c.String("password"),
						PasswordConfirm: c.String("password"),
						FirstName:       c.String("first-name"),
						LastName:        c.String("last-name"),
					})
					if err != nil {
						return fmt.Errorf("failed to create admin: %w", err)
					}
					log.Info("admin created", zap.Uint64("user_id", user.ID), zap.String("email", user.Email))
					return nil
				},
			},
			{
				Name:  "seed",
				Usage: "Seed starter categories and fake products",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "products", Value: 5, Usage: "products per category"},
					&cli.StringFlag{Name: "seller-email", Usage: "owner of the seeded products"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					db, err := openDB()
					if err != nil {
						return err
					}
					repo := repositories.New(db)

					var seller *models.User
					if email := c.String("seller-email"); email != "" {
						seller, err = repo.Users.FindByEmail(ctx, email)
						if err != nil {
							return err
						}
						if seller == nil {
							return fmt.Errorf("no user with email %q", email)
						}
					}

					if err := seeders.New(repo, repo, log).DBSeed(ctx, int(c.Int("products")), seller); err != nil {
						return err
					}
					log.Info("seeding complete")
					return nil
				},
			},
		},
	}

	return cmd.Run(ctx, args)
}
