package cmd

import (
	"context"
	"errors"
	"fmt"

	"profile-auth/internal/dto/request"
	"profile-auth/internal/usecase"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// CreateSuperuser implements the createsuperuser subcommand.
//
//	profile-auth createsuperuser --email a@b.c --username admin --password secret
//
// --staff and --superuser default to true; passing either as false fails.
func CreateSuperuser(ctx context.Context, args []string, service usecase.UserService, logger *zap.Logger) error {
	fs := pflag.NewFlagSet("createsuperuser", pflag.ContinueOnError)
	email := fs.String("email", "", "email address of the new superuser")
	username := fs.String("username", "", "display name of the new superuser")
	password := fs.String("password", "", "password of the new superuser")
	staff := fs.Bool("staff", true, "grant staff status")
	superuser := fs.Bool("superuser", true, "grant superuser status")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if *email == "" || *password == "" {
		return errors.New("--email and --password are required")
	}

	req := &request.SuperuserRequest{
		Email:    *email,
		Username: *username,
		Password: *password,
	}
	if fs.Changed("staff") {
		req.IsStaff = staff
	}
	if fs.Changed("superuser") {
		req.IsSuperuser = superuser
	}

	user, err := service.CreateSuperuser(ctx, req)
	if err != nil {
		return fmt.Errorf("create superuser: %w", err)
	}

	logger.Info("Superuser created", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	return nil
}
