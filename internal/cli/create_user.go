package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/AlexTsikhun/book-management-system/internal/auth"
	"github.com/AlexTsikhun/book-management-system/internal/config"
)

// CreateUserCommand registers an account without going through the API.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	DatabasePath string

	Out    io.Writer
	config *config.Config
}

func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{config: cfg}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 8 characters (required)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "SQLite database path (defaults to DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> -password <password>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case cmd.Username == "":
		return fmt.Errorf("required flag -username not provided")
	case cmd.Email == "":
		return fmt.Errorf("required flag -email not provided")
	case cmd.Password == "":
		return fmt.Errorf("required flag -password not provided")
	}

	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := openDatabase(cmd.config.Database, cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	// Tokens are never issued here, so the secret may be unset.
	svc, err := auth.NewService(db, auth.NewTokenIssuer(cmd.config.Auth.SecretKey, cmd.config.Auth.TokenExpiry), cmd.config.Auth)
	if err != nil {
		return err
	}

	user, err := svc.Register(context.Background(), auth.RegisterInput{
		Username: cmd.Username,
		Email:    cmd.Email,
		Password: cmd.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(outputOrStdout(cmd.Out), "Created user %q (id %d)\n", user.Username, user.ID)
	return nil
}
