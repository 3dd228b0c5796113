// Command createstaff creates a staff account, or promotes an existing one,
// so it can reach the profile export page.
//
//	go run ./cmd/createstaff -email admin@example.com -name "Site Admin" -mobile 9876543210
//
// The password is read from STAFF_PASSWORD when -password is not given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go-profile-portal/config"
	"go-profile-portal/internal/domain"
	"go-profile-portal/internal/repository/postgres"
	"go-profile-portal/internal/usecase"
	"go-profile-portal/migrations"
	"go-profile-portal/pkg/apperror"
	"go-profile-portal/pkg/audit"
	"go-profile-portal/pkg/database"
	"go-profile-portal/pkg/logger"
	"go-profile-portal/pkg/token"
	"go-profile-portal/pkg/validation"
)

func main() {
	email := flag.String("email", "", "staff email (required)")
	name := flag.String("name", "Staff", "display name for a new account")
	mobile := flag.String("mobile", "0000000000", "10-digit mobile number for a new account")
	password := flag.String("password", os.Getenv("STAFF_PASSWORD"), "password for a new account")
	flag.Parse()

	if strings.TrimSpace(*email) == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*email, *name, *mobile, *password); err != nil {
		fmt.Fprintln(os.Stderr, "createstaff:", err)
		os.Exit(1)
	}
}

func run(email, name, mobile, password string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, "profile-portal-createstaff", cfg.AppEnv)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, migrations.FS); err != nil {
		return err
	}

	users := postgres.NewUserRepository(pool)

	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		if err := users.SetStaff(ctx, existing.ID, true); err != nil {
			return err
		}
		fmt.Printf("Promoted %s (id %d) to staff\n", existing.Email, existing.ID)
		return nil
	}

	if password == "" {
		return errors.New("no account with that email; -password or STAFF_PASSWORD is required to create one")
	}

	// Registration rules apply to staff accounts too
	authUC := usecase.NewAuthUsecase(users, token.NewManager(cfg.JWTSecret, cfg.JWTTTL), validation.New(), audit.Default(), nil)
	user, err := authUC.Register(ctx, domain.RegisterInput{
		Name:       name,
		MobileNo:   mobile,
		Email:      email,
		WorkStatus: string(domain.WorkStatusExperienced),
		Password1:  password,
		Password2:  password,
	})
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
			return fmt.Errorf("%s %s", appErr.Message, strings.Join(validation.FormatFields(appErr.Fields), "; "))
		}
		return err
	}

	if err := users.SetStaff(ctx, user.ID, true); err != nil {
		return err
	}
	fmt.Printf("Created staff account %s (id %d)\n", user.Email, user.ID)
	return nil
}
