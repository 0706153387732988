package debug

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	"github.com/sitehatch/sitehatch-backend/internal/infra/config"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
	"golang.org/x/crypto/bcrypt"
)

// Debug exposes account helpers for local development. The routes backed by
// these commands are only registered in the development environment.
type Debug struct {
	cfg        *config.AppConfig
	uowFactory *dbs.UOWFactory
}

func NewDebug(cfg *config.AppConfig, factory *dbs.UOWFactory) *Debug {
	return &Debug{cfg: cfg, uowFactory: factory}
}

// Credentials looks up an account by email. Password hashes never leave the
// database, even here.
func (c *Debug) Credentials(ctx context.Context, email string) (*dto.DebugCredentialsResponse, error) {
	if email == "" {
		return nil, errs.InvalidInputError{Msg: "email is required"}
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	user, err := repo.NewUserRepo(tx).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.NotFoundError{Entity: "user", ID: email}
		}
		return nil, err
	}

	return &dto.DebugCredentialsResponse{
		Email:    user.Email,
		Username: user.Username,
		LoginURL: c.cfg.BaseURL + "/login",
	}, nil
}

// ResetPassword rotates an account's password and returns the new plaintext
// once.
func (c *Debug) ResetPassword(ctx context.Context, req *dto.DebugResetPasswordRequest) (*dto.DebugResetPasswordResponse, error) {
	if req.Email == "" {
		return nil, errs.InvalidInputError{Msg: "email is required"}
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	userRepo := repo.NewUserRepo(tx)
	user, err := userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.NotFoundError{Entity: "user", ID: req.Email}
		}
		return nil, err
	}

	password, err := randomPassword()
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if err = userRepo.RotatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, err
	}

	slog.Info("password reset via debug endpoint", "userID", user.ID)
	return &dto.DebugResetPasswordResponse{
		Email:    user.Email,
		Password: password,
	}, nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
