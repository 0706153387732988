package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/sitehatch/sitehatch-backend/internal/application/dto"
	"github.com/sitehatch/sitehatch-backend/internal/application/errs"
	infra "github.com/sitehatch/sitehatch-backend/internal/infra/auth"
	"github.com/sitehatch/sitehatch-backend/internal/infra/db/repo"
	dbs "github.com/sitehatch/sitehatch-backend/pkg/db"
	"golang.org/x/crypto/bcrypt"
)

type Login struct {
	uowFactory *dbs.UOWFactory
	provider   *infra.IdentityProvider
}

func NewLogin(factory *dbs.UOWFactory, provider *infra.IdentityProvider) *Login {
	return &Login{uowFactory: factory, provider: provider}
}

// Execute trades email and password for a session token. Unknown accounts
// and wrong passwords produce the same error.
func (c *Login) Execute(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, errs.InvalidInputError{Msg: "email and password are required"}
	}

	uow := c.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		return nil, err
	}
	defer uow.Finalize(&err)

	user, err := repo.NewUserRepo(tx).GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = errs.UnauthorizedError{}
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		err = errs.UnauthorizedError{}
		return nil, err
	}

	token, err := c.provider.IssueToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	slog.Info("user logged in", "userID", user.ID)
	return &dto.LoginResponse{Token: token, Username: user.Username}, nil
}
