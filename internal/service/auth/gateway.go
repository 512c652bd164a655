package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/coursedesk/internal/domain"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type AuthUseCase interface {
	Login(ctx context.Context, input LoginInput) (domain.Snapshot, error)
	Register(ctx context.Context, input RegisterInput) (domain.Snapshot, error)
	Logout(ctx context.Context) error
}

type Backend interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
}

type Session interface {
	Current() domain.Snapshot
	SetAuthenticated(ctx context.Context, identity domain.Identity, token string) error
	Clear(ctx context.Context) error
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the sign-up form. ConfirmPassword is checked here and
// never forwarded.
type RegisterInput struct {
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required"`
	ConfirmPassword  string `json:"confirm_password"`
	GDPRConsent      bool   `json:"gdpr_consent"`
	MarketingConsent bool   `json:"marketing_consent"`
}

type Gateway struct {
	backend  Backend
	session  Session
	validate *validator.Validate
	logger   *zap.Logger
}

func NewGateway(backend Backend, session Session, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		backend:  backend,
		session:  session,
		validate: validator.New(),
		logger:   logger,
	}
}

func (g *Gateway) Login(ctx context.Context, input LoginInput) (domain.Snapshot, error) {
	if err := g.check("login", input); err != nil {
		return domain.Snapshot{}, err
	}

	res, err := g.backend.Login(ctx, input.Email, input.Password)
	if err != nil {
		g.logger.Info("login failed", zap.String("kind", string(domain.KindOf(err))), zap.Error(err))
		return domain.Snapshot{}, err
	}
	return g.authenticate(ctx, "login", res)
}

func (g *Gateway) Register(ctx context.Context, input RegisterInput) (domain.Snapshot, error) {
	if err := g.check("register", input); err != nil {
		return domain.Snapshot{}, err
	}
	if !input.GDPRConsent {
		return domain.Snapshot{}, domain.NewValidationError("register", "privacy policy consent is required")
	}
	if input.Password != input.ConfirmPassword {
		return domain.Snapshot{}, domain.NewValidationError("register", "passwords do not match")
	}

	res, err := g.backend.Register(ctx, domain.Registration{
		Name:             input.Name,
		Email:            input.Email,
		Password:         input.Password,
		GDPRConsent:      input.GDPRConsent,
		MarketingConsent: input.MarketingConsent,
	})
	if err != nil {
		g.logger.Info("registration failed", zap.String("kind", string(domain.KindOf(err))), zap.Error(err))
		return domain.Snapshot{}, err
	}
	return g.authenticate(ctx, "register", res)
}

func (g *Gateway) Logout(ctx context.Context) error {
	if err := g.session.Clear(ctx); err != nil {
		g.logger.Error("logout failed", zap.Error(err))
		return fmt.Errorf("logout: %w", err)
	}
	g.logger.Info("logged out")
	return nil
}

func (g *Gateway) authenticate(ctx context.Context, op string, res *domain.AuthResult) (domain.Snapshot, error) {
	if err := g.session.SetAuthenticated(ctx, res.Identity, res.AccessToken); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", op, err)
	}
	return g.session.Current(), nil
}

func (g *Gateway) check(op string, input any) error {
	err := g.validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError(op, err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "email":
			msgs = append(msgs, field+" must be a valid email address")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return domain.NewValidationError(op, strings.Join(msgs, "; "))
}

var _ AuthUseCase = (*Gateway)(nil)
