package cli

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
)

// TokenCmd mints an access token for local development.
type TokenCmd struct {
	Secret     string `help:"JWT signing secret." env:"JWT_SECRET_KEY" required:""`
	Expiration string `help:"Token lifetime." env:"JWT_ACCESS_EXPIRATION_TIME" default:"1h"`
	UserID     string `help:"User ID claim." required:""`
	Email      string `help:"Email claim." default:"dev@example.com"`
	EmployeeID string `help:"Employee ID claim."`
	CompanyID  string `help:"Company ID claim." required:""`
	Role       string `help:"Role claim." enum:"owner,manager,employee,pending" default:"employee"`
}

func (c *TokenCmd) Run(ctx *Context) error {
	svc, err := jwt.NewJWTService(c.Secret, c.Expiration)
	if err != nil {
		return fmt.Errorf("invalid expiration: %w", err)
	}

	token, expiresAt, err := svc.GenerateAccessToken(c.UserID, c.Email, optional(c.EmployeeID), optional(c.CompanyID), user.Role(c.Role))
	if err != nil {
		return err
	}

	ctx.Log.Info("token minted", "user_id", c.UserID, "role", c.Role, "expires_at", time.Unix(expiresAt, 0).Format(time.RFC3339))
	_, err = fmt.Fprintln(ctx.Out, token)
	return err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
