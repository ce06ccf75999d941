package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/climatiza-api/pkg/jwt"
)

type TokenCmd struct {
	User    string        `help:"ID del usuario" required:""`
	Company string        `help:"ID de la empresa" required:""`
	Roles   []string      `help:"Roles; el primero es el principal" default:"admin"`
	TTL     time.Duration `help:"Vigencia del token" default:"1h"`
	Issuer  string        `help:"Emisor" default:"climatiza-api" env:"JWT_ISSUER"`
	Secret  string        `help:"Clave de firma" required:"" env:"JWT_SECRET"`
}

func (t *TokenCmd) Run(ctx context.Context) error {
	token, err := jwt.Generate(t.Secret, t.User, t.Company, t.Roles, t.Issuer, int(t.TTL.Minutes()))
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
