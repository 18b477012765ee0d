package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/poyrazK/dnskitchen/internal/adapters/api"
	"github.com/poyrazK/dnskitchen/internal/adapters/repository"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/core/services"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/config"
)

type createArgs struct {
	Namespace string `arg:"-n,--namespace,required" help:"namespace the key may write challenges for"`
	Name      string `arg:"--name" default:"acme-webhook" help:"label shown in listings"`
	Days      int    `arg:"--days" default:"365" help:"validity in days, 0 for no expiry"`
}

type listArgs struct {
	Namespace string `arg:"-n,--namespace" help:"only keys of this namespace"`
}

type revokeArgs struct {
	ID string `arg:"positional,required" help:"key id"`
}

type tokenArgs struct {
	Subject string        `arg:"--subject,required" help:"token subject"`
	Groups  []string      `arg:"--group,separate" help:"group claim such as acme/owner, repeatable"`
	TTL     time.Duration `arg:"--ttl" default:"1h" help:"token lifetime"`
}

type args struct {
	Create *createArgs `arg:"subcommand:create" help:"issue an ACME webhook key"`
	List   *listArgs   `arg:"subcommand:list" help:"list ACME webhook keys"`
	Revoke *revokeArgs `arg:"subcommand:revoke" help:"deactivate an ACME webhook key"`
	Token  *tokenArgs  `arg:"subcommand:token" help:"sign an API bearer token"`
}

var errNoSubcommand = errors.New("expected 'create', 'list', 'revoke' or 'token' subcommands")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	db, err := repository.Open(repository.Options{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	repo := repository.NewRepository(db)
	defer func() {
		if err := repo.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	verifier := api.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err := run(context.Background(), os.Args[1:], os.Stdout, repo, verifier); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, argv []string, out io.Writer, repo ports.APIKeyRepository, verifier *api.TokenVerifier) error {
	var a args
	parser, err := arg.NewParser(arg.Config{Program: "apikey"}, &a)
	if err != nil {
		return err
	}
	if err := parser.Parse(argv); err != nil {
		if errors.Is(err, arg.ErrHelp) {
			parser.WriteHelp(out)
			return nil
		}
		return err
	}

	switch {
	case a.Create != nil:
		return generateKey(ctx, repo, a.Create.Namespace, a.Create.Name, a.Create.Days, out)
	case a.List != nil:
		return listKeys(ctx, repo, a.List.Namespace, out)
	case a.Revoke != nil:
		return revokeKey(ctx, repo, a.Revoke.ID, out)
	case a.Token != nil:
		return signToken(verifier, a.Token.Subject, a.Token.Groups, a.Token.TTL, out)
	default:
		return errNoSubcommand
	}
}

func generateKey(ctx context.Context, repo ports.APIKeyRepository, namespace, name string, days int, out io.Writer) error {
	raw, key, err := services.GenerateAPIKey(namespace, name, time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	if err := repo.CreateAPIKey(ctx, key); err != nil {
		return fmt.Errorf("failed to save API key: %w", err)
	}

	expires := "never"
	if key.ExpiresAt != nil {
		expires = key.ExpiresAt.Format(time.RFC3339)
	}
	fmt.Fprintf(out, "API Key Created Successfully!\n")
	fmt.Fprintf(out, "---------------------------\n")
	fmt.Fprintf(out, "ID:         %s\n", key.ID)
	fmt.Fprintf(out, "Namespace:  %s\n", key.Namespace)
	fmt.Fprintf(out, "Expires:    %s\n", expires)
	fmt.Fprintf(out, "VALUE:      %s\n", raw)
	fmt.Fprintf(out, "---------------------------\n")
	fmt.Fprintf(out, "CAUTION: This is the only time the key will be shown.\n")
	return nil
}

func listKeys(ctx context.Context, repo ports.APIKeyRepository, namespace string, out io.Writer) error {
	keys, err := repo.ListAPIKeys(ctx, namespace)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-36s %-20s %-15s %-8s %-7s\n", "ID", "Namespace", "Name", "Prefix", "Status")
	for _, k := range keys {
		status := "active"
		switch {
		case !k.Active:
			status = "revoked"
		case !k.Usable(time.Now()):
			status = "expired"
		}
		fmt.Fprintf(out, "%-36s %-20s %-15s %-8s %-7s\n", k.ID, k.Namespace, k.Name, k.KeyPrefix, status)
	}
	return nil
}

func revokeKey(ctx context.Context, repo ports.APIKeyRepository, id string, out io.Writer) error {
	if err := repo.RevokeAPIKey(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(out, "API Key %s revoked\n", id)
	return nil
}

func signToken(verifier *api.TokenVerifier, subject string, groups []string, ttl time.Duration, out io.Writer) error {
	token, err := verifier.Sign(subject, groups, ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}
