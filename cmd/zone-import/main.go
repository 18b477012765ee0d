package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/poyrazK/dnskitchen/internal/adapters/lock"
	"github.com/poyrazK/dnskitchen/internal/adapters/repository"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/core/services"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/config"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/logging"
)

type args struct {
	Namespace string `arg:"-n,--namespace,required" help:"namespace owning the zone"`
	Domain    string `arg:"-d,--domain,required" help:"zone id or name"`
	Create    bool   `arg:"--create" help:"create the zone first when it does not exist"`
	Source    string `arg:"positional,required" help:"master file path, http(s) URL or - for stdin"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer closer.Close()

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

	locker := lock.NewLocalLocker()
	domains := services.NewDomainService(repo, cfg.NameserverSet(), nil, locker, logger)
	records := services.NewRecordService(repo, repo, locker, logger)

	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, domains, records); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

func run(ctx context.Context, argv []string, stdin io.Reader, out io.Writer, domains ports.DomainService, records ports.RecordService) error {
	var a args
	parser, err := arg.NewParser(arg.Config{Program: "zone-import"}, &a)
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

	if a.Create {
		if err := ensureDomain(ctx, domains, a.Namespace, a.Domain, out); err != nil {
			return err
		}
	}

	src, err := openSource(ctx, a.Source, stdin)
	if err != nil {
		return err
	}
	defer src.Close()

	start := time.Now()
	res, err := records.ImportZone(ctx, a.Namespace, a.Domain, src)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nImport Completed Successfully!\n")
	fmt.Fprintf(out, "Imported:   %d\n", res.Imported)
	fmt.Fprintf(out, "Skipped:    %d\n", res.Skipped)
	fmt.Fprintf(out, "Time Taken: %v\n", time.Since(start))
	for _, e := range res.Errors {
		fmt.Fprintf(out, "  skipped: %s\n", e)
	}
	return nil
}

func ensureDomain(ctx context.Context, domains ports.DomainService, namespace, name string, out io.Writer) error {
	_, err := domains.GetDomain(ctx, namespace, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	d, err := domains.CreateDomain(ctx, namespace, name)
	if err != nil {
		return fmt.Errorf("failed to create zone: %w", err)
	}
	fmt.Fprintf(out, "Created zone %s (%s) in %s\n", d.Name, d.ID, namespace)
	return nil
}

func openSource(ctx context.Context, src string, stdin io.Reader) (io.ReadCloser, error) {
	switch {
	case src == "-":
		return io.NopCloser(stdin), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to download: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			_ = resp.Body.Close()
			return nil, fmt.Errorf("bad status: %s", resp.Status)
		}
		return resp.Body, nil
	default:
		f, err := os.Open(src) // #nosec G304 -- operator supplied path
		if err != nil {
			return nil, err
		}
		return f, nil
	}
}
