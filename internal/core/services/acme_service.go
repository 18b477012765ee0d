package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/metrics"
)

// APIKeyPrefix starts every generated ACME webhook key.
const APIKeyPrefix = "dk_"

// HashAPIKey returns the stored form of a raw key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// GenerateAPIKey creates a random key for namespace. The raw key is only
// returned here; the APIKey carries its hash.
func GenerateAPIKey(namespace, name string, validFor time.Duration) (string, *domain.APIKey, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("generate key: %w", err)
	}
	raw := APIKeyPrefix + hex.EncodeToString(buf)
	now := time.Now().UTC()
	key := &domain.APIKey{
		Namespace: namespace,
		Name:      name,
		KeyHash:   HashAPIKey(raw),
		KeyPrefix: raw[:8],
		Active:    true,
		CreatedAt: now,
	}
	if validFor > 0 {
		exp := now.Add(validFor)
		key.ExpiresAt = &exp
	}
	return raw, key, nil
}

type acmeService struct {
	keys    ports.APIKeyRepository
	domains ports.DomainService
	records ports.RecordService
	lookup  ports.RecordRepository
	cache   *cache.Cache
	logger  *slog.Logger
}

// NewACMEService wires the DNS-01 webhook. Verified API keys are cached for
// cacheTTL; a revoked key stays usable until its entry expires.
func NewACMEService(
	keys ports.APIKeyRepository,
	domains ports.DomainService,
	records ports.RecordService,
	lookup ports.RecordRepository,
	cacheTTL time.Duration,
	logger *slog.Logger,
) ports.ACMEService {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &acmeService{
		keys:    keys,
		domains: domains,
		records: records,
		lookup:  lookup,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		logger:  logger,
	}
}

// Present creates the TXT record _acme-challenge.{dnsName} holding the key
// in the longest ACTIVE zone containing dnsName. Presenting the same
// challenge twice leaves a single record.
func (s *acmeService) Present(ctx context.Context, ch domain.ACMEChallenge) (err error) {
	defer func() { observeACME("present", err) }()

	d, fqName, err := s.prepare(ctx, ch, true)
	if err != nil {
		return err
	}

	_, err = s.lookup.GetRecord(ctx, domain.AllOf(
		domain.Eq("domainId", d.ID),
		domain.Eq("name", fqName),
		domain.Eq("type", string(domain.TypeTXT)),
		domain.Eq("content", ch.Key),
	))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	rec := &domain.Record{
		Name:    domain.RelativeRecordName(fqName, d.Name),
		Type:    domain.TypeTXT,
		Content: ch.Key,
		TTL:     domain.ACMETTL,
	}
	if err := s.records.CreateInDomain(ctx, d, rec); err != nil {
		return err
	}
	s.logger.Info("acme challenge presented", "domain", d.Name, "name", fqName)
	return nil
}

// Cleanup removes the challenge TXT records. Without a key every TXT record
// of the challenge name goes.
func (s *acmeService) Cleanup(ctx context.Context, ch domain.ACMEChallenge) (err error) {
	defer func() { observeACME("cleanup", err) }()

	d, fqName, err := s.prepare(ctx, ch, false)
	if err != nil {
		return err
	}
	var where domain.Filter = domain.Eq("type", string(domain.TypeTXT))
	if ch.Key != "" {
		where = domain.AllOf(where, domain.Eq("content", ch.Key))
	}
	n, err := s.records.DeleteByName(ctx, d, fqName, where)
	if err != nil {
		return err
	}
	s.logger.Info("acme challenge cleaned up", "domain", d.Name, "name", fqName, "deleted", n)
	return nil
}

func (s *acmeService) prepare(ctx context.Context, ch domain.ACMEChallenge, keyRequired bool) (*domain.Domain, string, error) {
	if strings.TrimSpace(ch.APIKey) == "" {
		return nil, "", fmt.Errorf("%w: apiKey is required", domain.ErrUnauthorized)
	}
	dnsName := domain.NormalizeDomainName(strings.TrimPrefix(strings.TrimSpace(ch.DNSName), "*."))
	if dnsName == "" {
		return nil, "", domain.NewValidationError("dnsName", "dnsName is required")
	}
	if keyRequired && ch.Key == "" {
		return nil, "", domain.NewValidationError("key", "key is required")
	}

	key, err := s.authenticate(ctx, ch.APIKey)
	if err != nil {
		return nil, "", err
	}
	d, err := s.zoneFor(ctx, key.Namespace, dnsName)
	if err != nil {
		return nil, "", err
	}
	return d, ch.ChallengeName(), nil
}

func (s *acmeService) authenticate(ctx context.Context, raw string) (*domain.APIKey, error) {
	hash := HashAPIKey(raw)
	if cached, ok := s.cache.Get(hash); ok {
		metrics.APIKeyCache.WithLabelValues("hit").Inc()
		key := cached.(*domain.APIKey)
		if key.Usable(time.Now()) {
			return key, nil
		}
		s.cache.Delete(hash)
		return nil, fmt.Errorf("%w: api key expired", domain.ErrUnauthorized)
	}
	metrics.APIKeyCache.WithLabelValues("miss").Inc()

	key, err := s.keys.GetAPIKeyByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("load api key: %w", err)
	}
	if !key.Usable(time.Now()) {
		return nil, fmt.Errorf("%w: invalid api key", domain.ErrUnauthorized)
	}
	s.cache.SetDefault(hash, key)
	return key, nil
}

// zoneFor picks the longest ACTIVE zone of namespace that is name or one of
// its parents.
func (s *acmeService) zoneFor(ctx context.Context, namespace, name string) (*domain.Domain, error) {
	for _, candidate := range domain.CandidateZones(name) {
		d, err := s.domains.ReadActiveByName(ctx, namespace, candidate)
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}
	return nil, &domain.NotFoundError{Entity: "active domain", Key: name}
}

func observeACME(action string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.ACMEOperations.WithLabelValues(action, result).Inc()
}
