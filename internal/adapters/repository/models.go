package repository

import (
	"time"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
)

type domainModel struct {
	ID        string        `gorm:"primaryKey;size:36"`
	Namespace string        `gorm:"size:128;not null;uniqueIndex:idx_domains_namespace_name,priority:1"`
	Name      string        `gorm:"size:255;not null;uniqueIndex:idx_domains_namespace_name,priority:2"`
	Status    string        `gorm:"size:16;not null;index"`
	Records   []recordModel `gorm:"foreignKey:DomainID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time     `gorm:"not null"`
	UpdatedAt time.Time     `gorm:"not null"`
}

func (domainModel) TableName() string {
	return "domains"
}

type recordModel struct {
	ID        string    `gorm:"primaryKey;size:36"`
	DomainID  string    `gorm:"size:36;not null;index:idx_records_domain_name,priority:1"`
	Name      string    `gorm:"size:255;not null;index:idx_records_domain_name,priority:2"`
	Type      string    `gorm:"size:8;not null"`
	Content   string    `gorm:"type:text;not null"`
	TTL       int       `gorm:"column:ttl;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (recordModel) TableName() string {
	return "records"
}

type apiKeyModel struct {
	ID        string     `gorm:"primaryKey;size:36"`
	Namespace string     `gorm:"size:128;not null;index"`
	Name      string     `gorm:"size:128;not null"`
	KeyHash   string     `gorm:"size:64;not null;uniqueIndex"`
	KeyPrefix string     `gorm:"size:16;not null"`
	Active    bool       `gorm:"not null"`
	CreatedAt time.Time  `gorm:"not null"`
	ExpiresAt *time.Time
}

func (apiKeyModel) TableName() string {
	return "api_keys"
}

func toDomainModel(d *domain.Domain) domainModel {
	m := domainModel{
		ID:        d.ID,
		Namespace: d.Namespace,
		Name:      d.Name,
		Status:    string(d.Status),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, r := range d.Records {
		r.DomainID = d.ID
		m.Records = append(m.Records, toRecordModel(&r))
	}
	return m
}

func (m domainModel) toDomain() domain.Domain {
	d := domain.Domain{
		ID:        m.ID,
		Namespace: m.Namespace,
		Name:      m.Name,
		Status:    domain.DomainStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, r := range m.Records {
		d.Records = append(d.Records, r.toDomain())
	}
	return d
}

func toRecordModel(r *domain.Record) recordModel {
	return recordModel{
		ID:        r.ID,
		DomainID:  r.DomainID,
		Name:      r.Name,
		Type:      string(r.Type),
		Content:   r.Content,
		TTL:       r.TTL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (m recordModel) toDomain() domain.Record {
	return domain.Record{
		ID:        m.ID,
		DomainID:  m.DomainID,
		Name:      m.Name,
		Type:      domain.RecordType(m.Type),
		Content:   m.Content,
		TTL:       m.TTL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toAPIKeyModel(k *domain.APIKey) apiKeyModel {
	return apiKeyModel{
		ID:        k.ID,
		Namespace: k.Namespace,
		Name:      k.Name,
		KeyHash:   k.KeyHash,
		KeyPrefix: k.KeyPrefix,
		Active:    k.Active,
		CreatedAt: k.CreatedAt,
		ExpiresAt: k.ExpiresAt,
	}
}

func (m apiKeyModel) toDomain() domain.APIKey {
	return domain.APIKey{
		ID:        m.ID,
		Namespace: m.Namespace,
		Name:      m.Name,
		KeyHash:   m.KeyHash,
		KeyPrefix: m.KeyPrefix,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}
