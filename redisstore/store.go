// Package redisstore implements the credauth credential-store boundary on
// Redis. Each identity maps to a hash key holding the encoded credential and
// the authorization flag; the credential string is persisted byte-for-byte.
package redisstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/hrkit/credauth"
)

const (
	fieldCredential = "credential"
	fieldAuthorized = "authorized"
)

// Store is a [credauth.CredentialStore] backed by Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// New returns a Store over the given client. A nil client reports
// [credauth.ErrStoreUnconfigured] so callers can distinguish missing
// configuration from runtime faults.
func New(client redis.UniversalClient, prefix string) (*Store, error) {
	if client == nil {
		return nil, credauth.ErrStoreUnconfigured
	}
	if prefix == "" {
		prefix = "hrcred"
	}
	return &Store{redis: client, prefix: prefix}, nil
}

func (s *Store) key(identity string) string {
	return s.prefix + ":" + identity
}

// FetchCredential implements [credauth.CredentialStore]. Unknown identities
// report [credauth.ErrIdentityNotFound]; transport faults wrap
// [credauth.ErrStoreUnavailable].
func (s *Store) FetchCredential(ctx context.Context, identity string) (*credauth.CredentialRecord, error) {
	fields, err := s.redis.HGetAll(ctx, s.key(identity)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", credauth.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, credauth.ErrIdentityNotFound
	}

	return &credauth.CredentialRecord{
		Credential: fields[fieldCredential],
		Authorized: fields[fieldAuthorized] == "1",
	}, nil
}

// PersistCredential implements [credauth.CredentialStore]. The record must
// already exist; this store never creates identities, that is the HR system's
// job.
func (s *Store) PersistCredential(ctx context.Context, identity, encoded string) error {
	key := s.key(identity)

	exists, err := s.redis.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", credauth.ErrStoreUnavailable, err)
	}
	if exists == 0 {
		return credauth.ErrIdentityNotFound
	}

	if err := s.redis.HSet(ctx, key, fieldCredential, encoded).Err(); err != nil {
		return fmt.Errorf("%w: %v", credauth.ErrStoreUnavailable, err)
	}
	return nil
}

// PutRecord creates or replaces an identity record. Used by provisioning
// tooling and tests.
func (s *Store) PutRecord(ctx context.Context, identity string, record credauth.CredentialRecord) error {
	authorized := "0"
	if record.Authorized {
		authorized = "1"
	}

	err := s.redis.HSet(ctx, s.key(identity),
		fieldCredential, record.Credential,
		fieldAuthorized, authorized,
	).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", credauth.ErrStoreUnavailable, err)
	}
	return nil
}
