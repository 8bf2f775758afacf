package creds

import (
	"context"
	"encoding/json"

	"github.com/chateshreyas231/dineasy-sub000/internal/db"
)

// Secret is one provider's credential material. Fields are provider-specific;
// unknown ones stay empty.
type Secret struct {
	APIKey    string `json:"apiKey,omitempty"`
	AuthToken string `json:"authToken,omitempty"`
}

// Store keeps provider credentials encrypted at rest, one row per provider.
type Store struct {
	db   *db.DB
	aead *AEAD
}

func NewStore(d *db.DB, aead *AEAD) *Store {
	return &Store{db: d, aead: aead}
}

func (s *Store) Set(ctx context.Context, provider string, sec Secret) error {
	plain, err := json.Marshal(sec)
	if err != nil {
		return err
	}
	ct, err := s.aead.EncryptToString(string(plain))
	if err != nil {
		return err
	}
	return s.db.Exec(ctx, `
INSERT INTO provider_credentials(provider, secret_ciphertext, updated_at)
VALUES ($1,$2,now())
ON CONFLICT (provider) DO UPDATE SET secret_ciphertext=EXCLUDED.secret_ciphertext, updated_at=now()`,
		provider, ct)
}

// Get returns the secret for a provider, or an empty Secret when none is
// stored. Adapters treat missing credentials as "disabled", not an error.
func (s *Store) Get(ctx context.Context, provider string) (Secret, error) {
	var ct string
	err := s.db.QueryRow(ctx, `SELECT secret_ciphertext FROM provider_credentials WHERE provider=$1`, provider).Scan(&ct)
	if err != nil {
		if db.IsNotFound(db.WrapNotFound(err)) {
			return Secret{}, nil
		}
		return Secret{}, db.WrapNotFound(err)
	}
	plain, err := s.aead.DecryptString(ct)
	if err != nil {
		return Secret{}, err
	}
	var sec Secret
	if err := json.Unmarshal([]byte(plain), &sec); err != nil {
		return Secret{}, err
	}
	return sec, nil
}
