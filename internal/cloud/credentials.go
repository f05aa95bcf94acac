package cloud

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"github.com/zorrokid/emulation-file-manager/internal/util"
)

const (
	keyringService = "efm-cloud-sync"
	keyringUser    = "s3-credentials"
)

// Credentials is the S3 key pair stored in the OS keyring
type Credentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

// LoadCredentials reads the key pair from the OS keyring, falling back
// to the AWS environment variables when the keyring has no entry.
// Returns ErrMissingCredentials when neither source is configured.
func LoadCredentials() (*Credentials, error) {
	secret, err := keyring.Get(keyringService, keyringUser)
	switch {
	case err == nil:
		creds := &Credentials{}
		if err := json.Unmarshal([]byte(secret), creds); err != nil {
			return nil, fmt.Errorf("failed to decode stored credentials: %w", err)
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return nil, fmt.Errorf("stored credentials are incomplete: %w", util.ErrMissingCredentials)
		}
		return creds, nil

	case errors.Is(err, keyring.ErrNotFound):
		creds := &Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		}
		if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
			return nil, util.ErrMissingCredentials
		}
		return creds, nil

	default:
		return nil, fmt.Errorf("failed to read keyring: %w", err)
	}
}

// StoreCredentials writes the key pair into the OS keyring
func StoreCredentials(creds *Credentials) error {
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return fmt.Errorf("both access key id and secret are required: %w", util.ErrMissingCredentials)
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := keyring.Set(keyringService, keyringUser, string(data)); err != nil {
		return fmt.Errorf("failed to write keyring: %w", err)
	}
	return nil
}

// DeleteCredentials removes the key pair from the OS keyring
func DeleteCredentials() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete keyring entry: %w", err)
	}
	return nil
}
