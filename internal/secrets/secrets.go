// Package secrets resolves external-service credentials. Environment wins so
// cron units can inject secrets directly; the OS keychain is the fallback for
// workstation runs.
package secrets

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups this app's secrets in the OS keychain.
	KeyringService = "jobsifter"

	SolverKeyAccount       = "solver-api-key"
	ClassifierTokenAccount = "classifier-token"
)

func get(envVar, account string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
		return v, nil
	}
	v, err := keyring.Get(KeyringService, account)
	if err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	return "", errors.Newf("secret %s not found (set %s or add it to the keychain)", account, envVar)
}

// SolverKey is the credential for the challenge-solving service. Required.
func SolverKey() (string, error) {
	return get("JOBSIFTER_SOLVER_KEY", SolverKeyAccount)
}

// ClassifierToken is the credential for the remote text classifier. Only
// required when a classifier endpoint is configured.
func ClassifierToken() (string, error) {
	return get("JOBSIFTER_CLASSIFIER_TOKEN", ClassifierTokenAccount)
}

// Set stores a secret in the keychain; used by operators during setup.
func Set(account, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}
