package commands

import (
	"fmt"
	"io"
	"log/slog"

	authService "github.com/allisson/zkgate/internal/auth/service"
)

// RunCreateAdminToken generates a bearer token for the credential admin API.
// The plain token is printed once; only its hash goes into ADMIN_TOKEN_HASH.
func RunCreateAdminToken(
	tokenService authService.TokenService,
	logger *slog.Logger,
	format string,
	writer io.Writer,
) error {
	plainToken, tokenHash, err := tokenService.GenerateToken()
	if err != nil {
		return fmt.Errorf("failed to generate admin token: %w", err)
	}

	if format == "json" {
		writeJSON(writer, map[string]string{
			"token":            plainToken,
			"admin_token_hash": tokenHash,
		})
	} else {
		_, _ = fmt.Fprintln(writer, "\nAdmin token created successfully!")
		_, _ = fmt.Fprintf(writer, "Token: %s\n", plainToken)
		_, _ = fmt.Fprintln(writer, "\nAdd the hash to your environment:")
		_, _ = fmt.Fprintf(writer, "ADMIN_TOKEN_HASH='%s'\n", tokenHash)
		_, _ = fmt.Fprintln(writer, "\nIMPORTANT: The token is shown only once. Store it securely.")
	}

	logger.Info("admin token created")
	return nil
}
