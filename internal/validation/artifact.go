package validation

import (
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"
)

// MaxArtifactBytes caps a decoded proof or verification key. ZoKrates Groth16
// artifacts are a few kilobytes; anything near this size is not one.
const MaxArtifactBytes = 256 << 10

// Artifact validates a base64-encoded proof artifact whose decoded size does not
// exceed maxBytes. Empty strings pass so that the gate can deny them itself.
func Artifact(maxBytes int) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return validation.NewError("validation_artifact_type", "must be a string")
		}
		if s == "" {
			return nil
		}
		if base64.StdEncoding.DecodedLen(len(s)) > maxBytes+2 {
			return validation.NewError("validation_artifact_size",
				fmt.Sprintf("must not exceed %d bytes once decoded", maxBytes))
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return validation.NewError("validation_artifact_encoding", "must be valid base64-encoded data")
		}
		if len(decoded) > maxBytes {
			return validation.NewError("validation_artifact_size",
				fmt.Sprintf("must not exceed %d bytes once decoded", maxBytes))
		}
		return nil
	})
}
