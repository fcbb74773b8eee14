package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/allisson/zkgate/internal/delegation/domain"
)

// workdirPlaceholder is replaced by the absolute working directory in the command template.
const workdirPlaceholder = "{workdir}"

// Files the ZoKrates toolchain reads and writes inside its working directory.
const (
	circuitFile    = "poseidon_hash_check.out"
	provingKeyFile = "proving.key"
	witnessFile    = "witness"
	verifyPassMark = "PASSED"
)

// CommandRunner executes one toolchain invocation inside dir.
type CommandRunner interface {
	Run(ctx context.Context, dir string, args []string) (stdout, stderr []byte, err error)
}

type execRunner struct{}

// NewExecRunner returns a CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return &execRunner{}
}

func (r *execRunner) Run(ctx context.Context, dir string, args []string) ([]byte, []byte, error) {
	if len(args) == 0 {
		return nil, nil, errors.New("empty command")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ZoKratesProofService binds ProofService to the ZoKrates CLI, run either locally or
// through docker. The command template may reference {workdir}, which is substituted
// with the directory the invocation runs in.
type ZoKratesProofService struct {
	command []string
	workdir string
	runner  CommandRunner
	logger  *slog.Logger
	// proving writes witness and proof.json into the shared workdir
	proveMu sync.Mutex
}

// NewZoKratesProofService creates a ZoKrates binding. workdir must hold the compiled
// circuit and proving key produced by `zokrates compile` and `zokrates setup`.
func NewZoKratesProofService(
	commandTemplate string,
	workdir string,
	runner CommandRunner,
	logger *slog.Logger,
) (*ZoKratesProofService, error) {
	command := strings.Fields(commandTemplate)
	if len(command) == 0 {
		return nil, errors.New("zokrates command must not be empty")
	}

	absWorkdir, err := filepath.Abs(workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve zokrates workdir: %w", err)
	}

	return &ZoKratesProofService{
		command: command,
		workdir: absWorkdir,
		runner:  runner,
		logger:  logger,
	}, nil
}

// Verify writes the artifacts into a private temporary directory and runs `zokrates verify`.
// The proof is accepted only when it names commitment among its public inputs, the
// command exits zero and its output reports PASSED.
func (s *ZoKratesProofService) Verify(
	ctx context.Context,
	proof *domain.Proof,
	key *domain.VerificationKey,
	commitment domain.Commitment,
) (bool, error) {
	if proof == nil || key == nil {
		return false, domain.ErrArtifactMissing
	}

	// A valid proof for some other public value authorizes nothing here.
	if !proof.HasInput(commitment) {
		return false, nil
	}

	dir, err := os.MkdirTemp("", "zkgate-verify-*")
	if err != nil {
		return false, fmt.Errorf("failed to create verify directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	if err := os.WriteFile(filepath.Join(dir, ProofArtifactName), proof.Raw, 0o600); err != nil {
		return false, fmt.Errorf("failed to write proof: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, VerificationKeyArtifactName), key.Raw, 0o600); err != nil {
		return false, fmt.Errorf("failed to write verification key: %w", err)
	}

	args := s.args(dir, "verify", "-j", ProofArtifactName, "-v", VerificationKeyArtifactName)
	stdout, stderr, err := s.runner.Run(ctx, dir, args)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			s.logger.Debug("proof verification rejected",
				slog.Int("exit_code", exitErr.ExitCode()),
				slog.String("stderr", string(stderr)),
			)
			return false, nil
		}
		return false, fmt.Errorf("failed to run zokrates verify: %w", err)
	}

	return bytes.Contains(stdout, []byte(verifyPassMark)), nil
}

// Prove computes the witness for (secret, commitment) and generates proof.json in the workdir.
func (s *ZoKratesProofService) Prove(
	ctx context.Context,
	secret domain.SecretCredential,
	commitment domain.Commitment,
) (*domain.Proof, error) {
	witness, err := secret.FieldElement()
	if err != nil {
		return nil, err
	}
	publicValue, err := commitment.Decimal()
	if err != nil {
		return nil, err
	}

	s.proveMu.Lock()
	defer s.proveMu.Unlock()

	steps := [][]string{
		{"compute-witness", "-i", circuitFile, "-o", witnessFile, "-a", witness.String(), publicValue},
		{"generate-proof", "-i", circuitFile, "-w", witnessFile, "-p", provingKeyFile, "-j", ProofArtifactName},
	}
	for _, step := range steps {
		_, stderr, err := s.runner.Run(ctx, s.workdir, s.args(s.workdir, step...))
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("zokrates %s failed: %w: %s", step[0], err, strings.TrimSpace(string(stderr)))
		}
	}

	raw, err := os.ReadFile(filepath.Join(s.workdir, ProofArtifactName))
	if err != nil {
		return nil, fmt.Errorf("failed to read generated proof: %w", err)
	}
	return domain.DecodeProof(raw)
}

// ReadVerificationKey returns the verification key produced by `zokrates setup`.
func (s *ZoKratesProofService) ReadVerificationKey() ([]byte, error) {
	raw, err := os.ReadFile(filepath.Join(s.workdir, VerificationKeyArtifactName))
	if err != nil {
		return nil, fmt.Errorf("failed to read verification key: %w", err)
	}
	return raw, nil
}

func (s *ZoKratesProofService) args(dir string, subcommand ...string) []string {
	args := make([]string, 0, len(s.command)+len(subcommand))
	for _, part := range s.command {
		args = append(args, strings.ReplaceAll(part, workdirPlaceholder, dir))
	}
	return append(args, subcommand...)
}
