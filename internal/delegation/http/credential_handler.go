// Package http provides HTTP handlers for credential issuance, authorization and
// action execution.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/zkgate/internal/delegation/domain"
	"github.com/allisson/zkgate/internal/delegation/http/dto"
	delegationUseCase "github.com/allisson/zkgate/internal/delegation/usecase"
	"github.com/allisson/zkgate/internal/httputil"
	customValidation "github.com/allisson/zkgate/internal/validation"
)

// CredentialHandler handles the admin endpoints that issue and inspect delegations.
type CredentialHandler struct {
	issuerUseCase delegationUseCase.IssuerUseCase
	proveUseCase  delegationUseCase.ProveUseCase
	logger        *slog.Logger
}

// NewCredentialHandler creates a new credential handler with required dependencies.
func NewCredentialHandler(
	issuerUseCase delegationUseCase.IssuerUseCase,
	proveUseCase delegationUseCase.ProveUseCase,
	logger *slog.Logger,
) *CredentialHandler {
	return &CredentialHandler{
		issuerUseCase: issuerUseCase,
		proveUseCase:  proveUseCase,
		logger:        logger,
	}
}

// IssueHandler issues a delegation bound to the commitment of a secret.
// POST /v1/credentials - Requires the admin token.
// Returns 201 Created with the commitment, the record and, for generated secrets, the secret.
func (h *CredentialHandler) IssueHandler(c *gin.Context) {
	var req dto.IssueCredentialRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}
	defer input.Secret.Zero()

	output, err := h.issuerUseCase.Issue(c.Request.Context(), input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapIssueOutputToResponse(output))
}

// GetHandler returns the record stored for a commitment.
// GET /v1/credentials/:commitment - Requires the admin token.
func (h *CredentialHandler) GetHandler(c *gin.Context) {
	commitment, err := domain.ParseCommitment(c.Param("commitment"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	record, err := h.issuerUseCase.Get(c.Request.Context(), commitment)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record))
}

// ProveHandler generates a proof for a commitment whose secret is held in the vault and
// publishes it to the artifact store.
// POST /v1/credentials/:commitment/proofs - Requires the admin token.
func (h *CredentialHandler) ProveHandler(c *gin.Context) {
	commitment, err := domain.ParseCommitment(c.Param("commitment"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	proof, err := h.proveUseCase.Prove(c.Request.Context(), commitment)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapProofToResponse(commitment, proof))
}
