package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/zkgate/internal/delegation/http/dto"
	delegationUseCase "github.com/allisson/zkgate/internal/delegation/usecase"
	"github.com/allisson/zkgate/internal/httputil"
	customValidation "github.com/allisson/zkgate/internal/validation"
)

// AuthorizationHandler handles proof submissions. Callers are authenticated by their
// proofs; denials answer 403 with the reason code only.
type AuthorizationHandler struct {
	gateUseCase    delegationUseCase.GateUseCase
	executeUseCase delegationUseCase.ExecuteUseCase
	logger         *slog.Logger
}

// NewAuthorizationHandler creates a new authorization handler with required dependencies.
func NewAuthorizationHandler(
	gateUseCase delegationUseCase.GateUseCase,
	executeUseCase delegationUseCase.ExecuteUseCase,
	logger *slog.Logger,
) *AuthorizationHandler {
	return &AuthorizationHandler{
		gateUseCase:    gateUseCase,
		executeUseCase: executeUseCase,
		logger:         logger,
	}
}

// AuthorizeHandler runs the authorization gate without dispatching anything.
// POST /v1/authorize
// Returns 200 OK with the authorized record or 403 Forbidden {"error":"denied","code":<reason>}.
func (h *AuthorizationHandler) AuthorizeHandler(c *gin.Context) {
	var req dto.AuthorizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	input := req.ToInput()
	authorized, err := h.gateUseCase.Authorize(c.Request.Context(), &input)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapAuthorizedToResponse(authorized))
}

// ExecuteHandler authorizes the attempt and dispatches the permitted action once.
// POST /v1/actions/execute
// Returns 200 OK with the outcome, 403 Forbidden on denial or 502 Bad Gateway when the
// downstream service failed after authorization.
func (h *AuthorizationHandler) ExecuteHandler(c *gin.Context) {
	var req dto.ExecuteRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.executeUseCase.Execute(c.Request.Context(), req.ToInput())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapExecuteOutputToResponse(output))
}
