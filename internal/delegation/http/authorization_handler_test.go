package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/zkgate/internal/delegation/domain"
	"github.com/allisson/zkgate/internal/delegation/http/dto"
	"github.com/allisson/zkgate/internal/delegation/usecase/mocks"
	apperrors "github.com/allisson/zkgate/internal/errors"
	"github.com/allisson/zkgate/internal/httputil"
)

const (
	testProof = `{"scheme":"g16","curve":"bn128","proof":{"a":["0x1","0x2"]},"inputs":["0x01"]}`
	testKey   = `{"scheme":"g16","curve":"bn128"}`
)

func setupAuthorizationHandler(t *testing.T) (*AuthorizationHandler, *mocks.MockGateUseCase, *mocks.MockExecuteUseCase) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gate := &mocks.MockGateUseCase{}
	execute := &mocks.MockExecuteUseCase{}
	t.Cleanup(func() {
		gate.AssertExpectations(t)
		execute.AssertExpectations(t)
	})

	return NewAuthorizationHandler(gate, execute, discardLogger()), gate, execute
}

func validAuthorizeRequest() dto.AuthorizeRequest {
	return dto.AuthorizeRequest{
		Proof:           base64.StdEncoding.EncodeToString([]byte(testProof)),
		VerificationKey: base64.StdEncoding.EncodeToString([]byte(testKey)),
		Commitment:      testCommitment.String(),
	}
}

func testAuthorized() *domain.AuthorizedAction {
	return &domain.AuthorizedAction{
		AttemptID:    uuid.Must(uuid.NewV7()),
		Commitment:   testCommitment,
		Record:       testRecord(),
		AuthorizedAt: time.Now().UTC(),
	}
}

func TestAuthorizationHandler_AuthorizeHandler(t *testing.T) {
	t.Run("Success_ReturnsRecord", func(t *testing.T) {
		handler, gate, _ := setupAuthorizationHandler(t)
		authorized := testAuthorized()

		gate.On("Authorize", mock.Anything, mock.MatchedBy(func(in *domain.AuthorizeInput) bool {
			return string(in.Proof) == testProof &&
				string(in.VerificationKey) == testKey &&
				in.Commitment == testCommitment.String()
		})).Return(authorized, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/authorize", validAuthorizeRequest())
		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.AuthorizeResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, authorized.AttemptID.String(), response.AttemptID)
		assert.Equal(t, "tokenA", response.Record.TokenIdentifier)
		assert.Equal(t, "post_message", response.Record.Action)
	})

	denials := []domain.DenialReason{
		domain.ReasonArtifactMissing,
		domain.ReasonArtifactMalformed,
		domain.ReasonProofInvalid,
		domain.ReasonUnknownCommitment,
		domain.ReasonProofReplayed,
	}
	for _, reason := range denials {
		t.Run(fmt.Sprintf("Denied_%s", reason), func(t *testing.T) {
			handler, gate, _ := setupAuthorizationHandler(t)

			gate.On("Authorize", mock.Anything, mock.Anything).Return(nil, domain.NewDenialError(reason)).Once()

			c, w := createTestContext(http.MethodPost, "/v1/authorize", validAuthorizeRequest())
			handler.AuthorizeHandler(c)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, fmt.Sprintf(`{"error":"denied","code":%q}`, reason), w.Body.String())
		})
	}

	t.Run("Denied_EmptyArtifactsReachGate", func(t *testing.T) {
		handler, gate, _ := setupAuthorizationHandler(t)

		gate.On("Authorize", mock.Anything, mock.MatchedBy(func(in *domain.AuthorizeInput) bool {
			return len(in.Proof) == 0 && len(in.VerificationKey) == 0
		})).Return(nil, domain.NewDenialError(domain.ReasonArtifactMissing)).Once()

		c, w := createTestContext(http.MethodPost, "/v1/authorize", dto.AuthorizeRequest{})
		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Error_InvalidBase64", func(t *testing.T) {
		handler, _, _ := setupAuthorizationHandler(t)
		request := validAuthorizeRequest()
		request.Proof = "***"

		c, w := createTestContext(http.MethodPost, "/v1/authorize", request)
		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_InvalidCommitment", func(t *testing.T) {
		handler, _, _ := setupAuthorizationHandler(t)
		request := validAuthorizeRequest()
		request.Commitment = "not-a-commitment"

		c, w := createTestContext(http.MethodPost, "/v1/authorize", request)
		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_StoreUnavailable", func(t *testing.T) {
		handler, gate, _ := setupAuthorizationHandler(t)

		gate.On("Authorize", mock.Anything, mock.Anything).Return(nil, domain.ErrStoreRead).Once()

		c, w := createTestContext(http.MethodPost, "/v1/authorize", validAuthorizeRequest())
		handler.AuthorizeHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestAuthorizationHandler_ExecuteHandler(t *testing.T) {
	validRequest := dto.ExecuteRequest{
		AuthorizeRequest: validAuthorizeRequest(),
		Payload:          map[string]string{"channel": "C123", "message": "hello"},
	}

	t.Run("Success", func(t *testing.T) {
		handler, _, execute := setupAuthorizationHandler(t)
		output := &domain.ExecuteOutput{
			Authorization: testAuthorized(),
			Outcome: &domain.ActionOutcome{
				Action:       domain.ActionPostMessage,
				Detail:       "posted message to C123",
				DispatchedAt: time.Now().UTC(),
			},
		}

		execute.On("Execute", mock.Anything, mock.MatchedBy(func(in *domain.ExecuteInput) bool {
			return string(in.Authorize.Proof) == testProof &&
				in.Payload["channel"] == "C123" &&
				in.Payload["message"] == "hello"
		})).Return(output, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/actions/execute", validRequest)
		handler.ExecuteHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ExecuteResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "post_message", response.Outcome.Action)
		assert.Equal(t, "tokenA", response.Authorization.Record.TokenIdentifier)
	})

	t.Run("Denied", func(t *testing.T) {
		handler, _, execute := setupAuthorizationHandler(t)

		execute.On("Execute", mock.Anything, mock.Anything).
			Return(nil, domain.NewDenialError(domain.ReasonProofInvalid)).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/actions/execute", validRequest)
		handler.ExecuteHandler(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"denied","code":"proof_invalid"}`, w.Body.String())
	})

	t.Run("Error_DispatchFailed", func(t *testing.T) {
		handler, _, execute := setupAuthorizationHandler(t)

		execute.On("Execute", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: slack error: channel_not_found", apperrors.ErrDispatch)).
			Once()

		c, w := createTestContext(http.MethodPost, "/v1/actions/execute", validRequest)
		handler.ExecuteHandler(c)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		var response httputil.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "dispatch_failed", response.Error)
	})

	t.Run("Error_PayloadWithoutChannel", func(t *testing.T) {
		handler, _, execute := setupAuthorizationHandler(t)
		request := validRequest
		request.Payload = map[string]string{"message": "hello"}

		c, w := createTestContext(http.MethodPost, "/v1/actions/execute", request)
		handler.ExecuteHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		execute.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("Error_MissingPayload", func(t *testing.T) {
		handler, _, _ := setupAuthorizationHandler(t)
		request := validRequest
		request.Payload = nil

		c, w := createTestContext(http.MethodPost, "/v1/actions/execute", request)
		handler.ExecuteHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
