package app

import (
	"fmt"

	"github.com/allisson/zkgate/internal/delegation/domain"
	delegationHTTP "github.com/allisson/zkgate/internal/delegation/http"
	delegationRepository "github.com/allisson/zkgate/internal/delegation/repository"
	fileRepository "github.com/allisson/zkgate/internal/delegation/repository/file"
	delegationService "github.com/allisson/zkgate/internal/delegation/service"
	delegationUseCase "github.com/allisson/zkgate/internal/delegation/usecase"
	"github.com/allisson/zkgate/internal/dispatch"
)

// Supported dispatch drivers.
const (
	DispatchDriverSlack = "slack"
	DispatchDriverLog   = "log"
)

// fileRecordStore returns the JSON document store used by the file driver.
func (c *Container) fileRecordStore() *fileRepository.RecordStore {
	return c.recordFileStore.must(func() *fileRepository.RecordStore {
		return fileRepository.NewRecordStore(c.config.RecordFilePath)
	})
}

// RecordRepository returns the credential store for the configured driver.
func (c *Container) RecordRepository() (delegationUseCase.RecordRepository, error) {
	return c.recordRepository.get(c.initRecordRepository)
}

// ConsumedProofRepository returns the replay protection store, or nil when replay
// protection is disabled.
func (c *Container) ConsumedProofRepository() (delegationUseCase.ConsumedProofRepository, error) {
	return c.consumedProofRepository.get(c.initConsumedProofRepository)
}

// CommitmentService returns the commitment derivation service.
func (c *Container) CommitmentService() delegationService.CommitmentService {
	return c.commitmentService.must(delegationService.NewCommitmentService)
}

// SecretVault returns the keeper-encrypted secret vault.
func (c *Container) SecretVault() (delegationService.SecretVault, error) {
	return c.secretVault.get(func() (delegationService.SecretVault, error) {
		return delegationService.OpenSecretVault(c.ctx, c.config.SecretBucketURL, c.config.SecretKeeperURI)
	})
}

// ArtifactStore returns the proof and verification key artifact store.
func (c *Container) ArtifactStore() (delegationService.ArtifactStore, error) {
	return c.artifactStore.get(func() (delegationService.ArtifactStore, error) {
		return delegationService.OpenArtifactStore(c.ctx, c.config.ArtifactBucketURL)
	})
}

// ProofService returns the ZoKrates binding used for both proving and verification.
func (c *Container) ProofService() (*delegationService.ZoKratesProofService, error) {
	return c.proofService.get(func() (*delegationService.ZoKratesProofService, error) {
		return delegationService.NewZoKratesProofService(
			c.config.ZoKratesCommand,
			c.config.ZoKratesWorkdir,
			delegationService.NewExecRunner(),
			c.Logger(),
		)
	})
}

// Dispatcher returns the action dispatcher registry.
func (c *Container) Dispatcher() (dispatch.Dispatcher, error) {
	return c.dispatcher.get(c.initDispatcher)
}

// IssuerUseCase returns the credential issuer.
func (c *Container) IssuerUseCase() (delegationUseCase.IssuerUseCase, error) {
	return c.issuerUseCase.get(c.initIssuerUseCase)
}

// GateUseCase returns the authorization gate.
func (c *Container) GateUseCase() (delegationUseCase.GateUseCase, error) {
	return c.gateUseCase.get(c.initGateUseCase)
}

// ExecuteUseCase returns the authorize-then-dispatch use case.
func (c *Container) ExecuteUseCase() (delegationUseCase.ExecuteUseCase, error) {
	return c.executeUseCase.get(c.initExecuteUseCase)
}

// ProveUseCase returns the proof generation use case.
func (c *Container) ProveUseCase() (delegationUseCase.ProveUseCase, error) {
	return c.proveUseCase.get(c.initProveUseCase)
}

// CredentialHandler returns the HTTP handler for credential administration.
func (c *Container) CredentialHandler() (*delegationHTTP.CredentialHandler, error) {
	return c.credentialHandler.get(c.initCredentialHandler)
}

// AuthorizationHandler returns the HTTP handler for proof submissions.
func (c *Container) AuthorizationHandler() (*delegationHTTP.AuthorizationHandler, error) {
	return c.authorizationHandler.get(c.initAuthorizationHandler)
}

// initRecordRepository creates the record repository based on the database driver.
func (c *Container) initRecordRepository() (delegationUseCase.RecordRepository, error) {
	if c.config.DBDriver == DriverFile {
		return c.fileRecordStore(), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for record repository: %w", err)
	}

	switch c.config.DBDriver {
	case DriverMySQL:
		return delegationRepository.NewMySQLRecordRepository(db), nil
	case DriverPostgres:
		return delegationRepository.NewPostgreSQLRecordRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initConsumedProofRepository creates the consumed proof repository based on the database driver.
func (c *Container) initConsumedProofRepository() (delegationUseCase.ConsumedProofRepository, error) {
	if !c.config.ReplayProtectionEnabled {
		return nil, nil
	}

	if c.config.DBDriver == DriverFile {
		return fileRepository.NewConsumedProofStore(fileRepository.ConsumedPathFor(c.config.RecordFilePath)), nil
	}

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for consumed proof repository: %w", err)
	}

	switch c.config.DBDriver {
	case DriverMySQL:
		return delegationRepository.NewMySQLConsumedProofRepository(db), nil
	case DriverPostgres:
		return delegationRepository.NewPostgreSQLConsumedProofRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initDispatcher registers a dispatcher for every supported action.
func (c *Container) initDispatcher() (dispatch.Dispatcher, error) {
	logger := c.Logger()
	registry := dispatch.NewRegistry()

	switch c.config.DispatchDriver {
	case DispatchDriverSlack:
		resolver := dispatch.NewStaticTokenResolver(c.config.GetDispatchTokens())
		registry.Register(
			domain.ActionPostMessage,
			dispatch.NewSlackDispatcher(c.config.SlackAPIURL, c.config.DispatchTimeout, resolver, logger),
		)
	case DispatchDriverLog:
		registry.Register(domain.ActionPostMessage, dispatch.NewLogDispatcher(logger))
	default:
		return nil, fmt.Errorf("unsupported dispatch driver: %s", c.config.DispatchDriver)
	}

	return registry, nil
}

// initIssuerUseCase creates the issuer use case with all its dependencies.
func (c *Container) initIssuerUseCase() (delegationUseCase.IssuerUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for issuer use case: %w", err)
	}

	recordRepo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for issuer use case: %w", err)
	}

	secretVault, err := c.SecretVault()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret vault for issuer use case: %w", err)
	}

	baseUseCase := delegationUseCase.NewIssuerUseCase(
		txManager,
		recordRepo,
		c.CommitmentService(),
		secretVault,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for issuer use case: %w", err)
		}
		return delegationUseCase.NewIssuerUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initGateUseCase creates the authorization gate with all its dependencies.
func (c *Container) initGateUseCase() (delegationUseCase.GateUseCase, error) {
	recordRepo, err := c.RecordRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get record repository for gate use case: %w", err)
	}

	consumedRepo, err := c.ConsumedProofRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get consumed proof repository for gate use case: %w", err)
	}

	proofService, err := c.ProofService()
	if err != nil {
		return nil, fmt.Errorf("failed to get proof service for gate use case: %w", err)
	}

	baseUseCase := delegationUseCase.NewGateUseCase(
		recordRepo,
		consumedRepo,
		proofService,
		c.config.ProofVerifyTimeout,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for gate use case: %w", err)
		}
		return delegationUseCase.NewGateUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initExecuteUseCase creates the execute use case on top of the gate.
func (c *Container) initExecuteUseCase() (delegationUseCase.ExecuteUseCase, error) {
	gate, err := c.GateUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get gate use case for execute use case: %w", err)
	}

	dispatcher, err := c.Dispatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatcher for execute use case: %w", err)
	}

	baseUseCase := delegationUseCase.NewExecuteUseCase(gate, dispatcher, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for execute use case: %w", err)
		}
		return delegationUseCase.NewExecuteUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initProveUseCase creates the prove use case with all its dependencies.
func (c *Container) initProveUseCase() (delegationUseCase.ProveUseCase, error) {
	secretVault, err := c.SecretVault()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret vault for prove use case: %w", err)
	}

	proofService, err := c.ProofService()
	if err != nil {
		return nil, fmt.Errorf("failed to get proof service for prove use case: %w", err)
	}

	artifactStore, err := c.ArtifactStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact store for prove use case: %w", err)
	}

	baseUseCase := delegationUseCase.NewProveUseCase(
		secretVault,
		proofService,
		proofService,
		artifactStore,
		c.config.ProofGenerateTimeout,
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for prove use case: %w", err)
		}
		return delegationUseCase.NewProveUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initCredentialHandler creates the credential HTTP handler.
func (c *Container) initCredentialHandler() (*delegationHTTP.CredentialHandler, error) {
	issuerUseCase, err := c.IssuerUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer use case for credential handler: %w", err)
	}

	proveUseCase, err := c.ProveUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get prove use case for credential handler: %w", err)
	}

	return delegationHTTP.NewCredentialHandler(issuerUseCase, proveUseCase, c.Logger()), nil
}

// initAuthorizationHandler creates the authorization HTTP handler.
func (c *Container) initAuthorizationHandler() (*delegationHTTP.AuthorizationHandler, error) {
	gateUseCase, err := c.GateUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get gate use case for authorization handler: %w", err)
	}

	executeUseCase, err := c.ExecuteUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get execute use case for authorization handler: %w", err)
	}

	return delegationHTTP.NewAuthorizationHandler(gateUseCase, executeUseCase, c.Logger()), nil
}
