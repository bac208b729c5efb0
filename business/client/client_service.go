package client

import (
	"context"
	"fmt"

	"directMail/business"
	"directMail/domain"
	"directMail/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// ClientView is a client with its computed lifetime counters.
type ClientView struct {
	domain.Client
	Totals domain.ClientTotals `json:"totals"`
}

type clientService struct {
	clientRepo business.ClientRepository
	validate   *validator.Validate
}

func NewClientService(clientRepo business.ClientRepository, validate *validator.Validate) *clientService {
	return &clientService{
		clientRepo: clientRepo,
		validate:   validate,
	}
}

func (s *clientService) GetAllClients(ctx context.Context) ([]domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	clients, err := s.clientRepo.FindAll(ctx)
	if err != nil {
		logger.Error("failed to find all clients", err)
		return nil, err
	}

	return clients, nil
}

func (s *clientService) GetClientByID(ctx context.Context, id uint64) (*ClientView, error) {
	if id == 0 {
		return nil, domain.ErrInvalidDataType.WithMessage("invalid client id")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	live, err := s.clientRepo.LiveTotals(ctx, id)
	if err != nil {
		logger.Error("failed to compute client totals", "client_id", id, err)
		return nil, err
	}

	return &ClientView{Client: client, Totals: domain.ComputeTotals(client, live)}, nil
}

func (s *clientService) CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if err := s.check(client); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		logger.Error("failed to create client", err)
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Info("client created", "client_id", client.ID)

	return client, nil
}

func (s *clientService) UpdateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if client.ID == 0 {
		return nil, domain.ErrMissingRequiredData.WithMessage("client ID is required")
	}

	if err := s.check(client); err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.FindByID(ctx, client.ID); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		logger.Error("failed to update client", err)
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	updated, err := s.clientRepo.FindByID(ctx, client.ID)
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (s *clientService) check(client *domain.Client) error {
	if err := s.validate.Var(client.LastName, "required"); err != nil {
		return domain.ErrMissingRequiredData.WithMessage("client last name is required")
	}
	if client.TotalOrders < 0 || client.TotalMails < 0 || client.TotalAmount < 0 {
		return domain.ErrInvalidDataType.WithMessage("client counters cannot be negative")
	}
	return nil
}
