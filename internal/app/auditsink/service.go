package auditsink

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gestao-licitacoes/tracker/internal/contracts"
)

var ErrInvalidEventPayload = errors.New("invalid event payload")
var ErrUnsupportedAction = errors.New("unsupported event action")

type Repository interface {
	InsertEvent(ctx context.Context, event contracts.ProcessEvent) error
}

type Service struct {
	Repository Repository
}

func NewService(repository Repository) *Service {
	return &Service{Repository: repository}
}

// Handle decodes one published process event and appends it to the audit
// log. Unknown actions are rejected so a poisoned message can be
// terminated instead of redelivered forever.
func (s *Service) Handle(ctx context.Context, payload []byte) error {
	var event contracts.ProcessEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return ErrInvalidEventPayload
	}
	if strings.TrimSpace(event.EventID) == "" || strings.TrimSpace(event.ProcessID) == "" {
		return ErrInvalidEventPayload
	}
	switch event.Action {
	case contracts.ActionCreated, contracts.ActionUpdated, contracts.ActionStatusChanged, contracts.ActionDeleted:
	default:
		return ErrUnsupportedAction
	}
	return s.Repository.InsertEvent(ctx, event)
}
