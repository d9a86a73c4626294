package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/tenantflow/internal/clock"
	"github.com/smallbiznis/tenantflow/internal/config"
	"github.com/smallbiznis/tenantflow/internal/events"
	"github.com/smallbiznis/tenantflow/internal/invitation/domain"
	"github.com/smallbiznis/tenantflow/pkg/db"
	"github.com/smallbiznis/tenantflow/pkg/errs"
	"github.com/smallbiznis/tenantflow/pkg/mailaddr"
	"github.com/smallbiznis/tenantflow/pkg/token"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	acceptPath = "accept-invite"
	// maxCodeAttempts bounds regeneration after a unique-code collision.
	maxCodeAttempts = 3
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Cfg       config.Config
	Clock     clock.Clock
	Tokens    token.Generator
	Publisher events.Publisher
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	baseURL   string
	clock     clock.Clock
	tokens    token.Generator
	publisher events.Publisher
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invitation.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		baseURL:   strings.TrimRight(strings.TrimSpace(p.Cfg.Invitation.BaseURL), "/"),
		clock:     p.Clock,
		tokens:    p.Tokens,
		publisher: p.Publisher,
	}
}

func (s *Service) SendInvitation(ctx context.Context, req domain.SendInvitationRequest) (string, error) {
	email, err := mailaddr.Normalize(req.Email)
	if err != nil {
		return "", domain.ErrInvalidEmail
	}
	if req.TenantID == 0 || req.UnitID == 0 || req.OwnerID == 0 {
		return "", domain.ErrInvalidTarget
	}

	var (
		invitation domain.Invitation
		payload    []byte
	)
	txPublisher, transactional := s.publisher.(events.TxPublisher)

	for attempt := 1; ; attempt++ {
		code, err := s.tokens.GenerateInvitationCode()
		if err != nil {
			return "", fmt.Errorf("generate invitation code: %w", err)
		}

		invitation, payload, err = s.newInvitation(email, req, code)
		if err != nil {
			return "", err
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.repo.Insert(ctx, tx, &invitation); err != nil {
				return err
			}
			if transactional {
				if err := txPublisher.WithTx(tx).Publish(ctx, events.TenantInvitationSentTopic, payload); err != nil {
					return errs.Persistence("enqueue invitation event", err)
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err) && attempt < maxCodeAttempts {
			s.log.Warn("invitation code collision, regenerating", zap.Int("attempt", attempt))
			continue
		}
		if !errors.Is(err, errs.ErrPersistence) {
			err = errs.Persistence("insert invitation", err)
		}
		return "", err
	}
	code := invitation.Code

	if !transactional {
		if err := s.publisher.Publish(ctx, events.TenantInvitationSentTopic, payload); err != nil {
			s.withdraw(ctx, code)
			return "", errs.Persistence("publish invitation event", err)
		}
	}

	s.log.Info("invitation sent",
		zap.String("tenant_id", invitation.TenantID.String()),
		zap.String("invitation_id", invitation.ID.String()),
		zap.Time("expires_at", invitation.ExpiresAt),
	)

	return code, nil
}

// newInvitation builds the row and its event payload for one code.
func (s *Service) newInvitation(email string, req domain.SendInvitationRequest, code string) (domain.Invitation, []byte, error) {
	link, err := s.invitationURL(code)
	if err != nil {
		return domain.Invitation{}, nil, err
	}

	now := s.clock.Now().UTC()
	invitation := domain.Invitation{
		ID:        s.genID.Generate(),
		Email:     email,
		UnitID:    req.UnitID,
		OwnerID:   req.OwnerID,
		TenantID:  req.TenantID,
		Code:      code,
		URL:       link,
		Status:    domain.StatusSent,
		ExpiresAt: now.Add(domain.InvitationTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	payload, err := json.Marshal(events.InvitationSentPayload{
		Email:          invitation.Email,
		TenantID:       invitation.TenantID.String(),
		InvitationCode: invitation.Code,
		InvitationURL:  invitation.URL,
		ExpiresAt:      invitation.ExpiresAt.Format(time.RFC3339),
	})
	if err != nil {
		return domain.Invitation{}, nil, err
	}
	return invitation, payload, nil
}

func (s *Service) FindByCode(ctx context.Context, code string) (domain.Invitation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Invitation{}, domain.ErrInvalidCode
	}

	item, err := s.repo.FindByCode(ctx, s.db, code)
	if err != nil {
		return domain.Invitation{}, errs.Persistence("find invitation", err)
	}
	if item == nil {
		return domain.Invitation{}, domain.ErrInvitationNotFound
	}
	return *item, nil
}

func (s *Service) Accept(ctx context.Context, code string) (domain.Invitation, error) {
	invitation, err := s.FindByCode(ctx, code)
	if err != nil {
		return domain.Invitation{}, err
	}
	if invitation.Status != domain.StatusSent {
		return domain.Invitation{}, domain.ErrInvitationClosed
	}

	now := s.clock.Now().UTC()
	if invitation.Expired(now) {
		if _, err := s.repo.UpdateStatus(ctx, s.db, invitation.Code, domain.StatusSent, domain.StatusExpired, now); err != nil {
			return domain.Invitation{}, errs.Persistence("expire invitation", err)
		}
		return domain.Invitation{}, domain.ErrInvitationExpired
	}

	affected, err := s.repo.UpdateStatus(ctx, s.db, invitation.Code, domain.StatusSent, domain.StatusAccepted, now)
	if err != nil {
		return domain.Invitation{}, errs.Persistence("accept invitation", err)
	}
	if affected == 0 {
		return domain.Invitation{}, domain.ErrInvitationClosed
	}

	invitation.Status = domain.StatusAccepted
	invitation.UpdatedAt = now
	return invitation, nil
}

func (s *Service) Cancel(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.ErrInvalidCode
	}

	affected, err := s.repo.UpdateStatus(ctx, s.db, code, domain.StatusSent, domain.StatusCancelled, s.clock.Now().UTC())
	if err != nil {
		return errs.Persistence("cancel invitation", err)
	}
	if affected == 0 {
		s.log.Debug("invitation not open, nothing to cancel")
	}
	return nil
}

func (s *Service) withdraw(ctx context.Context, code string) {
	if err := s.Cancel(ctx, code); err != nil {
		s.log.Warn("failed to withdraw unannounced invitation", zap.Error(err))
	}
}

func (s *Service) invitationURL(code string) (string, error) {
	base, err := url.Parse(s.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid invitation base url %q", s.baseURL)
	}

	link := base.JoinPath(acceptPath)
	query := link.Query()
	query.Set("code", code)
	link.RawQuery = query.Encode()
	return link.String(), nil
}
