package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	domain "github.com/triade-beauty/intake/internal/domain"
	"github.com/triade-beauty/intake/internal/mapping"
)

var (
	errIntakeInvalidSubmission = errors.New("intake: invalid submission")
	errIntakeBoardRequired     = errors.New("intake: board gateway is required")
	errIntakeBoardIDRequired   = errors.New("intake: board id is required")
)

// ErrIntakeInvalidSubmission indicates the submission failed validation and
// nothing was written to the board.
var ErrIntakeInvalidSubmission = errIntakeInvalidSubmission

const (
	defaultRecordNamePrefix = "Form"
	unknownBrideName        = "Unknown"
	notifyTimeout           = 10 * time.Second
)

var (
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	weddingDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IntakeServiceDeps bundles collaborators required to construct an intake service.
type IntakeServiceDeps struct {
	Board     BoardGateway
	Registry  *mapping.ArtistRegistry
	Decisions *mapping.DecisionResolver
	Notifier  SubmissionNotifier
	BoardID   int64
	Clock     func() time.Time
	Logger    func(ctx context.Context, event string, fields map[string]any)
}

type intakeService struct {
	board     BoardGateway
	registry  *mapping.ArtistRegistry
	decisions *mapping.DecisionResolver
	notifier  SubmissionNotifier
	boardID   int64
	sanitizer *bluemonday.Policy
	clock     func() time.Time
	logger    func(context.Context, string, map[string]any)
}

var _ IntakeService = (*intakeService)(nil)

// NewIntakeService wires dependencies into an IntakeService implementation.
func NewIntakeService(deps IntakeServiceDeps) (IntakeService, error) {
	if deps.Board == nil {
		return nil, errIntakeBoardRequired
	}
	if deps.BoardID <= 0 {
		return nil, errIntakeBoardIDRequired
	}

	registry := deps.Registry
	if registry == nil {
		registry = mapping.NewArtistRegistry()
	}
	resolver := deps.Decisions
	if resolver == nil {
		resolver = mapping.NewDecisionResolver(registry)
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &intakeService{
		board:     deps.Board,
		registry:  registry,
		decisions: resolver,
		notifier:  deps.Notifier,
		boardID:   deps.BoardID,
		sanitizer: bluemonday.StrictPolicy(),
		clock: func() time.Time {
			return clock().UTC()
		},
		logger: logger,
	}, nil
}

func (s *intakeService) Submit(ctx context.Context, submission Submission) (SubmissionReceipt, error) {
	if ctx == nil {
		return SubmissionReceipt{}, errors.New("intake: context is required")
	}

	sub := s.sanitize(submission)
	if err := s.validate(sub); err != nil {
		return SubmissionReceipt{}, err
	}
	sub = s.decisions.NormalizeMUASubmission(sub)

	columns, err := s.board.Columns(ctx, s.boardID)
	if err != nil {
		return SubmissionReceipt{}, fmt.Errorf("intake: load board columns: %w", err)
	}

	payload, err := mapping.BuildPayload(sub, columns, s.registry, s.decisions).Encode()
	if err != nil {
		return SubmissionReceipt{}, fmt.Errorf("intake: encode column values: %w", err)
	}

	name := itemName(sub)
	itemID, err := s.board.CreateItem(ctx, s.boardID, name, payload)
	if err != nil {
		return SubmissionReceipt{}, fmt.Errorf("intake: create item: %w", err)
	}

	s.notify(ctx, sub, itemID, name)

	return SubmissionReceipt{ItemID: itemID, ItemName: name, BoardID: s.boardID}, nil
}

// notify publishes the submission event without holding up the response.
// Failures are logged and swallowed; the item already exists on the board.
func (s *intakeService) notify(ctx context.Context, sub Submission, itemID, name string) {
	if s.notifier == nil {
		return
	}

	msg := SubmissionEventMessage{
		ItemID:     itemID,
		BoardID:    strconv.FormatInt(s.boardID, 10),
		FormType:   string(sub.Variant()),
		ItemName:   name,
		ReceivedAt: s.clock(),
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		publishCtx, cancel := context.WithTimeout(detached, notifyTimeout)
		defer cancel()
		if _, err := s.notifier.PublishSubmissionEvent(publishCtx, msg); err != nil {
			s.logger(publishCtx, "intake.notify.failed", map[string]any{
				"itemId": itemID,
				"error":  err.Error(),
			})
		}
	}()
}

func (s *intakeService) sanitize(sub Submission) Submission {
	clean := func(v string) string {
		return strings.TrimSpace(s.sanitizer.Sanitize(v))
	}

	sub.BrideName = clean(sub.BrideName)
	sub.Email = strings.TrimSpace(sub.Email)
	sub.WeddingDate = strings.TrimSpace(sub.WeddingDate)
	sub.BeautyVenue = clean(sub.BeautyVenue)
	sub.Description = clean(sub.Description)
	sub.Country = clean(sub.Country)
	sub.RecordNamePrefix = clean(sub.RecordNamePrefix)
	sub.SecondEmail = strings.TrimSpace(sub.SecondEmail)
	return sub
}

func (s *intakeService) validate(sub Submission) error {
	if sub.Email == "" {
		return fmt.Errorf("%w: email is required", errIntakeInvalidSubmission)
	}
	if !emailPattern.MatchString(sub.Email) {
		return fmt.Errorf("%w: email is malformed", errIntakeInvalidSubmission)
	}
	if sub.SecondEmail != "" && !emailPattern.MatchString(sub.SecondEmail) {
		return fmt.Errorf("%w: second email is malformed", errIntakeInvalidSubmission)
	}
	if sub.WeddingDate != "" {
		if !weddingDatePattern.MatchString(sub.WeddingDate) {
			return fmt.Errorf("%w: wedding date must be YYYY-MM-DD", errIntakeInvalidSubmission)
		}
		if _, err := time.Parse("2006-01-02", sub.WeddingDate); err != nil {
			return fmt.Errorf("%w: wedding date is not a calendar date", errIntakeInvalidSubmission)
		}
	}

	switch sub.Variant() {
	case domain.FormVariantMUA:
		if strings.TrimSpace(sub.HairstylistChoice) == "" {
			return fmt.Errorf("%w: hairstylist choice is required", errIntakeInvalidSubmission)
		}
	default:
		if sub.HasService(domain.ServiceHair) && !hasAnySelection(sub.HairstylistChoice, sub.Hairstylist) {
			return fmt.Errorf("%w: hairstylist selection is required for the hair service", errIntakeInvalidSubmission)
		}
		if sub.HasService(domain.ServiceMakeup) && !hasAnySelection(sub.MUASelection, sub.MakeupArtist) {
			return fmt.Errorf("%w: make-up artist selection is required for the make-up service", errIntakeInvalidSubmission)
		}
	}
	return nil
}

func hasAnySelection(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func itemName(sub Submission) string {
	prefix := sub.RecordNamePrefix
	if prefix == "" {
		prefix = defaultRecordNamePrefix
	}
	bride := sub.BrideName
	if bride == "" {
		bride = unknownBrideName
	}
	return prefix + " - " + bride
}
