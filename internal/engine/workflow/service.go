package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"grievance/internal/engine/classifier"
	apperrors "grievance/internal/pkg/errors"
	"grievance/internal/platform/metrics"
	"grievance/internal/platform/models"
)

// Store is the complaint collection. GetByID returns nil, nil when the
// complaint does not exist.
type Store interface {
	Create(ctx context.Context, c *models.Complaint) error
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	List(ctx context.Context, filter models.ComplaintFilter) ([]*models.Complaint, error)
	UpdateStage(ctx context.Context, id string, change models.StageChange) error
	UpdateAnalysis(ctx context.Context, id string, analysis models.Analysis, at time.Time) error
	SetRating(ctx context.Context, id string, rating int) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Submission is what a submitter gets back after filing.
type Submission struct {
	Complaint *models.Complaint `json:"complaint"`
	AutoReply classifier.Reply  `json:"autoReply"`
}

func (s *Service) Submit(ctx context.Context, actor models.Actor, title, description string) (*Submission, error) {
	if actor.Role != models.RoleUser && actor.Role != models.RoleManager {
		return nil, apperrors.Forbidden("only organization members can submit complaints")
	}
	if actor.OrgID == "" {
		return nil, apperrors.Forbidden("no organization linked to your account")
	}

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" {
		return nil, apperrors.Validation("title is required")
	}
	if description == "" {
		return nil, apperrors.Validation("description is required")
	}

	analysis := analyze(title, description)
	now := s.now()

	c := &models.Complaint{
		ID:          "cmp_" + uuid.New().String(),
		Title:       title,
		Description: description,
		UserID:      actor.UserID,
		UserName:    displayName(actor),
		UserEmail:   actor.Email,
		OrgID:       actor.OrgID,
		Status:      models.StatusOpen,
		CreatedAt:   now,
		AIAnalysis:  &analysis,
		StatusHistory: map[string]time.Time{
			string(Submitted): now,
			string(Analyzed):  now,
		},
		LastUpdated: &now,
	}

	if err := s.store.Create(ctx, c); err != nil {
		return nil, apperrors.Store("create complaint", err)
	}

	log.Info().
		Str("complaint_id", c.ID).
		Str("actor", actor.UserID).
		Str("category", analysis.Category).
		Str("priority", analysis.Priority).
		Msg("complaint submitted")

	return &Submission{Complaint: c, AutoReply: classifier.AutoReply(title, description, c.UserName)}, nil
}

// Advance moves a complaint of the manager's organization to the next stage.
func (s *Service) Advance(ctx context.Context, actor models.Actor, id string, target Stage) (*models.Complaint, error) {
	if actor.Role != models.RoleManager {
		return nil, apperrors.Forbidden("only managers can change complaint stages")
	}
	if !Known(target) {
		return nil, apperrors.Validation("unknown stage " + string(target))
	}

	c, err := s.managedComplaint(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	current := EffectiveStatus(c)
	if err := CheckTransition(current, target); err != nil {
		metrics.StageTransitions.WithLabelValues(string(target), "rejected").Inc()
		log.Warn().
			Str("complaint_id", id).
			Str("actor", actor.UserID).
			Str("from", string(current)).
			Str("to", string(target)).
			Msg("stage transition rejected")
		return nil, err
	}

	now := s.now()
	change := models.StageChange{
		Stage:              string(target),
		At:                 now,
		Resolve:            target == Resolved,
		FromWorkflowStatus: c.WorkflowStatus,
		FromStatus:         c.Status,
	}
	if target == Assigned && c.AssignedManagerID == "" {
		change.ManagerID = actor.UserID
		change.ManagerName = displayName(actor)
	}

	if err := s.store.UpdateStage(ctx, id, change); err != nil {
		if errors.Is(err, models.ErrStale) {
			metrics.StageTransitions.WithLabelValues(string(target), "rejected").Inc()
			log.Warn().
				Str("complaint_id", id).
				Str("actor", actor.UserID).
				Str("to", string(target)).
				Msg("stage transition lost a concurrent update")
			return nil, apperrors.Conflict("complaint was updated concurrently, reload and retry")
		}
		return nil, apperrors.Store("update complaint stage", err)
	}
	metrics.StageTransitions.WithLabelValues(string(target), "applied").Inc()

	applyStage(c, change)

	log.Info().
		Str("complaint_id", id).
		Str("actor", actor.UserID).
		Str("from", string(current)).
		Str("to", string(target)).
		Msg("stage advanced")

	return c, nil
}

// Reanalyze re-runs the classifier on the stored text and overwrites the
// analysis. It never moves the stage backward.
func (s *Service) Reanalyze(ctx context.Context, actor models.Actor, id string) (classifier.Analysis, error) {
	if actor.Role != models.RoleManager {
		return classifier.Analysis{}, apperrors.Forbidden("only managers can reanalyze complaints")
	}

	c, err := s.managedComplaint(ctx, actor, id)
	if err != nil {
		return classifier.Analysis{}, err
	}

	analysis := classifier.Classify(classifier.ComplaintText(c.Title, c.Description))
	metrics.ComplaintsClassified.WithLabelValues(analysis.Category).Inc()

	if err := s.store.UpdateAnalysis(ctx, id, models.Analysis(analysis), s.now()); err != nil {
		return classifier.Analysis{}, apperrors.Store("update complaint analysis", err)
	}

	log.Info().Str("complaint_id", id).Str("actor", actor.UserID).Msg("complaint reanalyzed")
	return analysis, nil
}

// Rate stores the submitter's 1-5 satisfaction rating.
func (s *Service) Rate(ctx context.Context, actor models.Actor, id string, rating int) error {
	if rating < 1 || rating > 5 {
		return apperrors.Validation("rating must be between 1 and 5")
	}

	c, err := s.ownComplaint(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.SetRating(ctx, c.ID, rating); err != nil {
		return apperrors.Store("rate complaint", err)
	}
	return nil
}

// Delete removes a complaint. Only its submitter may do so.
func (s *Service) Delete(ctx context.Context, actor models.Actor, id string) error {
	c, err := s.ownComplaint(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, c.ID); err != nil {
		return apperrors.Store("delete complaint", err)
	}
	log.Info().Str("complaint_id", id).Str("actor", actor.UserID).Msg("complaint deleted")
	return nil
}

// Get returns a complaint visible to the actor. Complaints outside the
// actor's scope are reported as not found.
func (s *Service) Get(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visible(actor, c) {
		return nil, apperrors.NotFound("complaint not found")
	}
	return c, nil
}

// List returns the complaints in the actor's scope ordered by creation time.
func (s *Service) List(ctx context.Context, actor models.Actor) ([]*models.Complaint, error) {
	var filter models.ComplaintFilter
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleManager:
		if actor.OrgID == "" {
			return nil, apperrors.Forbidden("no organization found")
		}
		filter.OrgID = actor.OrgID
	case models.RoleUser:
		filter.UserID = actor.UserID
	default:
		return nil, apperrors.Forbidden("unknown role")
	}

	list, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Store("list complaints", err)
	}
	return list, nil
}

func (s *Service) load(ctx context.Context, id string) (*models.Complaint, error) {
	c, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Store("load complaint", err)
	}
	if c == nil {
		return nil, apperrors.NotFound("complaint not found")
	}
	return c, nil
}

func (s *Service) managedComplaint(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error) {
	if actor.OrgID == "" {
		return nil, apperrors.Forbidden("no organization found")
	}
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.OrgID != actor.OrgID {
		return nil, apperrors.Forbidden("complaint belongs to another organization")
	}
	return c, nil
}

func (s *Service) ownComplaint(ctx context.Context, actor models.Actor, id string) (*models.Complaint, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != actor.UserID {
		return nil, apperrors.Forbidden("only the submitter can do this")
	}
	return c, nil
}

func visible(actor models.Actor, c *models.Complaint) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleManager:
		return actor.OrgID != "" && c.OrgID == actor.OrgID
	default:
		return c.UserID == actor.UserID
	}
}

func analyze(title, description string) models.Analysis {
	a := classifier.Classify(classifier.ComplaintText(title, description))
	metrics.ComplaintsClassified.WithLabelValues(a.Category).Inc()
	return models.Analysis(a)
}

// applyStage mirrors a successful StageChange on the in-memory record.
func applyStage(c *models.Complaint, change models.StageChange) {
	c.WorkflowStatus = change.Stage
	if c.StatusHistory == nil {
		c.StatusHistory = make(map[string]time.Time)
	}
	if _, ok := c.StatusHistory[change.Stage]; !ok {
		c.StatusHistory[change.Stage] = change.At
	}
	if change.Resolve {
		c.Status = models.StatusResolved
	}
	if change.ManagerID != "" {
		c.AssignedManagerID = change.ManagerID
		c.AssignedManagerName = change.ManagerName
	}
	at := change.At
	c.LastUpdated = &at
}

func displayName(actor models.Actor) string {
	if name := strings.TrimSpace(actor.Name); name != "" {
		return name
	}
	if at := strings.Index(actor.Email, "@"); at > 0 {
		return actor.Email[:at]
	}
	return "Anonymous"
}
