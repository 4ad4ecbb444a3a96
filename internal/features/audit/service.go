package audit

import (
	"context"
	"time"

	common_models "go-compliance/internal/common/models"
	"go-compliance/pkg/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
}

// User is the slice of the user record the audit listing needs.
type User struct {
	ID   primitive.ObjectID
	Name string
}

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, organizationID string, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo     AuditRepository
	UserRepo UserFinder
}

func NewAuditService(repo AuditRepository, userRepo UserFinder) AuditService {
	return &AuditServiceImpl{
		Repo:     repo,
		UserRepo: userRepo,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error {
	// Extract actor and tenant from context
	actorID := "system"
	orgID := primitive.NilObjectID
	if claims, ok := ctx.Value(utils.UserClaimsKey).(*utils.UserClaims); ok {
		actorID = claims.UserID
		if oid, err := primitive.ObjectIDFromHex(claims.OrganizationID); err == nil {
			orgID = oid
		}
	}

	log := common_models.AuditLog{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		Action:         action,
		Entity:         entity,
		RecordID:       recordID,
		ActorID:        actorID,
		Changes:        changes,
		Timestamp:      time.Now(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, organizationID string, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	orgID, err := primitive.ObjectIDFromHex(organizationID)
	if err != nil {
		return nil, err
	}

	logs, err := s.Repo.List(ctx, map[string]interface{}{"organization_id": orgID}, limit, offset)
	if err != nil {
		return nil, err
	}

	// Collect actor IDs
	actorIDs := make([]string, 0)
	uniqueIDs := make(map[string]bool)
	for _, log := range logs {
		if log.ActorID != "system" && log.ActorID != "" && !uniqueIDs[log.ActorID] {
			uniqueIDs[log.ActorID] = true
			actorIDs = append(actorIDs, log.ActorID)
		}
	}

	// Batch fetch users
	userMap := make(map[string]string)
	if len(actorIDs) > 0 {
		users, err := s.UserRepo.FindByIDs(ctx, actorIDs)
		if err == nil {
			for _, u := range users {
				userMap[u.ID.Hex()] = u.Name
			}
		}
	}

	// Populate actor names
	for i, log := range logs {
		if log.ActorID == "system" || log.ActorID == "" {
			logs[i].ActorName = "System"
		} else if name, ok := userMap[log.ActorID]; ok {
			logs[i].ActorName = name
		} else {
			logs[i].ActorName = "Unknown User"
		}
	}

	return logs, nil
}
