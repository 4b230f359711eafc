package announce

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/teamwell/staffd/internal/auth"
	"github.com/teamwell/staffd/internal/errs"
	"github.com/teamwell/staffd/internal/models"
)

// previewLimit is the maximum rune length of the body preview.
const previewLimit = 160

// defaultOverviewFetch bounds how many raw rows one overview read pulls.
const defaultOverviewFetch = 200

// Recipient is one resolved individual recipient of a dispatch.
type Recipient struct {
	UserID uuid.UUID `json:"userId"`
	Name   string    `json:"name"`
}

// OverviewItem is one logical announcement, re-aggregated from its
// per-recipient rows.
type OverviewItem struct {
	DispatchID     uuid.UUID                   `json:"dispatchId"`
	Title          string                      `json:"title"`
	Preview        string                      `json:"preview"`
	Audience       models.NotificationAudience `json:"audience"`
	AudienceLabel  string                      `json:"audienceLabel"`
	Recipients     []Recipient                 `json:"recipients"`
	RecipientCount int                         `json:"recipientCount"`
	SenderUserID   uuid.UUID                   `json:"senderId"`
	SentAt         time.Time                   `json:"sentAt"`
}

type group struct {
	newest     *models.Notification
	orgWide    bool
	targetIDs  []uuid.UUID
	targetSeen map[uuid.UUID]struct{}
}

// Overview lists recent announcements for the viewer's organization,
// grouped back into logical dispatches.
func (e *Engine) Overview(ctx context.Context, viewer *auth.Viewer, limit int) ([]*OverviewItem, error) {
	if viewer.OrgID == nil {
		return nil, errs.Validation("An organization context is required")
	}

	rows, err := e.notifications.ListRecentByOrg(ctx, *viewer.OrgID, models.NotificationTypeAnnouncement, defaultOverviewFetch)
	if err != nil {
		return nil, errs.Internal(err)
	}

	// Rows arrive newest first, so first occurrence order of each group
	// is already the final sort order.
	var order []uuid.UUID
	groups := make(map[uuid.UUID]*group)

	for _, row := range rows {
		// Legacy rows without dispatch metadata each form their own group.
		key := row.DispatchID
		if key == uuid.Nil {
			key = row.NotificationID
		}

		g, exists := groups[key]
		if !exists {
			g = &group{
				newest:     row,
				targetSeen: make(map[uuid.UUID]struct{}),
			}
			groups[key] = g
			order = append(order, key)
		}

		if row.Audience == models.AudienceOrganization {
			g.orgWide = true
		}
		if row.TargetUserID != nil {
			if _, dup := g.targetSeen[*row.TargetUserID]; !dup {
				g.targetSeen[*row.TargetUserID] = struct{}{}
				g.targetIDs = append(g.targetIDs, *row.TargetUserID)
			}
		}
	}

	names, err := e.resolveNames(ctx, *viewer.OrgID, groups)
	if err != nil {
		return nil, errs.Internal(err)
	}

	var items []*OverviewItem
	for _, key := range order {
		if limit > 0 && len(items) >= limit {
			break
		}
		items = append(items, buildItem(key, groups[key], names))
	}

	return items, nil
}

func (e *Engine) resolveNames(ctx context.Context, orgID uuid.UUID, groups map[uuid.UUID]*group) (map[uuid.UUID]string, error) {
	var all []uuid.UUID
	seen := make(map[uuid.UUID]struct{})
	for _, g := range groups {
		for _, id := range g.targetIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			all = append(all, id)
		}
	}

	names := make(map[uuid.UUID]string, len(all))
	if len(all) == 0 {
		return names, nil
	}

	users, err := e.users.GetManyByOrg(ctx, orgID, all)
	if err != nil {
		return nil, err
	}

	for _, user := range users {
		names[user.UserID] = user.Name
	}
	return names, nil
}

func buildItem(key uuid.UUID, g *group, names map[uuid.UUID]string) *OverviewItem {
	item := &OverviewItem{
		DispatchID:     key,
		Title:          g.newest.Title,
		Preview:        preview(g.newest.Body),
		Audience:       models.AudienceIndividual,
		RecipientCount: len(g.targetIDs),
		SenderUserID:   g.newest.SenderUserID,
		SentAt:         effectiveTime(g.newest),
	}

	if g.orgWide {
		item.Audience = models.AudienceOrganization
		item.AudienceLabel = "Entire organization"
		return item
	}

	for _, id := range g.targetIDs {
		name, known := names[id]
		if !known {
			// Recipient deleted since the send; keep the count honest but
			// leave them out of the name list.
			continue
		}
		item.Recipients = append(item.Recipients, Recipient{UserID: id, Name: name})
	}
	sort.Slice(item.Recipients, func(i, j int) bool {
		return item.Recipients[i].Name < item.Recipients[j].Name
	})

	switch {
	case item.RecipientCount == 1 && len(item.Recipients) == 1:
		item.AudienceLabel = item.Recipients[0].Name
	default:
		item.AudienceLabel = fmt.Sprintf("%d teammates", item.RecipientCount)
	}

	return item
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLimit {
		return body
	}
	return string(runes[:previewLimit]) + "…"
}

func effectiveTime(n *models.Notification) time.Time {
	if n.SentAt != nil {
		return *n.SentAt
	}
	return n.CreatedAt
}
