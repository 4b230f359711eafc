package announce

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/teamwell/staffd/internal/models"
)

func TestOverviewGroupsByDispatch(t *testing.T) {
	f := newEngineFixture(t)

	ada := f.seedUser(t, "Ada", models.UserStatusActive)
	ben := f.seedUser(t, "Ben", models.UserStatusActive)

	first, err := f.engine.Send(t.Context(), f.sender, SendInput{
		Title:        "Town hall",
		Body:         "Join us Friday 10am",
		Audience:     models.AudienceIndividual,
		RecipientIDs: []uuid.UUID{ben.UserID, ada.UserID},
	})
	require.NoError(t, err)

	// a later dispatch must sort first
	time.Sleep(5 * time.Millisecond)
	second, err := f.engine.Send(t.Context(), f.sender, SendInput{
		Title:    "Holiday schedule",
		Body:     "Office closed next Monday",
		Audience: models.AudienceOrganization,
	})
	require.NoError(t, err)

	items, err := f.engine.Overview(t.Context(), f.sender, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.Equal(t, second.DispatchID, items[0].DispatchID)
	require.Equal(t, models.AudienceOrganization, items[0].Audience)
	require.Equal(t, "Entire organization", items[0].AudienceLabel)

	require.Equal(t, first.DispatchID, items[1].DispatchID)
	require.Equal(t, 2, items[1].RecipientCount)
	require.Equal(t, "2 teammates", items[1].AudienceLabel)
	// recipients come back name-sorted regardless of send order
	require.Equal(t, "Ada", items[1].Recipients[0].Name)
	require.Equal(t, "Ben", items[1].Recipients[1].Name)
}

func TestOverviewSingleRecipientLabel(t *testing.T) {
	f := newEngineFixture(t)
	ada := f.seedUser(t, "Ada Lovelace", models.UserStatusActive)

	_, err := f.engine.Send(t.Context(), f.sender, SendInput{
		Title:        "One on one",
		Body:         "See you at 3pm",
		Audience:     models.AudienceIndividual,
		RecipientIDs: []uuid.UUID{ada.UserID},
	})
	require.NoError(t, err)

	items, err := f.engine.Overview(t.Context(), f.sender, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Ada Lovelace", items[0].AudienceLabel)
	require.Equal(t, 1, items[0].RecipientCount)
}

func TestOverviewOrgRowPromotesGroup(t *testing.T) {
	f := newEngineFixture(t)
	ada := f.seedUser(t, "Ada", models.UserStatusActive)

	// Hand-craft a mixed group: one individual row plus one org-wide row
	// sharing a dispatch id.
	dispatchID := uuid.Must(uuid.NewV7())
	now := time.Now()
	target := ada.UserID
	rows := []*models.Notification{
		{
			NotificationID: uuid.Must(uuid.NewV7()),
			OrgID:          f.orgID,
			DispatchID:     dispatchID,
			Audience:       models.AudienceIndividual,
			TargetUserID:   &target,
			Type:           models.NotificationTypeAnnouncement,
			Title:          "Mixed",
			Body:           "body",
			SenderUserID:   f.sender.UserID,
			Status:         models.NotificationStatusSent,
			SentAt:         &now,
			CreatedAt:      now,
		},
		{
			NotificationID: uuid.Must(uuid.NewV7()),
			OrgID:          f.orgID,
			DispatchID:     dispatchID,
			Audience:       models.AudienceOrganization,
			Type:           models.NotificationTypeAnnouncement,
			Title:          "Mixed",
			Body:           "body",
			SenderUserID:   f.sender.UserID,
			Status:         models.NotificationStatusSent,
			SentAt:         &now,
			CreatedAt:      now,
		},
	}
	require.NoError(t, f.stores.Notifications.CreateBatch(t.Context(), rows))

	items, err := f.engine.Overview(t.Context(), f.sender, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, models.AudienceOrganization, items[0].Audience)
	require.Equal(t, "Entire organization", items[0].AudienceLabel)
}

func TestOverviewLegacyRowsFormOwnGroups(t *testing.T) {
	f := newEngineFixture(t)

	now := time.Now()
	var rows []*models.Notification
	for i := 0; i < 2; i++ {
		rows = append(rows, &models.Notification{
			NotificationID: uuid.Must(uuid.NewV7()),
			OrgID:          f.orgID,
			DispatchID:     uuid.Nil, // legacy row without dispatch metadata
			Audience:       models.AudienceOrganization,
			Type:           models.NotificationTypeAnnouncement,
			Title:          "Old",
			Body:           "body",
			SenderUserID:   f.sender.UserID,
			Status:         models.NotificationStatusSent,
			SentAt:         &now,
			CreatedAt:      now,
		})
	}
	require.NoError(t, f.stores.Notifications.CreateBatch(t.Context(), rows))

	items, err := f.engine.Overview(t.Context(), f.sender, 0)
	require.NoError(t, err)
	require.Len(t, items, 2, "legacy rows must not collapse into one group")
}

func TestOverviewPreviewTruncation(t *testing.T) {
	f := newEngineFixture(t)

	long := strings.Repeat("x", 200)
	_, err := f.engine.Send(t.Context(), f.sender, SendInput{
		Title:    "Long",
		Body:     long,
		Audience: models.AudienceOrganization,
	})
	require.NoError(t, err)

	short := "short body"
	_, err = f.engine.Send(t.Context(), f.sender, SendInput{
		Title:    "Short",
		Body:     short,
		Audience: models.AudienceOrganization,
	})
	require.NoError(t, err)

	items, err := f.engine.Overview(t.Context(), f.sender, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	for _, item := range items {
		switch item.Title {
		case "Long":
			require.Equal(t, previewLimit+1, len([]rune(item.Preview)))
			require.True(t, strings.HasSuffix(item.Preview, "…"))
		case "Short":
			require.Equal(t, short, item.Preview)
		}
	}
}

func TestOverviewIsIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	ada := f.seedUser(t, "Ada", models.UserStatusActive)

	_, err := f.engine.Send(t.Context(), f.sender, SendInput{
		Title:        "Repeatable",
		Body:         "body",
		Audience:     models.AudienceIndividual,
		RecipientIDs: []uuid.UUID{ada.UserID},
	})
	require.NoError(t, err)

	first, err := f.engine.Overview(t.Context(), f.sender, 0)
	require.NoError(t, err)
	second, err := f.engine.Overview(t.Context(), f.sender, 0)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestOverviewLimit(t *testing.T) {
	f := newEngineFixture(t)

	for i := 0; i < 3; i++ {
		_, err := f.engine.Send(t.Context(), f.sender, SendInput{
			Title:    "n",
			Body:     "b",
			Audience: models.AudienceOrganization,
		})
		require.NoError(t, err)
	}

	items, err := f.engine.Overview(t.Context(), f.sender, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
}
