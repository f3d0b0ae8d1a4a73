package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/museumhop/exhibition-engine/pkg/apperrors"
	"github.com/museumhop/exhibition-engine/pkg/models"
)

type upserterFixture struct {
	upserter    ExhibitionUpserter
	db          *fakeTxBeginner
	exhibitions *mockExhibitionRepo
	artists     *mockArtistRepo
	museumID    uuid.UUID
}

func newUpserterFixture(t *testing.T, leadMain bool) *upserterFixture {
	t.Helper()

	places := newMockPlaceRepo()
	artists := newMockArtistRepo()
	exhibitions := newMockExhibitionRepo()
	db := &fakeTxBeginner{}
	resolver := NewEntityResolver(places, artists, zap.NewNop())

	museumID, err := resolver.ResolveMuseum(context.Background(), nil, models.MuseumRef{
		Name: "Museo Reina Sofía", City: "Madrid", Country: "Spain",
	}, nil)
	require.NoError(t, err)

	return &upserterFixture{
		upserter:    NewExhibitionUpserter(db, resolver, exhibitions, leadMain, zap.NewNop()),
		db:          db,
		exhibitions: exhibitions,
		artists:     artists,
		museumID:    museumID,
	}
}

// linkedRoles returns role by normalized artist name for one exhibition.
func (f *upserterFixture) linkedRoles(exhibitionID uuid.UUID) map[string]string {
	byID := make(map[uuid.UUID]string)
	for key, a := range f.artists.byKey {
		byID[a.ID] = key
	}
	roles := make(map[string]string)
	for _, l := range f.exhibitions.links[exhibitionID] {
		roles[byID[l.ArtistID]] = l.Role
	}
	return roles
}

func TestUpsertCreatesThenUpdates(t *testing.T) {
	f := newUpserterFixture(t, true)
	ctx := context.Background()

	rec := models.RawExhibition{
		Title:     "Picasso: From the Studio",
		Artists:   "Pablo Picasso",
		StartDate: "9 October 2025",
		EndDate:   "22 February 2026",
		Details:   "Major retrospective.",
	}

	id, created, err := f.upserter.Upsert(ctx, f.museumID, rec, time.Now())
	require.NoError(t, err)
	assert.True(t, created)

	rec.Details = "Major retrospective, extended run."
	again, created, err := f.upserter.Upsert(ctx, f.museumID, rec, time.Now())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, again)

	require.Len(t, f.exhibitions.byKey, 1)
	for _, stored := range f.exhibitions.byKey {
		require.NotNil(t, stored.Details)
		assert.Equal(t, "Major retrospective, extended run.", *stored.Details)
		require.NotNil(t, stored.StartDate)
		assert.Equal(t, "2025-10-09", stored.StartDate.Format("2006-01-02"))
	}
	assert.True(t, f.db.last().committed)
}

func TestUpsertEmptyTitle(t *testing.T) {
	f := newUpserterFixture(t, true)

	_, _, err := f.upserter.Upsert(context.Background(), f.museumID, models.RawExhibition{Title: "   "}, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrEmptyTitle)
	assert.Nil(t, f.db.last()) // no transaction opened
}

func TestUpsertNoMuseum(t *testing.T) {
	f := newUpserterFixture(t, true)

	_, _, err := f.upserter.Upsert(context.Background(), uuid.Nil, models.RawExhibition{Title: "Untitled"}, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNoMuseum)
}

func TestUpsertUnparseableDatePreservesText(t *testing.T) {
	f := newUpserterFixture(t, true)

	_, created, err := f.upserter.Upsert(context.Background(), f.museumID, models.RawExhibition{
		Title:     "Opening Soon",
		StartDate: "TBD",
	}, time.Now())
	require.NoError(t, err)
	assert.True(t, created)

	for _, stored := range f.exhibitions.byKey {
		assert.Nil(t, stored.StartDate)
		assert.Equal(t, "TBD", stored.StartDateText)
	}
}

func TestUpsertSplitsDateRange(t *testing.T) {
	f := newUpserterFixture(t, true)

	_, _, err := f.upserter.Upsert(context.Background(), f.museumID, models.RawExhibition{
		Title:     "Winter Drawings",
		StartDate: "1–31 January 2026",
	}, time.Now())
	require.NoError(t, err)

	for _, stored := range f.exhibitions.byKey {
		require.NotNil(t, stored.StartDate)
		assert.Equal(t, "2026-01-01", stored.StartDate.Format("2006-01-02"))
		require.NotNil(t, stored.EndDate)
		assert.Equal(t, "2026-01-31", stored.EndDate.Format("2006-01-02"))
	}
}

func TestUpsertRolePolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("first listed is main", func(t *testing.T) {
		f := newUpserterFixture(t, true)
		id, _, err := f.upserter.Upsert(ctx, f.museumID, models.RawExhibition{
			Title:   "Group Show",
			Artists: "Pablo Picasso, Joan Miró, Salvador Dalí",
		}, time.Now())
		require.NoError(t, err)

		assert.Equal(t, map[string]string{
			"pablo picasso": models.RoleMain,
			"joan miro":     models.RoleFeatured,
			"salvador dali": models.RoleFeatured,
		}, f.linkedRoles(id))
	})

	t.Run("policy off makes everyone featured", func(t *testing.T) {
		f := newUpserterFixture(t, false)
		id, _, err := f.upserter.Upsert(ctx, f.museumID, models.RawExhibition{
			Title:   "Group Show",
			Artists: "Pablo Picasso, Joan Miró",
		}, time.Now())
		require.NoError(t, err)

		for _, role := range f.linkedRoles(id) {
			assert.Equal(t, models.RoleFeatured, role)
		}
	})

	t.Run("explicit roles override", func(t *testing.T) {
		f := newUpserterFixture(t, true)
		id, _, err := f.upserter.UpsertWithRoles(ctx, f.museumID, models.RawExhibition{
			Title:   "Group Show",
			Artists: "Pablo Picasso, Joan Miró",
		}, time.Now(), map[string]string{"joan miro": models.RoleCollaborative})
		require.NoError(t, err)

		assert.Equal(t, map[string]string{
			"pablo picasso": models.RoleMain,
			"joan miro":     models.RoleCollaborative,
		}, f.linkedRoles(id))
	})
}

func TestUpsertDeduplicatesArtists(t *testing.T) {
	f := newUpserterFixture(t, true)

	id, _, err := f.upserter.Upsert(context.Background(), f.museumID, models.RawExhibition{
		Title:   "Duplicates",
		Artists: "Pablo Picasso, pablo  picasso, William Blake (1757–1827)",
	}, time.Now())
	require.NoError(t, err)

	roles := f.linkedRoles(id)
	assert.Equal(t, map[string]string{
		"pablo picasso": models.RoleMain, // first occurrence keeps its role
		"william blake": models.RoleFeatured,
	}, roles)
}

func TestUpsertReplacesAssociationSet(t *testing.T) {
	f := newUpserterFixture(t, true)
	ctx := context.Background()

	rec := models.RawExhibition{Title: "Rotation", Artists: "Artist A, Artist B"}
	id, _, err := f.upserter.Upsert(ctx, f.museumID, rec, time.Now())
	require.NoError(t, err)

	rec.Artists = "Artist A, Artist C"
	_, _, err = f.upserter.Upsert(ctx, f.museumID, rec, time.Now())
	require.NoError(t, err)

	roles := f.linkedRoles(id)
	assert.Contains(t, roles, "artist a")
	assert.Contains(t, roles, "artist c")
	assert.NotContains(t, roles, "artist b")

	// Artist A's link survived both passes instead of being recreated, and
	// the artist row for B is still around.
	aID := f.artists.byKey["artist a"].ID
	assert.Equal(t, 2, f.exhibitions.linkAge[id.String()+"|"+aID.String()])
	assert.NotNil(t, f.artists.byKey["artist b"])
}

func TestUpsertRollsBackOnLinkFailure(t *testing.T) {
	f := newUpserterFixture(t, true)
	f.exhibitions.replaceErr = errors.New("deadlock detected")

	_, _, err := f.upserter.Upsert(context.Background(), f.museumID, models.RawExhibition{
		Title:   "Doomed",
		Artists: "Artist A",
	}, time.Now())
	require.Error(t, err)

	var pErr *apperrors.PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "replace artist links", pErr.Op)

	tx := f.db.last()
	require.NotNil(t, tx)
	assert.True(t, tx.rolledBack)
	assert.False(t, tx.committed)
}
