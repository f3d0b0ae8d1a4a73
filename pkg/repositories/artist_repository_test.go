package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/museumhop/exhibition-engine/pkg/models"
	"github.com/museumhop/exhibition-engine/pkg/testhelpers"
)

func TestArtistRepositoryFindOrCreate(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.Truncate(t, db.Pool)

	repo := NewArtistRepository()
	ctx := context.Background()

	id, err := repo.FindOrCreate(ctx, db.Pool, "Pablo Picasso", "pablo picasso")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	// A variant spelling maps to the same row and the display name sticks.
	same, err := repo.FindOrCreate(ctx, db.Pool, "PABLO PICASSO", "pablo picasso")
	require.NoError(t, err)
	assert.Equal(t, id, same)

	artist, err := repo.GetByNormalizedName(ctx, db.Pool, "pablo picasso")
	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Equal(t, "Pablo Picasso", artist.Name)
}

func TestArtistRepositoryGetMissing(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.Truncate(t, db.Pool)

	repo := NewArtistRepository()

	artist, err := repo.GetByNormalizedName(context.Background(), db.Pool, "nobody")
	require.NoError(t, err)
	assert.Nil(t, artist)
}

func TestArtistRepositoryEnrichFillsOnlyNulls(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.Truncate(t, db.Pool)

	repo := NewArtistRepository()
	ctx := context.Background()

	id, err := repo.FindOrCreate(ctx, db.Pool, "William Blake", "william blake")
	require.NoError(t, err)

	birth := 1757
	require.NoError(t, repo.Enrich(ctx, db.Pool, id, models.ArtistAttrs{BirthYear: &birth}))

	// A later scrape offering a different birth year must not clobber the
	// stored one, but may fill the still-null death year.
	wrongBirth, death := 1800, 1827
	require.NoError(t, repo.Enrich(ctx, db.Pool, id, models.ArtistAttrs{
		BirthYear: &wrongBirth,
		DeathYear: &death,
	}))

	artist, err := repo.GetByNormalizedName(ctx, db.Pool, "william blake")
	require.NoError(t, err)
	require.NotNil(t, artist)
	require.NotNil(t, artist.BirthYear)
	assert.Equal(t, 1757, *artist.BirthYear)
	require.NotNil(t, artist.DeathYear)
	assert.Equal(t, 1827, *artist.DeathYear)
	assert.Nil(t, artist.Nationality)
}

func TestArtistRepositoryEnrichNoopWhenEmpty(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	testhelpers.Truncate(t, db.Pool)

	repo := NewArtistRepository()
	ctx := context.Background()

	id, err := repo.FindOrCreate(ctx, db.Pool, "Joan Miró", "joan miro")
	require.NoError(t, err)

	require.NoError(t, repo.Enrich(ctx, db.Pool, id, models.ArtistAttrs{}))

	artist, err := repo.GetByNormalizedName(ctx, db.Pool, "joan miro")
	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Nil(t, artist.BirthYear)
}
