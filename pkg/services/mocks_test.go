package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/museumhop/exhibition-engine/pkg/database"
	"github.com/museumhop/exhibition-engine/pkg/models"
)

// In-memory repository fakes mirroring the SQL semantics the real
// repositories get from Postgres: conflict-driven find-or-create,
// COALESCE-style enrichment, upsert-by-identity-key, set-replace.

type mockPlaceRepo struct {
	mu        sync.Mutex
	countries map[string]uuid.UUID
	cities    map[string]uuid.UUID
	museums   map[string]uuid.UUID

	scrapeStatus map[uuid.UUID]string
	scrapeCount  map[uuid.UUID]int
	scrapeErrMsg map[uuid.UUID]*string

	findErr   error
	updateErr error
}

func newMockPlaceRepo() *mockPlaceRepo {
	return &mockPlaceRepo{
		countries:    make(map[string]uuid.UUID),
		cities:       make(map[string]uuid.UUID),
		museums:      make(map[string]uuid.UUID),
		scrapeStatus: make(map[uuid.UUID]string),
		scrapeCount:  make(map[uuid.UUID]int),
		scrapeErrMsg: make(map[uuid.UUID]*string),
	}
}

func (m *mockPlaceRepo) FindOrCreateCountry(_ context.Context, _ database.Querier, name string, _ *string) (uuid.UUID, error) {
	if m.findErr != nil {
		return uuid.Nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.countries[name]; ok {
		return id, nil
	}
	id := uuid.New()
	m.countries[name] = id
	return id, nil
}

func (m *mockPlaceRepo) FindOrCreateCity(_ context.Context, _ database.Querier, name string, countryID uuid.UUID, _ *models.Coordinates) (uuid.UUID, error) {
	if m.findErr != nil {
		return uuid.Nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := name + "|" + countryID.String()
	if id, ok := m.cities[key]; ok {
		return id, nil
	}
	id := uuid.New()
	m.cities[key] = id
	return id, nil
}

func (m *mockPlaceRepo) FindOrCreateMuseum(_ context.Context, _ database.Querier, name string, cityID uuid.UUID, _ string) (uuid.UUID, error) {
	if m.findErr != nil {
		return uuid.Nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := name + "|" + cityID.String()
	if id, ok := m.museums[key]; ok {
		return id, nil
	}
	id := uuid.New()
	m.museums[key] = id
	return id, nil
}

func (m *mockPlaceRepo) UpdateScrapeResult(_ context.Context, _ database.Querier, museumID uuid.UUID, status string, count int, errMsg *string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scrapeStatus[museumID] = status
	m.scrapeCount[museumID] = count
	m.scrapeErrMsg[museumID] = errMsg
	return nil
}

func (m *mockPlaceRepo) MuseumsDue(_ context.Context, _ database.Querier, _ time.Time) ([]*models.MuseumListing, error) {
	return nil, nil
}

func (m *mockPlaceRepo) ListMuseums(_ context.Context, _ database.Querier) ([]*models.MuseumListing, error) {
	return nil, nil
}

type mockArtistRepo struct {
	mu     sync.Mutex
	byKey  map[string]*models.Artist
	getErr error
}

func newMockArtistRepo() *mockArtistRepo {
	return &mockArtistRepo{byKey: make(map[string]*models.Artist)}
}

func (m *mockArtistRepo) FindOrCreate(_ context.Context, _ database.Querier, displayName, normalizedName string) (uuid.UUID, error) {
	if m.getErr != nil {
		return uuid.Nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.byKey[normalizedName]; ok {
		return a.ID, nil
	}
	a := &models.Artist{ID: uuid.New(), Name: displayName, NormalizedName: normalizedName}
	m.byKey[normalizedName] = a
	return a.ID, nil
}

func (m *mockArtistRepo) Enrich(_ context.Context, _ database.Querier, artistID uuid.UUID, attrs models.ArtistAttrs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byKey {
		if a.ID != artistID {
			continue
		}
		if a.BirthYear == nil {
			a.BirthYear = attrs.BirthYear
		}
		if a.DeathYear == nil {
			a.DeathYear = attrs.DeathYear
		}
		if a.Nationality == nil {
			a.Nationality = attrs.Nationality
		}
		return nil
	}
	return fmt.Errorf("artist %s not found", artistID)
}

func (m *mockArtistRepo) GetByNormalizedName(_ context.Context, _ database.Querier, normalizedName string) (*models.Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byKey[normalizedName], nil
}

type mockExhibitionRepo struct {
	mu     sync.Mutex
	byKey  map[string]*models.Exhibition
	links  map[uuid.UUID][]models.ArtistLink
	// linkAge counts how many ReplaceArtists calls each (exhibition,
	// artist) pair has survived, to prove surviving links are preserved
	// rather than recreated.
	linkAge map[string]int

	upsertErr  error
	replaceErr error
}

func newMockExhibitionRepo() *mockExhibitionRepo {
	return &mockExhibitionRepo{
		byKey:   make(map[string]*models.Exhibition),
		links:   make(map[uuid.UUID][]models.ArtistLink),
		linkAge: make(map[string]int),
	}
}

func exKey(ex *models.Exhibition) string {
	key := ex.Title + "|" + ex.MuseumID.String() + "|"
	if ex.StartDate != nil {
		key += ex.StartDate.Format("2006-01-02")
	}
	return key
}

func (m *mockExhibitionRepo) Upsert(_ context.Context, _ database.Querier, ex *models.Exhibition) (bool, error) {
	if m.upsertErr != nil {
		return false, m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := exKey(ex)
	if existing, ok := m.byKey[key]; ok {
		existing.EndDate = ex.EndDate
		existing.EndDateText = ex.EndDateText
		existing.Details = ex.Details
		existing.URL = ex.URL
		existing.ScrapedAt = ex.ScrapedAt
		existing.UpdatedAt = time.Now()
		*ex = *existing
		return false, nil
	}
	ex.ID = uuid.New()
	ex.CreatedAt = time.Now()
	ex.UpdatedAt = ex.CreatedAt
	stored := *ex
	m.byKey[key] = &stored
	return true, nil
}

func (m *mockExhibitionRepo) ReplaceArtists(_ context.Context, _ database.Querier, exhibitionID uuid.UUID, links []models.ArtistLink) error {
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	keep := make(map[uuid.UUID]bool, len(links))
	for _, l := range links {
		keep[l.ArtistID] = true
	}
	for _, old := range m.links[exhibitionID] {
		if !keep[old.ArtistID] {
			delete(m.linkAge, exhibitionID.String()+"|"+old.ArtistID.String())
		}
	}
	for _, l := range links {
		m.linkAge[exhibitionID.String()+"|"+l.ArtistID.String()]++
	}
	m.links[exhibitionID] = links
	return nil
}

func (m *mockExhibitionRepo) ArtistsFor(_ context.Context, _ database.Querier, exhibitionID uuid.UUID) ([]models.ExhibitionArtist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ExhibitionArtist
	for _, l := range m.links[exhibitionID] {
		out = append(out, models.ExhibitionArtist{ArtistID: l.ArtistID, Role: l.Role})
	}
	return out, nil
}

func (m *mockExhibitionRepo) Search(_ context.Context, _ database.Querier, _ models.SearchFilters) ([]*models.ExhibitionRow, error) {
	return nil, nil
}

func (m *mockExhibitionRepo) CitySummaries(_ context.Context, _ database.Querier) ([]models.CitySummary, error) {
	return nil, nil
}

// fakeTxBeginner satisfies database.TxBeginner; the returned transaction
// records commit/rollback so tests can assert atomicity handling.
type fakeTxBeginner struct {
	mu  sync.Mutex
	txs []*fakeTx
}

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

func (b *fakeTxBeginner) Begin(_ context.Context) (pgx.Tx, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tx := &fakeTx{}
	b.txs = append(b.txs, tx)
	return tx, nil
}

func (b *fakeTxBeginner) last() *fakeTx {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.txs) == 0 {
		return nil
	}
	return b.txs[len(b.txs)-1]
}
