package ground_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"boxcric/database/repository/memstore"
	"boxcric/models"
	"boxcric/services/ground"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCache mirrors utils.VersionedCache semantics in memory.
type mapCache struct {
	version int
	entries map[string][]byte
	sets    int
}

func newMapCache() *mapCache { return &mapCache{entries: map[string][]byte{}} }

func (c *mapCache) k(key string) string { return string(rune('0'+c.version)) + ":" + key }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.entries[c.k(key)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.sets++
	c.entries[c.k(key)] = raw
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.version++
	return nil
}

type fakeImages struct{ folder, name string }

func (f *fakeImages) UploadImage(_ context.Context, r io.Reader, folder, name string) (string, error) {
	f.folder, f.name = folder, name
	_, err := io.ReadAll(r)
	return "https://res.example.com/" + folder + "/" + name + ".jpg", err
}

func seedGrounds() *memstore.GroundRepo {
	return memstore.NewGroundRepo(
		models.Ground{ID: "a", Name: "Andheri Sports Box", Status: models.GroundActive,
			Location: models.GroundLocation{CityID: "mumbai", Address: "Link Road"},
			Price:    models.GroundPrice{PerHour: 1200}},
		models.Ground{ID: "b", Name: "Bandra Turf", Status: models.GroundActive,
			Location: models.GroundLocation{CityID: "mumbai", Address: "Hill Road"},
			Price:    models.GroundPrice{PerHour: 800}},
		models.Ground{ID: "c", Name: "Connaught Box", Status: models.GroundActive,
			Location: models.GroundLocation{CityID: "delhi", Address: "Inner Circle"},
			Price:    models.GroundPrice{PerHour: 1500}},
		models.Ground{ID: "d", Name: "Dadar Box", Status: models.GroundPending,
			Location: models.GroundLocation{CityID: "mumbai"},
			Price:    models.GroundPrice{PerHour: 900}},
	)
}

func ids(gs []models.Ground) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, g.ID)
	}
	return out
}

func TestListActive_Filters(t *testing.T) {
	svc := ground.NewService(seedGrounds(), nil, nil, nil)
	ctx := context.Background()

	all, _, err := svc.ListActive(ctx, models.GroundFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids(all))

	mumbai, _, err := svc.ListActive(ctx, models.GroundFilter{CityID: "mumbai"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(mumbai))

	byAddress, _, err := svc.ListActive(ctx, models.GroundFilter{Search: "HILL"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(byAddress))

	priced, _, err := svc.ListActive(ctx, models.GroundFilter{MinPrice: 1000, MaxPrice: 1400})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(priced))
}

func TestListActive_CacheAndInvalidation(t *testing.T) {
	cache := newMapCache()
	svc := ground.NewService(seedGrounds(), cache, nil, nil)
	ctx := context.Background()

	first, used, err := svc.ListActive(ctx, models.GroundFilter{CityID: "mumbai"})
	require.NoError(t, err)
	assert.False(t, used)

	second, used, err := svc.ListActive(ctx, models.GroundFilter{CityID: "mumbai"})
	require.NoError(t, err)
	assert.True(t, used)
	assert.Equal(t, ids(first), ids(second))

	active := models.GroundActive
	_, err = svc.UpdateStatus(ctx, "d", models.GroundStatusUpdate{Status: &active})
	require.NoError(t, err)

	third, used, err := svc.ListActive(ctx, models.GroundFilter{CityID: "mumbai"})
	require.NoError(t, err)
	assert.False(t, used)
	assert.Equal(t, []string{"a", "b", "d"}, ids(third))
}

func TestCreate(t *testing.T) {
	svc := ground.NewService(seedGrounds(), nil, nil, nil)
	ctx := context.Background()

	g, err := svc.Create(ctx, ground.CreateRequest{
		Name:  "  Powai Arena ",
		Price: models.GroundPrice{PerHour: 1000, Currency: "INR", Discount: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "Powai Arena", g.Name)
	assert.Equal(t, models.GroundPending, g.Status)

	got, err := svc.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)

	_, err = svc.Create(ctx, ground.CreateRequest{Name: "Free", Price: models.GroundPrice{}})
	assert.ErrorIs(t, err, ground.ErrInvalidGround)
	_, err = svc.Create(ctx, ground.CreateRequest{Name: "Odd", Price: models.GroundPrice{PerHour: 1}, Status: "archived"})
	assert.ErrorIs(t, err, ground.ErrInvalidGround)
}

func TestUpdateStatus(t *testing.T) {
	svc := ground.NewService(seedGrounds(), nil, nil, nil)
	ctx := context.Background()

	verified := true
	g, err := svc.UpdateStatus(ctx, "a", models.GroundStatusUpdate{IsVerified: &verified})
	require.NoError(t, err)
	assert.True(t, g.IsVerified)
	assert.Equal(t, models.GroundActive, g.Status)

	_, err = svc.UpdateStatus(ctx, "missing", models.GroundStatusUpdate{IsVerified: &verified})
	assert.ErrorIs(t, err, ground.ErrGroundNotFound)

	_, err = svc.UpdateStatus(ctx, "a", models.GroundStatusUpdate{})
	assert.ErrorIs(t, err, ground.ErrInvalidGround)
}

func TestAddImage(t *testing.T) {
	ctx := context.Background()

	_, err := ground.NewService(seedGrounds(), nil, nil, nil).AddImage(ctx, "a", strings.NewReader("x"), "pitch.jpg")
	assert.ErrorIs(t, err, ground.ErrUploadsDisabled)

	images := &fakeImages{}
	svc := ground.NewService(seedGrounds(), nil, images, nil)
	imageURL, err := svc.AddImage(ctx, "a", strings.NewReader("jpegbytes"), "pitch.jpg")
	require.NoError(t, err)
	assert.Equal(t, "grounds/a", images.folder)
	assert.Equal(t, "pitch", images.name)

	g, err := svc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{imageURL}, g.Images)

	_, err = svc.AddImage(ctx, "missing", strings.NewReader("x"), "x.png")
	assert.ErrorIs(t, err, ground.ErrGroundNotFound)
}
