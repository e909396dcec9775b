package db

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func TestOpenCreatesParentDirAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dinelog.db")

	gdb, err := Open(DriverSQLite, path, nil)
	require.NoError(t, err)

	for _, model := range Models() {
		assert.True(t, gdb.Migrator().HasTable(model), "missing table for %T", model)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("oracle", "whatever", nil)
	require.Error(t, err)
}

func TestOpenRoutesQueryErrorsToZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dsn := fmt.Sprintf("file:db-log-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(DriverSQLite, dsn, zap.New(core))
	require.NoError(t, err)

	var missing Restaurant
	err = gdb.First(&missing, "id = ?", "nope").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Zero(t, logs.FilterMessageSnippet("record not found").Len())

	require.Error(t, gdb.Exec("SELECT * FROM no_such_table").Error)
	entries := logs.FilterMessageSnippet("no_such_table").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "gorm", entries[0].LoggerName)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestRestaurantRoundTripsJSONColumns(t *testing.T) {
	dsn := fmt.Sprintf("file:db-model-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := Open(DriverSQLite, dsn, nil)
	require.NoError(t, err)

	restaurant := Restaurant{
		AppID: "app",
		Name:  LocalizedName{EN: "Noodle Bar", ZhTW: "麵館"},
		BusinessHours: []BusinessHour{
			{Day: "Monday", IsOpen: true, StartTime: "11:00", EndTime: "21:00"},
		},
		PaymentMethods: []string{"cash", "card"},
	}
	require.NoError(t, gdb.Create(&restaurant).Error)
	require.NotEmpty(t, restaurant.ID)

	var loaded Restaurant
	require.NoError(t, gdb.First(&loaded, "id = ?", restaurant.ID).Error)
	assert.Equal(t, "麵館", loaded.Name.ZhTW)
	assert.Equal(t, restaurant.BusinessHours, loaded.BusinessHours)
	assert.Equal(t, []string{"cash", "card"}, loaded.PaymentMethods)
}

func TestRestaurantAddressFallsBackToParts(t *testing.T) {
	r := Restaurant{Province: "Taiwan", City: "Taipei", District: "Da'an", StreetAddress: "No. 1"}
	assert.Equal(t, "Taiwan Taipei Da'an No. 1", r.Address())

	r.FullAddress = "No. 1, Da'an, Taipei"
	assert.Equal(t, "No. 1, Da'an, Taipei", r.Address())
}

func TestPromotionActiveWindow(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	p := Promotion{StartsAt: now.Add(-time.Hour), EndsAt: now.Add(time.Hour)}
	assert.True(t, p.ActiveAt(now))
	assert.False(t, p.ActiveAt(now.Add(2*time.Hour)))
	assert.False(t, p.ActiveAt(now.Add(-2*time.Hour)))
	assert.True(t, Promotion{}.ActiveAt(now))
}

func TestDraftExpiry(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	d := DraftReview{ExpiresAt: now.Add(DraftTTL)}
	assert.False(t, d.Expired(now))
	assert.True(t, d.Expired(now.Add(DraftTTL)))
}

func TestUserPublicOmitsPrivateFields(t *testing.T) {
	u := User{ID: "u1", Username: "foodie", Email: "secret@example.com", IsAdmin: true}
	profile := u.Public()
	assert.Equal(t, "foodie", profile.Username)
	assert.NotNil(t, profile.FavoriteRestaurants)
	assert.NotNil(t, profile.PublishedReviews)
}
