package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/dinelog/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func seedRestaurants(t *testing.T, svc *RestaurantService, inputs ...RestaurantInput) []*db.Restaurant {
	t.Helper()
	created := make([]*db.Restaurant, 0, len(inputs))
	for _, input := range inputs {
		restaurant, err := svc.Create(context.Background(), input)
		require.NoError(t, err)
		created = append(created, restaurant)
	}
	return created
}

func restaurantNames(restaurants []db.Restaurant) []string {
	names := make([]string, 0, len(restaurants))
	for _, r := range restaurants {
		names = append(names, r.Name.EN)
	}
	return names
}

func TestRestaurantSearchPaginatesByEnglishName(t *testing.T) {
	store := setupServiceTestStore(t)
	svc := NewRestaurantService(store, nil, nil, time.UTC)
	seedRestaurants(t, svc,
		RestaurantInput{Name: db.LocalizedName{EN: "Delta"}},
		RestaurantInput{Name: db.LocalizedName{EN: "Alpha"}},
		RestaurantInput{Name: db.LocalizedName{EN: "Charlie"}},
		RestaurantInput{Name: db.LocalizedName{EN: "Bravo"}},
		RestaurantInput{Name: db.LocalizedName{EN: "Echo"}},
	)
	ctx := context.Background()

	first, err := svc.Search(ctx, RestaurantFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo"}, restaurantNames(first.Restaurants))
	assert.True(t, first.HasMore)
	assert.Equal(t, first.Restaurants[1].ID, first.LastDocID)

	second, err := svc.Search(ctx, RestaurantFilter{PageSize: 2, StartAfterDocID: first.LastDocID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie", "Delta"}, restaurantNames(second.Restaurants))
	assert.True(t, second.HasMore)

	third, err := svc.Search(ctx, RestaurantFilter{PageSize: 2, StartAfterDocID: second.LastDocID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Echo"}, restaurantNames(third.Restaurants))
	assert.False(t, third.HasMore)

	again, err := svc.Search(ctx, RestaurantFilter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, restaurantNames(first.Restaurants), restaurantNames(again.Restaurants))
}

func TestRestaurantSearchUnknownCursorRestartsAndLogs(t *testing.T) {
	store := setupServiceTestStore(t)
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewRestaurantService(store, nil, zap.New(core), time.UTC)
	seedRestaurants(t, svc,
		RestaurantInput{Name: db.LocalizedName{EN: "Alpha"}},
		RestaurantInput{Name: db.LocalizedName{EN: "Bravo"}},
	)

	page, err := svc.Search(context.Background(), RestaurantFilter{StartAfterDocID: "missing-id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo"}, restaurantNames(page.Restaurants))
	assert.Equal(t, 1, logs.FilterMessageSnippet("cursor not found").Len())
}

func TestRestaurantSearchAppliesDatabaseAndInProcessFilters(t *testing.T) {
	store := setupServiceTestStore(t)
	svc := NewRestaurantService(store, nil, nil, time.UTC)
	restaurants := seedRestaurants(t, svc,
		RestaurantInput{
			Name: db.LocalizedName{EN: "Night Owl", ZhTW: "夜貓子"}, Province: "Taiwan", City: "Taipei",
			Category: "Bar", AvgSpending: 800, SeatingCapacity: "10-20",
			BusinessHours:    []db.BusinessHour{{Day: "Monday", IsOpen: true, StartTime: "22:00", EndTime: "02:00"}},
			ReservationModes: []string{"phone", "online"}, PaymentMethods: []string{"cash", "card"},
			Facilities: []string{"wifi"},
		},
		RestaurantInput{
			Name: db.LocalizedName{EN: "Lunch Box", ZhTW: "便當"}, Province: "Taiwan", City: "Taipei",
			Category: "Taiwanese", AvgSpending: 150, SeatingCapacity: "40+",
			BusinessHours:    []db.BusinessHour{{Day: "Monday", IsOpen: true, StartTime: "11:00", EndTime: "14:00"}},
			ReservationModes: []string{"phone"}, PaymentMethods: []string{"cash"},
		},
		RestaurantInput{
			Name: db.LocalizedName{EN: "Harbour Grill"}, Province: "Taiwan", City: "Kaohsiung",
			Category: "Seafood", AvgSpending: 1200, SeatingCapacity: "30",
		},
	)
	ctx := context.Background()

	search := func(filter RestaurantFilter) []string {
		t.Helper()
		page, err := svc.Search(ctx, filter)
		require.NoError(t, err)
		return restaurantNames(page.Restaurants)
	}

	assert.Equal(t, []string{"Lunch Box", "Night Owl"}, search(RestaurantFilter{City: "Taipei"}))
	maxSpend := 500
	assert.Equal(t, []string{"Lunch Box"}, search(RestaurantFilter{MaxSpending: &maxSpend}))
	assert.Equal(t, []string{"Harbour Grill", "Lunch Box"}, search(RestaurantFilter{PartySize: 25}))
	assert.Equal(t, []string{"Night Owl"}, search(RestaurantFilter{ReservationModes: []string{"online", "phone"}, PaymentMethods: []string{"card"}}))
	assert.Equal(t, []string{"Harbour Grill"}, search(RestaurantFilter{Categories: []string{"Seafood", "Sushi"}}))
	assert.Equal(t, []string{"Lunch Box"}, search(RestaurantFilter{Search: "便當"}))
	assert.Equal(t, []string{"Night Owl"}, search(RestaurantFilter{ReservationDate: "2026-10-19", ReservationTime: "01:00"}))
	assert.Equal(t, []string{"Lunch Box"}, search(RestaurantFilter{ReservationDate: "2026-10-19"}))
	assert.Equal(t, []string{"Night Owl"}, search(RestaurantFilter{FavoriteIDs: []string{restaurants[0].ID}}))
	assert.Empty(t, search(RestaurantFilter{FavoriteIDs: []string{}}))
}

func TestRestaurantSearchFiltersAfterFetchingOnePage(t *testing.T) {
	store := setupServiceTestStore(t)
	svc := NewRestaurantService(store, nil, nil, time.UTC)
	seedRestaurants(t, svc,
		RestaurantInput{Name: db.LocalizedName{EN: "Alpha"}, Facilities: []string{"wifi"}},
		RestaurantInput{Name: db.LocalizedName{EN: "Bravo"}},
		RestaurantInput{Name: db.LocalizedName{EN: "Charlie"}},
		RestaurantInput{Name: db.LocalizedName{EN: "Delta"}, Facilities: []string{"wifi"}},
	)

	// 只在取回的 pageSize+1 条中过滤，Delta 不会出现在本页
	page, err := svc.Search(context.Background(), RestaurantFilter{PageSize: 2, Facilities: []string{"wifi"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, restaurantNames(page.Restaurants))
	assert.False(t, page.HasMore)

	page, err = svc.Search(context.Background(), RestaurantFilter{PageSize: 1, Facilities: []string{"wifi"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, restaurantNames(page.Restaurants))
	assert.False(t, page.HasMore)
}

func TestRestaurantSearchDefaultsDateToToday(t *testing.T) {
	store := setupServiceTestStore(t)
	svc := NewRestaurantService(store, nil, nil, time.UTC)
	svc.now = fixedClock(time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC))
	seedRestaurants(t, svc, RestaurantInput{
		Name:          db.LocalizedName{EN: "Tuesday Only"},
		BusinessHours: []db.BusinessHour{{Day: "Tue", IsOpen: true, StartTime: "08:00", EndTime: "10:00"}},
	})

	page, err := svc.Search(context.Background(), RestaurantFilter{ReservationTime: "09:30"})
	require.NoError(t, err)
	assert.Len(t, page.Restaurants, 1)

	page, err = svc.Search(context.Background(), RestaurantFilter{ReservationDate: "not a date", ReservationTime: "09:30"})
	require.NoError(t, err)
	assert.Len(t, page.Restaurants, 1)
}

func TestRestaurantCreateThenSearchRoundTrip(t *testing.T) {
	store := setupServiceTestStore(t)
	svc := NewRestaurantService(store, nil, nil, time.UTC)

	created, err := svc.Create(context.Background(), RestaurantInput{Name: db.LocalizedName{EN: "  Fresh Spot ", ZhTW: "新店"}})
	require.NoError(t, err)
	assert.Equal(t, "fresh spot", created.NameLowerEN)
	assert.False(t, created.CreatedAt.IsZero())

	page, err := svc.Search(context.Background(), RestaurantFilter{})
	require.NoError(t, err)
	require.Len(t, page.Restaurants, 1)
	assert.Equal(t, created.ID, page.Restaurants[0].ID)

	_, err = svc.Create(context.Background(), RestaurantInput{Name: db.LocalizedName{ZhTW: "無英文名"}})
	assert.ErrorIs(t, err, ErrRestaurantInvalid)
}

func TestRestaurantUpdateMergesPatch(t *testing.T) {
	store := setupServiceTestStore(t)
	svc := NewRestaurantService(store, nil, nil, time.UTC)
	created := seedRestaurants(t, svc, RestaurantInput{
		Name: db.LocalizedName{EN: "Old Name", ZhTW: "舊名"}, City: "Taipei", AvgSpending: 300,
		Facilities: []string{"wifi"},
	})[0]

	newName := db.LocalizedName{EN: "New Name", ZhTW: "新名"}
	spending := 450
	updated, err := svc.Update(context.Background(), created.ID, RestaurantPatch{Name: &newName, AvgSpending: &spending})
	require.NoError(t, err)

	assert.Equal(t, "new name", updated.NameLowerEN)
	assert.Equal(t, 450, updated.AvgSpending)
	assert.Equal(t, "Taipei", updated.City)
	assert.Equal(t, []string{"wifi"}, updated.Facilities)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	_, err = svc.Update(context.Background(), "missing", RestaurantPatch{})
	assert.ErrorIs(t, err, ErrRestaurantNotFound)
}

func TestRestaurantDeleteIsIdempotentAndCleansObjects(t *testing.T) {
	store := setupServiceTestStore(t)
	objects := setupLocalObjects(t)
	svc := NewRestaurantService(store, objects, nil, time.UTC)
	ctx := context.Background()

	restaurant := seedRestaurants(t, svc, RestaurantInput{Name: db.LocalizedName{EN: "Short Lived"}})[0]
	withPhoto, err := svc.AddPhoto(ctx, restaurant.ID, bytes.NewReader(samplePNG(t)))
	require.NoError(t, err)
	require.Len(t, withPhoto.PhotoURLs, 1)

	keys, err := objects.List(ctx, store.RestaurantObjectPrefix(restaurant.ID))
	require.NoError(t, err)
	require.Len(t, keys, 1)

	require.NoError(t, svc.Delete(ctx, restaurant.ID))
	keys, err = objects.List(ctx, store.RestaurantObjectPrefix(restaurant.ID))
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, err = svc.Get(ctx, restaurant.ID)
	assert.ErrorIs(t, err, ErrRestaurantNotFound)

	assert.NoError(t, svc.Delete(ctx, restaurant.ID))
	assert.NoError(t, svc.Delete(ctx, "never-existed"))
}

func TestRestaurantAddPhotoRejectsNonImages(t *testing.T) {
	store := setupServiceTestStore(t)
	svc := NewRestaurantService(store, setupLocalObjects(t), nil, time.UTC)
	restaurant := seedRestaurants(t, svc, RestaurantInput{Name: db.LocalizedName{EN: "Picky"}})[0]

	_, err := svc.AddPhoto(context.Background(), restaurant.ID, bytes.NewReader([]byte("not an image")))
	assert.ErrorIs(t, err, ErrImageUnsupported)
}

func TestRestaurantAdminListSearches(t *testing.T) {
	store := setupServiceTestStore(t)
	svc := NewRestaurantService(store, nil, nil, time.UTC)
	seedRestaurants(t, svc,
		RestaurantInput{Name: db.LocalizedName{EN: "Sushi Bar", ZhTW: "壽司吧"}, City: "Taipei"},
		RestaurantInput{Name: db.LocalizedName{EN: "Noodle House"}, City: "Tainan"},
		RestaurantInput{Name: db.LocalizedName{EN: "Taco Stand"}, City: "Hsinchu"},
	)

	result, err := svc.AdminList(context.Background(), "sushi", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Total)

	result, err = svc.AdminList(context.Background(), "tai", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.Len(t, result.Restaurants, 1)
}
