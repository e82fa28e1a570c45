package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"jurny-api/internal/mocks"
	"jurny-api/internal/models"
	"jurny-api/internal/repositories"
)

func setupPlaceRouter(handler *PlaceHandler) *gin.Engine {
	r := newTestRouter()
	r.GET("/places", handler.ListFeed)
	r.GET("/places/search", handler.Search)
	r.GET("/places/mine", handler.ListMine)
	r.POST("/places", handler.CreatePlace)
	r.GET("/places/:place_id", handler.GetPlace)
	r.PUT("/places/:place_id", handler.UpdatePlace)
	r.DELETE("/places/:place_id", handler.DeletePlace)
	return r
}

func TestListFeedExcludesViewer(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("Feed", mock.Anything, testUserID, models.PlaceFilter{Limit: repositories.DefaultFeedLimit}).
		Return(nil, nil).Once()

	rec := doRequest(router, http.MethodGet, "/places", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decodeBody(t, rec)["places"])
	places.AssertExpectations(t)
}

func TestSearchParsesFilter(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("Feed", mock.Anything, testUserID, mock.MatchedBy(func(f models.PlaceFilter) bool {
		return f.Query == "onsen" &&
			f.Genre == "nature" &&
			assert.ObjectsAreEqual([]string{"relax", "food"}, f.PurposeTags) &&
			assert.ObjectsAreEqual([]string{"quiet"}, f.DemandTags) &&
			f.BudgetMin != nil && *f.BudgetMin == 1000 &&
			f.BudgetMax != nil && *f.BudgetMax == 50000 &&
			f.DateStart != nil && f.DateStart.Equal(time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)) &&
			f.DateEnd == nil &&
			f.Limit == repositories.DefaultFeedLimit
	})).Return([]models.Place{{ID: testPlaceID}}, nil).Once()

	rec := doRequest(router, http.MethodGet,
		"/places/search?q=onsen&genre=nature&purpose_tags=relax,food&demand_tags=quiet&budget_min=1000&budget_max=50000&date_start=2025-05-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	places.AssertExpectations(t)
}

func TestSearchRejectsBadParams(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	for _, q := range []string{"budget_min=abc", "date_end=05/01/2025", "limit=-1"} {
		rec := doRequest(router, http.MethodGet, "/places/search?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	places.AssertNotCalled(t, "Feed", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePlace(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("Create", mock.Anything, testUserID, mock.MatchedBy(func(in models.PlaceInput) bool {
		return in.Title == "Hakone" && in.RecruitNum == 2
	})).Return(models.Place{ID: testPlaceID, Owner: testUserID, Title: "Hakone"}, nil).Once()

	rec := doRequest(router, http.MethodPost, "/places", `{"title":"Hakone","genre":"nature","recruit_num":2}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	places.AssertExpectations(t)
}

func TestCreatePlaceWithCalendarDates(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	start := models.NewDate(2025, time.May, 1)
	end := models.NewDate(2025, time.May, 3)
	places.On("Create", mock.Anything, testUserID, mock.MatchedBy(func(in models.PlaceInput) bool {
		return in.DateStart != nil && in.DateStart.Equal(start.Time) &&
			in.DateEnd != nil && in.DateEnd.Equal(end.Time)
	})).Return(models.Place{ID: testPlaceID, Owner: testUserID, Title: "Kyoto", DateStart: &start, DateEnd: &end}, nil).Once()

	rec := doRequest(router, http.MethodPost, "/places",
		`{"title":"Kyoto","genre":"temple","recruit_num":2,"date_start":"2025-05-01","date_end":"2025-05-03"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "2025-05-01", body["date_start"])
	assert.Equal(t, "2025-05-03", body["date_end"])
	places.AssertExpectations(t)
}

func TestCreatePlaceAcceptsNullDates(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("Create", mock.Anything, testUserID, mock.MatchedBy(func(in models.PlaceInput) bool {
		return in.DateStart == nil && in.DateEnd == nil
	})).Return(models.Place{ID: testPlaceID, Owner: testUserID}, nil).Once()

	rec := doRequest(router, http.MethodPost, "/places", `{"title":"Kyoto","genre":"temple","recruit_num":2,"date_start":null,"date_end":null}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	places.AssertExpectations(t)
}

func TestCreatePlaceValidation(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	for _, body := range []string{
		`{"genre":"nature","recruit_num":2}`,
		`{"title":"Hakone","genre":"nature","recruit_num":0}`,
		`{"title":"Hakone","genre":"nature","recruit_num":2,"images":["a","b","c","d","e","f"]}`,
		`{"title":"Hakone","genre":"nature","recruit_num":2,"budget_min":5000,"budget_max":100}`,
		`{"title":"Hakone","genre":"nature","recruit_num":2,"gmap_url":"not a url"}`,
		`{"title":"Hakone","genre":"nature","recruit_num":2,"date_start":"2025-05-03","date_end":"2025-05-01"}`,
		`{"title":"Hakone","genre":"nature","recruit_num":2,"date_start":"2025-05-01T00:00:00Z"}`,
		`{"title":"Hakone","genre":"nature","recruit_num":2,"date_start":"05/01/2025"}`,
	} {
		rec := doRequest(router, http.MethodPost, "/places", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	places.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPlaceNotFound(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("Get", mock.Anything, testPlaceID).Return(nil, repositories.ErrPlaceNotFound).Once()

	rec := doRequest(router, http.MethodGet, "/places/"+testPlaceID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePlaceRequiresOwner(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("Get", mock.Anything, testPlaceID).Return(models.Place{ID: testPlaceID, Owner: otherUserID}, nil).Once()

	rec := doRequest(router, http.MethodPut, "/places/"+testPlaceID, `{"title":"Hakone","genre":"nature","recruit_num":2}`)
	require.Equal(t, http.StatusForbidden, rec.Code)
	places.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePlace(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("Get", mock.Anything, testPlaceID).Return(models.Place{ID: testPlaceID, Owner: testUserID}, nil).Once()
	places.On("Update", mock.Anything, testPlaceID, testUserID, mock.Anything).
		Return(models.Place{ID: testPlaceID, Owner: testUserID, Title: "Nikko"}, nil).Once()

	rec := doRequest(router, http.MethodPut, "/places/"+testPlaceID, `{"title":"Nikko","genre":"nature","recruit_num":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Nikko", decodeBody(t, rec)["title"])
	places.AssertExpectations(t)
}

func TestDeletePlace(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("Get", mock.Anything, testPlaceID).Return(models.Place{ID: testPlaceID, Owner: testUserID}, nil).Once()
	places.On("Delete", mock.Anything, testPlaceID, testUserID).Return(nil).Once()

	rec := doRequest(router, http.MethodDelete, "/places/"+testPlaceID, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	places.AssertExpectations(t)
}

func TestListMine(t *testing.T) {
	places := new(mocks.PlaceRepositoryMock)
	router := setupPlaceRouter(NewPlaceHandler(places, nil))

	places.On("ListByOwner", mock.Anything, testUserID, repositories.DefaultFeedLimit).
		Return([]models.Place{{ID: testPlaceID, Owner: testUserID}}, nil).Once()

	rec := doRequest(router, http.MethodGet, "/places/mine", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["places"], 1)
}
