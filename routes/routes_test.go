package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"hotel-recommender/internal/auth"
	"hotel-recommender/middleware"
	"hotel-recommender/models"
	"hotel-recommender/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memoryUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{users: make(map[string]*models.User)}
}

func (s *memoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return services.ErrUserExists
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	stored := *user
	s.users[user.Username] = &stored
	return nil
}

func (s *memoryUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func newAuthRouter(users services.UserStore) (*gin.Engine, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Minute)
	router := gin.New()
	SetupAuthRoutes(router.Group("/api"), users, tokens, middleware.NewAuthMiddleware(tokens), bcrypt.MinCost)
	return router, tokens
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginMe(t *testing.T) {
	users := newMemoryUserStore()
	router, tokens := newAuthRouter(users)

	w := postJSON(router, "/api/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var info models.UserInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, "alice@example.com", info.Email)
	assert.Len(t, info.ID, 24)
	assert.NotContains(t, w.Body.String(), "password")

	form := url.Values{"username": {"alice"}, "password": {"secret1"}}
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var token models.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &token))
	assert.Equal(t, "bearer", token.TokenType)
	claims, err := tokens.Validate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username())

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+info.ID+`","username":"alice","email":"alice@example.com"}`, w.Body.String())
}

func TestRegister_Duplicate(t *testing.T) {
	router, _ := newAuthRouter(newMemoryUserStore())

	w := postJSON(router, "/api/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(router, "/api/register", `{"username":"bob","email":"alice@example.com","password":"secret2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "user_exists")
	assert.Contains(t, w.Body.String(), "Username or email already registered")
}

func TestRegister_InvalidInput(t *testing.T) {
	router, _ := newAuthRouter(newMemoryUserStore())

	w := postJSON(router, "/api/register", `{"username":"al","email":"not-an-email","password":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_input")
}

func TestLogin_WrongCredentials(t *testing.T) {
	router, _ := newAuthRouter(newMemoryUserStore())
	require.Equal(t, http.StatusOK,
		postJSON(router, "/api/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`).Code)

	for _, body := range []string{
		`{"username":"alice","password":"wrong-pass"}`,
		`{"username":"nobody","password":"secret1"}`,
	} {
		w := postJSON(router, "/api/login", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Incorrect username or password")
	}
}

func TestMe_UserDeletedAfterLogin(t *testing.T) {
	router, tokens := newAuthRouter(newMemoryUserStore())
	token, _, err := tokens.Issue("ghost")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "User not found")
}

type fakeCatalog struct {
	hotels []models.HotelSummary
	err    error
}

func (f *fakeCatalog) List(context.Context) ([]models.HotelSummary, error) {
	return f.hotels, f.err
}

type fakeRecommender struct {
	results   []models.SimilarHotel
	err       error
	gotName   string
	gotTopN   int
	callCount int
}

func (f *fakeRecommender) Similar(_ context.Context, hotelName string, topN int) ([]models.SimilarHotel, error) {
	f.callCount++
	f.gotName = hotelName
	f.gotTopN = topN
	return f.results, f.err
}

func newHotelRouter(catalog HotelLister, recommender Recommender) *gin.Engine {
	router := gin.New()
	SetupHealthRoutes(router)
	SetupHotelRoutes(router.Group("/api"), catalog, recommender)
	return router
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestSimilarHotels(t *testing.T) {
	rating := 4.5
	rec := &fakeRecommender{results: []models.SimilarHotel{
		{HotelName: "Harbor View", Rating: &rating, Similarity: 0.61, ImageURL: "https://img/harbor", Price: 1500},
	}}
	router := newHotelRouter(&fakeCatalog{}, rec)

	w := get(router, "/api/similar_hotels?hotel_name=Seaside+Inn")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Seaside Inn", rec.gotName)
	assert.Equal(t, 5, rec.gotTopN)
	assert.JSONEq(t, `[{"hotel_name":"Harbor View","rating":4.5,"similarity":0.61,"image_url":"https://img/harbor","price":1500}]`, w.Body.String())

	w = get(router, "/api/similar_hotels?hotel_name=Seaside+Inn&top_n=2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, rec.gotTopN)
}

func TestSimilarHotels_UnknownHotelIsEmptyArray(t *testing.T) {
	router := newHotelRouter(&fakeCatalog{}, &fakeRecommender{})

	w := get(router, "/api/similar_hotels?hotel_name=Nowhere")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestSimilarHotels_BadRequests(t *testing.T) {
	rec := &fakeRecommender{}
	router := newHotelRouter(&fakeCatalog{}, rec)

	for _, target := range []string{
		"/api/similar_hotels",
		"/api/similar_hotels?hotel_name=",
		"/api/similar_hotels?hotel_name=A&top_n=0",
		"/api/similar_hotels?hotel_name=A&top_n=-3",
		"/api/similar_hotels?hotel_name=A&top_n=five",
	} {
		w := get(router, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Contains(t, w.Body.String(), "bad_request", target)
	}
	assert.Zero(t, rec.callCount)
}

func TestSimilarHotels_ServiceError(t *testing.T) {
	router := newHotelRouter(&fakeCatalog{}, &fakeRecommender{err: errors.New("reviews file missing")})

	w := get(router, "/api/similar_hotels?hotel_name=A")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "reviews file missing")
}

func TestListHotels(t *testing.T) {
	catalog := &fakeCatalog{hotels: []models.HotelSummary{{
		HotelName:  "Seaside Inn",
		FaceScore:  0.9,
		FaceEmoji:  ":)",
		Price:      1200,
		ImageURL:   "https://img/seaside",
		Aspects:    map[string]float64{"cleanliness": 0.8},
		SubAspects: map[string]float64{},
	}}}
	router := newHotelRouter(catalog, &fakeRecommender{})

	w := get(router, "/api/hotels")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"hotel_name":"Seaside Inn","face_score":0.9,"face_emoji":":)","price":1200,
		"image_url":"https://img/seaside","aspects":{"cleanliness":0.8},"subaspects":{},"rating":null}]`, w.Body.String())

	router = newHotelRouter(&fakeCatalog{err: errors.New("boom")}, &fakeRecommender{})
	assert.Equal(t, http.StatusInternalServerError, get(router, "/api/hotels").Code)
}

func TestExportHotels(t *testing.T) {
	catalog := &fakeCatalog{hotels: []models.HotelSummary{{HotelName: "Seaside Inn", Price: 1200}}}
	router := newHotelRouter(catalog, &fakeRecommender{})

	w := get(router, "/api/hotels/export?format=csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="hotels.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "Seaside Inn")

	w = get(router, "/api/hotels/export")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="hotels.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String()[:2])

	assert.Equal(t, http.StatusBadRequest, get(router, "/api/hotels/export?format=pdf").Code)
}

func TestHealth(t *testing.T) {
	router := newHotelRouter(&fakeCatalog{}, &fakeRecommender{})

	w := get(router, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}
