package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/btecbytes/bytesapi/internal/api/models"
	"github.com/btecbytes/bytesapi/internal/cache"
	"github.com/btecbytes/bytesapi/internal/config"
	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/btecbytes/bytesapi/internal/database/mock"
	"github.com/btecbytes/bytesapi/internal/images"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type HandlerTestSuite struct {
	suite.Suite
	db     *mock.MockDB
	cfg    *config.Config
	router *gin.Engine
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.db = mock.NewMockDB()
	s.cfg = &config.Config{}

	cacheCfg := &config.CacheConfig{Type: config.CacheTypeMemory, TTL: time.Minute}
	h := New(s.db, s.cfg, images.NewRenderer(cache.NewImageCache(cacheCfg), 64, 64), nil)

	s.router = gin.New()
	s.router.GET("/user", h.ListUsers)
	s.router.POST("/user", h.CreateUser)
	s.router.GET("/user/:id", h.GetUser)
	s.router.GET("/category", h.ListCategories)
	s.router.POST("/category", h.CreateCategory)
	s.router.PATCH("/category/:url_ext", h.UpdateCategory)
	s.router.DELETE("/category/:url_ext", h.DeleteCategory)
	s.router.POST("/item", h.CreateItem)
	s.router.DELETE("/item/:id", h.DeleteItem)
	s.router.GET("/wishlist", h.ListWishlists)
}

func (s *HandlerTestSuite) request(method, path string, body any) models.Envelope {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		s.Require().NoError(err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env models.Envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	s.Equal(w.Code, env.Response)
	return env
}

func (s *HandlerTestSuite) TestUnhandledErrors() {
	boom := errors.New("connection reset")
	s.db.UserError = boom
	s.db.CategoryError = boom
	s.db.WishlistError = boom

	env := s.request(http.MethodGet, "/user", nil)
	s.Equal(http.StatusInternalServerError, env.Response)
	s.Equal("connection reset", env.Exception)

	env = s.request(http.MethodPost, "/user", map[string]any{
		"firstname": "A", "lastname": "B", "email": "a@b.com", "password": "p",
	})
	s.Equal(http.StatusInternalServerError, env.Response)
	s.Equal(unhandledMessage, env.Message)

	env = s.request(http.MethodPost, "/category", map[string]any{
		"title": "T", "url_ext": "t", "image": []byte{1}, "image_format": "png", "snippet": "s", "description": "d",
	})
	s.Equal(http.StatusInternalServerError, env.Response)

	env = s.request(http.MethodGet, "/wishlist", nil)
	s.Equal(http.StatusInternalServerError, env.Response)
}

func (s *HandlerTestSuite) TestRoleConflictIsIntegrityError() {
	s.db.UserError = fmt.Errorf("create user: %w", database.ErrRoleAlreadyAssigned)

	env := s.request(http.MethodPost, "/user", map[string]any{
		"firstname": "A", "lastname": "B", "email": "a@b.com", "password": "p", "usertype": "admin",
	})
	s.Equal(http.StatusBadRequest, env.Response)
	s.Contains(env.Message, "such as on the usertype field")
	s.Contains(env.Exception, "already has a role")
}

func (s *HandlerTestSuite) TestCreateUserWithRole() {
	env := s.request(http.MethodPost, "/user", map[string]any{
		"firstname": "A", "lastname": "B", "email": "T@B.com", "password": "p",
		"usertype": "Teacher", "subject": "Maths",
	})
	s.Require().Equal(http.StatusOK, env.Response)

	user, err := s.db.GetUserByEmail(s.T().Context(), "t@b.com")
	s.Require().NoError(err)
	s.Equal(database.RoleTeacher, user.Role())
	s.Equal("Maths", user.Teacher.Subject)
	s.NotEqual("p", user.PasswordHash)
}

func (s *HandlerTestSuite) TestPatchURLExtIsNormalised() {
	_, err := s.db.CreateCategory(s.T().Context(), database.NewCategory("T", "old", []byte{1}, "png", "s", "d"))
	s.Require().NoError(err)

	env := s.request(http.MethodPatch, "/category/old", map[string]any{"url_ext": "Brand New"})
	s.Require().Equal(http.StatusOK, env.Response)

	category, err := s.db.GetCategoryByURLExt(s.T().Context(), "brand-new")
	s.Require().NoError(err)
	s.Equal("T", category.Title)

	env = s.request(http.MethodPatch, "/category/brand-new", map[string]any{"image_format": "svg"})
	s.Equal(http.StatusBadRequest, env.Response)
}

func (s *HandlerTestSuite) TestDeleteMisses() {
	env := s.request(http.MethodDelete, "/item/abc", nil)
	s.Equal(http.StatusBadRequest, env.Response)
	s.Equal("Item does not exist.", env.Message)

	env = s.request(http.MethodDelete, "/item/7", nil)
	s.Equal(http.StatusBadRequest, env.Response)
	s.Equal("Item does not exist.", env.Message)

	env = s.request(http.MethodDelete, "/category/none", nil)
	s.Equal(http.StatusBadRequest, env.Response)
	s.Equal("Category does not exist.", env.Message)
}

func (s *HandlerTestSuite) TestNegativePriceRejected() {
	env := s.request(http.MethodPost, "/item", map[string]any{
		"title": "t", "snippet": "s", "description": "d", "image": []byte{1},
		"image_format": "png", "price": -1, "category_id": 1,
	})
	s.Equal(http.StatusBadRequest, env.Response)
	s.Equal("Item not created", env.Message)
}

func (s *HandlerTestSuite) TestListMessage() {
	_, err := s.db.CreateCategory(s.T().Context(), database.NewCategory("T", "t", []byte{1}, "png", "s", "d"))
	s.Require().NoError(err)

	env := s.request(http.MethodGet, "/category", nil)
	s.Equal("1 categories(s) found.", env.Message)
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func TestDetailedFlag(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query string
		want  bool
	}{
		{"", false},
		{"?detailed=true", true},
		{"?detailed=1", true},
		{"?detailed=YES", true},
		{"?detailed=false", false},
		{"?detailed=nope", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			assert.Equal(t, tt.want, detailed(c))
		})
	}
}

func TestParseUintParam(t *testing.T) {
	id, err := parseUintParam("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "-1", "abc", "1.5", "99999999999999999999"} {
		_, err := parseUintParam(bad)
		assert.Error(t, err, bad)
	}
}

func TestIntegrityMessage(t *testing.T) {
	tests := []struct {
		entity string
		err    error
		field  string
	}{
		{entity: "User", err: database.ErrIntegrity, field: "Email"},
		{entity: "User", err: fmt.Errorf("assign: %w", database.ErrRoleAlreadyAssigned), field: "usertype"},
		{entity: "Category", err: database.ErrIntegrity, field: "url_ext"},
		{entity: "Wishlist", err: database.ErrIntegrity, field: "item_id or user_id"},
		{entity: "Unknown", err: database.ErrIntegrity, field: "ID"},
	}
	for _, tt := range tests {
		t.Run(tt.entity+"/"+tt.field, func(t *testing.T) {
			assert.Contains(t, integrityMessage(tt.entity, tt.err), "such as on the "+tt.field+" field.")
		})
	}
}

func TestNormalizeURLExt(t *testing.T) {
	got, err := normalizeURLExt("Gaming Gear & More")
	require.NoError(t, err)
	assert.Equal(t, "gaming-gear-and-more", got)

	_, err = normalizeURLExt("   ")
	assert.ErrorIs(t, err, errEmptyURLExt)
}
