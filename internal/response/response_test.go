package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-marketplace-service/internal/apperror"
	"github.com/fekuna/omnipos-marketplace-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerInput struct {
	Email       string `json:"email" binding:"required,email"`
	CompanyName string `json:"company_name" binding:"required,max=8"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(t *testing.T, h gin.HandlerFunc, body string) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	r := gin.New()
	r.POST("/x", h)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestBindJSONReportsFields(t *testing.T) {
	w, env := perform(t, func(c *gin.Context) {
		var in registerInput
		if !BindJSON(c, logger.NewNop(), &in) {
			return
		}
		OK(c, "ok", in)
	}, `{"email":"nope","company_name":"Much Too Long Inc"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, "must be a valid e-mail address", env.Errors["email"])
	assert.Equal(t, "must be at most 8 characters", env.Errors["company_name"])
}

func TestErrorMapsKinds(t *testing.T) {
	w, env := perform(t, func(c *gin.Context) {
		Error(c, logger.NewNop(), apperror.DanglingReference("category", "abc"))
	}, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "category abc does not exist", env.Message)

	w, env = perform(t, func(c *gin.Context) {
		Error(c, logger.NewNop(), errors.New("pq: connection refused"))
	}, `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Message)
}

func TestCreatedEnvelope(t *testing.T) {
	w, env := perform(t, func(c *gin.Context) {
		Created(c, "created", map[string]string{"id": "1"})
	}, `{}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, StatusSuccess, env.Status)
	assert.Equal(t, http.StatusCreated, env.Code)
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "company_name", toSnake("CompanyName"))
	assert.Equal(t, "web_id", toSnake("WebID"))
	assert.Equal(t, "email", toSnake("Email"))
}

func performLang(t *testing.T, lang string, err error) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { Error(c, logger.NewNop(), err) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	r.ServeHTTP(w, req)

	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestErrorLocalizesMessage(t *testing.T) {
	tests := []struct {
		name string
		lang string
		err  error
		want string
	}{
		{"not found en", "en-US", apperror.NotFound("product type"), "product type not found"},
		{"not found id", "id-ID,id;q=0.9", apperror.NotFound("product type"), "tipe produk tidak ditemukan"},
		{"dangling id", "id", apperror.DanglingReference("category", "abc"), "kategori abc tidak ada"},
		{"free text id", "id", apperror.Conflict("slug is already taken"), "slug sudah digunakan"},
		{"unknown text id", "id", apperror.Conflict(`web_id "W1" is already in use`), `web_id "W1" is already in use`},
		{"bare sentinel id", "id", apperror.ErrForbidden, "akses ditolak"},
		{"bare sentinel en", "", apperror.ErrForbidden, "forbidden"},
		{"internal id", "id", errors.New("boom"), "terjadi kesalahan pada server"},
		{"no header", "", apperror.Unauthorized("missing bearer token"), "missing bearer token"},
		{"unsupported language", "fr", apperror.NotFound("user"), "user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, env := performLang(t, tt.lang, tt.err)
			assert.Equal(t, tt.want, env.Message)
			assert.Equal(t, StatusError, env.Status)
		})
	}
}

func TestErrorLocalizesFields(t *testing.T) {
	w, env := performLang(t, "id", apperror.Validation("validation failed", map[string]string{
		"name":  "this field is required",
		"price": "must be at least 0",
	}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validasi gagal", env.Message)
	assert.Equal(t, "kolom ini wajib diisi", env.Errors["name"])
	assert.Equal(t, "must be at least 0", env.Errors["price"])
}
