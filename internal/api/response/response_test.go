package response

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dhima/client-service/internal/logging"
	"github.com/dhima/client-service/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSuccessHelpers(t *testing.T) {
	cases := []struct {
		name    string
		send    func(c *gin.Context)
		status  int
		message string
	}{
		{"success", func(c *gin.Context) { Success(c, http.StatusAccepted, "x", "queued") }, http.StatusAccepted, "queued"},
		{"created", func(c *gin.Context) { Created(c, "x", "client Mark with id 1 created successfully") }, http.StatusCreated, "client Mark with id 1 created successfully"},
		{"ok", func(c *gin.Context) { OK(c, "x") }, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newContext()
			tc.send(c)

			assert.Equal(t, tc.status, w.Code)
			var body SuccessResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "x", body.Data)
			assert.Equal(t, tc.message, body.Message)
		})
	}
}

func TestError_IncludesTraceIDAndDetails(t *testing.T) {
	c, w := newContext()
	c.Set("request_id", "test-trace-id")

	BadRequest(c, "Error: (First name is required)", []string{"First name is required"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Error: (First name is required)", body.Error)
	assert.Equal(t, "test-trace-id", body.TraceID)
	assert.Equal(t, []interface{}{"First name is required"}, body.Details)
}

func TestPaginated(t *testing.T) {
	c, w := newContext()
	page := models.Pagination{CurrentPage: 2, PageSize: 10, TotalPages: 3, TotalRecords: 25}

	Paginated(c, []string{"a"}, page)

	var body struct {
		Data       []string          `json:"data"`
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"a"}, body.Data)
	assert.Equal(t, page, body.Pagination)
}

func TestGetRequestID(t *testing.T) {
	t.Run("gin key", func(t *testing.T) {
		c, _ := newContext()
		c.Set("request_id", "from-gin")
		assert.Equal(t, "from-gin", GetRequestID(c))
	})
	t.Run("request context", func(t *testing.T) {
		c, _ := newContext()
		c.Request = c.Request.WithContext(logging.WithRequestID(context.Background(), "from-ctx"))
		assert.Equal(t, "from-ctx", GetRequestID(c))
	})
	t.Run("not a string", func(t *testing.T) {
		c, _ := newContext()
		c.Set("request_id", 42)
		assert.Len(t, GetRequestID(c), 36)
	})
}
