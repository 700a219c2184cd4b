package preferences

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go_releasehub/internal/httpx"
	"go_releasehub/internal/preference"

	"github.com/gin-gonic/gin"
)

type memLayouts map[int]preference.Layout

func (m memLayouts) Get(ctx context.Context, uid int) (preference.Layout, error) {
	if l, ok := m[uid]; ok {
		return l, nil
	}
	return preference.DefaultLayout, nil
}

func (m memLayouts) Set(ctx context.Context, uid int, layout preference.Layout) error {
	m[uid] = layout
	return nil
}

func setupRouter(store memLayouts) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("uid", 42)
		c.Next()
	})
	h := NewHandler(store)
	r.GET("/layout", h.GetLayout)
	r.PUT("/layout", h.SetLayout)
	return r
}

func do(r *gin.Engine, method, body string) (*httptest.ResponseRecorder, httpx.Response) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, "/layout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp httpx.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestLayout(t *testing.T) {
	store := memLayouts{}
	r := setupRouter(store)

	_, resp := do(r, "GET", "")
	if got := resp.Data.(map[string]interface{})["layout"]; got != "list" {
		t.Errorf("Expected default list, got %v", got)
	}

	w, _ := do(r, "PUT", `{"layout":"card"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if store[42] != preference.LayoutCard {
		t.Errorf("Expected card stored for uid 42, got %v", store)
	}

	_, resp = do(r, "GET", "")
	if got := resp.Data.(map[string]interface{})["layout"]; got != "card" {
		t.Errorf("Expected card, got %v", got)
	}
}

func TestSetLayout_Invalid(t *testing.T) {
	store := memLayouts{}
	r := setupRouter(store)

	for _, body := range []string{`{"layout":"grid"}`, `{}`, `not json`} {
		w, resp := do(r, "PUT", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", body, w.Code)
		}
		if resp.Code != httpx.CodeParamInvalid {
			t.Errorf("%s: expected code %d, got %d", body, httpx.CodeParamInvalid, resp.Code)
		}
	}
	if len(store) != 0 {
		t.Errorf("Nothing should be stored, got %v", store)
	}
}
