package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAccountIDFromCtx(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := accountIDFromCtx(c); ok {
		t.Error("expected miss without account_id")
	}

	c.Set("account_id", "7")
	if _, ok := accountIDFromCtx(c); ok {
		t.Error("only int ids are accepted")
	}

	c.Set("account_id", 7)
	if id, ok := accountIDFromCtx(c); !ok || id != 7 {
		t.Errorf("expected 7, got %d (%v)", id, ok)
	}
}
