package customHttpClient

import (
	"net/http"
	"testing"

	"github.com/akolanti/DocFlowAPI/internal/config"
)

func TestPooled(t *testing.T) {
	c := Pooled()
	if c != Pooled() {
		t.Fatal("Pooled should hand out one shared client")
	}
	tr, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("transport is %T", c.Transport)
	}
	if tr.MaxIdleConnsPerHost != config.MaxIdleConnsPerHost || tr.IdleConnTimeout != config.IdleConnTimeout {
		t.Errorf("unexpected pool settings %d/%v", tr.MaxIdleConnsPerHost, tr.IdleConnTimeout)
	}
}
