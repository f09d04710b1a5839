package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name       string
		host       string
		query      string
		wantStatus int
		wantURL    string
	}{
		{"home on main domain", "example.com", "", http.StatusOK, "https://example.com/"},
		{"category on subdomain", "yalta.example.com", "type=category&category=vorota", http.StatusOK, "https://yalta.example.com/vorota"},
		{"product", "kerch.example.com", "type=product&category=vorota&product=otkatnye", http.StatusOK, "https://kerch.example.com/vorota/otkatnye"},
		{"static page", "example.com", "type=page&page=dostavka", http.StatusOK, "https://example.com/pages/dostavka"},
		{"forced main domain", "yalta.example.com", "type=category&category=vorota&force_main_domain=1", http.StatusOK, "https://example.com/vorota"},
		{"relative", "yalta.example.com", "type=category&category=vorota&relative=true", http.StatusOK, "/vorota"},
		{"absolute override", "yalta.example.com", "type=category&override=https://other.example.org/x", http.StatusOK, "https://other.example.org/x"},
		{"relative override", "yalta.example.com", "type=category&override=custom/path", http.StatusOK, "https://yalta.example.com/custom/path"},
		{"missing slug", "example.com", "type=category", http.StatusBadRequest, ""},
		{"unknown type", "example.com", "type=blog", http.StatusBadRequest, ""},
		{"bad flag", "example.com", "relative=sometimes", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "/api/seo/canonical"
			if tt.query != "" {
				path += "?" + tt.query
			}
			rec := env.do(t, http.MethodGet, path, tt.host, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)

			body := decode(t, rec)
			if tt.wantURL != "" {
				assert.Equal(t, tt.wantURL, body["canonical"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}
}
