package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gitshopapp/storefront/internal/models"
	"github.com/gitshopapp/storefront/internal/services"
)

func TestStaffOrders_Access(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		shopper    *models.Shopper
		badToken   bool
		serviceErr error
		status     int
	}{
		{name: "anonymous", serviceErr: services.ErrLoginRequired, status: http.StatusUnauthorized},
		{name: "invalid token", badToken: true, status: http.StatusUnauthorized},
		{name: "customer", shopper: &models.Shopper{UserID: 5}, serviceErr: services.ErrForbidden, status: http.StatusForbidden},
		{name: "staff", shopper: &models.Shopper{UserID: 6, Staff: true}, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			staff := &stubStaff{err: tt.serviceErr}
			h, _, verifier := newTestHandlers(t, testDeps{staff: staff})

			req := httptest.NewRequest(http.MethodGet, "/staff/orders/?page=2", nil)
			switch {
			case tt.badToken:
				req.Header.Set("Authorization", "Bearer not-a-token")
			case tt.shopper != nil:
				req.Header.Set("Authorization", "Bearer "+issueToken(t, verifier, *tt.shopper))
			}
			rec := httptest.NewRecorder()
			h.StaffOrders(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, rec.Code)
			}
			if tt.shopper != nil && staff.shopper != *tt.shopper {
				t.Fatalf("expected service to see %+v, got %+v", *tt.shopper, staff.shopper)
			}
		})
	}
}

func TestPageNumber(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"":        1,
		"?page=3": 3,
		"?page=0": 1,
		"?page=x": 1,
	}
	for query, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/staff/products/"+query, nil)
		if got := pageNumber(req); got != want {
			t.Fatalf("pageNumber(%q) = %d, want %d", query, got, want)
		}
	}
}
